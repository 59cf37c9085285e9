package events

import "github.com/atomicstack/susum/internal/logging"

type SessionTracer struct{}

var Session = SessionTracer{}

func (SessionTracer) Quit(reason string) {
	logging.Trace("session.quit", map[string]interface{}{"reason": reason})
}

func (SessionTracer) Connect(target, label string, port int) {
	logging.Trace("session.connect", map[string]interface{}{"target": target, "label": label, "port": port})
}

func (SessionTracer) Launch(binary string, args []string) {
	logging.Trace("session.launch", map[string]interface{}{"binary": binary, "args": args})
}

func (SessionTracer) Exited(target string, code int) {
	logging.Trace("session.exited", map[string]interface{}{"target": target, "code": code})
}
