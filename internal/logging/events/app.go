package events

import "github.com/atomicstack/susum/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Exit(action string, code int) {
	logging.Trace("app.exit", map[string]interface{}{"action": action, "code": code})
}
