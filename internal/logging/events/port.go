package events

import "github.com/atomicstack/susum/internal/logging"

type PortTracer struct{}

var Port = PortTracer{}

func (PortTracer) Discovered(port int) {
	logging.Trace("port.discovered", map[string]interface{}{"port": port})
}

func (PortTracer) Unavailable(candidates []int) {
	logging.Trace("port.unavailable", map[string]interface{}{"candidates": candidates})
}

func (PortTracer) Occupied(port, attempt int) {
	logging.Trace("port.occupied", map[string]interface{}{"port": port, "attempt": attempt})
}

func (PortTracer) Freed(port, attempt int) {
	logging.Trace("port.freed", map[string]interface{}{"port": port, "attempt": attempt})
}

func (PortTracer) Timeout(port, attempts int) {
	logging.Trace("port.timeout", map[string]interface{}{"port": port, "attempts": attempts})
}
