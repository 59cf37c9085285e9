package events

import "github.com/atomicstack/susum/internal/logging"

type LoadTracer struct{}

var Load = LoadTracer{}

func (LoadTracer) Started() {
	logging.Trace("load.start", nil)
}

func (LoadTracer) Finished(count int) {
	logging.Trace("load.done", map[string]interface{}{"count": count})
}

func (LoadTracer) Failed(err error) {
	if err == nil {
		return
	}
	logging.Trace("load.failed", map[string]interface{}{"error": err.Error()})
}

func (LoadTracer) Page(page, instances int) {
	logging.Trace("load.page", map[string]interface{}{"page": page, "instances": instances})
}

func (LoadTracer) Stopped() {
	logging.Trace("load.stop", nil)
}
