// Package backend runs the one-shot instance lookup off the UI goroutine.
package backend

import (
	"context"

	"github.com/atomicstack/susum/internal/instance"
	"github.com/atomicstack/susum/internal/logging/events"
)

// Result carries the outcome of a lookup. Exactly one of Records or Err is
// meaningful.
type Result struct {
	Records []instance.Record
	Err     error
}

// FetchFunc performs the lookup. It should honour ctx cancellation.
type FetchFunc func(ctx context.Context) ([]instance.Record, error)

// Loader runs a FetchFunc once and publishes its Result.
type Loader struct {
	cancel  context.CancelFunc
	results chan Result
	done    chan struct{}
}

// StartLoader launches fetch on its own goroutine. The result channel has
// room for the single value, so the goroutine finishes even if nobody reads.
func StartLoader(ctx context.Context, fetch FetchFunc) *Loader {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	l := &Loader{
		cancel:  cancel,
		results: make(chan Result, 1),
		done:    make(chan struct{}),
	}
	events.Load.Started()
	go l.run(ctx, fetch)
	return l
}

func (l *Loader) run(ctx context.Context, fetch FetchFunc) {
	defer close(l.done)
	defer close(l.results)
	records, err := fetch(ctx)
	if err != nil {
		events.Load.Failed(err)
		records = nil
	} else {
		events.Load.Finished(len(records))
	}
	l.results <- Result{Records: records, Err: err}
}

// Results returns the receive side. It yields one Result and is then closed.
func (l *Loader) Results() <-chan Result {
	return l.results
}

// Stop cancels the context passed to the fetch function. It does not wait.
func (l *Loader) Stop() {
	events.Load.Stopped()
	l.cancel()
}

// Wait blocks until the fetch goroutine has returned. Mostly useful in tests.
func (l *Loader) Wait() {
	<-l.done
}
