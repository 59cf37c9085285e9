// Package ports finds a free local TCP port for the forwarding session and
// later confirms that the session has released it.
package ports

import (
	"net"
	"strconv"
	"time"

	"github.com/atomicstack/susum/internal/logging/events"
)

const (
	DefaultHost     = "127.0.0.1"
	DefaultAttempts = 5
	DefaultInterval = time.Second
)

// DefaultCandidates is the preference-ordered list of local ports to try.
var DefaultCandidates = []int{3389, 3390}

// Reserver probes local ports by binding them.
type Reserver struct {
	Host       string
	Candidates []int
	// Attempts bounds the number of binds WaitFreed performs.
	Attempts int
	Interval time.Duration

	listen func(network, address string) (net.Listener, error)
	sleep  func(time.Duration)
}

// NewReserver returns a Reserver with the default host, retry budget and
// interval. A nil candidates slice selects DefaultCandidates.
func NewReserver(candidates []int) *Reserver {
	if candidates == nil {
		candidates = DefaultCandidates
	}
	return &Reserver{
		Host:       DefaultHost,
		Candidates: append([]int(nil), candidates...),
		Attempts:   DefaultAttempts,
		Interval:   DefaultInterval,
	}
}

// Discover returns the first candidate that can be bound. The listener is
// closed straight away so the session launcher can take the port.
func (r *Reserver) Discover() (int, bool) {
	for _, port := range r.Candidates {
		if r.probe(port) {
			events.Port.Discovered(port)
			return port, true
		}
	}
	events.Port.Unavailable(r.Candidates)
	return 0, false
}

// WaitFreed polls until port can be bound again or the attempt budget runs
// out. It sleeps only between failed attempts.
func (r *Reserver) WaitFreed(port int) bool {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		if r.probe(port) {
			events.Port.Freed(port, attempt)
			return true
		}
		events.Port.Occupied(port, attempt)
		if attempt >= attempts {
			events.Port.Timeout(port, attempts)
			return false
		}
		r.sleepFor(r.Interval)
	}
}

func (r *Reserver) probe(port int) bool {
	listen := r.listen
	if listen == nil {
		listen = net.Listen
	}
	host := r.Host
	if host == "" {
		host = DefaultHost
	}
	l, err := listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = l.Close()
	return true
}

func (r *Reserver) sleepFor(d time.Duration) {
	if d <= 0 {
		return
	}
	if r.sleep != nil {
		r.sleep(d)
		return
	}
	time.Sleep(d)
}
