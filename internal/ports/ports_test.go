package ports

import (
	"net"
	"strconv"
	"testing"
	"time"
)

// occupy binds an ephemeral loopback port for the duration of the test.
func occupy(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l.Addr().(*net.TCPAddr).Port
}

// freePort returns a port that was bindable a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func noSleep(t *testing.T, r *Reserver) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	r.sleep = func(d time.Duration) { slept = append(slept, d) }
	return &slept
}

func TestNewReserverDefaults(t *testing.T) {
	r := NewReserver(nil)
	if len(r.Candidates) != 2 || r.Candidates[0] != 3389 || r.Candidates[1] != 3390 {
		t.Fatalf("unexpected default candidates %v", r.Candidates)
	}
	if r.Attempts != 5 || r.Interval != time.Second || r.Host != "127.0.0.1" {
		t.Fatalf("unexpected defaults %#v", r)
	}
	r.Candidates[0] = 1
	if DefaultCandidates[0] != 3389 {
		t.Fatalf("expected reserver to own its candidate slice")
	}
}

func TestDiscoverSkipsOccupied(t *testing.T) {
	busy := occupy(t)
	free := freePort(t)
	r := NewReserver([]int{busy, free})
	port, ok := r.Discover()
	if !ok || port != free {
		t.Fatalf("expected free port %d, got %d/%v", free, port, ok)
	}
}

func TestDiscoverPrefersListOrder(t *testing.T) {
	first := freePort(t)
	second := freePort(t)
	r := NewReserver([]int{first, second})
	port, ok := r.Discover()
	if !ok || port != first {
		t.Fatalf("expected first candidate %d, got %d/%v", first, port, ok)
	}
}

func TestDiscoverNoneFree(t *testing.T) {
	r := NewReserver([]int{occupy(t), occupy(t)})
	slept := noSleep(t, r)
	if port, ok := r.Discover(); ok {
		t.Fatalf("expected no free port, got %d", port)
	}
	if len(*slept) != 0 {
		t.Fatalf("expected discover never to sleep")
	}
}

func TestDiscoverReleasesPort(t *testing.T) {
	r := NewReserver([]int{freePort(t)})
	port, ok := r.Discover()
	if !ok {
		t.Fatalf("expected a port")
	}
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		t.Fatalf("expected port %d to be released, got %v", port, err)
	}
	l.Close()
}

func TestWaitFreedImmediate(t *testing.T) {
	r := NewReserver(nil)
	slept := noSleep(t, r)
	if !r.WaitFreed(freePort(t)) {
		t.Fatalf("expected free port to be reported free")
	}
	if len(*slept) != 0 {
		t.Fatalf("expected no sleep, got %v", *slept)
	}
}

func TestWaitFreedExhaustsBudget(t *testing.T) {
	r := NewReserver(nil)
	r.Interval = 250 * time.Millisecond
	attempts := 0
	r.listen = func(network, address string) (net.Listener, error) {
		attempts++
		return nil, &net.OpError{Op: "listen", Net: network}
	}
	slept := noSleep(t, r)
	if r.WaitFreed(3389) {
		t.Fatalf("expected timeout")
	}
	if attempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", attempts)
	}
	if len(*slept) != 4 {
		t.Fatalf("expected 4 sleeps between attempts, got %d", len(*slept))
	}
	for _, d := range *slept {
		if d != 250*time.Millisecond {
			t.Fatalf("expected configured interval, got %v", d)
		}
	}
}

func TestWaitFreedRecoversMidway(t *testing.T) {
	r := NewReserver(nil)
	busy := occupy(t)
	attempts := 0
	r.listen = func(network, address string) (net.Listener, error) {
		attempts++
		if attempts < 3 {
			return nil, &net.OpError{Op: "listen", Net: network}
		}
		return net.Listen(network, "127.0.0.1:0")
	}
	slept := noSleep(t, r)
	if !r.WaitFreed(busy) {
		t.Fatalf("expected port to free up on third attempt")
	}
	if attempts != 3 || len(*slept) != 2 {
		t.Fatalf("expected 3 attempts and 2 sleeps, got %d/%d", attempts, len(*slept))
	}
}

func TestWaitFreedRealOccupiedPort(t *testing.T) {
	r := NewReserver(nil)
	r.Attempts = 2
	slept := noSleep(t, r)
	if r.WaitFreed(occupy(t)) {
		t.Fatalf("expected occupied port to stay occupied")
	}
	if len(*slept) != 1 {
		t.Fatalf("expected one sleep, got %d", len(*slept))
	}
}
