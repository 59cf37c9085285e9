package state

import (
	"errors"

	"github.com/atomicstack/susum/internal/instance"
)

// ErrAlreadyLoaded is returned when a load result arrives after the session
// has already left the pending state.
var ErrAlreadyLoaded = errors.New("instances already loaded")

// DefaultProfile is shown when no AWS profile is active.
const DefaultProfile = "NOT SET"

// LoadStatus is one of Pending, Loaded or Failed.
type LoadStatus interface {
	isLoadStatus()
}

// Pending means the directory lookup has not reported back yet.
type Pending struct{}

// Loaded holds the records returned by a successful lookup.
type Loaded struct {
	Records []instance.Record
}

// Failed holds the verbatim description of a failed lookup.
type Failed struct {
	Reason string
}

func (Pending) isLoadStatus() {}
func (Loaded) isLoadStatus()  {}
func (Failed) isLoadStatus()  {}

// ExitAction decides what happens once the event loop stops.
type ExitAction int

const (
	Continue ExitAction = iota
	Quit
	QuitAndConnect
)

func (a ExitAction) String() string {
	switch a {
	case Continue:
		return "continue"
	case Quit:
		return "quit"
	case QuitAndConnect:
		return "quit-and-connect"
	default:
		return "unknown"
	}
}

// Session is the picker state driven by the event loop. It has a single
// writer and is not safe for concurrent use.
type Session struct {
	query     []rune
	status    LoadStatus
	filtered  []instance.Record
	selection int
	port      int
	hasPort   bool
	profile   string
	running   bool
	action    ExitAction
}

// NewSession creates a pending session. port is only recorded when ok is
// true; an empty profile falls back to DefaultProfile.
func NewSession(port int, ok bool, profile string) *Session {
	if profile == "" {
		profile = DefaultProfile
	}
	s := &Session{
		status:    Pending{},
		selection: -1,
		profile:   profile,
		running:   true,
		action:    Continue,
	}
	if ok {
		s.port = port
		s.hasPort = true
	}
	return s
}

// Query returns the current search text.
func (s *Session) Query() string {
	return string(s.query)
}

// Status returns the load status.
func (s *Session) Status() LoadStatus {
	return s.status
}

// Filtered returns the records currently matching the query.
func (s *Session) Filtered() []instance.Record {
	return instance.Clone(s.filtered)
}

// Len reports the size of the filtered view.
func (s *Session) Len() int {
	return len(s.filtered)
}

// Selected returns the selection index, or false when nothing is selected.
func (s *Session) Selected() (int, bool) {
	if s.selection < 0 || s.selection >= len(s.filtered) {
		return 0, false
	}
	return s.selection, true
}

// SelectedRecord returns the record under the selection.
func (s *Session) SelectedRecord() (instance.Record, bool) {
	idx, ok := s.Selected()
	if !ok {
		return instance.Record{}, false
	}
	return s.filtered[idx], true
}

// Port returns the reserved local port, if one was found at startup.
func (s *Session) Port() (int, bool) {
	return s.port, s.hasPort
}

// Profile returns the display label for the active AWS profile.
func (s *Session) Profile() string {
	return s.profile
}

// Running reports whether the event loop should keep going.
func (s *Session) Running() bool {
	return s.running
}

// ExitAction returns the requested post-loop behaviour.
func (s *Session) ExitAction() ExitAction {
	return s.action
}

// Load applies the one-time lookup outcome. A nil err yields Loaded, any
// other value Failed with err's text. Calling Load twice is a bug; the
// second call is rejected with ErrAlreadyLoaded and changes nothing.
func (s *Session) Load(records []instance.Record, err error) error {
	if _, pending := s.status.(Pending); !pending {
		return ErrAlreadyLoaded
	}
	if err != nil {
		s.status = Failed{Reason: err.Error()}
	} else {
		s.status = Loaded{Records: instance.Clone(records)}
	}
	s.recompute()
	return nil
}

// PushChar appends r to the query and refilters.
func (s *Session) PushChar(r rune) {
	s.query = append(s.query, r)
	s.recompute()
}

// Backspace removes the last rune of the query. It reports false, without
// refiltering, when the query is already empty.
func (s *Session) Backspace() bool {
	if len(s.query) == 0 {
		return false
	}
	s.query = s.query[:len(s.query)-1]
	s.recompute()
	return true
}

// ScrollUp moves the selection one row up and reports whether it moved.
func (s *Session) ScrollUp() bool {
	idx, ok := s.Selected()
	if !ok || idx == 0 {
		return false
	}
	s.selection = idx - 1
	return true
}

// ScrollDown moves the selection one row down and reports whether it moved.
func (s *Session) ScrollDown() bool {
	idx, ok := s.Selected()
	if !ok || idx >= len(s.filtered)-1 {
		return false
	}
	s.selection = idx + 1
	return true
}

// Quit stops the loop without connecting.
func (s *Session) Quit() {
	s.running = false
	s.action = Quit
}

// Confirm stops the loop and requests a connection to the selected record.
// Without a selection it does nothing and reports false.
func (s *Session) Confirm() bool {
	if _, ok := s.Selected(); !ok {
		return false
	}
	s.running = false
	s.action = QuitAndConnect
	return true
}

// recompute rebuilds the filtered view and resets the selection to the
// first row, even when the view is unchanged.
func (s *Session) recompute() {
	loaded, ok := s.status.(Loaded)
	if !ok {
		s.filtered = nil
		s.selection = -1
		return
	}
	s.filtered = FilterRecords(loaded.Records, string(s.query))
	if len(s.filtered) == 0 {
		s.selection = -1
		return
	}
	s.selection = 0
}
