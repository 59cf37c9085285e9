package ui

import (
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/susum/internal/backend"
	"github.com/atomicstack/susum/internal/logging/events"
	"github.com/atomicstack/susum/internal/theme"
	uistate "github.com/atomicstack/susum/internal/ui/state"
)

// tickInterval drives the throbber at roughly 60 frames per second.
const tickInterval = time.Second / 60

var throbber = spinner.Spinner{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    tickInterval,
}

type msgHandler func(tea.Msg) tea.Cmd

// Model implements the Bubble Tea model for the instance picker.
type Model struct {
	session  *uistate.Session
	loader   *backend.Loader
	viewport uistate.Viewport

	spinner spinner.Model
	cursor  cursor.Model
	help    help.Model
	keys    keyMap
	styles  *theme.Styles

	width      int
	height     int
	showFooter bool

	handlers map[reflect.Type]msgHandler
}

// NewModel wires a session to the loader that will complete it. loader may
// be nil, in which case the session only changes through key input.
func NewModel(session *uistate.Session, loader *backend.Loader, showFooter bool) *Model {
	if session == nil {
		session = uistate.NewSession(0, false, "")
	}
	m := &Model{
		session:    session,
		loader:     loader,
		keys:       defaultKeyMap(),
		help:       help.New(),
		showFooter: showFooter,
	}
	m.SetStyles(theme.Default())
	m.registerHandlers()
	return m
}

// SetStyles replaces the style set. Tests use theme.Plain for stable output.
func (m *Model) SetStyles(styles *theme.Styles) {
	if styles == nil {
		styles = theme.Default()
	}
	m.styles = styles

	s := spinner.New(spinner.WithSpinner(throbber))
	if styles.Spinner != nil {
		s.Style = *styles.Spinner
	}
	m.spinner = s

	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = *styles.Cursor
	}
	if styles.Query != nil {
		c.TextStyle = *styles.Query
	}
	c.SetChar(" ")
	c.SetMode(cursor.CursorStatic)
	m.cursor = c

	if styles.Footer != nil {
		m.help.Styles.ShortKey = *styles.Footer
		m.help.Styles.ShortDesc = *styles.Footer
		m.help.Styles.ShortSeparator = *styles.Footer
	}
}

// Session exposes the picker state, chiefly so the caller can read the exit
// action once the program stops.
func (m *Model) Session() *uistate.Session {
	return m.session
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.loader != nil {
		cmds = append(cmds, waitForLoad(m.loader))
	}
	if cmd := m.cursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 3)
	if cmd := m.updateCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):         m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):  m.handleWindowSizeMsg,
		reflect.TypeOf(spinner.TickMsg{}):    m.handleTickMsg,
		reflect.TypeOf(instancesLoadedMsg{}): m.handleInstancesLoadedMsg,
		reflect.TypeOf(loaderDoneMsg{}):      m.handleLoaderDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// finishUpdate keeps the viewport on the selection and stops the program
// once the session has stopped running.
func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	m.syncViewport()
	if !m.session.Running() {
		return tea.Quit
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.width = size.Width
	m.height = size.Height
	m.help.Width = size.Width
	events.UI.Resize(size.Width, size.Height)
	return nil
}

func (m *Model) handleTickMsg(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(tick)
	return cmd
}

func (m *Model) syncViewport() {
	idx, ok := m.session.Selected()
	if !ok {
		idx = -1
	}
	m.viewport.Follow(idx, m.session.Len(), m.maxVisibleRows())
}
