package ui

import (
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/susum/internal/logging/events"
)

func (m *Model) updateCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.cursor, cmd = m.cursor.Update(msg)
	return cmd
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	events.UI.Key(keyMsg.String())
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.session.Quit()
		events.Session.Quit(keyMsg.String())
	case key.Matches(keyMsg, m.keys.Connect):
		m.confirm()
	case key.Matches(keyMsg, m.keys.Up):
		if m.session.ScrollUp() {
			m.traceCursor()
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.session.ScrollDown() {
			m.traceCursor()
		}
	case key.Matches(keyMsg, m.keys.Backspace):
		if m.session.Backspace() {
			events.Filter.Backspace(m.session.Query(), m.session.Len())
		}
	default:
		m.handleTextInput(keyMsg)
	}
	return nil
}

func (m *Model) confirm() {
	record, ok := m.session.SelectedRecord()
	if !m.session.Confirm() || !ok {
		return
	}
	port, _ := m.session.Port()
	events.Session.Connect(record.ID(), record.Label(), port)
}

// handleTextInput appends printable runes to the query. Alt chords and
// control characters are ignored.
func (m *Model) handleTextInput(msg tea.KeyMsg) bool {
	var runes []rune
	switch msg.Type {
	case tea.KeySpace:
		runes = []rune{' '}
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false
			}
		}
		runes = msg.Runes
	default:
		return false
	}
	for _, r := range runes {
		m.session.PushChar(r)
	}
	events.Filter.Append(m.session.Query(), m.session.Len())
	return true
}

func (m *Model) traceCursor() {
	idx, _ := m.session.Selected()
	events.UI.Cursor(idx, m.session.Len())
}
