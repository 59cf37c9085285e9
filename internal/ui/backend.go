package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/susum/internal/backend"
	"github.com/atomicstack/susum/internal/logging"
)

// waitForLoad blocks on the loader's channel. It is armed once; after the
// result arrives nothing re-arms it.
func waitForLoad(l *backend.Loader) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-l.Results()
		if !ok {
			return loaderDoneMsg{}
		}
		return instancesLoadedMsg{result: res}
	}
}

type instancesLoadedMsg struct {
	result backend.Result
}

type loaderDoneMsg struct{}

func (m *Model) handleInstancesLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(instancesLoadedMsg)
	if !ok {
		return nil
	}
	if err := m.session.Load(loaded.result.Records, loaded.result.Err); err != nil {
		logging.Error(fmt.Errorf("apply load result: %w", err))
	}
	return nil
}

func (m *Model) handleLoaderDoneMsg(tea.Msg) tea.Cmd {
	m.loader = nil
	return nil
}
