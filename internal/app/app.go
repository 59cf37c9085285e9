package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/susum/internal/backend"
	"github.com/atomicstack/susum/internal/inventory"
	"github.com/atomicstack/susum/internal/logging"
	"github.com/atomicstack/susum/internal/logging/events"
	"github.com/atomicstack/susum/internal/ports"
	"github.com/atomicstack/susum/internal/ssm"
	"github.com/atomicstack/susum/internal/ui"
	uistate "github.com/atomicstack/susum/internal/ui/state"
)

// ErrNoFreePort is returned when a connection was requested but none of the
// candidate ports could be bound at startup.
var ErrNoFreePort = errors.New("no free local port to forward to")

// Config describes user-provided application options.
type Config struct {
	Ports        []int
	RemotePort   int
	Document     string
	AWSBinary    string
	Region       string
	Profile      string
	WaitAttempts int
	WaitInterval time.Duration
	ShowFooter   bool
}

// Hooks for tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	runProgram = func(m *ui.Model) (*ui.Model, error) {
		final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stderr)).Run()
		if fm, ok := final.(*ui.Model); ok {
			m = fm
		}
		return m, err
	}

	newFetch = func(cfg Config) backend.FetchFunc {
		return inventory.Client{Region: cfg.Region, Profile: cfg.Profile}.Fetch
	}

	startSession = (*ssm.Launcher).Launch
)

// Run reserves a local port, shows the picker while instances load in the
// background, and hands the terminal to the session for the chosen instance.
func Run(cfg Config) error {
	ctx := context.Background()

	reserver := ports.NewReserver(cfg.Ports)
	if cfg.WaitAttempts > 0 {
		reserver.Attempts = cfg.WaitAttempts
	}
	if cfg.WaitInterval >= 0 {
		reserver.Interval = cfg.WaitInterval
	}
	port, hasPort := reserver.Discover()

	session := uistate.NewSession(port, hasPort, cfg.Profile)
	loader := backend.StartLoader(ctx, newFetch(cfg))
	defer loader.Stop()

	final, err := runProgram(ui.NewModel(session, loader, cfg.ShowFooter))
	if errors.Is(err, tea.ErrProgramKilled) {
		events.App.Exit("killed", 0)
		return nil
	}
	if err != nil {
		return fmt.Errorf("run picker: %w", err)
	}
	if final != nil {
		session = final.Session()
	}

	if session.ExitAction() != uistate.QuitAndConnect {
		events.App.Exit(session.ExitAction().String(), 0)
		return nil
	}
	return connect(ctx, cfg, session, reserver)
}

func connect(ctx context.Context, cfg Config, session *uistate.Session, reserver *ports.Reserver) error {
	port, ok := session.Port()
	if !ok {
		return ErrNoFreePort
	}
	record, ok := session.SelectedRecord()
	if !ok {
		return errors.New("connect requested without a selected instance")
	}

	launcher := ssm.NewLauncher()
	launcher.Binary = cfg.AWSBinary
	launcher.DocumentName = cfg.Document
	launcher.RemotePort = cfg.RemotePort
	launcher.Region = cfg.Region
	launcher.Profile = cfg.Profile

	state, err := startSession(launcher, ctx, record.ID(), port)
	if err != nil {
		return fmt.Errorf("launch session for %s: %w", record.ID(), err)
	}

	if !reserver.WaitFreed(port) {
		logging.Warnf("port %d still bound after session exit", port)
		fmt.Fprintf(stderr, "Warning: port %d was not released after %d attempts\n", port, reserver.Attempts)
	}
	fmt.Fprintf(stdout, "Process exited with status: %s\n", state)
	events.App.Exit(session.ExitAction().String(), 0)
	return nil
}
