// Command susum picks a running EC2 instance and opens an SSM
// port-forwarding session to it on a free local port.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/atomicstack/susum/internal/app"
	"github.com/atomicstack/susum/internal/config"
	"github.com/atomicstack/susum/internal/logging"
	"github.com/atomicstack/susum/internal/logging/events"
	"golang.org/x/term"
)

// errNoTerminal is returned when the picker has nowhere to draw.
var errNoTerminal = errors.New("stderr is not a terminal; the picker draws there, so run susum from an interactive shell")

var (
	isTerminal = term.IsTerminal
	getSize    = term.GetSize
)

// terminal is the screen the picker renders to.
type terminal struct {
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	screen, err := probeTerminal(int(os.Stderr.Fd()))
	if err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	events.App.Start(startupPayload(runtimeCfg, screen))

	if err := app.Run(runtimeCfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// probeTerminal requires fd to be a terminal. A failed size query is kept
// for the trace but is not fatal; Bubble Tea re-reads the size itself.
func probeTerminal(fd int) (terminal, error) {
	if fd < 0 || !isTerminal(fd) {
		return terminal{}, errNoTerminal
	}
	width, height, err := getSize(fd)
	if err != nil {
		return terminal{Error: err.Error()}, nil
	}
	return terminal{Width: width, Height: height}, nil
}

func startupPayload(cfg config.Config, screen terminal) map[string]interface{} {
	return map[string]interface{}{
		"argv":       cfg.Args,
		"flags":      cfg.Flags,
		"configFile": cfg.File,
		"awsProfile": cfg.App.Profile,
		"region":     cfg.App.Region,
		"ports":      cfg.App.Ports,
		"trace":      cfg.Logging.Trace,
		"logFile":    cfg.Logging.FilePath,
		"terminal":   screen,
	}
}
