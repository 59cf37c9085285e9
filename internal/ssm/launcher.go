// Package ssm hands the terminal over to an AWS Session Manager
// port-forwarding session.
package ssm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/atomicstack/susum/internal/logging/events"
)

const (
	DefaultBinary       = "aws"
	DefaultDocumentName = "AWS-StartPortForwardingSession"
	DefaultRemotePort   = 3389
)

// Launcher runs `aws ssm start-session` with inherited standard streams.
type Launcher struct {
	Binary       string
	DocumentName string
	RemotePort   int
	Region       string
	Profile      string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewLauncher returns a Launcher wired to the process's own streams.
func NewLauncher() *Launcher {
	return &Launcher{
		Binary:       DefaultBinary,
		DocumentName: DefaultDocumentName,
		RemotePort:   DefaultRemotePort,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

type forwardingParameters struct {
	PortNumber      []string `json:"portNumber"`
	LocalPortNumber []string `json:"localPortNumber"`
}

// Args returns the CLI arguments for a session to target that forwards
// localPort to the instance's remote port.
func (l *Launcher) Args(target string, localPort int) ([]string, error) {
	params, err := json.Marshal(forwardingParameters{
		PortNumber:      []string{strconv.Itoa(l.remotePort())},
		LocalPortNumber: []string{strconv.Itoa(localPort)},
	})
	if err != nil {
		return nil, fmt.Errorf("encode session parameters: %w", err)
	}
	document := l.DocumentName
	if document == "" {
		document = DefaultDocumentName
	}
	args := []string{
		"ssm", "start-session",
		"--document-name", document,
		"--parameters", string(params),
		"--target", target,
	}
	if l.Region != "" {
		args = append(args, "--region", l.Region)
	}
	if l.Profile != "" {
		args = append(args, "--profile", l.Profile)
	}
	return args, nil
}

// Command builds the exec.Cmd without starting it.
func (l *Launcher) Command(ctx context.Context, target string, localPort int) (*exec.Cmd, error) {
	args, err := l.Args(target, localPort)
	if err != nil {
		return nil, err
	}
	binary := l.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	return cmd, nil
}

// Launch runs the session to completion. A non-zero exit is reported through
// the returned state, not as an error; only a failure to start is an error.
func (l *Launcher) Launch(ctx context.Context, target string, localPort int) (*os.ProcessState, error) {
	cmd, err := l.Command(ctx, target, localPort)
	if err != nil {
		return nil, err
	}
	events.Session.Launch(cmd.Path, cmd.Args[1:])
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return cmd.ProcessState, fmt.Errorf("wait for %s: %w", cmd.Path, err)
		}
	}
	events.Session.Exited(target, cmd.ProcessState.ExitCode())
	return cmd.ProcessState, nil
}

func (l *Launcher) remotePort() int {
	if l.RemotePort <= 0 {
		return DefaultRemotePort
	}
	return l.RemotePort
}
