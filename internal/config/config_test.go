package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// isolatedEnv points HOME at an empty directory so no real config file is read.
func isolatedEnv(t *testing.T, extra ...string) []string {
	t.Helper()
	return append([]string{"HOME=" + t.TempDir()}, extra...)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, isolatedEnv(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.App.Ports, []int{3389, 3390}) {
		t.Fatalf("unexpected default ports %v", cfg.App.Ports)
	}
	if cfg.App.RemotePort != 3389 || cfg.App.WaitAttempts != 5 || cfg.App.WaitInterval != time.Second {
		t.Fatalf("unexpected defaults %#v", cfg.App)
	}
	if cfg.App.AWSBinary != "aws" || cfg.App.Document != "AWS-StartPortForwardingSession" {
		t.Fatalf("unexpected launcher defaults %#v", cfg.App)
	}
	if cfg.App.Profile != "" || cfg.App.ShowFooter || cfg.Logging.Trace {
		t.Fatalf("unexpected toggles %#v", cfg)
	}
	if cfg.File != "" {
		t.Fatalf("expected no config file, got %q", cfg.File)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadArgsFlags(t *testing.T) {
	args := []string{"--ports", "4000,4001", "--footer", "--trace", "--log-file", "x.log", "--wait-interval", "250ms", "--region", "eu-west-1"}
	cfg, err := LoadArgs(args, isolatedEnv(t, "AWS_PROFILE=dev"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.App.Ports, []int{4000, 4001}) {
		t.Fatalf("unexpected ports %v", cfg.App.Ports)
	}
	if !cfg.App.ShowFooter || !cfg.Logging.Trace || cfg.Logging.FilePath != "x.log" {
		t.Fatalf("unexpected toggles %#v", cfg)
	}
	if cfg.App.WaitInterval != 250*time.Millisecond || cfg.App.Region != "eu-west-1" {
		t.Fatalf("unexpected values %#v", cfg.App)
	}
	if cfg.App.Profile != "dev" {
		t.Fatalf("expected AWS_PROFILE to be captured, got %q", cfg.App.Profile)
	}
	if cfg.Flags["ports"] != "4000,4001" || cfg.Flags["waitInterval"] != "250ms" {
		t.Fatalf("unexpected flags map %v", cfg.Flags)
	}
	if !reflect.DeepEqual(cfg.Args, args) {
		t.Fatalf("expected args to be captured, got %v", cfg.Args)
	}
}

func TestLoadArgsPrecedence(t *testing.T) {
	path := writeConfig(t, "ports: [5000]\nremote-port: 22\nregion: us-west-2\nwait-attempts: 2\n")
	env := isolatedEnv(t, "SUSUM_CONFIG="+path, "SUSUM_REMOTE_PORT=2222", "SUSUM_WAIT_ATTEMPTS=3")
	cfg, err := LoadArgs([]string{"--wait-attempts", "9"}, env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.File != path {
		t.Fatalf("expected config file %q, got %q", path, cfg.File)
	}
	if !reflect.DeepEqual(cfg.App.Ports, []int{5000}) {
		t.Fatalf("expected file ports, got %v", cfg.App.Ports)
	}
	if cfg.App.Region != "us-west-2" {
		t.Fatalf("expected file region, got %q", cfg.App.Region)
	}
	if cfg.App.RemotePort != 2222 {
		t.Fatalf("expected env to override file, got %d", cfg.App.RemotePort)
	}
	if cfg.App.WaitAttempts != 9 {
		t.Fatalf("expected flag to override env, got %d", cfg.App.WaitAttempts)
	}
}

func TestLoadArgsXDGConfig(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "susum")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("footer: true\nwait-interval: 2s\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadArgs(nil, []string{"XDG_CONFIG_HOME=" + base})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.App.ShowFooter || cfg.App.WaitInterval != 2*time.Second {
		t.Fatalf("expected XDG config to apply, got %#v", cfg.App)
	}
}

func TestLoadArgsMissingExplicitConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := LoadArgs([]string{"--config", missing}, isolatedEnv(t)); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadArgsBadConfig(t *testing.T) {
	path := writeConfig(t, "wait-interval: soon\n")
	if _, err := LoadArgs([]string{"--config", path}, isolatedEnv(t)); err == nil {
		t.Fatalf("expected error for bad duration")
	}
	path = writeConfig(t, "ports: [oops\n")
	if _, err := LoadArgs([]string{"--config", path}, isolatedEnv(t)); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestLoadArgsInvalidEnvFallsBack(t *testing.T) {
	cfg, err := LoadArgs(nil, isolatedEnv(t, "SUSUM_PORTS=3389,abc", "SUSUM_WAIT_ATTEMPTS=many", "SUSUM_FOOTER=maybe"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.App.Ports, []int{3389, 3390}) || cfg.App.WaitAttempts != 5 || cfg.App.ShowFooter {
		t.Fatalf("expected invalid env values to be ignored, got %#v", cfg.App)
	}
}

func TestLoadArgsHelp(t *testing.T) {
	_, err := LoadArgs([]string{"--help"}, isolatedEnv(t))
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("expected ErrHelp, got %v", err)
	}
}

func TestLoadArgsUnknownFlag(t *testing.T) {
	if _, err := LoadArgs([]string{"--bogus"}, isolatedEnv(t)); err == nil {
		t.Fatalf("expected unknown flag error")
	}
}

func TestValidate(t *testing.T) {
	base, err := LoadArgs(nil, isolatedEnv(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no ports", func(c *Config) { c.App.Ports = nil }},
		{"port zero", func(c *Config) { c.App.Ports = []int{0} }},
		{"port too high", func(c *Config) { c.App.Ports = []int{3389, 70000} }},
		{"remote port", func(c *Config) { c.App.RemotePort = -1 }},
		{"attempts", func(c *Config) { c.App.WaitAttempts = 0 }},
		{"interval", func(c *Config) { c.App.WaitInterval = -time.Second }},
		{"binary", func(c *Config) { c.App.AWSBinary = " " }},
		{"document", func(c *Config) { c.App.Document = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			cfg.App.Ports = append([]int(nil), base.App.Ports...)
			tc.mutate(&cfg)
			if err := Validate(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestUsageListsFlags(t *testing.T) {
	usage := Usage()
	for _, name := range []string{"--ports", "--footer", "--config", "--wait-interval"} {
		if !strings.Contains(usage, name) {
			t.Fatalf("expected usage to mention %s", name)
		}
	}
}
