package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/susum/internal/app"
	"github.com/atomicstack/susum/internal/ports"
	"github.com/atomicstack/susum/internal/ssm"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	// File is the config file that was read, empty when none was found.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envConfig       = "SUSUM_CONFIG"
	envPorts        = "SUSUM_PORTS"
	envRemotePort   = "SUSUM_REMOTE_PORT"
	envDocument     = "SUSUM_DOCUMENT"
	envAWSBinary    = "SUSUM_AWS_BINARY"
	envRegion       = "SUSUM_REGION"
	envWaitAttempts = "SUSUM_WAIT_ATTEMPTS"
	envWaitInterval = "SUSUM_WAIT_INTERVAL"
	envShowFooter   = "SUSUM_FOOTER"
	envTrace        = "SUSUM_TRACE"
	envLogFile      = "SUSUM_LOG_FILE"
	envAWSProfile   = "AWS_PROFILE"
)

// fileConfig mirrors the YAML document. Pointer fields distinguish unset
// keys from zero values.
type fileConfig struct {
	Ports        []int   `yaml:"ports"`
	RemotePort   *int    `yaml:"remote-port"`
	Document     *string `yaml:"document"`
	AWSBinary    *string `yaml:"aws-binary"`
	Region       *string `yaml:"region"`
	WaitAttempts *int    `yaml:"wait-attempts"`
	WaitInterval *string `yaml:"wait-interval"`
	Footer       *bool   `yaml:"footer"`
	Trace        *bool   `yaml:"trace"`
	LogFile      *string `yaml:"log-file"`
}

// Load parses configuration from CLI arguments, environment variables and
// the optional config file.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

func newFlagSet(out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("susum", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.IntSlice("ports", append([]int(nil), ports.DefaultCandidates...), "candidate local ports, in order of preference")
	fs.Int("remote-port", ssm.DefaultRemotePort, "port on the instance to forward to")
	fs.String("document", ssm.DefaultDocumentName, "SSM document used for the session")
	fs.String("aws-binary", ssm.DefaultBinary, "path to the aws CLI")
	fs.String("region", "", "AWS region (defaults to the SDK chain, then ap-southeast-2)")
	fs.Int("wait-attempts", ports.DefaultAttempts, "bind attempts while waiting for the port to be released")
	fs.Duration("wait-interval", ports.DefaultInterval, "delay between release attempts")
	fs.Bool("footer", false, "show the key help footer")
	fs.Bool("trace", false, "enable verbose JSON trace logging")
	fs.String("log-file", "", "path to the log file")
	fs.String("config", "", "path to a YAML config file")
	return fs
}

// Usage returns the flag help text.
func Usage() string {
	return newFlagSet(io.Discard).FlagUsages()
}

// LoadArgs allows tests to supply specific args/environment. Sources are
// layered as defaults, config file, environment, then flags.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := newFlagSet(new(strings.Builder))
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			Ports:        append([]int(nil), ports.DefaultCandidates...),
			RemotePort:   ssm.DefaultRemotePort,
			Document:     ssm.DefaultDocumentName,
			AWSBinary:    ssm.DefaultBinary,
			WaitAttempts: ports.DefaultAttempts,
			WaitInterval: ports.DefaultInterval,
			Profile:      env[envAWSProfile],
		},
		Args: append([]string(nil), args...),
	}

	path, explicit := configPath(fs, env)
	if path != "" {
		loaded, err := readFile(path, explicit)
		if err != nil {
			return Config{}, err
		}
		if loaded != nil {
			if err := applyFile(&cfg, loaded); err != nil {
				return Config{}, fmt.Errorf("config file %s: %w", path, err)
			}
			cfg.File = path
		}
	}

	applyEnv(&cfg, env)
	if err := applyFlags(&cfg, fs); err != nil {
		return Config{}, err
	}

	cfg.Flags = map[string]string{
		"ports":        joinInts(cfg.App.Ports),
		"remotePort":   strconv.Itoa(cfg.App.RemotePort),
		"document":     cfg.App.Document,
		"awsBinary":    cfg.App.AWSBinary,
		"region":       cfg.App.Region,
		"waitAttempts": strconv.Itoa(cfg.App.WaitAttempts),
		"waitInterval": cfg.App.WaitInterval.String(),
		"footer":       strconv.FormatBool(cfg.App.ShowFooter),
		"trace":        strconv.FormatBool(cfg.Logging.Trace),
		"logFile":      cfg.Logging.FilePath,
		"config":       cfg.File,
	}
	return cfg, nil
}

// configPath picks the file to read. explicit reports whether the user named
// it, in which case a missing file is an error.
func configPath(fs *pflag.FlagSet, env map[string]string) (string, bool) {
	if fs.Changed("config") {
		v, _ := fs.GetString("config")
		return v, true
	}
	if v := strings.TrimSpace(env[envConfig]); v != "" {
		return v, true
	}
	base := env["XDG_CONFIG_HOME"]
	if base == "" {
		home := env["HOME"]
		if home == "" {
			return "", false
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "susum", "config.yaml"), false
}

func readFile(path string, explicit bool) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func applyFile(cfg *Config, fc *fileConfig) error {
	if fc.Ports != nil {
		cfg.App.Ports = append([]int(nil), fc.Ports...)
	}
	if fc.RemotePort != nil {
		cfg.App.RemotePort = *fc.RemotePort
	}
	if fc.Document != nil {
		cfg.App.Document = *fc.Document
	}
	if fc.AWSBinary != nil {
		cfg.App.AWSBinary = *fc.AWSBinary
	}
	if fc.Region != nil {
		cfg.App.Region = *fc.Region
	}
	if fc.WaitAttempts != nil {
		cfg.App.WaitAttempts = *fc.WaitAttempts
	}
	if fc.WaitInterval != nil {
		d, err := time.ParseDuration(*fc.WaitInterval)
		if err != nil {
			return fmt.Errorf("wait-interval: %w", err)
		}
		cfg.App.WaitInterval = d
	}
	if fc.Footer != nil {
		cfg.App.ShowFooter = *fc.Footer
	}
	if fc.Trace != nil {
		cfg.Logging.Trace = *fc.Trace
	}
	if fc.LogFile != nil {
		cfg.Logging.FilePath = *fc.LogFile
	}
	return nil
}

func applyEnv(cfg *Config, env map[string]string) {
	cfg.App.Ports = envOrInts(env, envPorts, cfg.App.Ports)
	cfg.App.RemotePort = envOrInt(env, envRemotePort, cfg.App.RemotePort)
	cfg.App.Document = envOrDefault(env, envDocument, cfg.App.Document)
	cfg.App.AWSBinary = envOrDefault(env, envAWSBinary, cfg.App.AWSBinary)
	cfg.App.Region = envOrDefault(env, envRegion, cfg.App.Region)
	cfg.App.WaitAttempts = envOrInt(env, envWaitAttempts, cfg.App.WaitAttempts)
	cfg.App.WaitInterval = envOrDuration(env, envWaitInterval, cfg.App.WaitInterval)
	cfg.App.ShowFooter = envOrBool(env, envShowFooter, cfg.App.ShowFooter)
	cfg.Logging.Trace = envOrBool(env, envTrace, cfg.Logging.Trace)
	cfg.Logging.FilePath = envOrDefault(env, envLogFile, cfg.Logging.FilePath)
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	changed := func(name string) bool { return err == nil && fs.Changed(name) }
	if changed("ports") {
		cfg.App.Ports, err = fs.GetIntSlice("ports")
	}
	if changed("remote-port") {
		cfg.App.RemotePort, err = fs.GetInt("remote-port")
	}
	if changed("document") {
		cfg.App.Document, err = fs.GetString("document")
	}
	if changed("aws-binary") {
		cfg.App.AWSBinary, err = fs.GetString("aws-binary")
	}
	if changed("region") {
		cfg.App.Region, err = fs.GetString("region")
	}
	if changed("wait-attempts") {
		cfg.App.WaitAttempts, err = fs.GetInt("wait-attempts")
	}
	if changed("wait-interval") {
		cfg.App.WaitInterval, err = fs.GetDuration("wait-interval")
	}
	if changed("footer") {
		cfg.App.ShowFooter, err = fs.GetBool("footer")
	}
	if changed("trace") {
		cfg.Logging.Trace, err = fs.GetBool("trace")
	}
	if changed("log-file") {
		cfg.Logging.FilePath, err = fs.GetString("log-file")
	}
	return err
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrInts(env map[string]string, key string, fallback []int) []int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	fields := strings.Split(v, ",")
	out := make([]int, 0, len(fields))
	for _, field := range fields {
		parsed, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return fallback
		}
		out = append(out, parsed)
	}
	return out
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintf(os.Stdout, "Usage: susum [flags]\n\n%s", Usage())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects settings the application cannot run with.
func Validate(cfg Config) error {
	if len(cfg.App.Ports) == 0 {
		return errors.New("at least one candidate port is required")
	}
	for _, p := range cfg.App.Ports {
		if !validPort(p) {
			return fmt.Errorf("candidate port must be within 1-65535 (got %d)", p)
		}
	}
	if !validPort(cfg.App.RemotePort) {
		return fmt.Errorf("remote port must be within 1-65535 (got %d)", cfg.App.RemotePort)
	}
	if cfg.App.WaitAttempts < 1 {
		return fmt.Errorf("wait attempts must be >= 1 (got %d)", cfg.App.WaitAttempts)
	}
	if cfg.App.WaitInterval < 0 {
		return fmt.Errorf("wait interval must be >= 0 (got %s)", cfg.App.WaitInterval)
	}
	if strings.TrimSpace(cfg.App.AWSBinary) == "" {
		return errors.New("aws binary must not be empty")
	}
	if strings.TrimSpace(cfg.App.Document) == "" {
		return errors.New("document name must not be empty")
	}
	return nil
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}
