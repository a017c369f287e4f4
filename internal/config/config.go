package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"mediadupfinder/internal/media"
	"mediadupfinder/internal/probe"
)

// Config represents the configuration of mediadupfinder.
type Config struct {
	LogDir     string           `toml:"log_dir"`
	ReportDir  string           `toml:"report_dir"` // empty means next to the log
	HistoryDB  string           `toml:"history_db"` // empty disables run history
	Workers    int              `toml:"workers"`
	Probe      ProbeConfig      `toml:"probe"`
	Extensions ExtensionsConfig `toml:"extensions"`
}

// ProbeConfig configures the external video metadata probe.
type ProbeConfig struct {
	Command string   `toml:"command"`
	Timeout Duration `toml:"timeout"`
}

// ExtensionsConfig lists the extensions classified as media, without dots.
type ExtensionsConfig struct {
	Image []string `toml:"image"`
	Video []string `toml:"video"`
}

// Duration is a time.Duration written as a string such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogDir:    ".",
		HistoryDB: filepath.Join("~", ".mediadupfinder", "history.db"),
		Workers:   1,
		Probe: ProbeConfig{
			Command: probe.DefaultCommand,
			Timeout: Duration{probe.DefaultTimeout},
		},
		Extensions: ExtensionsConfig{
			Image: append([]string{}, media.DefaultImageExtensions...),
			Video: append([]string{}, media.DefaultVideoExtensions...),
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Probe.Timeout.Duration <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %v", c.Probe.Timeout)
	}
	if strings.TrimSpace(c.Probe.Command) == "" {
		return errors.New("probe command must not be empty")
	}
	if len(c.Extensions.Image) == 0 && len(c.Extensions.Video) == 0 {
		return errors.New("no media extensions configured")
	}
	return nil
}

// MediaExtensions builds the extension table used to classify files.
func (c *Config) MediaExtensions() *media.Extensions {
	return media.NewExtensions(c.Extensions.Image, c.Extensions.Video)
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Settings missing from
// the input keep their default values; unknown keys are an error.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config file at path, falling back to the defaults when
// the file does not exist. The result is validated.
func Load(path string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to a new config file at path.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// DefaultPath returns the config file location, checking
// MEDIADUPFINDER_CONFIG first and falling back to
// ~/.mediadupfinder/config.toml.
func DefaultPath() (string, error) {
	if path := os.Getenv("MEDIADUPFINDER_CONFIG"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mediadupfinder", "config.toml"), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
