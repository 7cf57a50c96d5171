package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"go-smfstream/midifile"
)

// DecoderConfig controls the streaming decoder
type DecoderConfig struct {
	BufferCapacity int  `json:"bufferCapacity,omitempty"` // text/sysex buffer, terminator included
	Debug          bool `json:"debug,omitempty"`          // log format errors to the debug log
	Verbose        bool `json:"verbose,omitempty"`        // log every decoded event
}

// ViewerConfig stores event browser preferences
type ViewerConfig struct {
	Palette      string `json:"palette,omitempty"` // .gpl file; empty uses the built-in palette
	HistoryLines int    `json:"historyLines,omitempty"`
}

// OutputConfig names the MIDI output used for SysEx transfers
type OutputConfig struct {
	PortName string `json:"portName,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Decoder DecoderConfig `json:"decoder"`
	Viewer  ViewerConfig  `json:"viewer"`
	Output  OutputConfig  `json:"output,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Decoder: DecoderConfig{
			BufferCapacity: midifile.DefaultBufferCapacity,
		},
		Viewer: ViewerConfig{
			HistoryLines: 200,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-smfstream"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path, or returns defaults if it doesn't exist.
// Fields missing from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrap(err, "read config")
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DecoderOptions converts the decoder section to midifile options
func (c *Config) DecoderOptions() midifile.Options {
	return midifile.Options{
		BufferCapacity: c.Decoder.BufferCapacity,
		Debug:          c.Decoder.Debug,
		Verbose:        c.Decoder.Verbose,
	}
}

// HistoryLines returns the viewer scrollback, never less than one line
func (c *Config) HistoryLines() int {
	if c.Viewer.HistoryLines < 1 {
		return 1
	}
	return c.Viewer.HistoryLines
}
