package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds driver defaults, loaded from a YAML file and then overridden
// by any command line flags given explicitly.
type Config struct {
	Prompt         string        `yaml:"prompt"`
	ContinuePrompt string        `yaml:"continuePrompt"`
	HistoryFile    string        `yaml:"historyFile"`
	Trace          bool          `yaml:"trace"`
	MaxDepth       int           `yaml:"maxDepth"`
	Timeout        time.Duration `yaml:"timeout"`
	NoColor        bool          `yaml:"noColor"`
}

const defaultConfigName = ".minilisp.yaml"

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Prompt:         "minilisp> ",
		ContinuePrompt: "      ... ",
		HistoryFile:    ".minilisp_history",
	}
}

// LoadConfig reads a YAML config file; fields missing from it keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %v", path)
	}
	return cfg, nil
}

// defaultConfigPath names the config file in the user's home directory, if
// one exists.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, defaultConfigName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// historyPath resolves the history file relative to the user's home
// directory; returns "" if history is disabled.
func (cfg Config) historyPath() string {
	if cfg.HistoryFile == "" || filepath.IsAbs(cfg.HistoryFile) {
		return cfg.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, cfg.HistoryFile)
}
