package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/termline/schema"
)

// Config is the top-level configuration for the termline demo host.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	Prompt        string        `mapstructure:"prompt" yaml:"prompt"`
	History       HistoryConfig `mapstructure:"history" yaml:"history"`
	Log           LogConfig     `mapstructure:"log" yaml:"log"`
	SSH           SSHConfig     `mapstructure:"ssh" yaml:"ssh"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// HistoryConfig controls history persistence between sessions.
type HistoryConfig struct {
	File               string `mapstructure:"file" yaml:"file"`
	MaxEntries         int    `mapstructure:"max_entries" yaml:"max_entries"`
	SuppressDuplicates bool   `mapstructure:"suppress_duplicates" yaml:"suppress_duplicates"`
	Encrypt            bool   `mapstructure:"encrypt" yaml:"encrypt"`
	KeyStorePath       string `mapstructure:"key_store_path" yaml:"key_store_path"`
}

// LogConfig controls where and how the demo host logs.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// SSHConfig configures the demo SSH server.
type SSHConfig struct {
	Addr               string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath        string `mapstructure:"host_key_path" yaml:"host_key_path"`
	AuthorizedKeysPath string `mapstructure:"authorized_keys_path" yaml:"authorized_keys_path"`
	MOTD               string `mapstructure:"motd" yaml:"motd"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Prompt:        schema.DefaultPrompt,
		History: HistoryConfig{
			File:               filepath.Join(home, ".termline", "history"),
			MaxEntries:         schema.DefaultHistoryMaxLen,
			SuppressDuplicates: true,
			Encrypt:            false,
			KeyStorePath:       filepath.Join(home, ".termline", "keys.bundle"),
		},
		Log: LogConfig{
			File: "",
			Mode: "console",
		},
		SSH: SSHConfig{
			Addr:               ":2022",
			HostKeyPath:        filepath.Join(home, ".termline", "ssh_host_key"),
			AuthorizedKeysPath: filepath.Join(home, ".termline", "authorized_keys"),
			MOTD:               "termline demo shell. Type 'help' to list commands.",
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".termline", "config.yaml"), nil
}
