package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/azdash-dev/azdash/pkg/types"
)

// Config is the dashboard configuration file plus environment overrides.
type Config struct {
	Organization  string                  `toml:"organization"`
	BaseURL       string                  `toml:"base_url"`
	Credential    string                  `toml:"credential"`
	Listen        string                  `toml:"listen"`
	DBPath        string                  `toml:"db_path"`
	HelperCommand []string                `toml:"helper_command"`
	GraceSeconds  int                     `toml:"helper_grace_seconds"`
	Selectors     []types.ProjectSelector `toml:"selectors"`
	PinnedAuthors []string                `toml:"pinned_authors"`
	ConfigPath    string                  `toml:"-"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "azdash", "config.toml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "azdash", "settings.db")
}

// loadConfig reads the TOML config file (when present) and applies
// environment overrides. The AZDASH_PAT variable is the lowest-precedence
// credential source.
func loadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		Listen: ":8080",
		DBPath: defaultDBPath(),
	}

	if configPath == "" {
		configPath = defaultConfigPath()
	}
	cfg.ConfigPath = configPath

	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.Organization == "" {
		cfg.Organization = os.Getenv("AZDASH_ORG")
	}
	if cfg.Credential == "" {
		cfg.Credential = os.Getenv("AZDASH_PAT")
	}

	if cfg.Organization == "" {
		return nil, fmt.Errorf("no organization configured (set organization in %s or AZDASH_ORG)", configPath)
	}
	return cfg, nil
}
