package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tmaekawa/nippo/cmd/cli/internal/session"
	"github.com/tmaekawa/nippo/internal/api"
)

// DefaultServer is used when neither the flag nor the config file sets one.
const DefaultServer = "http://localhost:8080"

type Globals struct {
	Debug   bool
	Version string
}

// Config is the CLI configuration file at ~/.nippo/config.yaml.
type Config struct {
	Server string `yaml:"server,omitempty"`
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".nippo"), nil
}

// loadConfig reads the config file. A missing file is an empty config.
func loadConfig() (*Config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// saveConfig writes the config file atomically.
func saveConfig(cfg *Config) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	tempPath := configPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tempPath, configPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// resolveServer picks the server URL: flag first, then config file, then the
// default.
func resolveServer(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Server != "" {
		return cfg.Server, nil
	}
	return DefaultServer, nil
}

// openSession restores the saved session from ~/.nippo.
func openSession() (*session.Manager, error) {
	store, err := session.NewStore("")
	if err != nil {
		return nil, err
	}

	manager := session.NewManager(store)
	if err := manager.Restore(); err != nil {
		return nil, err
	}
	return manager, nil
}

// requireSession is the guard in front of every command that talks to a
// protected endpoint: it restores the session and refuses to continue when
// it settles unauthenticated.
func requireSession() (*session.Manager, error) {
	manager, err := openSession()
	if err != nil {
		return nil, err
	}

	if manager.State() != session.StateAuthenticated {
		if err := manager.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("not logged in, run: nippo login")
	}
	return manager, nil
}

// apiClient builds an API client for the resolved server, attaching the
// session token when one is held.
func apiClient(serverFlag, token string) (*api.Client, error) {
	server, err := resolveServer(serverFlag)
	if err != nil {
		return nil, err
	}

	return api.NewClient(api.Config{
		BaseURL: server,
		Token:   token,
		Timeout: 30 * time.Second,
	}), nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
