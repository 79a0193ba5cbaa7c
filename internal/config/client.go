package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the directory name under the user's config dir.
	AppName = "taskapp"

	// TokenFile stores the terminal client's session token.
	TokenFile = "token"

	DefaultServerURL = "http://localhost:8080"
)

// Client holds the terminal client's settings.
type Client struct {
	// ServerURL is the web service base URL.
	ServerURL string

	// Dir is the configuration directory path.
	Dir string

	// LogFile receives diagnostics; empty discards them.
	LogFile string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// LoadClient reads TASKAPP_URL, TASKAPP_CONFIG_DIR, TASKAPP_LOG_FILE and
// LOG_LEVEL.
func LoadClient() *Client {
	c := &Client{
		ServerURL: DefaultServerURL,
		Dir:       DefaultConfigDir(),
		LogLevel:  "info",
	}
	if v := os.Getenv("TASKAPP_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("TASKAPP_CONFIG_DIR"); v != "" {
		c.Dir = v
	}
	if v := os.Getenv("TASKAPP_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return c
}

// DefaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored session token.
func (c *Client) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory with mode 0700.
func (c *Client) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
