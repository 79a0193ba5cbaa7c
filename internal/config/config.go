// Package config loads settings from defaults, an optional TOML file, a .env
// file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// DefaultConfigFile is read from the working directory when present.
	DefaultConfigFile = "taskapp.toml"

	minSecretLength = 32
)

// Config holds everything the web service needs.
type Config struct {
	Backend   Backend   `toml:"-"`
	Server    Server    `toml:"server"`
	Log       Log       `toml:"log"`
	Session   Session   `toml:"session"`
	RateLimit RateLimit `toml:"rate_limit"`
}

// Backend holds the credentials for the database and token signing. They
// only ever come from the environment.
type Backend struct {
	Host      string
	Port      string
	User      string
	Password  string
	Database  string
	JWTSecret string
	SSLMode   string
}

type Server struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	SecureCookies  bool     `toml:"secure_cookies"`
	// TrustProxy makes rate limiting key on X-Forwarded-For. Only enable it
	// behind a proxy that overwrites the header.
	TrustProxy bool `toml:"trust_proxy"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Session struct {
	TTL        duration `toml:"ttl"`
	CookieName string   `toml:"cookie_name"`
}

type RateLimit struct {
	Attempts int      `toml:"attempts"`
	Window   duration `toml:"window"`
}

// duration lets TOML files use strings like "24h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (s Session) Lifetime() time.Duration {
	return s.TTL.Duration
}

func (r RateLimit) WindowLength() time.Duration {
	return r.Window.Duration
}

// Load builds the configuration. A missing .env or TOML file is not an error;
// a malformed one is.
func Load() (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	path := os.Getenv("TASKAPP_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := loadFile(cfg, path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Session.TTL = duration{24 * time.Hour}
	cfg.Session.CookieName = "taskapp_session"
	// max 5 credential attempts per 15 minutes from the same IP
	cfg.RateLimit.Attempts = 5
	cfg.RateLimit.Window = duration{15 * time.Minute}
	cfg.Backend.SSLMode = "disable"
}

func loadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *Config) error {
	cfg.Backend.Host = os.Getenv("POSTGRES_HOST")
	cfg.Backend.Port = os.Getenv("POSTGRES_PORT")
	cfg.Backend.User = os.Getenv("POSTGRES_USER")
	cfg.Backend.Password = os.Getenv("POSTGRES_PASSWORD")
	cfg.Backend.Database = os.Getenv("POSTGRES_DB")
	cfg.Backend.JWTSecret = os.Getenv("JWT_SECRET")
	if v := os.Getenv("POSTGRES_SSLMODE"); v != "" {
		cfg.Backend.SSLMode = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = SplitList(v)
	}
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SECURE_COOKIES: %w", err)
		}
		cfg.Server.SecureCookies = b
	}
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRUST_PROXY: %w", err)
		}
		cfg.Server.TrustProxy = b
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		cfg.Session.TTL = duration{d}
	}
	return nil
}

// SplitList splits a comma separated value and drops empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MissingError lists every required variable that was empty.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Names, ", ")
}

// Validate reports all missing credentials at once, then checks the secret
// length.
func (b Backend) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"POSTGRES_HOST", b.Host},
		{"POSTGRES_PORT", b.Port},
		{"POSTGRES_USER", b.User},
		{"POSTGRES_PASSWORD", b.Password},
		{"POSTGRES_DB", b.Database},
		{"JWT_SECRET", b.JWTSecret},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	if len(b.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	return nil
}

// DSN returns the lib/pq connection string.
func (b Backend) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		b.Host, b.User, b.Password, b.Database, b.Port, b.SSLMode)
}
