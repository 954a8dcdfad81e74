package pgstore

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ConfigFromEnv reads POSTGRES_HOST, POSTGRES_PORT, POSTGRES_DB, POSTGRES_USER and
// POSTGRES_PASSWORD, after loading any of the given env files that exist.
func ConfigFromEnv(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Host:            getenv("POSTGRES_HOST", "localhost"),
		Port:            getenv("POSTGRES_PORT", "5432"),
		Database:        getenv("POSTGRES_DB", "whirlpools"),
		Username:        getenv("POSTGRES_USER", "whirlpools"),
		Password:        getenv("POSTGRES_PASSWORD", "whirlpools"),
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("postgres host is required")
	}
	if c.Port == "" {
		return errors.New("postgres port is required")
	}
	if c.Database == "" {
		return errors.New("postgres database is required")
	}
	if c.Username == "" {
		return errors.New("postgres username is required")
	}
	return nil
}

// ConnString returns the postgres:// URI for the config.
func (c *Config) ConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
