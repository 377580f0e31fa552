package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config holds all runtime settings. Values are resolved in order of
// precedence: environment variables, then the optional YAML config file,
// then struct defaults.
type Config struct {
	DataDirectory           string `koanf:"data_directory" default:"./data"`
	ExportDirectory         string `koanf:"export_directory" default:"."`
	ServerHost              string `koanf:"server_host" default:"127.0.0.1"`
	ServerPort              int    `koanf:"server_port" default:"4271"`
	LibraryID               string `koanf:"library_id" default:"LIB001"`
	SyncURL                 string `koanf:"sync_url"`
	SyncIntervalMinutes     int    `koanf:"sync_interval_minutes" default:"30"`
	SyncStartupDelaySeconds int    `koanf:"sync_startup_delay_seconds" default:"60"`
	SyncTimeoutSeconds      int    `koanf:"sync_timeout_seconds" default:"10"`
	JWTSecret               string `koanf:"jwt_secret"`

	Hostname string `koanf:"-"`
}

const configFileENV = "CONFIG_FILE"

// New loads the configuration from the config file and environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = "./config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file: %s", configFile)
		}
	}

	// Environment variables override the file: SERVER_PORT -> server_port.
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname

	// Sessions don't survive a restart without a configured secret, which
	// is acceptable for a single-admin desktop deployment.
	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
	}

	return cfg, nil
}

// NewForTest returns a config suitable for unit tests. The data directory
// is left empty so tests can point it at a temp dir.
func NewForTest() *Config {
	return &Config{
		ExportDirectory:         ".",
		ServerHost:              "127.0.0.1",
		LibraryID:               "LIB001",
		SyncIntervalMinutes:     30,
		SyncStartupDelaySeconds: 60,
		SyncTimeoutSeconds:      10,
		JWTSecret:               "test-jwt-secret",
		Hostname:                "test",
	}
}

// SyncInterval returns the interval between remote sync runs.
func (cfg *Config) SyncInterval() time.Duration {
	return time.Duration(cfg.SyncIntervalMinutes) * time.Minute
}

// SyncStartupDelay returns the delay before the first sync after boot.
func (cfg *Config) SyncStartupDelay() time.Duration {
	return time.Duration(cfg.SyncStartupDelaySeconds) * time.Second
}

// SyncTimeout returns the per-request timeout for sync calls.
func (cfg *Config) SyncTimeout() time.Duration {
	return time.Duration(cfg.SyncTimeoutSeconds) * time.Second
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.WithStack(err)
	}
	return hex.EncodeToString(buf), nil
}
