package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	Environment string         `yaml:"environment"`
	HTTP        HTTPConfig     `yaml:"http"`
	Auth        AuthConfig     `yaml:"auth"`
	Store       StoreConfig    `yaml:"store"`
	Denylist    DenylistConfig `yaml:"denylist"`
	Mail        MailConfig     `yaml:"mail"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// AuthConfig holds token secrets and the OAuth provider credentials.
// Secrets are base64-encoded 32-byte keys; when absent or malformed a
// fixed default key is used and a warning logged.
type AuthConfig struct {
	AccessSecret  string         `yaml:"accessSecret"`
	RefreshSecret string         `yaml:"refreshSecret"`
	Google        ProviderConfig `yaml:"google"`
	GitHub        ProviderConfig `yaml:"github"`
}

// ProviderConfig identifies the app to one OAuth provider.
type ProviderConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURL  string `yaml:"redirectUrl"`
}

// StoreConfig selects and configures the persistence adapter.
type StoreConfig struct {
	Adapter    string         `yaml:"adapter"`
	SQLitePath string         `yaml:"sqlitePath"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// DenylistConfig enables the Valkey cache in front of the SQL denylist.
type DenylistConfig struct {
	ValkeyEnabled bool   `yaml:"valkeyEnabled"`
	ValkeyAddr    string `yaml:"valkeyAddr"`
}

// MailConfig configures the SMTP notifier used by the reset flow.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Adapter names accepted by StoreConfig.
const (
	AdapterLocal  = "local"
	AdapterRemote = "remote"
	AdapterMemory = "memory"
)

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Production reports whether the service should set Secure cookies.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("ACCESS_SECRET_KEY"); v != "" {
		cfg.Auth.AccessSecret = v
	}
	if v := os.Getenv("REFRESH_SECRET_KEY"); v != "" {
		cfg.Auth.RefreshSecret = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.Google.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REDIRECT_URL"); v != "" {
		cfg.Auth.Google.RedirectURL = v
	}
	if v := os.Getenv("GITHUB_CLIENT_ID"); v != "" {
		cfg.Auth.GitHub.ClientID = v
	}
	if v := os.Getenv("GITHUB_CLIENT_SECRET"); v != "" {
		cfg.Auth.GitHub.ClientSecret = v
	}
	if v := os.Getenv("GITHUB_REDIRECT_URL"); v != "" {
		cfg.Auth.GitHub.RedirectURL = v
	}
	if v := os.Getenv("DB_ADAPTER"); v != "" {
		cfg.Store.Adapter = v
	}
	if v := os.Getenv("DB_URI"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Store.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Store.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Store.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Denylist.ValkeyEnabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Denylist.ValkeyAddr = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Mail.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Mail.Port = parsed
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Mail.Username = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		cfg.Mail.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.Mail.From = v
	}
}

func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		HTTP: HTTPConfig{
			Address:        ":1234",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
			AllowedOrigins: []string{"http://127.0.0.1:8080", "http://localhost:8080"},
		},
		Store: StoreConfig{
			Adapter:    AdapterLocal,
			SQLitePath: "visitauth-dev.sqlite",
			Postgres: PostgresConfig{
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Mail: MailConfig{
			Port: 465,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.Store.Adapter {
	case AdapterLocal:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlitePath cannot be empty with the local adapter")
		}
	case AdapterRemote:
		if strings.TrimSpace(c.Store.Postgres.DSN) == "" {
			return errors.New("store.postgres.dsn cannot be empty with the remote adapter")
		}
	case AdapterMemory:
	default:
		return fmt.Errorf("store.adapter %q is not valid, use %q, %q or %q",
			c.Store.Adapter, AdapterLocal, AdapterRemote, AdapterMemory)
	}
	if c.Denylist.ValkeyEnabled && strings.TrimSpace(c.Denylist.ValkeyAddr) == "" {
		return errors.New("denylist.valkeyAddr cannot be empty when the valkey cache is enabled")
	}
	if c.Mail.Host != "" && c.Mail.From == "" {
		return errors.New("mail.from cannot be empty when mail.host is set")
	}
	return nil
}
