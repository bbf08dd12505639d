// Package config loads server configuration from the environment.
//
// Every setting has an environment variable; the Gmail adapter activates
// when OAuth credentials are present, the PostgreSQL adapter when a
// password is present. Missing backend credentials are not an error:
// the server starts with the corresponding adapter disabled.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidPort indicates the HTTP listen port is out of range.
	ErrInvalidPort = errors.New("invalid HTTP port")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPoolLimits indicates the PostgreSQL pool settings are unusable.
	ErrInvalidPoolLimits = errors.New("invalid PostgreSQL pool limits")
)

// RedirectURIOutOfBand is the default OAuth redirect for manual code entry.
const RedirectURIOutOfBand = "urn:ietf:wg:oauth:2.0:oob"

// Config stores the full server configuration.
// Sensitive fields are masked by String(); see MarshalJSON.
type Config struct {
	Host   string `mapstructure:"host" json:"host"`
	Port   int    `mapstructure:"port" json:"port"`
	APIKey string `mapstructure:"api_key" json:"api_key"` // SENSITIVE: masked in MarshalJSON

	GmailClientID     string `mapstructure:"gmail_client_id" json:"gmail_client_id"`
	GmailClientSecret string `mapstructure:"gmail_client_secret" json:"gmail_client_secret"` // SENSITIVE: masked in MarshalJSON
	GmailRedirectURI  string `mapstructure:"gmail_redirect_uri" json:"gmail_redirect_uri"`
	GmailRefreshToken string `mapstructure:"gmail_refresh_token" json:"gmail_refresh_token"` // SENSITIVE: masked in MarshalJSON

	PostgresHost           string        `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort           int           `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresDatabase       string        `mapstructure:"postgres_database" json:"postgres_database"`
	PostgresUser           string        `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword       string        `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresSSL            bool          `mapstructure:"postgres_ssl" json:"postgres_ssl"`
	PostgresMaxConns       int32         `mapstructure:"postgres_max_connections" json:"postgres_max_connections"`
	PostgresIdleTimeout    time.Duration `mapstructure:"postgres_idle_timeout" json:"postgres_idle_timeout"`
	PostgresConnectTimeout time.Duration `mapstructure:"postgres_connect_timeout" json:"postgres_connect_timeout"`
}

// Load reads configuration from environment variables, applying defaults
// and validating the result.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 3000)

	v.SetDefault("gmail_redirect_uri", RedirectURIOutOfBand)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_database", "postgres")
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_ssl", false)
	v.SetDefault("postgres_max_connections", 10)
	v.SetDefault("postgres_idle_timeout", "30s")
	v.SetDefault("postgres_connect_timeout", "2s")
}

// bindEnvVariables binds every configuration key to its environment variable.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded key pairs cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("host", "HOST")
	mustBind("port", "PORT")
	mustBind("api_key", "API_KEY")

	mustBind("gmail_client_id", "GMAIL_CLIENT_ID")
	mustBind("gmail_client_secret", "GMAIL_CLIENT_SECRET")
	mustBind("gmail_redirect_uri", "GMAIL_REDIRECT_URI")
	mustBind("gmail_refresh_token", "GMAIL_REFRESH_TOKEN")

	mustBind("postgres_host", "POSTGRES_HOST")
	mustBind("postgres_port", "POSTGRES_PORT")
	mustBind("postgres_database", "POSTGRES_DATABASE")
	mustBind("postgres_user", "POSTGRES_USER")
	mustBind("postgres_password", "POSTGRES_PASSWORD")
	mustBind("postgres_ssl", "POSTGRES_SSL")
	mustBind("postgres_max_connections", "POSTGRES_MAX_CONNECTIONS")
	mustBind("postgres_idle_timeout", "POSTGRES_IDLE_TIMEOUT")
	mustBind("postgres_connect_timeout", "POSTGRES_CONNECT_TIMEOUT")
}

// Validate checks ports and pool limits, returning a sentinel error on failure.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresMaxConns < 1 {
		return fmt.Errorf("%w: max_connections %d", ErrInvalidPoolLimits, c.PostgresMaxConns)
	}
	if c.PostgresIdleTimeout <= 0 {
		return fmt.Errorf("%w: idle timeout %s", ErrInvalidPoolLimits, c.PostgresIdleTimeout)
	}
	if c.PostgresConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect timeout %s", ErrInvalidPoolLimits, c.PostgresConnectTimeout)
	}
	return nil
}

// GmailConfigured reports whether the Gmail OAuth client credentials are set.
func (c *Config) GmailConfigured() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != ""
}

// PostgresConfigured reports whether the PostgreSQL adapter should activate.
func (c *Config) PostgresConfigured() bool {
	return c.PostgresPassword != ""
}

// ListenAddr returns the host:port pair for the HTTP listener.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

const maskedValue = "********"

// maskSecret masks a secret for safe logging. Short secrets are fully
// masked; longer ones keep the first and last two characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + maskedValue + s[len(s)-2:]
}

// MarshalJSON masks sensitive fields. Update it when adding secrets.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.APIKey = maskSecret(a.APIKey)
	a.GmailClientSecret = maskSecret(a.GmailClientSecret)
	a.GmailRefreshToken = maskSecret(a.GmailRefreshToken)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
