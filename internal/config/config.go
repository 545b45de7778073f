package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "NYLAS_BACKEND"

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("nylas-mail-backend version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Nylas   NylasConfig   `mapstructure:"nylas" yaml:"nylas"`
	Webhook WebhookConfig `mapstructure:"webhook" yaml:"webhook"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port"`
	Host            string        `mapstructure:"host" yaml:"host"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins" yaml:"allow_origins"`
	// StrictUnauthorized answers authorization misses with 401 instead of 200.
	StrictUnauthorized bool `mapstructure:"strict_unauthorized" yaml:"strict_unauthorized"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level" yaml:"level"`
	Format            string `mapstructure:"format" yaml:"format"`
	Color             bool   `mapstructure:"color" yaml:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace" yaml:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path" yaml:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file" yaml:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console" yaml:"disable_console"`
}

type NylasConfig struct {
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	APIURL       string `mapstructure:"api_url" yaml:"api_url"`
	// ClientURI is the frontend origin. It is whitelisted as redirect URI and
	// used as the post-auth redirect target.
	ClientURI     string        `mapstructure:"client_uri" yaml:"client_uri"`
	DefaultScopes []string      `mapstructure:"default_scopes" yaml:"default_scopes"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// RateLimit caps outbound provider requests per second; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst"`
}

type WebhookConfig struct {
	TunnelEnabled   bool     `mapstructure:"tunnel_enabled" yaml:"tunnel_enabled"`
	TunnelDomain    string   `mapstructure:"tunnel_domain" yaml:"tunnel_domain"`
	CallbackDomain  string   `mapstructure:"callback_domain" yaml:"callback_domain"`
	Region          string   `mapstructure:"region" yaml:"region"`
	Triggers        []string `mapstructure:"triggers" yaml:"triggers"`
	SubscriberQueue int      `mapstructure:"subscriber_queue" yaml:"subscriber_queue"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// InitFlags registers the command line flags read by Load.
func InitFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a config file")
	flags.Int("port", 9000, "Port the HTTP server listens on")
	flags.String("client-uri", "http://localhost:3000", "Frontend origin whitelisted as redirect URI")
	flags.String("log-level", "info", "Log level (debug|info|warn|error)")
	flags.Bool("no-tunnel", false, "Do not start the development webhook tunnel")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 9000)
	v.SetDefault("server.host", "")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.strict_unauthorized", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
	v.SetDefault("logging.disable_stacktrace", true)
	v.SetDefault("logging.output_path", "")
	v.SetDefault("logging.append_to_file", false)
	v.SetDefault("logging.disable_console", false)

	v.SetDefault("nylas.client_id", "")
	v.SetDefault("nylas.client_secret", "")
	v.SetDefault("nylas.api_url", "https://api.nylas.com")
	v.SetDefault("nylas.client_uri", "http://localhost:3000")
	v.SetDefault("nylas.default_scopes", []string{"email.modify", "email.send"})
	v.SetDefault("nylas.timeout", 30*time.Second)
	v.SetDefault("nylas.rate_limit", 0)
	v.SetDefault("nylas.rate_burst", 1)

	v.SetDefault("webhook.tunnel_enabled", true)
	v.SetDefault("webhook.tunnel_domain", "tunnel.nylas.com")
	v.SetDefault("webhook.callback_domain", "cb.nylas.com")
	v.SetDefault("webhook.region", "us")
	v.SetDefault("webhook.triggers", []string{"account.connected"})
	v.SetDefault("webhook.subscriber_queue", 16)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load builds the configuration from defaults, an optional config file,
// a .env file, environment variables and the given flags, in increasing
// order of precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	configFile := ""
	if flags != nil {
		configFile, _ = flags.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/nylas-mail-backend")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		bindFlag(v, flags, "server.port", "port")
		bindFlag(v, flags, "nylas.client_uri", "client-uri")
		bindFlag(v, flags, "logging.level", "log-level")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if flags != nil {
		if noTunnel, err := flags.GetBool("no-tunnel"); err == nil && noTunnel {
			config.Webhook.TunnelEnabled = false
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// bindFlag lets an explicitly set flag override the key; unset flags keep
// the file/env value instead of their own default.
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if f := flags.Lookup(name); f != nil && f.Changed {
		_ = v.BindPFlag(key, f)
	}
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.Nylas.ClientID == "" {
		return fmt.Errorf("nylas.client_id is required, please adjust the config or set %s_NYLAS_CLIENT_ID", EnvPrefix)
	}
	if c.Nylas.ClientSecret == "" {
		return fmt.Errorf("nylas.client_secret is required, please adjust the config or set %s_NYLAS_CLIENT_SECRET", EnvPrefix)
	}
	if c.Nylas.ClientURI == "" {
		return fmt.Errorf("nylas.client_uri is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Nylas.RateLimit < 0 {
		return fmt.Errorf("nylas.rate_limit must not be negative")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Nylas.ClientSecret != "" {
		c.Nylas.ClientSecret = "<redacted>"
	}
	return c
}
