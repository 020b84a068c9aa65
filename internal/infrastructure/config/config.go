package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Source   SourceConfig
	Publish  PublishConfig
	Images   ImagesConfig
	Sync     SyncConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
	TrustedProxies  []string
}

// DatabaseConfig holds connection settings for the order database
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for the snapshot store
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds the API keys the portal accepts. Publishing and operator
// endpoints each carry their own key.
type AuthConfig struct {
	CatalogKey  string // accepted for catalog publishes
	LedgerKey   string // accepted for customer ledger publishes
	OperatorKey string // accepted for order status changes
}

// SourceConfig holds connection settings for the ERP source database.
// The password deliberately has no file default; it comes from the
// environment (B2B_SOURCE_PASSWORD) or a secret mount.
type SourceConfig struct {
	Driver         string
	DSN            string
	Password       string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

// PublishConfig holds the portal endpoints the sync agent pushes to.
type PublishConfig struct {
	CatalogURL  string
	LedgerURL   string
	CatalogKey  string
	LedgerKey   string
	Timeout     time.Duration
	PreviewPath string // when set, payloads are also dumped here as JSON
}

// ImagesConfig holds product image resolution settings.
type ImagesConfig struct {
	Dir             string
	SearchURL       string
	DownloadTimeout time.Duration
}

// SyncConfig holds sync agent behavior settings.
type SyncConfig struct {
	PrefsPath string // operator preference file (excluded groups)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with B2B_ prefix (e.g., B2B_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("B2B")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:  v.GetInt("http.max_header_bytes"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			TrustedProxies:  v.GetStringSlice("http.trusted_proxies"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			CatalogKey:  v.GetString("auth.catalog_key"),
			LedgerKey:   v.GetString("auth.ledger_key"),
			OperatorKey: v.GetString("auth.operator_key"),
		},
		Source: SourceConfig{
			Driver:         v.GetString("source.driver"),
			DSN:            v.GetString("source.dsn"),
			Password:       v.GetString("source.password"),
			ConnectTimeout: v.GetDuration("source.connect_timeout"),
			QueryTimeout:   v.GetDuration("source.query_timeout"),
		},
		Publish: PublishConfig{
			CatalogURL:  v.GetString("publish.catalog_url"),
			LedgerURL:   v.GetString("publish.ledger_url"),
			CatalogKey:  v.GetString("publish.catalog_key"),
			LedgerKey:   v.GetString("publish.ledger_key"),
			Timeout:     v.GetDuration("publish.timeout"),
			PreviewPath: v.GetString("publish.preview_path"),
		},
		Images: ImagesConfig{
			Dir:             v.GetString("images.dir"),
			SearchURL:       v.GetString("images.search_url"),
			DownloadTimeout: v.GetDuration("images.download_timeout"),
		},
		Sync: SyncConfig{
			PrefsPath: v.GetString("sync.prefs_path"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "b2b-bridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "b2b"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Source.Driver == "" {
		cfg.Source.Driver = "postgres"
	}
	if cfg.Source.ConnectTimeout == 0 {
		cfg.Source.ConnectTimeout = 5 * time.Second
	}
	if cfg.Source.QueryTimeout == 0 {
		cfg.Source.QueryTimeout = 30 * time.Second
	}
	if cfg.Publish.Timeout == 0 {
		cfg.Publish.Timeout = 30 * time.Second
	}
	if cfg.Images.Dir == "" {
		cfg.Images.Dir = "images"
	}
	if cfg.Images.DownloadTimeout == 0 {
		cfg.Images.DownloadTimeout = 15 * time.Second
	}
	if cfg.Sync.PrefsPath == "" {
		cfg.Sync.PrefsPath = "settings.json"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Auth.CatalogKey == "" {
			return fmt.Errorf("auth.catalog_key is required in production")
		}
		if c.Auth.LedgerKey == "" {
			return fmt.Errorf("auth.ledger_key is required in production")
		}
		if c.Auth.OperatorKey == "" {
			return fmt.Errorf("auth.operator_key is required in production")
		}
	}

	return nil
}

// DSN returns the order database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ResolvedDSN returns the source connection string with the password
// substituted in. Keeping the password out of source.dsn lets it come from
// B2B_SOURCE_PASSWORD instead of the config file.
func (s *SourceConfig) ResolvedDSN() string {
	if s.Password == "" {
		return s.DSN
	}
	return strings.ReplaceAll(s.DSN, "${password}", s.Password)
}

// Addr returns the host:port address for the Redis client.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
