package config

import (
	"fmt"
	"time"

	infraconfig "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/config"
)

// Default configuration values.
const (
	defaultServiceName       = "producthub"
	defaultServiceVersion    = "1.0.0"
	defaultServicePort       = 8080
	defaultConcurrency       = 10
	defaultDBHost            = "localhost"
	defaultDBPort            = 5432
	defaultDBUser            = "postgres"
	defaultDBName            = "producthub"
	defaultDBSSLMode         = "disable"
	defaultDBMaxConns        = 25
	defaultDBMaxIdleConns    = 5
	defaultMigrationsPath    = "migrations"
	defaultRedisAddress      = "localhost:6379"
	defaultStatusCacheTTLMin = 60
	defaultSyncSchedule      = "@every 15m"
	defaultSyncMonitorPort   = 8081
	defaultLogLevel          = "info"
	defaultLogFormat         = "json"
)

// Config holds all configuration for the product hub services.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Shopify  ShopifyConfig  `yaml:"shopify"`
	Sync     SyncConfig     `yaml:"sync"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Port        int    `env:"PRODUCTHUB_PORT"        yaml:"port"`
	Debug       bool   `env:"APP_DEBUG"              yaml:"debug"`
	Concurrency int    `env:"PRODUCTHUB_CONCURRENCY" yaml:"concurrency"`

	// CORSOrigins restricts browser access to the listed origins. Empty
	// means allow all, which is what local editor development wants.
	CORSOrigins []string `env:"PRODUCTHUB_CORS_ORIGINS" yaml:"cors_origins"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH"   yaml:"migrations_path"`
}

// RedisConfig holds the status cache configuration.
type RedisConfig struct {
	Address        string        `env:"REDIS_ADDRESS"    yaml:"address"`
	Password       string        `env:"REDIS_PASSWORD"   yaml:"password"`
	Database       int           `yaml:"database"`
	StatusCacheTTL time.Duration `env:"STATUS_CACHE_TTL" yaml:"status_cache_ttl"`
}

// ShopifyConfig holds the store connection settings.
type ShopifyConfig struct {
	StoreDomain       string        `env:"SHOPIFY_STORE_DOMAIN" yaml:"store_domain"`
	AccessToken       string        `env:"SHOPIFY_ACCESS_TOKEN" yaml:"access_token"`
	APIVersion        string        `yaml:"api_version"`
	PageSize          int           `yaml:"page_size"`
	RequestsPerSecond int           `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// SyncConfig holds the catalog sync worker settings.
type SyncConfig struct {
	Schedule       string `env:"SYNC_SCHEDULE"         yaml:"schedule"`
	RefreshOnStart bool   `env:"SYNC_REFRESH_ON_START" yaml:"refresh_on_start"`
	MonitorPort    int    `env:"SYNC_MONITOR_PORT"     yaml:"monitor_port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
	Output string `yaml:"output"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}
	if err := infraconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a config from defaults and environment overrides alone,
// for deployments that ship no config file.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)
	if err := infraconfig.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := infraconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate rejects values that cannot work at runtime. A store domain
// without an access token is treated as a half-finished setup; both empty
// just means no Shopify store is wired yet.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidatePort("sync.monitor_port", c.Sync.MonitorPort); err != nil {
		return err
	}
	if c.Shopify.StoreDomain != "" {
		if err := infraconfig.ValidateRequired("shopify.access_token", c.Shopify.AccessToken); err != nil {
			return err
		}
	}
	return infraconfig.ValidateLogLevel(c.Logging.Level)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setSyncDefaults(&cfg.Sync)
	setLoggingDefaults(&cfg.Logging)
	// Shopify tuning defaults live in the shopify client; auth has no defaults.
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
	if d.MigrationsPath == "" {
		d.MigrationsPath = defaultMigrationsPath
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.StatusCacheTTL == 0 {
		r.StatusCacheTTL = defaultStatusCacheTTLMin * time.Minute
	}
}

func setSyncDefaults(s *SyncConfig) {
	if s.Schedule == "" {
		s.Schedule = defaultSyncSchedule
	}
	if s.MonitorPort == 0 {
		s.MonitorPort = defaultSyncMonitorPort
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
