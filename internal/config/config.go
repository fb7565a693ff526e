// Package config loads the seo-auditor service configuration from a
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"time"
)

// Default service configuration values.
const (
	defaultServiceName    = "seo-auditor"
	defaultServiceVersion = "0.1.0"
	defaultServicePort    = 8097
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Default database configuration values.
const (
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "seo_auditor"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultDBConnLifetimeH = 1
)

// Default audit configuration values.
const (
	defaultCooldown       = time.Hour
	defaultAbandonedAfter = 30 * time.Minute
	defaultCheckTimeout   = 30 * time.Second
	defaultFetchTimeout   = 60 * time.Second
	defaultReaperInterval = time.Minute
)

// Default cache configuration values.
const (
	defaultCacheTTL        = 5 * time.Minute
	defaultCacheMaxEntries = 1000
	defaultCacheBackend    = "memory"
)

// Default storefront provider values.
const (
	defaultStorefrontBaseURL = "http://localhost:8098"
	defaultStorefrontTimeout = 30 * time.Second
)

// Config holds the application configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Audit      AuditConfig      `yaml:"audit"`
	Cache      CacheConfig      `yaml:"cache"`
	Storefront StorefrontConfig `yaml:"storefront"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServiceConfig holds service identity and runtime settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"SEO_AUDITOR_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"        yaml:"debug"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host                  string        `env:"POSTGRES_SEO_AUDITOR_HOST"     yaml:"host"`
	Port                  int           `env:"POSTGRES_SEO_AUDITOR_PORT"     yaml:"port"`
	User                  string        `env:"POSTGRES_SEO_AUDITOR_USER"     yaml:"user"`
	Password              string        `env:"POSTGRES_SEO_AUDITOR_PASSWORD" yaml:"password"`
	Database              string        `env:"POSTGRES_SEO_AUDITOR_DB"       yaml:"database"`
	SSLMode               string        `env:"POSTGRES_SEO_AUDITOR_SSLMODE"  yaml:"sslmode"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxIdleConns          int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// RedisConfig holds optional Redis settings. Redis backs the shared
// cache store and the activity event channel; both degrade to local
// behaviour when disabled.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuditConfig holds orchestration settings.
type AuditConfig struct {
	// Cooldown is the minimum interval between completed audits for
	// one account. The boundary is inclusive.
	Cooldown time.Duration `yaml:"cooldown"`
	// AbandonedAfter is the age past which a RUNNING audit is treated
	// as abandoned and failed by the reaper.
	AbandonedAfter time.Duration `yaml:"abandoned_after"`
	// CheckTimeout bounds each individual analyzer.
	CheckTimeout time.Duration `yaml:"check_timeout"`
	// FetchTimeout bounds the storefront content fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// ReaperInterval is how often abandoned audits are swept.
	ReaperInterval time.Duration `yaml:"reaper_interval"`
}

// CacheConfig holds expiring-cache settings.
type CacheConfig struct {
	// Backend selects "memory" or "redis".
	Backend    string        `env:"CACHE_BACKEND" yaml:"backend"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// StorefrontConfig locates the external content provider.
type StorefrontConfig struct {
	BaseURL  string        `env:"STOREFRONT_BASE_URL"   yaml:"base_url"`
	APIToken string        `env:"STOREFRONT_API_TOKEN"  yaml:"api_token"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load reads the YAML config at path, applies defaults, then applies
// environment overrides (env always wins).
func Load(path string) (*Config, error) {
	cfg, loadErr := loadFile(path)
	if loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	setDefaults(cfg)
	applyEnvOverrides(cfg)

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("service.port %d out of range", c.Service.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("cache.backend redis requires redis.enabled")
	}
	return nil
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setAuditDefaults(&cfg.Audit)
	setCacheDefaults(&cfg.Cache)
	setStorefrontDefaults(&cfg.Storefront)
	setLoggingDefaults(&cfg.Logging)
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
	if d.ConnectionMaxLifetime == 0 {
		d.ConnectionMaxLifetime = defaultDBConnLifetimeH * time.Hour
	}
}

func setAuditDefaults(a *AuditConfig) {
	if a.Cooldown == 0 {
		a.Cooldown = defaultCooldown
	}
	if a.AbandonedAfter == 0 {
		a.AbandonedAfter = defaultAbandonedAfter
	}
	if a.CheckTimeout == 0 {
		a.CheckTimeout = defaultCheckTimeout
	}
	if a.FetchTimeout == 0 {
		a.FetchTimeout = defaultFetchTimeout
	}
	if a.ReaperInterval == 0 {
		a.ReaperInterval = defaultReaperInterval
	}
}

func setCacheDefaults(c *CacheConfig) {
	if c.Backend == "" {
		c.Backend = defaultCacheBackend
	}
	if c.TTL == 0 {
		c.TTL = defaultCacheTTL
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = defaultCacheMaxEntries
	}
}

func setStorefrontDefaults(s *StorefrontConfig) {
	if s.BaseURL == "" {
		s.BaseURL = defaultStorefrontBaseURL
	}
	if s.Timeout == 0 {
		s.Timeout = defaultStorefrontTimeout
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
