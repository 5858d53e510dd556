// Package config loads sebot configuration from .sebot/config.json, the
// environment and an optional .env file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported storage backends.
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config represents the complete sebot configuration.
type Config struct {
	Backend string `json:"backend" mapstructure:"backend"`

	Mongo    MongoConfig    `json:"mongo" mapstructure:"mongo"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Memory   MemoryConfig   `json:"memory" mapstructure:"memory"`
	Query    QueryConfig    `json:"query" mapstructure:"query"`
	Cache    CacheConfig    `json:"cache" mapstructure:"cache"`
	Dispatch DispatchConfig `json:"dispatch" mapstructure:"dispatch"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// MongoConfig points at the live document database.
type MongoConfig struct {
	URI       string `json:"uri" mapstructure:"uri"`
	Database  string `json:"database" mapstructure:"database"`
	TimeoutMs int    `json:"timeoutMs" mapstructure:"timeoutMs"`
}

// SQLiteConfig points at a snapshot database.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// MemoryConfig names a JSON seed file for the in-memory store.
type MemoryConfig struct {
	Seed string `json:"seed" mapstructure:"seed"`
}

// QueryConfig bounds issue pagination.
type QueryConfig struct {
	DefaultPageSize int `json:"defaultPageSize" mapstructure:"defaultPageSize"`
	MaxPageSize     int `json:"maxPageSize" mapstructure:"maxPageSize"`
}

// CacheConfig contains cache configuration. Zero disables the resolver cache.
type CacheConfig struct {
	ResolverTtlSeconds int `json:"resolverTtlSeconds" mapstructure:"resolverTtlSeconds"`
}

// DispatchConfig controls tool-output batches.
type DispatchConfig struct {
	WaitTimeoutSeconds int `json:"waitTimeoutSeconds" mapstructure:"waitTimeoutSeconds"`
}

// LoggingConfig contains logging configuration. File, when set, receives a
// copy of every record and rotates once it reaches MaxSize (e.g. "10MB").
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups,omitempty" mapstructure:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendMongo,
		Mongo: MongoConfig{
			URI:       "mongodb://localhost:27017",
			Database:  "smartshark",
			TimeoutMs: 10000,
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(".sebot", "snapshot.db"),
		},
		Query: QueryConfig{
			DefaultPageSize: 50,
			MaxPageSize:     500,
		},
		Dispatch: DispatchConfig{
			WaitTimeoutSeconds: 5,
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

// envAliases maps the plain environment names used by existing deployments
// to config keys. SEBOT_* variables are bound automatically.
var envAliases = map[string]string{
	"mongo.uri":      "MONGO_CONNECTION_STRING",
	"mongo.database": "MONGO_DATABASE_NAME",
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("mongo.uri", d.Mongo.URI)
	v.SetDefault("mongo.database", d.Mongo.Database)
	v.SetDefault("mongo.timeoutMs", d.Mongo.TimeoutMs)
	v.SetDefault("sqlite.path", d.SQLite.Path)
	v.SetDefault("memory.seed", d.Memory.Seed)
	v.SetDefault("query.defaultPageSize", d.Query.DefaultPageSize)
	v.SetDefault("query.maxPageSize", d.Query.MaxPageSize)
	v.SetDefault("cache.resolverTtlSeconds", d.Cache.ResolverTtlSeconds)
	v.SetDefault("dispatch.waitTimeoutSeconds", d.Dispatch.WaitTimeoutSeconds)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads configuration with this precedence, highest first:
// environment, config file, .env in dir, defaults. configFile overrides
// the default location dir/.sebot/config.json when non-empty.
func LoadConfig(dir, configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := loadDotEnv(v, dir); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("SEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		envKey := "SEBOT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, alias); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(filepath.Join(dir, ".sebot"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv reads dir/.env, when present, as defaults for the plain
// environment names.
func loadDotEnv(v *viper.Viper, dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for key, alias := range envAliases {
		if val := env.GetString(alias); val != "" {
			v.SetDefault(key, val)
		}
	}
	return nil
}

// Save writes the configuration to .sebot/config.json
func (c *Config) Save(dir string) error {
	configDir := filepath.Join(dir, ".sebot")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMongo:
		if c.Mongo.URI == "" {
			return &ConfigError{Field: "mongo.uri", Message: "required for the mongo backend"}
		}
		if c.Mongo.Database == "" {
			return &ConfigError{Field: "mongo.database", Message: "required for the mongo backend"}
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return &ConfigError{Field: "sqlite.path", Message: "required for the sqlite backend"}
		}
	case BackendMemory:
	default:
		return &ConfigError{Field: "backend", Message: fmt.Sprintf("unknown backend %q", c.Backend)}
	}

	if c.Query.DefaultPageSize <= 0 {
		return &ConfigError{Field: "query.defaultPageSize", Message: "must be positive"}
	}
	if c.Query.MaxPageSize < c.Query.DefaultPageSize {
		return &ConfigError{Field: "query.maxPageSize", Message: "must be at least query.defaultPageSize"}
	}
	if c.Cache.ResolverTtlSeconds < 0 {
		return &ConfigError{Field: "cache.resolverTtlSeconds", Message: "must not be negative"}
	}
	if c.Dispatch.WaitTimeoutSeconds <= 0 {
		return &ConfigError{Field: "dispatch.waitTimeoutSeconds", Message: "must be positive"}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// MongoTimeout returns the connect and query timeout.
func (c *Config) MongoTimeout() time.Duration {
	return time.Duration(c.Mongo.TimeoutMs) * time.Millisecond
}

// ResolverTTL returns how long project lookups stay cached.
func (c *Config) ResolverTTL() time.Duration {
	return time.Duration(c.Cache.ResolverTtlSeconds) * time.Second
}

// WaitTimeout returns how long a tool-output batch may run.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.Dispatch.WaitTimeoutSeconds) * time.Second
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
