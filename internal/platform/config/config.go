// Package config loads process settings from the environment (and an
// optional .env file) and the adjudication policy from YAML.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures server level configuration.
type Config struct {
	Addr            string        `mapstructure:"ADDR"`
	Env             string        `mapstructure:"ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	APIToken        string        `mapstructure:"API_TOKEN"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	KafkaBrokers    []string      `mapstructure:"KAFKA_BROKERS"`
	AuditTopic      string        `mapstructure:"AUDIT_TOPIC"`
	PolicyFile      string        `mapstructure:"POLICY_FILE"`
	FetchTimeout    time.Duration `mapstructure:"FETCH_TIMEOUT"`
	HistoryWindow   time.Duration `mapstructure:"HISTORY_WINDOW"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	SeedDemoMembers bool          `mapstructure:"SEED_DEMO_MEMBERS"`

	Redis RedisConfig `mapstructure:",squash"`
}

// RedisConfig configures the claim-history Redis connection. An empty URL
// means history is kept in the primary store.
type RedisConfig struct {
	URL          string        `mapstructure:"REDIS_URL"`
	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`
}

var keys = []string{
	"ADDR", "ENV", "LOG_LEVEL", "API_TOKEN", "DATABASE_URL", "KAFKA_BROKERS", "AUDIT_TOPIC",
	"POLICY_FILE", "FETCH_TIMEOUT", "HISTORY_WINDOW", "SHUTDOWN_TIMEOUT", "SEED_DEMO_MEMBERS",
	"REDIS_URL", "REDIS_POOL_SIZE", "REDIS_MIN_IDLE_CONNS", "REDIS_DIAL_TIMEOUT",
	"REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
}

// Load reads configuration from the environment. A .env file in the working
// directory is used when present.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUDIT_TOPIC", "adjudication.audit")
	v.SetDefault("FETCH_TIMEOUT", 2*time.Second)
	v.SetDefault("HISTORY_WINDOW", 90*24*time.Hour)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("SEED_DEMO_MEMBERS", true)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	v.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	v.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	brokers := cfg.KafkaBrokers[:0]
	for _, b := range cfg.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	cfg.KafkaBrokers = brokers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR is required")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("HISTORY_WINDOW must be positive, got %s", c.HistoryWindow)
	}
	if !c.IsDev() && c.APIToken == "" {
		return fmt.Errorf("API_TOKEN is required outside development (ENV=%q)", c.Env)
	}
	if len(c.KafkaBrokers) > 0 && c.AuditTopic == "" {
		return fmt.Errorf("AUDIT_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}
