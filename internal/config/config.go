// Package config loads the archivist configuration from a config.yaml,
// a .env file, and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/archivist/internal/core/archive"
	"github.com/example/archivist/internal/db"
)

// Config holds the resolved runtime configuration.
type Config struct {
	DatabasePath string
	RedisAddr    string

	BatchSize         int
	TopicStatusPolicy string
	SystemActor       string

	WorkerMaxAttempts int
	WorkerRetryDelay  time.Duration

	SweepInterval   time.Duration
	SweepStaleAfter time.Duration
}

// Load resolves the configuration. A missing .env or config.yaml is fine;
// environment variables (ARCHIVE_BATCH_SIZE, REDIS_ADDR, ...) override both.
func Load() (*Config, error) {
	// Environment variables from .env, if present.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg := &Config{
		DatabasePath:      v.GetString("database.path"),
		RedisAddr:         v.GetString("redis.addr"),
		BatchSize:         v.GetInt("archive.batch_size"),
		TopicStatusPolicy: v.GetString("archive.topic_status_policy"),
		SystemActor:       v.GetString("archive.system_actor"),
		WorkerMaxAttempts: v.GetInt("worker.max_attempts"),
		WorkerRetryDelay:  v.GetDuration("worker.retry_delay"),
		SweepInterval:     v.GetDuration("sweep.interval"),
		SweepStaleAfter:   v.GetDuration("sweep.stale_after"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaultDB := "archivist.db"
	if p, err := db.DefaultPath(); err == nil {
		defaultDB = p
	}
	v.SetDefault("database.path", defaultDB)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("archive.batch_size", 50)
	v.SetDefault("archive.topic_status_policy", archive.PolicyLeaveOpen)
	v.SetDefault("archive.system_actor", "system")
	v.SetDefault("worker.max_attempts", 5)
	v.SetDefault("worker.retry_delay", 10*time.Second)
	v.SetDefault("sweep.interval", 5*time.Minute)
	v.SetDefault("sweep.stale_after", 15*time.Minute)
}

func (c *Config) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("archive.batch_size must be at least 1, got %d", c.BatchSize)
	}
	if !archive.ValidPolicy(c.TopicStatusPolicy) {
		return fmt.Errorf("archive.topic_status_policy %q is not one of leave-open, close, archive", c.TopicStatusPolicy)
	}
	if c.WorkerMaxAttempts < 1 {
		return fmt.Errorf("worker.max_attempts must be at least 1, got %d", c.WorkerMaxAttempts)
	}
	return nil
}
