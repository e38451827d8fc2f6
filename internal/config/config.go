package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type APIConfig struct {
	Port  int    `yaml:"port"`
	Token string `yaml:"token"` // static bearer token for the submission API
}

type AssignmentConfig struct {
	// ExpectedConcurrentUsers sizes the worker pool once at startup:
	// one worker per twenty users, clamped to [10,100].
	ExpectedConcurrentUsers int           `yaml:"expected_concurrent_users"`
	MaxBulkSize             int           `yaml:"max_bulk_size"`
	PollInterval            time.Duration `yaml:"poll_interval"`
	SubBatchDelay           time.Duration `yaml:"sub_batch_delay"`
	MaxAttempts             int           `yaml:"max_attempts"`
	BackoffBase             time.Duration `yaml:"backoff_base"`
	VisibilityTimeout       time.Duration `yaml:"visibility_timeout"`
	SweepInterval           time.Duration `yaml:"sweep_interval"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	API        APIConfig        `yaml:"api"`
	Assignment AssignmentConfig `yaml:"assignment"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.API.Port <= 0 {
		cfg.API.Port = 8080
	}
	if cfg.Assignment.ExpectedConcurrentUsers <= 0 {
		cfg.Assignment.ExpectedConcurrentUsers = 200
	}
	if cfg.Assignment.MaxBulkSize <= 0 {
		cfg.Assignment.MaxBulkSize = 500
	}
	if cfg.Assignment.PollInterval <= 0 {
		cfg.Assignment.PollInterval = 500 * time.Millisecond
	}
	if cfg.Assignment.SubBatchDelay <= 0 {
		cfg.Assignment.SubBatchDelay = 100 * time.Millisecond
	}
	if cfg.Assignment.MaxAttempts <= 0 {
		cfg.Assignment.MaxAttempts = 5
	}
	if cfg.Assignment.BackoffBase <= 0 {
		cfg.Assignment.BackoffBase = 30 * time.Second
	}
	if cfg.Assignment.VisibilityTimeout <= 0 {
		cfg.Assignment.VisibilityTimeout = 10 * time.Minute
	}
	if cfg.Assignment.SweepInterval <= 0 {
		cfg.Assignment.SweepInterval = time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
