package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"issue-analyzer/internal/db"
	"issue-analyzer/internal/duplicates"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config.yaml"

const (
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"

	SourceKindGitHub = "github"
	SourceKindFile   = "file"
)

type Config struct {
	LogMode  string         `yaml:"log_mode"`
	Store    StoreConfig    `yaml:"store"`
	Source   SourceConfig   `yaml:"source"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type SourceConfig struct {
	Kind              string        `yaml:"kind"`
	GitHubToken       string        `yaml:"github_token"`
	GitHubAPIURL      string        `yaml:"github_api_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Timeout           time.Duration `yaml:"timeout"`
	IssuesFile        string        `yaml:"issues_file"`
}

type AnalysisConfig struct {
	DuplicateThreshold float64       `yaml:"duplicate_threshold"`
	Weighting          string        `yaml:"weighting"`
	Concurrency        int           `yaml:"concurrency"`
	RunTimeout         time.Duration `yaml:"run_timeout"`
	ExtractKeywords    bool          `yaml:"extract_keywords"`
	KeywordLimit       int           `yaml:"keyword_limit"`
}

type ScheduleConfig struct {
	// Reanalysis is a standard five-field cron expression.
	Reanalysis string `yaml:"reanalysis"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	redisDefaults := db.DefaultRedisConfig()
	return Config{
		LogMode: "development",
		Store: StoreConfig{
			Backend: StoreBackendMemory,
			Redis: RedisConfig{
				Host:     redisDefaults.Host,
				Port:     redisDefaults.Port,
				DB:       redisDefaults.DB,
				PoolSize: redisDefaults.PoolSize,
			},
		},
		Source: SourceConfig{
			Kind:              SourceKindGitHub,
			GitHubAPIURL:      "https://api.github.com",
			RequestsPerSecond: 1,
			Burst:             5,
			Timeout:           30 * time.Second,
		},
		Analysis: AnalysisConfig{
			DuplicateThreshold: duplicates.DefaultThreshold,
			Weighting:          string(duplicates.WeightingTermFrequency),
			Concurrency:        4,
			RunTimeout:         5 * time.Minute,
			ExtractKeywords:    true,
			KeywordLimit:       5,
		},
		Schedule: ScheduleConfig{
			Reanalysis: "0 * * * *",
		},
	}
}

// Load reads the YAML file at path (CONFIG_PATH or config.yaml when path is
// empty), applies environment overrides and validates the result. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = defaultConfigPath
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			path = envPath
		}
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.LogMode, "LOG_MODE")
	envOverride(&cfg.Store.Backend, "STORE_BACKEND")
	envOverride(&cfg.Store.Redis.Host, "REDIS_HOST")
	envOverride(&cfg.Store.Redis.Password, "REDIS_PASSWORD")
	envOverride(&cfg.Source.Kind, "SOURCE_KIND")
	envOverride(&cfg.Source.GitHubToken, "GITHUB_TOKEN")
	envOverride(&cfg.Source.GitHubAPIURL, "GITHUB_API_URL")
	envOverride(&cfg.Source.IssuesFile, "ISSUES_FILE")
	envOverride(&cfg.Schedule.Reanalysis, "REANALYSIS_SCHEDULE")

	return errors.Join(
		envOverrideInt(&cfg.Store.Redis.Port, "REDIS_PORT"),
		envOverrideInt(&cfg.Store.Redis.DB, "REDIS_DB"),
		envOverrideInt(&cfg.Store.Redis.PoolSize, "REDIS_POOL_SIZE"),
		envOverrideFloat(&cfg.Analysis.DuplicateThreshold, "DUPLICATE_THRESHOLD"),
		envOverrideInt(&cfg.Analysis.Concurrency, "ANALYSIS_CONCURRENCY"),
	)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendRedis, StoreBackendMemory:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", StoreBackendRedis, StoreBackendMemory, c.Store.Backend)
	}

	switch c.Source.Kind {
	case SourceKindGitHub:
		if c.Source.GitHubAPIURL == "" {
			return errors.New("source.github_api_url is required when source.kind=github")
		}
		if c.Source.RequestsPerSecond <= 0 {
			return fmt.Errorf("invalid source.requests_per_second '%g': must be > 0", c.Source.RequestsPerSecond)
		}
	case SourceKindFile:
		if c.Source.IssuesFile == "" {
			return errors.New("source.issues_file is required when source.kind=file")
		}
	default:
		return fmt.Errorf("source.kind must be %q or %q, got %q", SourceKindGitHub, SourceKindFile, c.Source.Kind)
	}

	a := c.Analysis
	if a.DuplicateThreshold <= 0 || a.DuplicateThreshold > 1 {
		return fmt.Errorf("invalid analysis.duplicate_threshold '%g': must be in (0, 1]", a.DuplicateThreshold)
	}
	if !duplicates.Weighting(a.Weighting).IsValid() {
		return fmt.Errorf("invalid analysis.weighting '%s': must be tf or tfidf", a.Weighting)
	}
	if a.Concurrency < 1 {
		return fmt.Errorf("invalid analysis.concurrency '%d': must be >= 1", a.Concurrency)
	}
	if a.RunTimeout <= 0 {
		return fmt.Errorf("invalid analysis.run_timeout '%s': must be > 0", a.RunTimeout)
	}
	if a.KeywordLimit < 0 {
		return fmt.Errorf("invalid analysis.keyword_limit '%d': must be >= 0", a.KeywordLimit)
	}

	if c.Schedule.Reanalysis != "" {
		if _, err := cron.ParseStandard(c.Schedule.Reanalysis); err != nil {
			return fmt.Errorf("invalid schedule.reanalysis '%s': %w", c.Schedule.Reanalysis, err)
		}
	}
	return nil
}

// RedisClientConfig maps the store settings onto the Redis client config.
func (c StoreConfig) RedisClientConfig() db.RedisConfig {
	cfg := db.DefaultRedisConfig()
	cfg.Host = c.Redis.Host
	cfg.Port = c.Redis.Port
	cfg.Password = c.Redis.Password
	cfg.DB = c.Redis.DB
	if c.Redis.PoolSize > 0 {
		cfg.PoolSize = c.Redis.PoolSize
	}
	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.TrimSpace(val)
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
