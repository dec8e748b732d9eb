package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
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

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	APIKey       string `yaml:"api_key"`       // env AI_API_KEY wins
	BaseURL      string `yaml:"base_url"`      // OpenAI-compatible gateway
	GeminiKey    string `yaml:"gemini_key"`    // optional Gemini fallback
	DefaultModel string `yaml:"default_model"` // shared default
	// Per-stage overrides, each falling back to DefaultModel.
	QueryGenModel  string `yaml:"querygen_model"`
	SynthesisModel string `yaml:"synthesis_model"`
	MaxPromptTokens int   `yaml:"max_prompt_tokens"`
}

// QueryGenModelName returns the model used for query generation.
func (c AIConfig) QueryGenModelName() string {
	if c.QueryGenModel != "" {
		return c.QueryGenModel
	}
	return c.DefaultModel
}

// SynthesisModelName returns the model used for memory synthesis.
func (c AIConfig) SynthesisModelName() string {
	if c.SynthesisModel != "" {
		return c.SynthesisModel
	}
	return c.DefaultModel
}

type PipelineConfig struct {
	Disabled        bool          `yaml:"disabled"` // kill switch; env WEB_MEMORY_DISABLED wins
	TTLDays         int           `yaml:"ttl_days"`
	WorkerInterval  time.Duration `yaml:"worker_interval"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	CleanupBatch    int           `yaml:"cleanup_batch"`
	SearchURL       string        `yaml:"search_url"` // query is appended URL-encoded
	MaxPerQuery     int           `yaml:"max_per_query"`
	NavTimeout      time.Duration `yaml:"nav_timeout"`
	WaitTimeout     time.Duration `yaml:"wait_timeout"`
}

// TTL returns the memory time-to-live.
func (c PipelineConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// Enabled reports whether the pipeline should accept and process work.
func (c PipelineConfig) Enabled() bool { return !c.Disabled }

type BrowserConfig struct {
	ExecPath  string `yaml:"exec_path"` // empty = let the launcher resolve one
	Headless  bool   `yaml:"headless"`
	NoSandbox bool   `yaml:"no_sandbox"` // required in most containers
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Browser  BrowserConfig  `yaml:"browser"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, applies environment overrides and defaults,
// and validates the result. Secrets are resolved here exactly once; nothing
// downstream re-reads the environment.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(dev); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("WEB_MEMORY_DISABLED"); v != "" {
		if disabled, err := strconv.ParseBool(v); err == nil && disabled {
			cfg.Pipeline.Disabled = true
		}
	}
	if v := os.Getenv("WEB_MEMORY_TTL_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.Pipeline.TTLDays = days
		}
	}
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.MaxPromptTokens <= 0 {
		cfg.AI.MaxPromptTokens = 6000
	}
	if cfg.Pipeline.TTLDays <= 0 {
		cfg.Pipeline.TTLDays = 30
	}
	if cfg.Pipeline.WorkerInterval <= 0 {
		cfg.Pipeline.WorkerInterval = 5 * time.Minute
	}
	if cfg.Pipeline.CleanupInterval <= 0 {
		cfg.Pipeline.CleanupInterval = 24 * time.Hour
	}
	if cfg.Pipeline.CleanupBatch <= 0 {
		cfg.Pipeline.CleanupBatch = 100
	}
	if cfg.Pipeline.SearchURL == "" {
		cfg.Pipeline.SearchURL = "https://www.bing.com/search?q="
	}
	if cfg.Pipeline.MaxPerQuery <= 0 {
		cfg.Pipeline.MaxPerQuery = 3
	}
	if cfg.Pipeline.NavTimeout <= 0 {
		cfg.Pipeline.NavTimeout = 20 * time.Second
	}
	if cfg.Pipeline.WaitTimeout <= 0 {
		cfg.Pipeline.WaitTimeout = 15 * time.Second
	}
}

func (cfg *Config) validate(dev bool) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	// In dev mode the noop AI adapter is wired in, so a key is optional.
	if !dev && cfg.AI.APIKey == "" && cfg.AI.GeminiKey == "" {
		return errors.New("ai.api_key or ai.gemini_key is required (or AI_API_KEY env)")
	}
	return nil
}
