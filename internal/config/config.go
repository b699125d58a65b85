// Package config loads and validates resolver configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Parser      ParserConfig      `mapstructure:"parser"`
	Fetch       FetchConfig       `mapstructure:"fetch"`
	Headless    HeadlessConfig    `mapstructure:"headless"`
	Reader      ReaderConfig      `mapstructure:"reader"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	ImageSearch ImageSearchConfig `mapstructure:"image_search"`
	AI          AIConfig          `mapstructure:"ai"`
	Cache       CacheConfig       `mapstructure:"cache"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// PipelineConfig governs stage sequencing and the confidence contract.
// The thresholds are deliberately configuration, not constants: they are
// empirically tuned against a fixture corpus of real product URLs.
type PipelineConfig struct {
	EarlyExitConfidence  float64 `mapstructure:"early_exit_confidence"`
	PersistenceThreshold float64 `mapstructure:"persistence_threshold"`
	FetchTimeoutSeconds  int     `mapstructure:"fetch_timeout_seconds"`
	BatchConcurrency     int     `mapstructure:"batch_concurrency"`
}

// ParserConfig overrides the slug-scoring weights. A fully zero value
// keeps the tuned defaults.
type ParserConfig struct {
	HyphenBonus     int `mapstructure:"hyphen_bonus"`
	PerHyphen       int `mapstructure:"per_hyphen"`
	PerHyphenCap    int `mapstructure:"per_hyphen_cap"`
	PerCharCap      int `mapstructure:"per_char_cap"`
	MixedCaseBonus  int `mapstructure:"mixed_case_bonus"`
	CategoryPenalty int `mapstructure:"category_penalty"`
	SKUPenalty      int `mapstructure:"sku_penalty"`
	IDPenalty       int `mapstructure:"id_penalty"`
}

// FetchConfig configures the lightweight structured-data fetcher.
type FetchConfig struct {
	UserAgents   []string `mapstructure:"user_agents"`
	MaxRedirects int      `mapstructure:"max_redirects"`
	MaxAttempts  int      `mapstructure:"max_attempts"`
}

// HeadlessConfig configures the primary rendering fallback.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// ReaderConfig configures the secondary reader-service renderer.
type ReaderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// MarketplaceConfig configures the Amazon catalog lookup client.
type MarketplaceConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ImageSearchConfig configures the Google Custom Search image client.
type ImageSearchConfig struct {
	APIKey         string `mapstructure:"api_key"`
	EngineID       string `mapstructure:"engine_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AIConfig configures the semantic resolver.
type AIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	QuickModel     string `mapstructure:"quick_model"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CacheConfig controls the result cache backend.
type CacheConfig struct {
	Provider string `mapstructure:"provider"`
	TTLHours int    `mapstructure:"ttl_hours"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKRESOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("pipeline.early_exit_confidence", 0.85)
	v.SetDefault("pipeline.persistence_threshold", 0.7)
	v.SetDefault("pipeline.fetch_timeout_seconds", 5)
	v.SetDefault("pipeline.batch_concurrency", 5)
	v.SetDefault("fetch.max_redirects", 5)
	v.SetDefault("fetch.max_attempts", 2)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("reader.base_url", "https://r.jina.ai")
	v.SetDefault("reader.timeout_seconds", 15)
	v.SetDefault("marketplace.timeout_seconds", 8)
	v.SetDefault("image_search.timeout_seconds", 5)
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("ai.quick_model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 1000)
	v.SetDefault("ai.timeout_seconds", 20)
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.ttl_hours", 168)
	v.SetDefault("cache.table", "product_library")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Pipeline.EarlyExitConfidence <= 0 || c.Pipeline.EarlyExitConfidence > 1 {
		return fmt.Errorf("pipeline.early_exit_confidence must be in (0,1]")
	}
	if c.Pipeline.PersistenceThreshold < 0 || c.Pipeline.PersistenceThreshold > 1 {
		return fmt.Errorf("pipeline.persistence_threshold must be in [0,1]")
	}
	if c.Pipeline.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("pipeline.fetch_timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Cache.Provider != "memory" && c.Cache.Provider != "postgres" {
		return fmt.Errorf("cache.provider must be memory or postgres")
	}
	if c.Cache.Provider == "postgres" && c.Cache.DSN == "" {
		return fmt.Errorf("cache.dsn must be set when cache.provider is postgres")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// FetchTimeout converts the per-stage timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Pipeline.FetchTimeoutSeconds) * time.Second
}

// CacheTTL converts the cache TTL config into a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}
