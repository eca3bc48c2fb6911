package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/storeqa/internal/domain/sizing"
)

// Database drivers.
const (
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds the storeqa configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Sizing     SizingConfig     `yaml:"sizing"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds catalog store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, postgres (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	DSN              string   `yaml:"dsn"`
	MaxOpenConns     int      `yaml:"max_open_conns"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	HNSWM            int      `yaml:"hnsw_m"`
	HNSWEFConstruct  int      `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string               `yaml:"provider"`
	APIKey     string               `yaml:"api_key"`
	BaseURL    string               `yaml:"base_url"`
	Model      string               `yaml:"model"`
	Dimensions int                  `yaml:"dimensions"`
	TimeoutSec int                  `yaml:"timeout_sec"`
	Cache      EmbeddingCacheConfig `yaml:"cache"`
}

// EmbeddingCacheConfig controls the vector cache in the catalog key-value store.
type EmbeddingCacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"` // 0 = no expiry
}

// CompletionConfig holds chat completion settings. Empty credentials fall back to the
// embedding provider's.
type CompletionConfig struct {
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	TimeoutSec  int      `yaml:"timeout_sec"`
}

// RetrievalConfig overrides retrieval thresholds. Zero values keep the built-in defaults.
type RetrievalConfig struct {
	FloorTiers     []float64     `yaml:"floor_tiers"`
	CountTiers     []int         `yaml:"count_tiers"`
	MaxEvidence    int           `yaml:"max_evidence"`
	PerItemChars   int           `yaml:"per_item_chars"`
	TotalChars     int           `yaml:"total_chars"`
	LexicalLimit   int           `yaml:"lexical_limit"`
	CallTimeoutSec int           `yaml:"call_timeout_sec"`
	PageScore      float64       `yaml:"page_score"`
	ChunkScore     float64       `yaml:"chunk_score"`
	Boosts         []BoostConfig `yaml:"boosts"`
}

// BoostConfig adds Weight to evidence whose url contains any of Patterns.
type BoostConfig struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Weight   float64  `yaml:"weight"`
}

// SizingConfig selects the size chart: inline rows, a YAML file, or the built-in chart.
type SizingConfig struct {
	ChartFile string       `yaml:"chart_file"`
	Chart     []sizing.Row `yaml:"chart"`
}

// AssistantConfig holds the persona presented to customers.
type AssistantConfig struct {
	Name  string `yaml:"name"`
	Brand string `yaml:"brand"`
}

// IngestConfig overrides crawl settings. Zero values keep the built-in defaults.
type IngestConfig struct {
	Sitemaps         []string `yaml:"sitemaps"`
	Limit            int      `yaml:"limit"`
	ChunkSize        int      `yaml:"chunk_size"`
	ChunkOverlap     int      `yaml:"chunk_overlap"`
	BatchSize        int      `yaml:"batch_size"`
	MinTextChars     int      `yaml:"min_text_chars"`
	SeedMinTextChars int      `yaml:"seed_min_text_chars"`
	MaxSitemapDepth  int      `yaml:"max_sitemap_depth"`
	FetchTimeoutSec  int      `yaml:"fetch_timeout_sec"`
	UserAgent        string   `yaml:"user_agent"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.HNSWM <= 0 {
		c.Database.HNSWM = 16
	}
	if c.Database.HNSWEFConstruct <= 0 {
		c.Database.HNSWEFConstruct = 200
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 8
	}
	if c.Completion.APIKey == "" {
		c.Completion.APIKey = c.Embedding.APIKey
	}
	if c.Completion.BaseURL == "" {
		c.Completion.BaseURL = c.Embedding.BaseURL
	}
	if c.Completion.Model == "" {
		c.Completion.Model = "gpt-4o-mini"
	}
	if c.Completion.Temperature == nil {
		t := float32(0.2)
		c.Completion.Temperature = &t
	}
	if c.Completion.TimeoutSec <= 0 {
		c.Completion.TimeoutSec = 30
	}
	if c.Ingest.FetchTimeoutSec <= 0 {
		c.Ingest.FetchTimeoutSec = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", DriverRedis)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverPostgres, c.Database.Driver)
	}

	if t := c.Completion.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("completion.temperature must be between 0 and 2, got %v", *t)
	}

	r := c.Retrieval
	if len(r.FloorTiers) != len(r.CountTiers) {
		return fmt.Errorf("retrieval.floor_tiers and retrieval.count_tiers must have the same length, got %d and %d",
			len(r.FloorTiers), len(r.CountTiers))
	}
	for i, b := range r.Boosts {
		if len(b.Patterns) == 0 {
			return fmt.Errorf("retrieval.boosts[%d] (%s) needs at least one pattern", i, b.Name)
		}
	}

	if c.Ingest.ChunkSize > 0 && c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}

	if c.Sizing.ChartFile != "" && len(c.Sizing.Chart) > 0 {
		return fmt.Errorf("sizing.chart and sizing.chart_file are mutually exclusive")
	}
	if len(c.Sizing.Chart) > 0 {
		if err := sizing.Chart(c.Sizing.Chart).Validate(); err != nil {
			return fmt.Errorf("sizing.chart: %w", err)
		}
	}
	return nil
}

// LoadChart returns the configured size chart: inline rows, the rows of ChartFile, or nil
// for the built-in chart.
func (s SizingConfig) LoadChart() (sizing.Chart, error) {
	if len(s.Chart) > 0 {
		return sizing.Chart(s.Chart), nil
	}
	if s.ChartFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Clean(s.ChartFile))
	if err != nil {
		return nil, fmt.Errorf("read size chart %s: %w", s.ChartFile, err)
	}
	var rows []sizing.Row
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse size chart %s: %w", s.ChartFile, err)
	}
	chart := sizing.Chart(rows)
	if err := chart.Validate(); err != nil {
		return nil, fmt.Errorf("size chart %s: %w", s.ChartFile, err)
	}
	return chart, nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
