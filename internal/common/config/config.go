// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	Agents     AgentsConfig     `mapstructure:"agents"`
	Completion CompletionConfig `mapstructure:"completion"`
	WebSearch  WebSearchConfig  `mapstructure:"web_search"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeoutMs   int `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeoutMs  int `mapstructure:"write_timeout"`   // milliseconds
	ShutdownGraceMs int `mapstructure:"shutdown_grace"`  // milliseconds
	OverallTimeout  int `mapstructure:"overall_timeout"` // milliseconds, hard bound per request
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Engine Sections ---

// CacheConfig controls the in-memory response cache.
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
	Capacity   int `mapstructure:"capacity"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RetrievalConfig controls the hybrid retriever and its sources.
type RetrievalConfig struct {
	TopK            int                `mapstructure:"top_k"`
	ContextBudget   int                `mapstructure:"context_budget"` // characters
	SourceWeights   map[string]float64 `mapstructure:"source_weights"` // by origin; equal when empty
	SourceTimeoutMs int                `mapstructure:"source_timeout"` // per source call
	MultiQuery      bool               `mapstructure:"multi_query"`
	SemanticBaseURL string             `mapstructure:"semantic_base_url"`
	FetchK          int                `mapstructure:"fetch_k"` // candidates requested per source
}

func (r RetrievalConfig) SourceTimeout() time.Duration {
	return time.Duration(r.SourceTimeoutMs) * time.Millisecond
}

// AgentsConfig controls specialist dispatch.
type AgentsConfig struct {
	TimeoutMs          int     `mapstructure:"timeout"` // per specialist call, milliseconds
	WebCacheTTLSeconds int     `mapstructure:"web_cache_ttl_seconds"`
	FallbackConfidence float64 `mapstructure:"fallback_confidence"`
}

func (a AgentsConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMs) * time.Millisecond
}

func (a AgentsConfig) WebCacheTTL() time.Duration {
	return time.Duration(a.WebCacheTTLSeconds) * time.Second
}

// CompletionConfig points at the text completion collaborator.
type CompletionConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Token       string  `mapstructure:"token"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	TimeoutMs   int     `mapstructure:"timeout"` // milliseconds
}

func (c CompletionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// WebSearchConfig points at the web search collaborator.
type WebSearchConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	APIKey       string  `mapstructure:"api_key"`
	EngineID     string  `mapstructure:"engine_id"`
	MaxResults   int     `mapstructure:"max_results"`
	MinRelevance float64 `mapstructure:"min_relevance"`
	TimeoutMs    int     `mapstructure:"timeout"` // milliseconds
}

func (w WebSearchConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutMs) * time.Millisecond
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
