package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Databricks domain suffixes for URL detection
var databricksDomains = []string{
	".cloud.databricks.com",
	".azuredatabricks.net",
	".gcp.databricks.com",
}

// Valid configuration values
var (
	validLogLevels = map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	validLogFormats = map[string]bool{
		"console": true, "json": true,
	}
	validCacheBackends = map[string]bool{
		"memory": true, "redis": true, "none": true,
	}
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	LogLevel  string
	LogFormat string

	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string
	LLMTimeout  time.Duration

	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HistoryFile string

	TrackingURI     string
	ExperimentID    string
	DatabricksHost  string
	DatabricksToken string
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("llm_model", "gpt-4o-mini")
	v.SetDefault("llm_timeout", 60*time.Second)
	v.SetDefault("cache_backend", CacheMemory)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("tracking_uri", "http://localhost:5000")
}

// New snapshots the global viper instance.
func New() *Config {
	return FromViper(viper.GetViper())
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		LogFormat:       strings.ToLower(v.GetString("log_format")),
		LLMEndpoint:     v.GetString("llm_endpoint"),
		LLMAPIKey:       v.GetString("llm_api_key"),
		LLMModel:        v.GetString("llm_model"),
		LLMTimeout:      v.GetDuration("llm_timeout"),
		CacheBackend:    strings.ToLower(v.GetString("cache_backend")),
		CacheTTL:        v.GetDuration("cache_ttl"),
		RedisAddr:       v.GetString("redis_addr"),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		HistoryFile:     v.GetString("history_file"),
		TrackingURI:     v.GetString("tracking_uri"),
		ExperimentID:    v.GetString("experiment_id"),
		DatabricksHost:  v.GetString("databricks_host"),
		DatabricksToken: v.GetString("databricks_token"),
	}
}

func (c *Config) Validate() error {
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}

	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log format: %s (valid: console, json)", c.LogFormat)
	}

	if !validCacheBackends[c.CacheBackend] {
		return fmt.Errorf("invalid cache backend: %s (valid: memory, redis, none)", c.CacheBackend)
	}

	if c.CacheBackend != CacheNone && c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}

	if c.CacheBackend == CacheRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis address is required when cache backend is redis")
	}

	if c.LLMEndpoint != "" && c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM timeout must be positive, got %s", c.LLMTimeout)
	}

	if c.MLflowEnabled() && c.TrackingURI == "" {
		return fmt.Errorf("tracking URI is required when an experiment ID is set")
	}

	return nil
}

// LLMEnabled reports whether an external insight generator is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMEndpoint != ""
}

// MLflowEnabled reports whether comparisons are recorded to MLflow.
func (c *Config) MLflowEnabled() bool {
	return c.ExperimentID != ""
}

// IsDatabricks checks if the tracking URI points to Databricks
func (c *Config) IsDatabricks() bool {
	if c.TrackingURI == "databricks" {
		return true
	}

	// Check for databricks:// protocol
	if strings.HasPrefix(c.TrackingURI, "databricks://") {
		return true
	}

	// Check for Databricks URLs
	if strings.HasPrefix(c.TrackingURI, "https://") {
		host := c.extractHostFromURL(c.TrackingURI)
		return c.isDatabricksHost(host)
	}

	return false
}

// extractHostFromURL extracts the hostname from a URL
func (c *Config) extractHostFromURL(url string) string {
	host := strings.TrimPrefix(url, "https://")
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	return host
}

func (c *Config) isDatabricksHost(host string) bool {
	for _, domain := range databricksDomains {
		if strings.HasSuffix(host, domain) {
			return true
		}
	}
	return false
}

// GetDatabricksProfile extracts the profile name from databricks://{profile} URI
func (c *Config) GetDatabricksProfile() string {
	if !strings.HasPrefix(c.TrackingURI, "databricks://") {
		return ""
	}

	profile := strings.TrimPrefix(c.TrackingURI, "databricks://")
	if idx := strings.Index(profile, "/"); idx != -1 {
		profile = profile[:idx]
	}
	return profile
}
