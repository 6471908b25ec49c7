package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Log    LogConfig    `mapstructure:"log"`
}

// StoreConfig represents holiday calendar storage
type StoreConfig struct {
	Type       string `mapstructure:"type"`        // "sqlite" or "memory"
	Path       string `mapstructure:"path"`        // SQLite database file
	SeedFile   string `mapstructure:"seed_file"`   // .txt, .yaml or .ics; empty uses the built-in calendar
	CacheTTL   string `mapstructure:"cache_ttl"`   // 0 disables the read cache
	ReloadCron string `mapstructure:"reload_cron"` // empty disables scheduled reloads
}

// ServerConfig represents the HTTP listener
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// LLMConfig represents the document answerer
type LLMConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Endpoint     string `mapstructure:"endpoint"`
	APIKey       string `mapstructure:"api_key"`
	Deployment   string `mapstructure:"deployment"`
	DocumentsDir string `mapstructure:"documents_dir"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
	TopK         int    `mapstructure:"top_k"`

	HistoryTurns    int `mapstructure:"history_turns"`    // earlier turns replayed per conversation
	HistorySessions int `mapstructure:"history_sessions"` // conversations remembered at once
}

// LogConfig represents logging output
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.type", "sqlite")
	v.SetDefault("store.path", "holidays.db")
	v.SetDefault("store.seed_file", "")
	v.SetDefault("store.cache_ttl", "10m")
	v.SetDefault("store.reload_cron", "")
	v.SetDefault("server.listen", "0.0.0.0:7860")
	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.deployment", "")
	v.SetDefault("llm.documents_dir", "docs")
	v.SetDefault("llm.chunk_size", 10000)
	v.SetDefault("llm.chunk_overlap", 200)
	v.SetDefault("llm.top_k", 4)
	v.SetDefault("llm.history_turns", 5)
	v.SetDefault("llm.history_sessions", 1000)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file and HOLIDAY_* environment variables.
// A missing file is not an error when configPath is empty or does not exist;
// defaults and environment variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.holiday-assistant")
		v.AddConfigPath("/etc/holiday-assistant")
	}

	v.SetEnvPrefix("HOLIDAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// PORT is honoured the way the hosted deployment sets it
	if port := os.Getenv("PORT"); port != "" && !v.InConfig("server.listen") && os.Getenv("HOLIDAY_SERVER_LISTEN") == "" {
		v.Set("server.listen", "0.0.0.0:"+port)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for sqlite type")
		}
	case "memory":
	default:
		return fmt.Errorf("store.type must be 'sqlite' or 'memory', got '%s'", c.Store.Type)
	}

	if c.Store.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Store.CacheTTL); err != nil {
			return fmt.Errorf("store.cache_ttl is not a duration: %w", err)
		}
	}

	if c.Store.ReloadCron != "" {
		if _, err := cron.ParseStandard(c.Store.ReloadCron); err != nil {
			return fmt.Errorf("store.reload_cron is not a cron expression: %w", err)
		}
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}

	if c.LLM.Enabled {
		if c.LLM.Endpoint == "" {
			return fmt.Errorf("llm.endpoint is required when llm is enabled")
		}
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required when llm is enabled")
		}
		if c.LLM.Deployment == "" {
			return fmt.Errorf("llm.deployment is required when llm is enabled")
		}
		if c.LLM.ChunkOverlap < 0 || c.LLM.ChunkOverlap >= c.LLM.ChunkSize {
			return fmt.Errorf("llm.chunk_overlap must be between 0 and llm.chunk_size")
		}
		if c.LLM.HistoryTurns < 0 || c.LLM.HistorySessions < 0 {
			return fmt.Errorf("llm.history_turns and llm.history_sessions must not be negative")
		}
	}

	return nil
}

// GetCacheTTL returns the store cache TTL. Zero disables caching.
func (c *StoreConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 10 * time.Minute
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 10 * time.Minute
	}
	return duration
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.LLM.Endpoint = os.ExpandEnv(c.LLM.Endpoint)
	c.LLM.APIKey = os.ExpandEnv(c.LLM.APIKey)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
	c.Store.SeedFile = os.ExpandEnv(c.Store.SeedFile)
}
