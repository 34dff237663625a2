package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	LLM     LLMConfig
	Redis   RedisConfig
	Store   StoreConfig
	Mongo   MongoConfig
	DB      DBConfig
	Auth    AuthConfig
	Events  EventsConfig
	Scoring ScoringConfig
	Cache   CacheTTLConfig
	Session SessionConfig
	Content ContentConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Env   string
	Level string
}

// LLMConfig selects the completion backend. Provider is one of
// "openai" (any OpenAI-compatible endpoint, e.g. Fireworks), "ollama",
// "googleai" or "anthropic".
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	ServerURL   string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// StoreConfig picks the progress store: "none", "mongo" or "sql".
type StoreConfig struct {
	Driver       string
	WriteTimeout time.Duration
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type EventsConfig struct {
	AMQPURI  string
	Exchange string
}

type ScoringConfig struct {
	// RejectEmptyNormalized makes fill-in answers whose normalized form is
	// empty on either side score as incorrect.
	RejectEmptyNormalized bool
}

type CacheTTLConfig struct {
	Hint    string
	Outline string
}

// SessionConfig controls eviction of idle in-memory sessions.
type SessionConfig struct {
	IdleTimeout      time.Duration
	EvictionInterval time.Duration
}

// ContentConfig optionally replaces the embedded study dataset.
type ContentConfig struct {
	File string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "accounts/fireworks/models/llama-v3p1-8b-instruct")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.fireworks.ai/inference/v1")
	v.SetDefault("llm.server_url", "http://localhost:11434")
	v.SetDefault("llm.timeout", 60)
	v.SetDefault("llm.temperature", 0.6)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("store.driver", "none")
	v.SetDefault("store.write_timeout", 10)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "history_revision")
	v.SetDefault("mongo.collection", "progress")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 1521)
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "FREEPDB1")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "720h")
	v.SetDefault("events.amqp_uri", "")
	v.SetDefault("events.exchange", "revision.events")
	v.SetDefault("scoring.reject_empty_normalized", false)
	v.SetDefault("cache.hint", "24h")
	v.SetDefault("cache.outline", "6h")
	v.SetDefault("session.idle_timeout", "2h")
	v.SetDefault("session.eviction_interval", "10m")
	v.SetDefault("content.file", "")
}

// LoadConfig reads config.yaml (if present) and environment overrides.
// A missing config file is not an error; defaults apply.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../configs")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			Model:       v.GetString("llm.model"),
			APIKey:      v.GetString("llm.api_key"),
			BaseURL:     v.GetString("llm.base_url"),
			ServerURL:   v.GetString("llm.server_url"),
			Timeout:     time.Duration(v.GetInt("llm.timeout")) * time.Second,
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(v.GetString("store.driver")),
			WriteTimeout: time.Duration(v.GetInt("store.write_timeout")) * time.Second,
		},
		Mongo: MongoConfig{
			URI:        v.GetString("mongo.uri"),
			Database:   v.GetString("mongo.database"),
			Collection: v.GetString("mongo.collection"),
		},
		DB: DBConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Events: EventsConfig{
			AMQPURI:  v.GetString("events.amqp_uri"),
			Exchange: v.GetString("events.exchange"),
		},
		Scoring: ScoringConfig{
			RejectEmptyNormalized: v.GetBool("scoring.reject_empty_normalized"),
		},
		Cache: CacheTTLConfig{
			Hint:    v.GetString("cache.hint"),
			Outline: v.GetString("cache.outline"),
		},
		Session: SessionConfig{
			IdleTimeout:      v.GetDuration("session.idle_timeout"),
			EvictionInterval: v.GetDuration("session.eviction_interval"),
		},
		Content: ContentConfig{
			File: v.GetString("content.file"),
		},
	}
}

// GetDSN returns the go-ora connection string for the SQL progress store.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}

// ParseTTLStringOrDefault parses a duration string, falling back to def
// when the string is empty or invalid.
func (c *Config) ParseTTLStringOrDefault(ttl string, def time.Duration) time.Duration {
	if ttl == "" {
		return def
	}
	d, err := time.ParseDuration(ttl)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// HasLLMCredential reports whether the configured provider has what it needs
// to make a call. Ollama needs only a server URL.
func (c *Config) HasLLMCredential() bool {
	if c.LLM.Provider == "ollama" {
		return c.LLM.ServerURL != ""
	}
	return c.LLM.APIKey != ""
}
