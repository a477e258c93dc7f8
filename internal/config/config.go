// Package config loads service configuration from config.yaml and
// DS_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AuthConfig contains the passcode gate settings.  PasscodeHash (bcrypt)
// is preferred; Passcode is hashed at startup for local runs.
type AuthConfig struct {
	Passcode     string        `mapstructure:"passcode"`
	PasscodeHash string        `mapstructure:"passcode_hash"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

// LLMConfig configures the completion service client.
type LLMConfig struct {
	APIKey             string  `mapstructure:"api_key"`
	Model              string  `mapstructure:"model"`
	SummaryTemperature float32 `mapstructure:"summary_temperature"`
	ChatTemperature    float32 `mapstructure:"chat_temperature"`
}

// RedisConfig locates the session store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig locates the usage ledger.  Empty URL disables it.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// LimitsConfig bounds per-session cost.
type LimitsConfig struct {
	QuestionCap    int   `mapstructure:"question_cap"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Debug bool   `mapstructure:"debug"`
}

// Load reads configuration from the given file (or ./config.yaml when
// empty) with environment overrides such as DS_LLM_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("auth.session_ttl", 12*time.Hour)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.summary_temperature", 0.3)
	v.SetDefault("llm.chat_temperature", 0.2)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("limits.question_cap", 50)
	v.SetDefault("limits.max_upload_bytes", 10<<20)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// no config file; defaults and env vars carry it
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Conventional env names also work without the DS_ prefix.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Auth.Passcode == "" && cfg.Auth.PasscodeHash == "" {
		cfg.Auth.Passcode = os.Getenv("APP_PASSCODE")
	}
	return &cfg, nil
}
