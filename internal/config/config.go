package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grader service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	NATSURL     string
	JWTSecret   string

	AssessorProvider string
	AssessorBaseURL  string
	AssessorAPIKey   string
	AssessorTimeout  time.Duration
	OpenAIAPIKey     string
	OpenAIModel      string

	GradingBatchSize  int
	GradingRetryLimit int
	CacheTTL          time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Grader API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("assessor.provider", "http")
	v.SetDefault("assessor.timeout", "60s")
	v.SetDefault("grading.batch_size", 25)
	v.SetDefault("grading.retry_limit", 1)
	// Zero means assessment cache entries never expire.
	v.SetDefault("cache.ttl", "0")

	timeout, err := time.ParseDuration(v.GetString("assessor.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid assessor timeout: %w", err)
	}

	ttl, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		AssessorProvider:  strings.ToLower(v.GetString("assessor.provider")),
		AssessorBaseURL:   v.GetString("assessor.base_url"),
		AssessorAPIKey:    v.GetString("assessor.api_key"),
		AssessorTimeout:   timeout,
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		OpenAIModel:       v.GetString("openai_model"),
		GradingBatchSize:  v.GetInt("grading.batch_size"),
		GradingRetryLimit: v.GetInt("grading.retry_limit"),
		CacheTTL:          ttl,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GradingBatchSize <= 0 {
		cfg.GradingBatchSize = 25
	}

	if cfg.GradingRetryLimit < 0 {
		cfg.GradingRetryLimit = 0
	}

	return cfg, nil
}
