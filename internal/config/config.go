package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the scoring service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	RedisURL    string
	DatabaseURL string
	NATSURL     string

	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	ScoreTimeout       time.Duration
	CacheTTL           time.Duration
	JobTTL             time.Duration
	BatchMaxConcurrent int
	AsyncRatePerMinute int
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
	v.SetEnvPrefix("BANDWISE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Bandwise Scoring API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("score.timeout", "30s")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("job.ttl", "24h")
	v.SetDefault("batch.max_concurrent", 3)
	v.SetDefault("async.rate_per_minute", 10)

	scoreTimeout, err := parseDuration(v.GetString("score.timeout"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid score timeout: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("cache.ttl"), time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	jobTTL, err := parseDuration(v.GetString("job.ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid job ttl: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		RedisURL:           v.GetString("redis.url"),
		DatabaseURL:        v.GetString("database.url"),
		NATSURL:            v.GetString("nats.url"),
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		OpenAIModel:        v.GetString("openai.model"),
		AnthropicAPIKey:    v.GetString("anthropic_api_key"),
		AnthropicModel:     v.GetString("anthropic.model"),
		ScoreTimeout:       scoreTimeout,
		CacheTTL:           cacheTTL,
		JobTTL:             jobTTL,
		BatchMaxConcurrent: v.GetInt("batch.max_concurrent"),
		AsyncRatePerMinute: v.GetInt("async.rate_per_minute"),
	}

	if cfg.BatchMaxConcurrent <= 0 || cfg.BatchMaxConcurrent > 10 {
		cfg.BatchMaxConcurrent = 3
	}

	if cfg.AsyncRatePerMinute <= 0 {
		cfg.AsyncRatePerMinute = 10
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
