package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB   int    `mapstructure:"REDIS_SESSION_DB"`
	RedisHoldQueueDB int    `mapstructure:"REDIS_HOLD_QUEUE_DB"`

	// Gemini classifier.
	GeminiAPIKey            string  `mapstructure:"GEMINI_API_KEY"`
	ClassifierTimeoutSecs   int     `mapstructure:"CLASSIFIER_TIMEOUT_SECS"`
	ClassifierMinConfidence float64 `mapstructure:"CLASSIFIER_MIN_CONFIDENCE"`

	// Conversation and booking policy.
	SessionIdleTTLMins int `mapstructure:"SESSION_IDLE_TTL_MINS"`
	HoldTTLMins        int `mapstructure:"HOLD_TTL_MINS"`
	SearchPageSize     int `mapstructure:"SEARCH_PAGE_SIZE"`
	RepoRetryAttempts  int `mapstructure:"REPO_RETRY_ATTEMPTS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_HOLD_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("CLASSIFIER_TIMEOUT_SECS", 5)
	viper.SetDefault("CLASSIFIER_MIN_CONFIDENCE", 0.6)
	viper.SetDefault("SESSION_IDLE_TTL_MINS", 30)
	viper.SetDefault("HOLD_TTL_MINS", 5)
	viper.SetDefault("SEARCH_PAGE_SIZE", 5)
	viper.SetDefault("REPO_RETRY_ATTEMPTS", 3)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

// IsProduction checks if the environment is production.
func IsProduction() bool {
	return GetEnv() == "production"
}
