package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	FoodData   FoodDataConfig   `mapstructure:"fooddata"`
	Usage      UsageConfig      `mapstructure:"usage"`
	Image      ImageConfig      `mapstructure:"image"`
	LogLevel   string           `mapstructure:"log_level"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenRouterConfig holds model-invocation settings.
type OpenRouterConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// FoodDataConfig holds nutrient-database settings.
type FoodDataConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RequestsPerHour int           `mapstructure:"requests_per_hour"`
	Burst           int           `mapstructure:"burst"`
	MaxConcurrent   int           `mapstructure:"max_concurrent"`
}

// UsageConfig holds usage-ledger persistence settings.
type UsageConfig struct {
	RedisEnabled  bool   `mapstructure:"redis_enabled"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`
}

// ImageConfig holds image payload limits.
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// LoadConfig reads configuration from .env and the environment.
func LoadConfig() (*Config, error) {
	// A missing .env is fine in deployed environments.
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("fooddata.api_key", "FOODDATA_API_KEY")
	viper.BindEnv("fooddata.base_url", "FOODDATA_BASE_URL")
	viper.BindEnv("usage.redis_enabled", "USAGE_REDIS_ENABLED")
	viper.BindEnv("usage.redis_addr", "USAGE_REDIS_ADDR")
	viper.BindEnv("usage.redis_password", "USAGE_REDIS_PASSWORD")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Logger is not up yet, so plain stdout for the startup line.
	fmt.Println("Loading configuration",
		"openrouter_api_key:", maskAPIKey(viper.GetString("openrouter.api_key")),
		"openrouter_model:", viper.GetString("openrouter.model"),
		"fooddata_api_key:", maskAPIKey(viper.GetString("fooddata.api_key")),
	)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey shows only the first and last 4 characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "recipe-extractor")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("openrouter.model", "qwen/qwen2.5-vl-72b-instruct")
	viper.SetDefault("openrouter.max_tokens", 2048)
	viper.SetDefault("openrouter.timeout", "60s")

	viper.SetDefault("fooddata.base_url", "https://api.nal.usda.gov/fdc")
	viper.SetDefault("fooddata.timeout", "15s")
	viper.SetDefault("fooddata.requests_per_hour", 1000)
	viper.SetDefault("fooddata.burst", 10)
	viper.SetDefault("fooddata.max_concurrent", 8)

	viper.SetDefault("usage.redis_enabled", false)
	viper.SetDefault("usage.redis_addr", "localhost:6379")
	viper.SetDefault("usage.redis_db", 0)
	viper.SetDefault("usage.redis_key", "usage:reports")

	viper.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB

	viper.SetDefault("log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.OpenRouter.Timeout <= 0 {
		return fmt.Errorf("invalid openrouter timeout")
	}
	if config.FoodData.Timeout <= 0 {
		return fmt.Errorf("invalid fooddata timeout")
	}
	if config.FoodData.RequestsPerHour <= 0 {
		return fmt.Errorf("invalid fooddata requests per hour")
	}
	if config.FoodData.MaxConcurrent <= 0 {
		return fmt.Errorf("invalid fooddata max concurrent")
	}
	if config.Image.MaxSizeBytes <= 0 {
		return fmt.Errorf("invalid image max size")
	}
	return nil
}
