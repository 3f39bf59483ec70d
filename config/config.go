package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server and CLI read at startup.
type Config struct {
	Port        int           `mapstructure:"port"`
	Env         string        `mapstructure:"go_env"`
	Domain      string        `mapstructure:"domain"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
	Timezone    string        `mapstructure:"timezone"`
	Mongo       MongoConfig   `mapstructure:",squash"`
	Redis       RedisConfig   `mapstructure:",squash"`
	Auth        AuthConfig    `mapstructure:",squash"`
	Groq        GroqConfig    `mapstructure:",squash"`
	Storage     StorageConfig `mapstructure:",squash"`
	Log         LogConfig     `mapstructure:",squash"`
}

type MongoConfig struct {
	URI      string `mapstructure:"mongo_uri"`
	Database string `mapstructure:"mongo_db"`
}

type RedisConfig struct {
	Address         string `mapstructure:"redis_address"`
	Password        string `mapstructure:"redis_password"`
	IssueLimitQueue string `mapstructure:"redis_queue_for_issue_limit"`
	IssueDailyLimit int    `mapstructure:"issue_daily_limit"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"jwt_ttl"`
	GoogleClientID string        `mapstructure:"google_client_id"`
}

// GroqConfig configures the OpenAI-compatible chat-completion endpoint used
// for department classification. An empty APIKey disables classification.
type GroqConfig struct {
	APIKey  string `mapstructure:"groq_api_key"`
	Model   string `mapstructure:"groq_model"`
	BaseURL string `mapstructure:"groq_base_url"`
}

// StorageConfig configures the S3-compatible attachment store. An empty
// Endpoint disables attachment uploads.
type StorageConfig struct {
	Endpoint  string `mapstructure:"minio_endpoint"`
	AccessKey string `mapstructure:"minio_access_key"`
	SecretKey string `mapstructure:"minio_secret_key"`
	Bucket    string `mapstructure:"minio_bucket"`
	UseSSL    bool   `mapstructure:"minio_use_ssl"`
}

type LogConfig struct {
	Level  string `mapstructure:"log_level"`
	Format string `mapstructure:"log_format"`
}

// IsProduction reports whether GO_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

var envKeys = []string{
	"port", "go_env", "domain", "cors_origins", "timezone",
	"mongo_uri", "mongo_db",
	"redis_address", "redis_password", "redis_queue_for_issue_limit", "issue_daily_limit",
	"jwt_secret", "jwt_ttl", "google_client_id",
	"groq_api_key", "groq_model", "groq_base_url",
	"minio_endpoint", "minio_access_key", "minio_secret_key", "minio_bucket", "minio_use_ssl",
	"log_level", "log_format",
}

// Load reads .env (if present) and the process environment.
// Priority: environment > .env > defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("timezone", "Asia/Kolkata")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "civictrack")
	v.SetDefault("redis_queue_for_issue_limit", "issue-limit")
	v.SetDefault("issue_daily_limit", 20)
	v.SetDefault("jwt_ttl", "168h")
	v.SetDefault("groq_model", "llama-3.1-8b-instant")
	v.SetDefault("groq_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("minio_bucket", "issue-attachments")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	// older deployments export MONGODB_URI
	if err := v.BindEnv("mongo_uri", "MONGO_URI", "MONGODB_URI"); err != nil {
		return nil, fmt.Errorf("bind env mongo_uri: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.CORSOrigins = splitOrigins(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET must be set")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT must be between 1 and 65535")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("config: MONGO_URI must be set")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive")
	}
	return nil
}

// Location resolves the configured business timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Timezone
	if tz == "" {
		tz = "Asia/Kolkata"
	}
	return time.LoadLocation(tz)
}

// CORS_ORIGINS arrives from the environment as one comma separated string.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
