package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendMemory   = "memory"
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
	StoreBackendSqlite   = "sqlite"

	AnonymousModeNone      = "none"
	AnonymousModeEphemeral = "ephemeral"
	AnonymousModePersist   = "persist"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ai       AIConfig
	Chat     ChatConfig
	Infra    InfraConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Backend     string // "memory", "file", "postgres" or "sqlite"
	Connection  string
	FilePath    string
	AutoMigrate bool
}

type AuthConfig struct {
	JwtSecret string
	JwtExpiry time.Duration
}

type AIConfig struct {
	LLMProvider string // "gemini", "openai" or "ollama"
	LLMModel    string
	ApiKey      string
	BaseURL     string
	Timeout     time.Duration
}

type ChatConfig struct {
	AnonymousMode string
	AnonymousTTL  time.Duration
}

type InfraConfig struct {
	NatsURL         string
	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration
	OtelEnabled     bool
	OtelEndpoint    string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("PORT", "5000"),
			Environment:        getEnv("APP_ENV", EnvDevelopment),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", StoreBackendMemory)),
			Connection:  getEnv("DB_CONNECTION_STRING", ""),
			FilePath:    getEnv("STORE_FILE_PATH", "data/store.json"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
			JwtExpiry: getEnvAsDuration("JWT_EXPIRY", time.Hour),
		},
		Ai: AIConfig{
			LLMProvider: strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
			LLMModel:    getEnv("LLM_MODEL", ""),
			ApiKey:      getEnv("LLM_API_KEY", getEnv("GOOGLE_GEMINI_API_KEY", "")),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		},
		Chat: ChatConfig{
			AnonymousMode: strings.ToLower(getEnv("ANONYMOUS_CHAT_MODE", AnonymousModeNone)),
			AnonymousTTL:  getEnvAsDuration("ANONYMOUS_CHAT_TTL", time.Hour),
		},
		Infra: InfraConfig{
			NatsURL:         getEnv("NATS_URL", ""),
			RedisURL:        getEnv("REDIS_URL", ""),
			RateLimitMax:    getEnvAsInt("CHAT_RATE_LIMIT", 30),
			RateLimitWindow: getEnvAsDuration("CHAT_RATE_LIMIT_WINDOW", time.Minute),
			OtelEnabled:     getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JwtSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.JwtExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}

	switch c.Database.Backend {
	case StoreBackendMemory:
	case StoreBackendFile:
		if c.Database.FilePath == "" {
			return errors.New("STORE_FILE_PATH is required for the file backend")
		}
	case StoreBackendPostgres, StoreBackendSqlite:
		if c.Database.Connection == "" {
			return fmt.Errorf("DB_CONNECTION_STRING is required for the %s backend", c.Database.Backend)
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND: %s", c.Database.Backend)
	}

	switch c.Chat.AnonymousMode {
	case AnonymousModeNone, AnonymousModeEphemeral, AnonymousModePersist:
	default:
		return fmt.Errorf("unsupported ANONYMOUS_CHAT_MODE: %s", c.Chat.AnonymousMode)
	}

	switch c.Ai.LLMProvider {
	case "gemini", "openai":
		if c.Ai.ApiKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for the %s provider", c.Ai.LLMProvider)
		}
	case "ollama":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %s", c.Ai.LLMProvider)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
