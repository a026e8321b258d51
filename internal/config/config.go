// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	JWTSecretKey    string
	DatabasePath    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	ChatModel       string
	ModerationModel string
	ProxyBaseURL    string
	DefaultCity     string
	DefaultTimezone string
	Environment     string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		JWTSecretKey:    getEnv("JWT_SECRET_KEY", ""),
		DatabasePath:    getEnv("DATABASE_PATH", "personachat.db"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		ChatModel:       getEnv("CHAT_MODEL", "gpt-5-nano"),
		ModerationModel: getEnv("MODERATION_MODEL", "omni-moderation-latest"),
		ProxyBaseURL:    getEnv("PROXY_BASE_URL", ""),
		DefaultCity:     getEnv("DEFAULT_CITY", "New York"),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "America/New_York"),
		Environment:     env,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
