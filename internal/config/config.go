package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port          string
	Env           string
	PublicBaseURL string

	// n8n webhooks
	ChatbotWebhookURL  string
	UserDataWebhookURL string
	ProxyPrefix        string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Auth
	AuthRequired  bool
	JWTSecret     string
	DefaultUserID string

	// Profile refresh
	ProfileRefreshSchedule string
	ProfileCacheTTLMinutes int

	// Chat
	ChatRateLimitPerMinute int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	port := getEnvOrDefault("PORT", "8080")
	cfg := &Config{
		Port:                   port,
		Env:                    getEnvOrDefault("ENV", "development"),
		PublicBaseURL:          getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:"+port),
		ChatbotWebhookURL:      strings.TrimSpace(os.Getenv("N8N_CHATBOT_WEBHOOK")),
		UserDataWebhookURL:     strings.TrimSpace(os.Getenv("N8N_USER_DATA_WEBHOOK")),
		ProxyPrefix:            getEnvOrDefault("N8N_PROXY_PREFIX", "/api/n8n"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		RedisURL:               os.Getenv("REDIS_URL"),
		AuthRequired:           getEnvAsBoolOrDefault("AUTH_REQUIRED", false),
		DefaultUserID:          getEnvOrDefault("DEFAULT_USER_ID", "1"),
		ProfileRefreshSchedule: getEnvOrDefault("PROFILE_REFRESH_SCHEDULE", "@every 10m"),
		ProfileCacheTTLMinutes: getEnvAsIntOrDefault("PROFILE_CACHE_TTL_MINUTES", 10),
		ChatRateLimitPerMinute: getEnvAsIntOrDefault("CHAT_RATE_LIMIT_PER_MINUTE", 30),
		FrontendURL:            getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.AuthRequired {
		cfg.JWTSecret = mustGetEnv("JWT_SECRET")
	} else {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}

	return cfg
}

// IsDevelopment reports whether the dev webhook proxy should be used.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	return env == "development" || env == "dev"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
