package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Default base URLs for the Telegram Bot API and the mirror used when the
// official endpoint is unreachable.
const (
	DefaultTelegramAPIURL    = "https://api.telegram.org"
	DefaultTelegramMirrorURL = "https://tgapi.kairod.cfd"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	SQLitePath  string
	RedisURL    string

	// Auth
	JWTSecret          string
	AdminUser          string
	AdminPass          string
	AdminPassHash      string // bcrypt; takes precedence over AdminPass
	TurnstileSecretKey string

	// Telegram
	BotToken          string // process-wide default bot credential
	TelegramAPIURL    string
	TelegramMirrorURL string

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         os.Getenv("SQLITE_PATH"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		AdminUser:          getEnv("ADMIN_USER", "admin"),
		AdminPass:          getEnv("ADMIN_PASS", "password"),
		AdminPassHash:      os.Getenv("ADMIN_PASS_HASH"),
		TurnstileSecretKey: os.Getenv("TURNSTILE_SECRET_KEY"),
		BotToken:           os.Getenv("BOT_TOKEN"),
		TelegramAPIURL:     getEnv("TELEGRAM_API_URL", DefaultTelegramAPIURL),
		TelegramMirrorURL:  getEnv("TELEGRAM_MIRROR_URL", DefaultTelegramMirrorURL),
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	// In production, require a real database and a real signing secret
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == "change-me" {
			panic("JWT_SECRET is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
