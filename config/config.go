package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs from the environment.
type Config struct {
	DiscordToken string

	// Cloudflare KV credentials for the record store.
	CFAccountID   string
	CFNamespaceID string
	CFAPIToken    string

	// Daily notification time, local clock.
	NotifyHour   int
	NotifyMinute int

	// Address for the ops endpoints; empty disables the server.
	OpsAddr string

	LogLevel    string
	Development bool
}

// Load reads configuration from the environment. A .env file is honored if
// present but never required.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		CFAccountID:   os.Getenv("CF_ACCOUNT_ID"),
		CFNamespaceID: os.Getenv("CF_NAMESPACE_ID"),
		CFAPIToken:    os.Getenv("CF_API_TOKEN"),
		NotifyHour:    getEnvInt("NOTIFY_HOUR", 8),
		NotifyMinute:  getEnvInt("NOTIFY_MINUTE", 0),
		OpsAddr:       getEnv("OPS_ADDR", "127.0.0.1:8790"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Development:   os.Getenv("APP_ENV") == "development",
	}

	if cfg.DiscordToken == "" {
		return cfg, fmt.Errorf("DISCORD_TOKEN environment variable not set")
	}
	if cfg.CFAccountID == "" || cfg.CFNamespaceID == "" || cfg.CFAPIToken == "" {
		return cfg, fmt.Errorf("CF_ACCOUNT_ID, CF_NAMESPACE_ID and CF_API_TOKEN must all be set")
	}
	if cfg.NotifyHour < 0 || cfg.NotifyHour > 23 || cfg.NotifyMinute < 0 || cfg.NotifyMinute > 59 {
		return cfg, fmt.Errorf("NOTIFY_HOUR/NOTIFY_MINUTE out of range: %02d:%02d", cfg.NotifyHour, cfg.NotifyMinute)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
