package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	StoragePath     string
	FeedURLs        []string
	FeedCacheTTL    time.Duration
	WebhookURL      string
	WebhookSecret   string
	WebhookTimeout  time.Duration
	PublicOrigin    string
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:    envOrDefault("HTTP_ADDR", ":8080"),
		StoragePath: envOrDefault("STORAGE_PATH", "gfstore.json"),
		FeedURLs: envList("FEED_URLS", []string{
			"https://gfstore.store/data/products.json",
			"/data/products.json",
			"data/products.json",
		}),
		FeedCacheTTL:    envDuration("FEED_CACHE_TTL_SECONDS", 5*time.Minute),
		WebhookURL:      envOrDefault("WEBHOOK_URL", ""),
		WebhookSecret:   envOrDefault("WEBHOOK_SECRET", ""),
		WebhookTimeout:  envDuration("WEBHOOK_TIMEOUT_SECONDS", 10*time.Second),
		PublicOrigin:    envOrDefault("PUBLIC_ORIGIN", "https://gfstore.store"),
		SessionTTL:      envDuration("SESSION_TTL_SECONDS", 72*time.Hour),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		AllowedOrigins:  envList("ALLOWED_ORIGINS", []string{"*"}),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
