package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL   string
	TokenPath    string
	HTTPTimeout  time.Duration
	SendDebounce time.Duration
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		APIBaseURL:   getEnv("HANGCHAT_API_URL", "http://localhost:8080"),
		TokenPath:    getEnv("HANGCHAT_TOKEN_FILE", ""),
		HTTPTimeout:  getDuration("HANGCHAT_HTTP_TIMEOUT", 10*time.Second),
		SendDebounce: getDuration("HANGCHAT_SEND_DEBOUNCE", 600*time.Millisecond),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}

	return d
}
