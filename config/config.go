package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the process needs from the environment.
// Clients receive it (or a sub-struct) through their constructors; there
// are no package-level token or URL globals, and no credentials in source.
type Config struct {
	Port       string
	DBURL      string
	JWTSecret  string
	CORSOrigin string

	PushinPay PushinPayConfig
}

type PushinPayConfig struct {
	BaseURL string
	Token   string

	// Optional shared secret checked on the inbound payment webhook.
	// Empty disables the check.
	WebhookSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	return &Config{
		Port:       getEnv("PORT", "8080"),
		DBURL:      mustEnv("DB_URL"),
		JWTSecret:  mustEnv("JWT_SECRET"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),

		PushinPay: PushinPayConfig{
			BaseURL:       getEnv("PUSHINPAY_BASE_URL", "https://api.pushinpay.com.br/api"),
			Token:         mustEnv("PUSHINPAY_TOKEN"),
			WebhookSecret: getEnv("PUSHINPAY_WEBHOOK_SECRET", ""),
		},
	}
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
