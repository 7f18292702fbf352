package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	LogLevel   string

	UpstreamURL string
	JWTSecret   []byte

	KafkaBrokers []string

	// commerceapi only; empty means in-memory sqlite.
	DatabaseURL string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment", err)
	}

	return &Config{
		ServerPort:   EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:     EnvDefault("LOG_LEVEL", "info"),
		UpstreamURL:  os.Getenv("UPSTREAM_URL"),
		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
	}
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
