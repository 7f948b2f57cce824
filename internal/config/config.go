package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	Environment string
	LogLevel    string

	ServerPort int

	// DatabaseURL selects the durable store. Empty means the ephemeral
	// in-memory store is used instead.
	DatabaseURL string

	// KafkaBrokers enables the order-event export sink when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// ESURL enables the search index when non-empty.
	ESURL      string
	ESUser     string
	ESPassword string

	EnableDocs bool
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env not loaded: %v", err)
	}

	cfg := Config{
		ServiceName: EnvDefault("SERVICE_NAME", "orders-api"),
		Environment: EnvDefault("ENVIRONMENT", "development"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "order_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),

		EnableDocs: EnvBool("ENABLE_DOCS"),
	}
	if cfg.Environment == "development" {
		cfg.EnableDocs = true
	}
	return cfg
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

func EnvBool(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}
