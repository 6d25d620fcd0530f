package config

import (
	"os"
)

// Config holds all configuration for the library service
type Config struct {
	ServiceName string
	DBDSN       string
	RabbitMQURL string
	HTTPOpsPort string
	LogLevel    string
}

// Load loads configuration from environment variables. The default DSN is
// the in-process SQLite store; an empty RABBITMQ_URL disables the event
// bridge entirely.
func Load() *Config {
	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "library"),
		DBDSN:       getEnv("DB_DSN", ":memory:"),
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		HTTPOpsPort: getEnv("HTTP_OPS_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
