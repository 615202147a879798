package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. It is loaded once in main and
// passed by handle into whatever needs it; there is no package-global state.
type Config struct {
	Port        string
	Environment string

	MongoURI    string
	MongoDBName string

	FinnhubBaseURL string
	FinnhubAPIKey  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	JWTSecret string

	AlertCheckInterval time.Duration
	QuoteFetchWorkers  int
	DeliveryLogPath    string
}

// LoadConfig loads environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MongoURI:    getEnv("MONGODB_URI", ""),
		MongoDBName: getEnv("MONGODB_DB", "signalist"),

		FinnhubBaseURL: getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		FinnhubAPIKey:  getEnv("FINNHUB_API_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("EMAIL_USER", ""),
		SMTPPassword: getEnv("EMAIL_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", getEnv("EMAIL_USER", "")),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),

		AlertCheckInterval: getEnvDuration("ALERT_CHECK_INTERVAL", 5*time.Minute),
		QuoteFetchWorkers:  getEnvInt("QUOTE_FETCH_WORKERS", 4),
		DeliveryLogPath:    getEnv("DELIVERY_LOG_PATH", "data/notifications.db"),
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDuration gets a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
