package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Gateway  GatewayConfig
	Checkout CheckoutConfig
	Payment  PaymentConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// GatewayConfig holds booking backend configuration.
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CheckoutConfig holds payment provider checkout configuration. These were
// once literals in the client; they are deployment inputs, not logic.
type CheckoutConfig struct {
	Key            string
	DisplayName    string
	ThemeColor     string
	PrefillName    string
	PrefillEmail   string
	PrefillContact string
}

// PaymentConfig holds payment flow tuning.
type PaymentConfig struct {
	// InFlightTTL bounds the per-booking payment lock. An abandoned widget
	// never resumes, so the lock must expire on its own.
	InFlightTTL time.Duration

	// PendingCallbackTTL bounds how long an unresolved widget continuation
	// is retained.
	PendingCallbackTTL time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "booking_payments"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "booking-payment-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("BOOKING_API_URL", "http://localhost:9090/api"),
			Timeout: getDurationEnv("BOOKING_API_TIMEOUT", 15*time.Second),
		},
		Checkout: CheckoutConfig{
			Key:            getEnv("CHECKOUT_PROVIDER_KEY", ""),
			DisplayName:    getEnv("CHECKOUT_DISPLAY_NAME", "Airline Booking Payment"),
			ThemeColor:     getEnv("CHECKOUT_THEME_COLOR", "#3399cc"),
			PrefillName:    getEnv("CHECKOUT_PREFILL_NAME", ""),
			PrefillEmail:   getEnv("CHECKOUT_PREFILL_EMAIL", ""),
			PrefillContact: getEnv("CHECKOUT_PREFILL_CONTACT", ""),
		},
		Payment: PaymentConfig{
			InFlightTTL:        getDurationEnv("PAYMENT_IN_FLIGHT_TTL", 15*time.Minute),
			PendingCallbackTTL: getDurationEnv("PAYMENT_PENDING_CALLBACK_TTL", time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
