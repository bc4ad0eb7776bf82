package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	WhatsApp WhatsAppConfig
	Operator OperatorConfig
	Booking  BookingConfig
	CORS     CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// WhatsAppConfig holds WhatsApp Cloud API credentials and the webhook
// verification secret.
type WhatsAppConfig struct {
	APIURL        string
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
}

// OperatorConfig identifies the operator whose inbound messages drive
// confirmations.
type OperatorConfig struct {
	Phone string
	Name  string
}

// BookingConfig holds the hold/sweep timing knobs
type BookingConfig struct {
	HoldDuration    time.Duration
	ExpirationSweep time.Duration
	ReminderSweep   time.Duration
	ReminderLead    time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		WhatsApp: WhatsAppConfig{
			APIURL:        getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v18.0"),
			AccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			VerifyToken:   getEnv("WEBHOOK_VERIFY_TOKEN", ""),
		},
		Operator: OperatorConfig{
			Phone: getEnv("OPERATOR_PHONE", ""),
			Name:  getEnv("OPERATOR_NAME", "Operator"),
		},
		Booking: BookingConfig{
			HoldDuration:    time.Duration(getEnvAsInt("HOLD_DURATION_MINUTES", 10)) * time.Minute,
			ExpirationSweep: time.Duration(getEnvAsInt("EXPIRATION_SWEEP_MINUTES", 5)) * time.Minute,
			ReminderSweep:   time.Duration(getEnvAsInt("REMINDER_SWEEP_MINUTES", 30)) * time.Minute,
			ReminderLead:    time.Duration(getEnvAsInt("REMINDER_LEAD_HOURS", 6)) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.WhatsApp.VerifyToken == "" {
		return fmt.Errorf("WEBHOOK_VERIFY_TOKEN is required")
	}

	if c.Server.Environment == "production" {
		if c.WhatsApp.AccessToken == "" {
			return fmt.Errorf("WHATSAPP_ACCESS_TOKEN is required in production")
		}
		if c.WhatsApp.PhoneNumberID == "" {
			return fmt.Errorf("WHATSAPP_PHONE_NUMBER_ID is required in production")
		}
		if c.Operator.Phone == "" {
			return fmt.Errorf("OPERATOR_PHONE is required in production")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
