package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Donation                  DonationConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	AppURL                    string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// DonationConfig holds the tunable business rules for donation scheduling
// and blood-request fulfillment.
type DonationConfig struct {
	// MinIntervalDays is the minimum number of days between two whole-blood
	// donations by the same donor.
	MinIntervalDays int
	// CancellationWindowHours is how long before an appointment a donor may
	// still cancel it.
	CancellationWindowHours int
	// EmergencyEscalationHours: requests required within this many hours of
	// creation are escalated to emergency urgency.
	EmergencyEscalationHours int
	// SlotCapacityDivisor converts a blood bank's capacity into the maximum
	// number of concurrent appointments per hour slot.
	SlotCapacityDivisor int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "bloodlink"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	minIntervalDays, err := strconv.Atoi(getEnv("MIN_DONATION_INTERVAL_DAYS", "56"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_DONATION_INTERVAL_DAYS: %w", err)
	}

	cancellationWindowHours, err := strconv.Atoi(getEnv("CANCELLATION_WINDOW_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid CANCELLATION_WINDOW_HOURS: %w", err)
	}

	emergencyEscalationHours, err := strconv.Atoi(getEnv("EMERGENCY_ESCALATION_HOURS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMERGENCY_ESCALATION_HOURS: %w", err)
	}

	slotCapacityDivisor, err := strconv.Atoi(getEnv("SLOT_CAPACITY_DIVISOR", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLOT_CAPACITY_DIVISOR: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:             getEnv("PORT", "3001"),
		Origin:           getEnv("ORIGIN", "http://localhost:4200"),
		Environment:      getEnv("APP_ENV", "development"),
		JWTSecret:        getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:         dbConfig,
		Donation: DonationConfig{
			MinIntervalDays:          minIntervalDays,
			CancellationWindowHours:  cancellationWindowHours,
			EmergencyEscalationHours: emergencyEscalationHours,
			SlotCapacityDivisor:      slotCapacityDivisor,
		},
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		AppURL:                    getEnv("APP_URL", "http://localhost:3001"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
