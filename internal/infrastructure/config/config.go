// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    float64
	RateBurst    int

	// Store
	StoreDriver string

	// MongoDB
	MongoURI           string
	MongoDB            string
	MongoUser          string
	MongoPassword      string
	MongoEnsureIndexes bool

	// Firestore
	FirestoreProjectID string

	// PostgreSQL employee directory, optional
	PostgresURI string

	// Reporting
	ReportTimezone      *time.Location
	VIPMinBookings      int
	VIPMinSpend         float64
	ActiveRecencyMonths int
	TopN                int

	// Limits
	MaxRecordsPerSource int
	MergeConcurrency    int
	FetchPageSize       int
	LogQueryMaxLimit    int
	LogStatsScanCap     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	loc, err := time.LoadLocation(getEnv("REPORT_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE: %w", err)
	}

	vipSpend, err := strconv.ParseFloat(getEnv("SEGMENT_VIP_MIN_SPEND", "10000"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SEGMENT_VIP_MIN_SPEND: %w", err)
	}

	rateLimit, err := strconv.ParseFloat(getEnv("API_RATE_LIMIT", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid API_RATE_LIMIT: %w", err)
	}

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 60)) * time.Second,
		RateLimit:    rateLimit,
		RateBurst:    getEnvAsInt("API_RATE_BURST", 40),

		StoreDriver: getEnv("STORE_DRIVER", StoreMongo),

		MongoURI:           getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGO_DB", "agency"),
		MongoUser:          getEnv("MONGO_USER", ""),
		MongoPassword:      getEnv("MONGO_PASSWORD", ""),
		MongoEnsureIndexes: getEnvAsBool("MONGO_ENSURE_INDEXES", false),

		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		ReportTimezone:      loc,
		VIPMinBookings:      getEnvAsInt("SEGMENT_VIP_MIN_BOOKINGS", 5),
		VIPMinSpend:         vipSpend,
		ActiveRecencyMonths: getEnvAsInt("SEGMENT_ACTIVE_RECENCY_MONTHS", 3),
		TopN:                getEnvAsInt("TOP_N", 10),

		MaxRecordsPerSource: getEnvAsInt("MERGE_MAX_RECORDS_PER_SOURCE", 50000),
		MergeConcurrency:    getEnvAsInt("MERGE_CONCURRENCY", 4),
		FetchPageSize:       getEnvAsInt("FETCH_PAGE_SIZE", 500),
		LogQueryMaxLimit:    getEnvAsInt("LOG_QUERY_MAX_LIMIT", 500),
		LogStatsScanCap:     getEnvAsInt("LOG_STATS_SCAN_CAP", 100000),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDB == "" {
			return fmt.Errorf("MONGODB_DSN and MONGO_DB are required for store driver %q", c.StoreDriver)
		}
	case StoreFirestore:
		if c.FirestoreProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required for store driver %q", c.StoreDriver)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	positive := map[string]int{
		"SEGMENT_VIP_MIN_BOOKINGS":     c.VIPMinBookings,
		"MERGE_MAX_RECORDS_PER_SOURCE": c.MaxRecordsPerSource,
		"MERGE_CONCURRENCY":            c.MergeConcurrency,
		"FETCH_PAGE_SIZE":              c.FetchPageSize,
		"LOG_QUERY_MAX_LIMIT":          c.LogQueryMaxLimit,
		"LOG_STATS_SCAN_CAP":           c.LogStatsScanCap,
		"TOP_N":                        c.TopN,
	}
	for key, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", key, v)
		}
	}
	if c.ActiveRecencyMonths < 0 {
		return fmt.Errorf("SEGMENT_ACTIVE_RECENCY_MONTHS must not be negative, got %d", c.ActiveRecencyMonths)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must not be negative, got %v", c.RateLimit)
	}
	if c.VIPMinSpend < 0 {
		return fmt.Errorf("SEGMENT_VIP_MIN_SPEND must not be negative, got %v", c.VIPMinSpend)
	}
	return nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
