package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("PORT", "9090")
	t.Setenv("READ_TIMEOUT", "5")
	t.Setenv("REPORT_TIMEZONE", "Asia/Jakarta")
	t.Setenv("SEGMENT_VIP_MIN_BOOKINGS", "8")
	t.Setenv("SEGMENT_VIP_MIN_SPEND", "25000.50")
	t.Setenv("MONGO_ENSURE_INDEXES", "true")
	t.Setenv("FETCH_PAGE_SIZE", "not-a-number")
	t.Setenv("API_RATE_LIMIT", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "Asia/Jakarta", cfg.ReportTimezone.String())
	assert.Equal(t, 8, cfg.VIPMinBookings)
	assert.InDelta(t, 25000.5, cfg.VIPMinSpend, 1e-9)
	assert.True(t, cfg.MongoEnsureIndexes)
	// unparseable numbers keep their default
	assert.Equal(t, 500, cfg.FetchPageSize)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, 40, cfg.RateBurst)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", StoreMemory)

	t.Run("timezone", func(t *testing.T) {
		t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "REPORT_TIMEZONE")
	})
	t.Run("vip spend", func(t *testing.T) {
		t.Setenv("SEGMENT_VIP_MIN_SPEND", "lots")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "SEGMENT_VIP_MIN_SPEND")
	})
	t.Run("driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "cassandra")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "cassandra")
	})
}

func validConfig() *Config {
	return &Config{
		StoreDriver:         StoreMongo,
		MongoURI:            "mongodb://localhost:27017",
		MongoDB:             "agency",
		VIPMinBookings:      5,
		VIPMinSpend:         10000,
		ActiveRecencyMonths: 3,
		TopN:                10,
		MaxRecordsPerSource: 50000,
		MergeConcurrency:    4,
		FetchPageSize:       500,
		LogQueryMaxLimit:    500,
		LogStatsScanCap:     100000,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"mongo without database", func(c *Config) { c.MongoDB = "" }, "MONGO_DB"},
		{"firestore without project", func(c *Config) { c.StoreDriver = StoreFirestore }, "FIRESTORE_PROJECT_ID"},
		{"zero concurrency", func(c *Config) { c.MergeConcurrency = 0 }, "MERGE_CONCURRENCY"},
		{"negative page size", func(c *Config) { c.FetchPageSize = -1 }, "FETCH_PAGE_SIZE"},
		{"negative recency", func(c *Config) { c.ActiveRecencyMonths = -1 }, "SEGMENT_ACTIVE_RECENCY_MONTHS"},
		{"negative spend", func(c *Config) { c.VIPMinSpend = -5 }, "SEGMENT_VIP_MIN_SPEND"},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }, "API_RATE_LIMIT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}

	c := validConfig()
	c.StoreDriver = StoreFirestore
	c.FirestoreProjectID = "agency-prod"
	assert.NoError(t, c.Validate())
}
