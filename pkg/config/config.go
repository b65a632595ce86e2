package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // grid timezone must resolve on minimal images

	"github.com/joho/godotenv"
)

// DateLayout is the calendar date format used across config, API and CLI.
const DateLayout = "2006-01-02"

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port        string
	Env         string // development, staging, production
	CORSOrigins []string

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	ESIOS ESIOSConfig

	// Domain
	Energy     EnergyConfig
	Calculator CalculatorConfig
	Quality    QualityConfig
	Scheduler  SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	Prefix   string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ESIOSConfig holds the Red Eléctrica ESIOS API configuration
type ESIOSConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	GeoID      int // 8741 = peninsular electric system
}

// EnergyConfig holds the data-source routing and indicator setup
type EnergyConfig struct {
	Timezone string

	// Dates inside [LocalStoreFrom, LocalStoreTo] are served from the local store.
	LocalStoreFrom time.Time
	LocalStoreTo   time.Time

	DemandIndicator int
	SolarIndicator  int
	WindIndicator   int
}

// CalculatorConfig holds the metric thresholds
type CalculatorConfig struct {
	SustainedHighVREPct    float64
	ShiftableCaptureFactor float64
}

// QualityConfig holds the data quality bounds (Spanish grid defaults)
type QualityConfig struct {
	MinHours              int
	SparseGenerationRatio float64
	MinDemandGW           float64
	MaxDemandGW           float64
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	DailySummaryCron string
	SweepCron        string
	SweepDays        int
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	from, err := getEnvAsDate("LOCAL_STORE_FROM", "2024-01-01")
	if err != nil {
		return nil, err
	}
	to, err := getEnvAsDate("LOCAL_STORE_TO", "2024-12-31")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", "*"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Prefix:   getEnv("REDIS_PREFIX", "vreflex"),
		},

		ESIOS: ESIOSConfig{
			APIKey:     getEnv("ESIOS_API_KEY", ""),
			BaseURL:    strings.TrimRight(getEnv("ESIOS_BASE_URL", "https://api.esios.ree.es"), "/"),
			Timeout:    getEnvAsDuration("ESIOS_TIMEOUT", "30s"),
			MaxRetries: getEnvAsInt("ESIOS_MAX_RETRIES", 3),
			GeoID:      getEnvAsInt("ESIOS_GEO_ID", 8741),
		},

		Energy: EnergyConfig{
			Timezone:        getEnv("GRID_TIMEZONE", "Europe/Madrid"),
			LocalStoreFrom:  from,
			LocalStoreTo:    to,
			DemandIndicator: getEnvAsInt("INDICATOR_DEMAND", 1293),
			SolarIndicator:  getEnvAsInt("INDICATOR_SOLAR", 1161),
			WindIndicator:   getEnvAsInt("INDICATOR_WIND", 1159),
		},

		Calculator: CalculatorConfig{
			SustainedHighVREPct:    getEnvAsFloat("SUSTAINED_HIGH_VRE_PCT", 70),
			ShiftableCaptureFactor: getEnvAsFloat("SHIFTABLE_CAPTURE_FACTOR", 0.15),
		},

		Quality: QualityConfig{
			MinHours:              getEnvAsInt("QUALITY_MIN_HOURS", 20),
			SparseGenerationRatio: getEnvAsFloat("QUALITY_SPARSE_GENERATION_RATIO", 0.5),
			MinDemandGW:           getEnvAsFloat("QUALITY_MIN_DEMAND_GW", 10),
			MaxDemandGW:           getEnvAsFloat("QUALITY_MAX_DEMAND_GW", 50),
		},

		Scheduler: SchedulerConfig{
			DailySummaryCron: getEnv("SCHEDULE_DAILY_SUMMARY", "0 30 1 * * *"),
			SweepCron:        getEnv("SCHEDULE_SUMMARY_SWEEP", "0 0 3 * * 0"),
			SweepDays:        getEnvAsInt("SUMMARY_SWEEP_DAYS", 7),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Energy.LocalStoreTo.Before(c.Energy.LocalStoreFrom) {
		return fmt.Errorf("LOCAL_STORE_TO must not be before LOCAL_STORE_FROM")
	}

	if _, err := time.LoadLocation(c.Energy.Timezone); err != nil {
		return fmt.Errorf("GRID_TIMEZONE %q: %w", c.Energy.Timezone, err)
	}

	if c.Calculator.ShiftableCaptureFactor < 0 || c.Calculator.ShiftableCaptureFactor > 1 {
		return fmt.Errorf("SHIFTABLE_CAPTURE_FACTOR must be within [0, 1]")
	}

	if c.Quality.MinDemandGW > c.Quality.MaxDemandGW {
		return fmt.Errorf("QUALITY_MIN_DEMAND_GW must not exceed QUALITY_MAX_DEMAND_GW")
	}

	return nil
}

// Location returns the grid timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Energy.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, defaultValue), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnvAsDate parses a YYYY-MM-DD value; unlike the other getters a bad value is an error
func getEnvAsDate(key string, defaultValue string) (time.Time, error) {
	valueStr := getEnv(key, defaultValue)
	date, err := time.Parse(DateLayout, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", key, err)
	}
	return date, nil
}
