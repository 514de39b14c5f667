package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	DB        DBConfig
	Geocoding GeocodingConfig
	Seeder    SeederConfig
	Metrics   MetricsConfig
}

// AppConfig identifies the service in health responses and logs
type AppConfig struct {
	Name    string
	Version string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port string
	// Reload switches the process to development mode (verbose, human-readable logs).
	Reload      bool
	CORSOrigins []string
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type         DBType
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != "cities" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// GeocodingConfig holds settings for the external geocoding provider
type GeocodingConfig struct {
	BaseURL   string
	UserAgent string
	Language  string
	Timeout   time.Duration
	// RateLimit is the maximum number of outbound requests per second, 0 means unlimited.
	RateLimit float64
	// CacheTTL controls memoisation of successful lookups, 0 disables the cache.
	CacheTTL time.Duration
}

// SeederConfig holds settings for data import
type SeederConfig struct {
	DataDir       string
	FileName      string
	BatchSize     int
	MinPopulation int
	AutoSeed      bool
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	config := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "City API"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Server: ServerConfig{
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        getEnv("PORT", "8000"),
			Reload:      getEnvAsBool("RELOAD", false),
			CORSOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		},
		DB: DBConfig{
			Type:         dbType,
			URL:          getEnv("DATABASE_URL", ""),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "cities"),
			Password:     getEnv("DB_PASSWORD", "cities_password"),
			Name:         getEnv("DB_NAME", "cities"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Geocoding: GeocodingConfig{
			BaseURL:   getEnv("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org/search"),
			UserAgent: getEnv("GEOCODING_USER_AGENT", "city-api/1.0"),
			Language:  getEnv("GEOCODING_LANGUAGE", "ru"),
			Timeout:   time.Duration(getEnvAsInt("GEOCODING_TIMEOUT_SECONDS", 10)) * time.Second,
			RateLimit: getEnvAsFloat("GEOCODING_RATE_LIMIT", 1),
			CacheTTL:  time.Duration(getEnvAsInt("GEOCODING_CACHE_TTL_SECONDS", 3600)) * time.Second,
		},
		Seeder: SeederConfig{
			DataDir:       getEnv("SEEDER_DATA_DIR", "data"),
			FileName:      getEnv("SEEDER_FILE", "cities15000.txt"),
			BatchSize:     getEnvAsInt("SEEDER_BATCH_SIZE", 1000),
			MinPopulation: getEnvAsInt("SEEDER_MIN_POPULATION", 100000),
			AutoSeed:      getEnvAsBool("SEEDER_AUTO", false),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if config.Geocoding.BaseURL == "" {
		return nil, fmt.Errorf("GEOCODING_BASE_URL must not be empty")
	}
	if config.Geocoding.Timeout <= 0 {
		config.Geocoding.Timeout = 10 * time.Second
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
