package common

import (
	"os"
	"strconv"
	"time"

	"github.com/carrierdesk/rates-tracker/constants"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Ingest    IngestConfig
	Extractor ExtractorConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// IngestConfig holds rate-sheet ingestion configuration
type IngestConfig struct {
	// PDFPath and FlatPath select the source document; FlatPath wins when
	// both are set (flat-file rehydration rebuilds the table from scratch).
	PDFPath    string
	FlatPath   string
	PageRanges []constants.PageRange
}

// ExtractorConfig holds the table-extraction sidecar configuration
type ExtractorConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries uint
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	pageRanges := constants.DefaultPageRanges
	if spec := getEnv("RATE_PAGE_RANGES", ""); spec != "" {
		if parsed := constants.ParsePageRanges(spec); len(parsed) > 0 {
			pageRanges = parsed
		}
	}
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "file:rates.db?_pragma=busy_timeout(5000)"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Ingest: IngestConfig{
			PDFPath:    getEnv("RATES_PDF_PATH", ""),
			FlatPath:   getEnv("RATES_FLAT_PATH", ""),
			PageRanges: pageRanges,
		},
		Extractor: ExtractorConfig{
			URL:        getEnv("EXTRACTOR_URL", ""),
			Timeout:    getEnvAsDuration("EXTRACTOR_TIMEOUT", 60*time.Second),
			MaxRetries: uint(getEnvAsInt("EXTRACTOR_MAX_RETRIES", 3)),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Ingest.PDFPath != "" && c.Extractor.URL == "" {
		return NewAppError("CONFIG_ERROR", "EXTRACTOR_URL is required when RATES_PDF_PATH is set", ErrInvalidInput)
	}
	return nil
}
