package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port           string
	Env            string
	LogLevel       string
	UploadDir      string
	MaxUploadBytes int64

	// Import
	ImportBatchSize      int
	ImportEnforceBalance bool
	CSVDelimiter         rune
}

const (
	defaultImportBatchSize = 500
	defaultMaxUploadBytes  = 10 << 20
)

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	return fromEnv(), nil
}

// fromEnv builds a Config from the current environment without touching .env.
func fromEnv() *Config {
	config := &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", ""),
		UploadDir: getEnv("UPLOAD_DIR", os.TempDir()),

		ImportEnforceBalance: getEnvBool("IMPORT_ENFORCE_BALANCE", false),
		CSVDelimiter:         ',',
	}

	config.ImportBatchSize = getEnvInt("IMPORT_BATCH_SIZE", defaultImportBatchSize)
	if config.ImportBatchSize <= 0 {
		log.Printf("Warning: IMPORT_BATCH_SIZE must be positive, falling back to %d\n", defaultImportBatchSize)
		config.ImportBatchSize = defaultImportBatchSize
	}

	config.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes))
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = defaultMaxUploadBytes
	}

	if delim := getEnv("CSV_DELIMITER", ""); delim != "" {
		config.CSVDelimiter = []rune(delim)[0]
	}

	appConfig = config
	return config
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return b
}
