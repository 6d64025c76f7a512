package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cesargomez89/mixtape/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port        string
	DBDriver    string
	DBDSN       string
	BlobBackend string
	UploadsDir  string
	ScratchDir  string
	FFprobePath string
	CORSOrigins string
	LogLevel    string
	LogFormat   string
	LogFile     string
	Minio       MinioConfig
	MaxUploadMB int64
}

// MinioConfig configures the S3-compatible blob backend.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Load loads configuration from environment variables with defaults.
// A .env file in the working directory fills variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", constants.DefaultPort),
		DBDriver:    getEnv("DB_DRIVER", constants.DefaultDBDriver),
		DBDSN:       getEnv("DB_DSN", constants.DefaultDBDSN),
		BlobBackend: getEnv("BLOB_BACKEND", constants.DefaultBlobBackend),
		UploadsDir:  getEnv("UPLOADS_DIR", constants.DefaultUploadsDir),
		ScratchDir:  getEnv("SCRATCH_DIR", os.TempDir()),
		MaxUploadMB: getEnvInt64("MAX_UPLOAD_MB", constants.DefaultMaxUploadMB),
		FFprobePath: getEnv("FFPROBE_PATH", constants.DefaultFFprobePath),
		CORSOrigins: getEnv("CORS_ORIGINS", constants.DefaultCORSOrigins),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		LogFile:     getEnv("LOG_FILE", ""),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", constants.DefaultMinioBucket),
			Region:    getEnv("MINIO_REGION", ""),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	switch c.DBDriver {
	case constants.DriverSQLite, constants.DriverMySQL:
	default:
		errors = append(errors, fmt.Sprintf("DB_DRIVER must be one of: sqlite, mysql, got: %s", c.DBDriver))
	}

	if c.DBDSN == "" {
		errors = append(errors, "DB_DSN cannot be empty")
	}

	switch c.BlobBackend {
	case constants.BackendDisk:
		if c.UploadsDir == "" {
			errors = append(errors, "UPLOADS_DIR cannot be empty")
		}
	case constants.BackendMinio:
		if c.Minio.Endpoint == "" {
			errors = append(errors, "MINIO_ENDPOINT cannot be empty when BLOB_BACKEND=minio")
		}
		if c.Minio.Bucket == "" {
			errors = append(errors, "MINIO_BUCKET cannot be empty when BLOB_BACKEND=minio")
		}
	default:
		errors = append(errors, fmt.Sprintf("BLOB_BACKEND must be one of: disk, minio, got: %s", c.BlobBackend))
	}

	if c.ScratchDir == "" {
		errors = append(errors, "SCRATCH_DIR cannot be empty")
	}

	if c.MaxUploadMB <= 0 {
		errors = append(errors, fmt.Sprintf("MAX_UPLOAD_MB must be a positive number, got: %d", c.MaxUploadMB))
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// MaxUploadBytes is the request body cap for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{constants.DefaultCORSOrigins}
	}
	return origins
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt64 parses an integer variable. Unparseable values become -1 so Validate reports them.
func getEnvInt64(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return -1
	}
	return n
}
