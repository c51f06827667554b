package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the MinIO backend.
// Temporary and permanent namespaces map onto two physical buckets.
type MinIOConfig struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	TempBucket      string
	PermanentBucket string
	UseSSL          bool
}

// FileStorageConfig governs backend selection, validation limits and the
// lifecycle timing of temporary files.
type FileStorageConfig struct {
	Backend                string
	TempPath               string
	PermanentPath          string
	MaxFileSizeMB          int
	AllowedImageExtensions []string
	AllowedImageMIMETypes  []string
	ExpiryDays             int
	SweepIntervalHours     int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	FileStorage FileStorageConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", ""),
			AccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:       getEnv("MINIO_SECRET_KEY", ""),
			TempBucket:      getEnv("MINIO_TEMP_BUCKET", "temp-files"),
			PermanentBucket: getEnv("MINIO_PERMANENT_BUCKET", "permanent-files"),
			UseSSL:          getEnvBool("MINIO_USE_SSL", false),
		},
		FileStorage: FileStorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", "local"),
			TempPath:      getEnv("STORAGE_TEMP_PATH", "/var/files/temp"),
			PermanentPath: getEnv("STORAGE_PERMANENT_PATH", "/var/files/permanent"),
			MaxFileSizeMB: getEnvInt("STORAGE_MAX_FILE_SIZE_MB", 10),
			AllowedImageExtensions: getEnvList("STORAGE_ALLOWED_IMAGE_EXTENSIONS",
				[]string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}),
			AllowedImageMIMETypes: getEnvList("STORAGE_ALLOWED_IMAGE_MIME_TYPES",
				[]string{"image/jpeg", "image/pjpeg", "image/png", "image/gif", "image/bmp"}),
			ExpiryDays:         getEnvInt("STORAGE_EXPIRY_DAYS", 5),
			SweepIntervalHours: getEnvInt("STORAGE_SWEEP_INTERVAL_HOURS", 6),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
