package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("STORAGE_BACKEND", "minio")
	os.Setenv("STORAGE_EXPIRY_DAYS", "3")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("STORAGE_BACKEND")
		os.Unsetenv("STORAGE_EXPIRY_DAYS")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "minio", cfg.FileStorage.Backend)
	assert.Equal(t, 3, cfg.FileStorage.ExpiryDays)
	assert.Equal(t, "temp-files", cfg.MinIO.TempBucket)
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 10, cfg.FileStorage.MaxFileSizeMB)
	assert.Equal(t, 6, cfg.FileStorage.SweepIntervalHours)
	assert.Contains(t, cfg.FileStorage.AllowedImageExtensions, ".jpg")
	assert.Contains(t, cfg.FileStorage.AllowedImageMIMETypes, "image/png")
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_LIST_VAR"

	os.Setenv(key, ".jpg, .png ,.gif")
	assert.Equal(t, []string{".jpg", ".png", ".gif"}, getEnvList(key, nil))

	os.Setenv(key, " , ")
	assert.Equal(t, []string{".tiff"}, getEnvList(key, []string{".tiff"}))

	os.Unsetenv(key)
	assert.Equal(t, []string{".tiff"}, getEnvList(key, []string{".tiff"}))
}
