// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, storage and backups.
type Config struct {
	HTTPAddr          string
	ShutdownTimeout   time.Duration
	StorageDriver     string
	StoragePath       string
	StorageKey        string
	DatabaseURL       string
	BackupDir         string
	BackupSchedule    string
	LowStockThreshold int64
	Timezone          string
	LogLevel          string
	LogFile           string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:   durenvs("SHUTDOWN_TIMEOUT", 15),
		StorageDriver:     getenv("STORAGE_DRIVER", "file"),
		StoragePath:       getenv("STORAGE_PATH", "stock_data.json"),
		StorageKey:        getenv("STORAGE_KEY", "webvic_stock_data_v1"),
		DatabaseURL:       getenv("DATABASE_URL", ""),
		BackupDir:         getenv("BACKUP_DIR", "backups"),
		BackupSchedule:    getenv("BACKUP_SCHEDULE", ""),
		LowStockThreshold: int64(atoienv("LOW_STOCK_THRESHOLD", 5)),
		Timezone:          getenv("TIMEZONE", "Local"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFile:           getenv("LOG_FILE", ""),
	}
}

// Location resolves Timezone, falling back to the process local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
