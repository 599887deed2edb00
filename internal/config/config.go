package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL       string
	MigrationsDir     string
	AutoMigrate       bool
	AdminEmail        string
	ImportRatePerSec  int
	ImportRateBurst   int
	HeaderScanWindow  int
	DefaultPartsFile  string
	DefaultOffersFile string
}

func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MigrationsDir:     getEnv("MIGRATIONS_DIR", "./migrations"),
		AutoMigrate:       getBoolEnv("AUTO_MIGRATE", true),
		AdminEmail:        getEnv("IMPORT_ADMIN_EMAIL", "admin"),
		ImportRatePerSec:  getIntEnv("IMPORT_RATE_PER_SEC", 50),
		ImportRateBurst:   getIntEnv("IMPORT_RATE_BURST", 50),
		HeaderScanWindow:  getIntEnv("HEADER_SCAN_WINDOW", 10),
		DefaultPartsFile:  getEnv("DEFAULT_PARTS_FILE", "./data/spare_parts.xlsx"),
		DefaultOffersFile: getEnv("DEFAULT_OFFERS_FILE", "./data/offers.xlsx"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.ImportRatePerSec <= 0 {
		cfg.ImportRatePerSec = 50
	}
	if cfg.ImportRateBurst <= 0 {
		cfg.ImportRateBurst = cfg.ImportRatePerSec
	}
	if cfg.HeaderScanWindow <= 0 {
		cfg.HeaderScanWindow = 10
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getBoolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getIntEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
