package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage engines selectable through STORE_DRIVER
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	StoreDriver    string
	DBPath         string
	DatabaseURL    string
	ConnectRetries uint64
	CacheSize      int
	MetricsEnabled bool
	CORSOrigins    string
	SeedMemos      int
}

var AppConfig *Config

// Load reads the environment (and .env when present) into AppConfig
func Load() error {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        GetEnv("PORT", "3000"),
		Env:         GetEnv("ENV", "development"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		StoreDriver: GetEnv("STORE_DRIVER", DriverSQLite),
		DBPath:      GetEnv("DB_PATH", "./data/memos.db"),
		DatabaseURL: GetEnv("DATABASE_URL", ""),
		CORSOrigins: GetEnv("CORS_ORIGINS", "*"),
	}

	var err error
	if cfg.ConnectRetries, err = strconv.ParseUint(GetEnv("DB_CONNECT_RETRIES", "5"), 10, 64); err != nil {
		return fmt.Errorf("DB_CONNECT_RETRIES: %w", err)
	}
	if cfg.CacheSize, err = getInt("CACHE_SIZE", 0); err != nil {
		return err
	}
	if cfg.SeedMemos, err = getInt("SEED_MEMOS", 0); err != nil {
		return err
	}
	if cfg.MetricsEnabled, err = strconv.ParseBool(GetEnv("METRICS_ENABLED", "true")); err != nil {
		return fmt.Errorf("METRICS_ENABLED: %w", err)
	}

	switch cfg.StoreDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want sqlite, postgres or memory)", cfg.StoreDriver)
	}

	AppConfig = cfg
	return nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := GetEnv(key, strconv.Itoa(defaultValue))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return value, nil
}
