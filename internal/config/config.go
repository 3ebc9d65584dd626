// Package config loads process configuration from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const envPrefix = "NUTRILOG"

type DatabaseConfig struct {
	Driver   string
	Path     string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// PostgresDSN returns DSN when set, otherwise a key/value DSN built from the parts.
func (c DatabaseConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// Enabled reports whether meal events should be published.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type LogConfig struct {
	Level  string
	Format string
}

type USDAConfig struct {
	APIKey  string
	BaseURL string
}

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	USDA     USDAConfig
	// Timezone is the recording timezone from the environment. Empty means fall back to
	// the stored app_config value, then the local zone.
	Timezone string
}

// Load reads envFile (ignored when missing) into the environment without overriding
// variables already set, then builds a Config from NUTRILOG_* variables.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	port, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", ""),
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "nutrilog"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Stream:   getEnv("REDIS_STREAM", "nutrilog:meal-events"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		USDA: USDAConfig{
			APIKey:  getEnv("USDA_API_KEY", "DEMO_KEY"),
			BaseURL: getEnv("USDA_BASE_URL", "https://api.nal.usda.gov"),
		},
		Timezone: getEnv("TIMEZONE", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(envPrefix + "_" + key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s_%s must be an integer: %w", envPrefix, key, err)
	}
	return v, nil
}
