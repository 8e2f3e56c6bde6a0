package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	Server   ServerConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Metrics  MetricsConfig
	Worker   WorkerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type JWTConfig struct {
	AccessSecret string
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig controls the roster snapshot cache. Type is "memory" or "redis".
type CacheConfig struct {
	Enabled bool
	Type    string
	TTL     time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MetricsConfig struct {
	Enabled bool
}

// WorkerConfig controls the background roster snapshot refresh
type WorkerConfig struct {
	Enabled  bool
	Interval time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "hospital_roster"),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "your-access-secret-key"),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Cache: CacheConfig{
			Enabled: parseBool(getEnv("CACHE_ENABLED", "true")),
			Type:    getEnv("CACHE_TYPE", "memory"),
			TTL:     parseDuration(getEnv("CACHE_TTL", "5m"), 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     parseInt(getEnv("REDIS_PORT", "6379"), 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Metrics: MetricsConfig{
			Enabled: parseBool(getEnv("METRICS_ENABLED", "true")),
		},
		Worker: WorkerConfig{
			Enabled:  parseBool(getEnv("SNAPSHOT_WORKER_ENABLED", "true")),
			Interval: parseDuration(getEnv("SNAPSHOT_WORKER_INTERVAL", "1m"), time.Minute),
		},
	}

	return config
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if c.Server.GinMode == "release" && (c.JWT.AccessSecret == "" || c.JWT.AccessSecret == "your-access-secret-key") {
		return errors.New("JWT_ACCESS_SECRET must be set in release mode")
	}
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("unknown CACHE_TYPE %q", c.Cache.Type)
	}
	if c.Worker.Enabled && c.Worker.Interval <= 0 {
		return errors.New("SNAPSHOT_WORKER_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Warn().Str("value", s).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		if s != "" {
			log.Warn().Str("value", s).Int("default", fallback).Msg("Invalid integer, using default")
		}
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseList(s string) []string {
	items := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
