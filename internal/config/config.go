package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=agency port=5432 sslmode=disable"

type Config struct {
	HTTPPort           string
	DatabaseDSN        string
	JWTSecret          string
	CORSOrigins        string
	RedisAddr          string // empty: projections are cached in process
	RedisPassword      string
	ProjectionCacheTTL time.Duration
	LogFile            string // empty: stdout only
	LogMaxSizeMB       int
	LogMaxBackups      int
}

func Load() *Config {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] could not read .env: %v", err)
	}

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:        getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		CORSOrigins:        getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		ProjectionCacheTTL: getDuration("PROJECTION_CACHE_TTL", 10*time.Minute),
		LogFile:            getEnv("LOG_FILE", ""),
		LogMaxSizeMB:       getInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups:      getInt("LOG_MAX_BACKUPS", 5),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the local default; set it for production")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the local default; set your own domain for production")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}
