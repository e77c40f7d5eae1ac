package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	KVBackend     string
	KVNamespace   string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KVDatabaseURL string

	DatabaseURL string
	JWTSecret   string
	SessionTTL  time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	DiagnosticsPort string
	PersistTimeout  time.Duration
	BreakAfter      time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	godotenv.Load()

	return &Config{
		KVBackend:     getEnv("KV_BACKEND", "sqlite"),
		KVNamespace:   getEnv("KV_NAMESPACE", "@tk_"),
		SQLitePath:    getEnv("SQLITE_PATH", "data/tentkids.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		KVDatabaseURL: getEnv("KV_DATABASE_URL", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		SessionTTL:  getDuration("SESSION_TTL", 24*time.Hour),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", ""),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "") == "true",

		DiagnosticsPort: getEnv("DIAGNOSTICS_PORT", "9090"),
		PersistTimeout:  getDuration("PERSIST_TIMEOUT", 5*time.Second),
		BreakAfter:      getDuration("BREAK_AFTER", 30*time.Minute),
	}
}

// MediaEnabled reports whether enough MinIO settings are present to upload attachments.
func (c *Config) MediaEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioBucket != ""
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)
	if exists {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
