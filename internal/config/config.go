package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL    string
	ServerAddr     string
	JWTSecret      string
	UploadDir      string
	UploadBaseURL  string
	MaxUploadBytes int64
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "gigboard")
		pass := getenv("POSTGRES_PASSWORD", "gigboard_pass")
		db := getenv("POSTGRES_DB", "gigboard")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return &Config{
		DatabaseURL:    dsn,
		ServerAddr:     getenv("SERVER_ADDR", "0.0.0.0:8080"),
		JWTSecret:      secret,
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		UploadBaseURL:  getenv("UPLOAD_BASE_URL", "/uploads"),
		MaxUploadBytes: parseInt64(getenv("MAX_UPLOAD_BYTES", ""), 10<<20),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseInt64(val string, def int64) int64 {
	if val == "" {
		return def
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
