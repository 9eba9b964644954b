package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadENV loads variables from .env unless running in production.
// A missing .env file is not an error in development.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV string
	PORT   int

	// Database
	DB_DRIVER    string // postgres or sqlite
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	SQLITE_PATH  string

	// JWT Configuration
	JWT_SECRET      string
	JWT_ISSUER      string
	JWT_ACCESS_TTL  time.Duration
	JWT_REFRESH_TTL time.Duration

	// Redis Configuration
	REDIS_URL string

	// Media storage: spaces, cloudinary or local
	MEDIA_DRIVER        string
	MEDIA_LOCAL_DIR     string
	MEDIA_PUBLIC_URL    string
	DO_SPACES_KEY       string
	DO_SPACES_SECRET    string
	DO_SPACES_BUCKET    string
	DO_SPACES_REGION    string
	DO_SPACES_ENDPOINT  string
	DO_SPACES_CDN_URL   string
	CLOUDINARY_URL      string
	CLOUDINARY_FOLDER   string
	MEDIA_MAX_FILE_SIZE int64

	// Messaging
	NATS_URL            string
	NATS_SUBJECT_PREFIX string

	// Background jobs
	CRON_ENABLED bool

	ALLOWED_ORIGINS []string

	// Seeded admin account
	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
	ADMIN_NAME     string
}

func Get() (*EnvironmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	maxFileSize, err := strconv.ParseInt(os.Getenv("MEDIA_MAX_FILE_SIZE"), 10, 64)
	if err != nil || maxFileSize <= 0 {
		maxFileSize = 5 * 1024 * 1024
	}

	envVariables := &EnvironmentVariable{
		GO_ENV: os.Getenv("GO_ENV"),
		PORT:   port,
		// Database
		DB_DRIVER:    getOrDefault("DB_DRIVER", "postgres"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getOrDefault("DB_HOST", "localhost"),
		DB_PORT:      getOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  getOrDefault("DB_SSL_MODE", "disable"),
		SQLITE_PATH:  getOrDefault("SQLITE_PATH", "admission-bridge.db"),
		// JWT
		JWT_SECRET:      os.Getenv("JWT_SECRET"),
		JWT_ISSUER:      getOrDefault("JWT_ISSUER", "admission-bridge"),
		JWT_ACCESS_TTL:  getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWT_REFRESH_TTL: getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Media
		MEDIA_DRIVER:        getOrDefault("MEDIA_DRIVER", "local"),
		MEDIA_LOCAL_DIR:     getOrDefault("MEDIA_LOCAL_DIR", "uploads"),
		MEDIA_PUBLIC_URL:    getOrDefault("MEDIA_PUBLIC_URL", "/uploads"),
		DO_SPACES_KEY:       os.Getenv("DO_SPACES_KEY"),
		DO_SPACES_SECRET:    os.Getenv("DO_SPACES_SECRET"),
		DO_SPACES_BUCKET:    os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:    os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT:  os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_CDN_URL:   os.Getenv("DO_SPACES_CDN_URL"),
		CLOUDINARY_URL:      os.Getenv("CLOUDINARY_URL"),
		CLOUDINARY_FOLDER:   getOrDefault("CLOUDINARY_FOLDER", "admission-bridge"),
		MEDIA_MAX_FILE_SIZE: maxFileSize,
		// Messaging
		NATS_URL:            os.Getenv("NATS_URL"),
		NATS_SUBJECT_PREFIX: getOrDefault("NATS_SUBJECT_PREFIX", "admissions"),
		// Jobs
		CRON_ENABLED: os.Getenv("CRON_ENABLED") != "false",
		// CORS
		ALLOWED_ORIGINS: splitList(os.Getenv("ALLOWED_ORIGINS")),
		// Admin
		ADMIN_EMAIL:    os.Getenv("ADMIN_EMAIL"),
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),
		ADMIN_NAME:     getOrDefault("ADMIN_NAME", "Platform Admin"),
	}

	return envVariables, nil
}

// IsProduction reports whether GO_ENV is production
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

func getOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
