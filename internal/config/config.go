package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
// The bucket stores case PDFs, volume page images and bulk export files.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AccessConfig holds the case allowance and access-control settings.
type AccessConfig struct {
	// DailyCaseAllowance is the number of restricted case texts a user or
	// anonymous browser may view per allowance window.
	DailyCaseAllowance int
	// AllowanceExpireHours is the length of the allowance window in hours.
	AllowanceExpireHours int
	// HarvardIPRanges are CIDR ranges granted harvard_access treatment.
	HarvardIPRanges []string
	// BotUserAgents are substrings identifying crawler requests that may view
	// restricted cases without an allowance (responses are not cacheable).
	BotUserAgents []string
	// SessionSecret signs the anonymous allowance cookie.
	SessionSecret string
}

// LimitsConfig holds sitewide and per-IP throttles.
type LimitsConfig struct {
	DailySignupLimit   int
	DailyDownloadLimit int
	// SignupRatePerMin and SignupBurst throttle account creation per client IP.
	SignupRatePerMin int
	SignupBurst      int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Access   AccessConfig
	Limits   LimitsConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Access: AccessConfig{
			DailyCaseAllowance:   getEnvInt("CASE_DAILY_ALLOWANCE", 500),
			AllowanceExpireHours: getEnvInt("CASE_EXPIRE_HOURS", 24),
			HarvardIPRanges:      getEnvList("HARVARD_IP_RANGES", "128.103.0.0/16,140.247.0.0/16"),
			BotUserAgents:        getEnvList("BOT_USER_AGENTS", "Googlebot"),
			SessionSecret:        getEnv("SESSION_SECRET", ""),
		},
		Limits: LimitsConfig{
			DailySignupLimit:   getEnvInt("DAILY_SIGNUP_LIMIT", 50),
			DailyDownloadLimit: getEnvInt("DAILY_DOWNLOAD_LIMIT", 50000),
			SignupRatePerMin:   getEnvInt("SIGNUP_RATE_PER_MIN", 5),
			SignupBurst:        getEnvInt("SIGNUP_BURST", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList parses a comma-separated environment variable, trimming blanks.
func getEnvList(key, def string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
