package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings the server needs at start-up.
type Config struct {
	Env         string
	Port        string
	CORSOrigins string

	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	DBMaxIdleConns  int
	DBMaxOpenConns  int
	DBConnLifetime  time.Duration
	DBConnIdleTime  time.Duration
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	RedisDefaultTTL time.Duration

	JWTSecret       string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	EmailPerSec  float64

	NATSURL         string
	StripeSecretKey string

	SettingsCacheTTL time.Duration
	CronEnabled      bool
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the environment into a Config.
func Load() *Config {
	return &Config{
		Env:         GetEnv("ENV", "development"),
		Port:        GetEnv("PORT", "3000"),
		CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:3001"),

		DBHost:          GetEnv("DB_HOST", "localhost"),
		DBPort:          GetEnv("DB_PORT", "5432"),
		DBUser:          GetEnv("DB_USER", "postgres"),
		DBPassword:      GetEnv("DB_PASSWORD", "postgres"),
		DBName:          GetEnv("DB_NAME", "iprofit"),
		DBSSLMode:       GetEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConns:  GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:  GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnLifetime:  GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnIdleTime:  GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		RedisHost:       GetEnv("REDIS_HOST", "localhost"),
		RedisPort:       GetEnv("REDIS_PORT", "6379"),
		RedisPassword:   GetEnv("REDIS_PASSWORD", ""),
		RedisDB:         GetIntEnv("REDIS_DB", 0),
		RedisDefaultTTL: GetDurationEnv("REDIS_DEFAULT_TTL", 24*time.Hour),

		JWTSecret:       GetEnv("JWT_SECRET", "iprofit-dev-secret"),
		RefreshSecret:   GetEnv("REFRESH_SECRET", "iprofit-dev-refresh-secret"),
		AccessTokenTTL:  GetDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: GetDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		SMTPHost:     GetEnv("SMTP_HOST", ""),
		SMTPPort:     GetIntEnv("SMTP_PORT", 587),
		SMTPUsername: GetEnv("SMTP_USERNAME", ""),
		SMTPPassword: GetEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     GetEnv("SMTP_FROM", "no-reply@iprofit.local"),
		EmailPerSec:  GetFloatEnv("EMAIL_RATE_PER_SEC", 2),

		NATSURL:         GetEnv("NATS_URL", ""),
		StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),

		SettingsCacheTTL: GetDurationEnv("SETTINGS_CACHE_TTL", 5*time.Minute),
		CronEnabled:      GetBoolEnv("CRON_ENABLED", true),
	}
}

// IsProduction reports whether the config targets production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func GetFloatEnv(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv parses values like "30m" or "1h"; invalid values fall back to the default.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("Invalid %s, using default: %s", key, defaultVal)
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
