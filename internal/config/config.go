package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	SwaggerHost string
	// TrustedProxies lists CIDRs whose X-Forwarded-For is believed.
	// Empty means the client IP is always the socket peer.
	TrustedProxies []string

	// MySQLDSN switches repositories from process memory to MySQL when set.
	MySQLDSN string
	// RedisAddr switches sessions and rate limiting to Redis when set.
	RedisAddr string
	RedisDB   int
	RedisPass string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	ResendAPIKey string
	EmailFrom    string
	OwnerEmail   string

	AdminUsername string
	AdminPassword string

	ContactRateLimit  int
	ContactRateWindow time.Duration
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	emailFrom := getEnv("EMAIL_FROM", "offers@example.com")
	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		SwaggerHost:       os.Getenv("SWAGGER_HOST"),
		TrustedProxies:    getEnvList("TRUSTED_PROXIES"),
		MySQLDSN:          os.Getenv("MYSQL_DSN"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:      getEnvBool("COOKIE_SECURE", false),
		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		EmailFrom:         emailFrom,
		OwnerEmail:        getEnv("OWNER_EMAIL", emailFrom),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		ContactRateLimit:  getEnvInt("CONTACT_RATE_LIMIT", 3),
		ContactRateWindow: getEnvDuration("CONTACT_RATE_WINDOW", 15*time.Minute),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
