package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds runtime settings loaded from the environment (and an optional .env file).
type Config struct {
	Port     string
	LogLevel string

	MongoURI             string
	MongoDBName          string
	MongoUseTransactions bool

	JWTSecret          string
	CORSAllowedOrigins []string

	PushEnabled    bool
	PushGatewayURL string
	PushTimeout    time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	PushTokenCacheTTL time.Duration

	NotificationTTL time.Duration
	ReconcileCron   string
	CleanupCron     string
}

const DefaultPushGatewayURL = "https://exp.host/--/api/v2/push/send"

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// LoadConfig reads configuration, falling back to development defaults for
// everything except JWT_SECRET.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment only")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:          getEnv("MONGO_DB_NAME", "pawsafety"),
		MongoUseTransactions: getEnvAsBool("MONGO_USE_TRANSACTIONS", false),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8081"}),

		PushEnabled:    getEnvAsBool("PUSH_ENABLED", true),
		PushGatewayURL: getEnv("PUSH_GATEWAY_URL", DefaultPushGatewayURL),
		PushTimeout:    time.Duration(getEnvAsInt("PUSH_TIMEOUT_SECONDS", 10)) * time.Second,

		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		PushTokenCacheTTL: time.Duration(getEnvAsInt("PUSH_TOKEN_CACHE_TTL_SECONDS", 300)) * time.Second,

		NotificationTTL: time.Duration(getEnvAsInt("NOTIFICATION_TTL_HOURS", 24*30)) * time.Hour,
		ReconcileCron:   getEnv("RECONCILE_CRON", "@every 15m"),
		CleanupCron:     getEnv("CLEANUP_CRON", "@hourly"),
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid boolean in environment, using default")
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
