package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        string
	Environment string
	Domain      string
	FrontendURL string

	JWTSecret      string
	AdminEmail     string
	SessionLatency time.Duration

	LogLevel  string
	LogPretty bool

	MongoURI      string
	MongoDatabase string

	RedisAddress     string
	RedisPassword    string
	IssueLimitPrefix string
	IssueLimitPerDay int
}

// Load reads a .env file when present, then the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("GO_ENV", "development"),
		Domain:      getEnv("DOMAIN", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@civicsync.com"),
		SessionLatency: getDuration("SESSION_LATENCY", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBool("LOG_PRETTY", false),

		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "civicsync"),

		RedisAddress:     getEnv("REDIS_ADDRESS", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		IssueLimitPrefix: getEnv("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue-limit"),
		IssueLimitPerDay: getInt("ISSUE_LIMIT_PER_DAY", 10),
	}
}

// Production reports whether cookies must be cross-site and secure
func (c *Config) Production() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
