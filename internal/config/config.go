package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port         string
	DBDSN        string
	LogFile      string
	TemplatesDir string

	// RedisAddr switches cart storage to Redis when set; otherwise carts live in the SQL store.
	RedisAddr string

	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	JWTSecret string
	TokenTTL  time.Duration

	RecommendationMaxAge time.Duration
}

// Load reads the process environment, after merging an optional .env file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("config.dotenv.skip")
	}

	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		DBDSN:                getEnv("DB_DSN", "cocolabs.db"), // sqlite file in project root
		LogFile:              getEnv("LOG_FILE", "./cocolabs.log"),
		TemplatesDir:         getEnv("TEMPLATES_DIR", "./web/templates"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		AIBaseURL:            getEnv("AI_BASE_URL", "https://api.x.ai/v1"),
		AIAPIKey:             getEnv("AI_API_KEY", ""),
		AIModel:              getEnv("AI_MODEL", "grok-beta"),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:             getDuration("TOKEN_TTL", 24*time.Hour),
		RecommendationMaxAge: getDuration("RECOMMENDATION_MAX_AGE", 7*24*time.Hour),
	}
	logrus.WithFields(logrus.Fields{
		"port":      cfg.Port,
		"db_dsn":    cfg.DBDSN,
		"log_file":  cfg.LogFile,
		"redis":     cfg.RedisAddr != "",
		"ai_model":  cfg.AIModel,
		"ai_online": cfg.AIAPIKey != "",
	}).Info("config.loaded")
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logrus.WithField("key", key).WithField("value", raw).Warn("config.duration.invalid")
		return fallback
	}
	return d
}
