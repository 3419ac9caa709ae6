package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	MySQLDSN     string
	RedisAddr    string
	KafkaBrokers []string
	KafkaGroupID string
	HTTPAddr     string
	CacheTTL     time.Duration
}

// Load reads configuration from the environment, optionally seeded from
// a .env file. Every value has a local-development default.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MySQLDSN:     getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/inventory?parseTime=true"),
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaGroupID: getenv("KAFKA_GROUP_ID", "inventory-service"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		CacheTTL:     time.Duration(getenvInt("CACHE_TTL_SECS", 60)) * time.Second,
	}
}

// NewLogger builds the shared JSON logger. LOG_LEVEL accepts the logrus
// level names; invalid values fall back to info.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}
