package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Telegram
	BotToken string

	// Operator allowed to confirm/reject payments
	AdminID int64

	// Database
	DBPath string

	// Payment destination shown to participants
	PaymentCard string

	// Conversation state eviction
	SessionTTL time.Duration
}

func Load() *Config {
	return &Config{
		BotToken:    getEnv("BOT_TOKEN", ""),
		AdminID:     getEnvInt64("ADMIN_ID", 0),
		DBPath:      getEnv("DB_PATH", "./tournament.db"),
		PaymentCard: getEnv("PAYMENT_CARD", "карту Sens Bank"),
		SessionTTL:  time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}
