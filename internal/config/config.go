package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr    string
	KafkaBrokers []string
	ServiceName  string

	// Slip verification. Mode is "ocr" (local tesseract) or "easyslip"
	// (remote verification API).
	SlipVerifyMode string
	EasySlipToken  string
	EasySlipURL    string

	// Idle window after which uncommitted stock reservations are reverted.
	ReservationTTL time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:        getenv("APP_PORT", "8080"),
		AppEnv:         os.Getenv("APP_ENV"),
		DBHost:         os.Getenv("DB_HOST"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBPort:         getenv("DB_PORT", "5432"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:   splitCSV(os.Getenv("KAFKA_BROKERS")),
		ServiceName:    getenv("SERVICE_NAME", "smoothie-be"),
		SlipVerifyMode: getenv("SLIP_VERIFY_MODE", "ocr"),
		EasySlipToken:  os.Getenv("EASYSLIP_TOKEN"),
		EasySlipURL:    getenv("EASYSLIP_URL", "https://developer.easyslip.com"),
		ReservationTTL: minutes("RESERVATION_TTL_MINUTES", 15),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func minutes(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(def) * time.Minute
}
