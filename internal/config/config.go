package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	Environment   string
	HTTPAddr      string
	HoldTTL       time.Duration
	SweepInterval time.Duration
	TelegramToken string
	PaymentURL    string
	Migrations    string
	CacheTTL      time.Duration
	RateLimit     float64
}

func LoadConfig() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   os.Getenv("ENV"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		PaymentURL:    os.Getenv("PAYMENT_URL"),
		Migrations:    os.Getenv("MIGRATIONS_PATH"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.Migrations == "" {
		cfg.Migrations = "migrations"
	}

	holdMinutes, err := envInt("HOLD_TTL_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	cfg.HoldTTL = time.Duration(holdMinutes) * time.Minute

	sweepSeconds, err := envInt("SWEEP_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.SweepInterval = time.Duration(sweepSeconds) * time.Second

	cacheSeconds, err := envInt("CACHE_TTL_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(cacheSeconds) * time.Second

	rateLimit, err := envInt("RATE_LIMIT_PER_SEC", 20)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit = float64(rateLimit)

	// DB_DSN не обязателен: без него сервис работает на in-memory хранилище
	if cfg.DBDSN == "" {
		log.Println("⚠️  DB_DSN is not set, running with in-memory storage")
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

// InMemory проверяет что сервис работает без базы
func (c *Config) InMemory() bool {
	return c.DBDSN == ""
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}
