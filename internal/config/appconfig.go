// Package config загружает настройки приложения из окружения (и .env файла,
// если он есть рядом).
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config — настройки очистки адресов.
type Config struct {
	// Оракул
	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration
	AIRateLimit  float64

	// Геокодирование
	GoogleMapsAPIKey string

	// Конвейер
	Workers int

	// Хранилище
	SessionDBPath string
	CacheTTL      time.Duration

	// Логирование
	LogLevel string
}

// Load читает конфигурацию из переменных окружения. Файл .env, если
// присутствует, подгружается без перекрытия уже установленных переменных.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[Config] Loaded environment from .env")
	}

	return &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AITimeout:    getEnvDuration("AI_TIMEOUT", 30*time.Second),
		AIRateLimit:  getEnvFloat("AI_RATE_LIMIT", 2),

		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),

		Workers: getEnvInt("PIPELINE_WORKERS", 1),

		SessionDBPath: getEnv("SESSION_DATABASE_PATH", "sessions.db"),
		CacheTTL:      getEnvDuration("RESPONSE_CACHE_TTL", 7*24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate проверяет конфигурацию под выбранный режим запуска. Отсутствие
// ключа оракула фатально только при включенной запасной стадии.
func (c *Config) Validate(useLLM, useGeocoding bool) error {
	if useLLM && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when the LLM fallback is enabled")
	}
	if useGeocoding && c.GoogleMapsAPIKey == "" {
		return fmt.Errorf("GOOGLE_MAPS_API_KEY is required when geocoding is enabled")
	}
	if c.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1, got %d", c.Workers)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
