package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string `mapstructure:"DB_DSN"`
	HTTPAddr       string `mapstructure:"HTTP_ADDR"`
	Environment    string `mapstructure:"ENV"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	// Читаем напрямую из переменных окружения (после godotenv.Load они там)
	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		Environment:    os.Getenv("ENV"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
