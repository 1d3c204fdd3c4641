package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/Dosada05/tournament-engine/storage"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL        string
	DBConnectTimeout   time.Duration
	StorageDriver      string
	RunMigrations      bool
	JWTSecretKey       string
	ServerPort         int
	CORSAllowedOrigins []string
	LogLevel           string
	R2                 storage.CloudflareR2UploaderConfig
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		StorageDriver: strings.ToLower(envOrDefault("STORAGE_DRIVER", StorageDriverPostgres)),
		JWTSecretKey:  os.Getenv("JWT_SECRET_KEY"),
		LogLevel:      strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		R2: storage.CloudflareR2UploaderConfig{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL environment variable is not set")
		}
	case StorageDriverMemory:
	default:
		return nil, errors.Newf("unknown STORAGE_DRIVER %q (expected %q or %q)", cfg.StorageDriver, StorageDriverPostgres, StorageDriverMemory)
	}

	if cfg.JWTSecretKey == "" {
		return nil, errors.New("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := strconv.Atoi(envOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid SERVER_PORT environment variable")
	}
	if port <= 0 || port > 65535 {
		return nil, errors.Newf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	cfg.RunMigrations, err = strconv.ParseBool(envOrDefault("RUN_MIGRATIONS", "true"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid RUN_MIGRATIONS environment variable")
	}

	cfg.DBConnectTimeout, err = time.ParseDuration(envOrDefault("DB_CONNECT_TIMEOUT", "5s"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid DB_CONNECT_TIMEOUT environment variable")
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	} else {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
