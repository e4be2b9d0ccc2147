package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Logger    LoggerConfig
	Database  DatabaseConfig
	Firestore FirestoreConfig
	Session   SessionConfig
	Board     BoardConfig
	HTTP      HTTPConfig
}

type LoggerConfig struct {
	Env string
}

type DatabaseConfig struct {
	Host     string
	Name     string
	User     string
	Password string
	Port     int
}

type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

type SessionConfig struct {
	// TokenFile holds the client ID token, kept fresh by the app shell.
	TokenFile    string
	MaxAttempts  int
	InitialDelay time.Duration
	SettleDelay  time.Duration
}

type BoardConfig struct {
	Area string
}

type HTTPConfig struct {
	Port int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return &Config{
		Logger: LoggerConfig{
			Env: getEnv("LOGGER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Name:     getEnv("POSTGRES_DB", "municipal_tasks"),
			User:     getEnv("POSTGRES_USER", "municipal_tasks"),
			Password: getEnv("POSTGRES_PASSWORD", "municipal_tasks"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
		},
		Firestore: FirestoreConfig{
			ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Session: SessionConfig{
			TokenFile:    getEnv("SESSION_TOKEN_FILE", ".session-token"),
			MaxAttempts:  getEnvInt("SESSION_MAX_ATTEMPTS", 30),
			InitialDelay: getEnvDuration("SESSION_INITIAL_DELAY", 100*time.Millisecond),
			SettleDelay:  getEnvDuration("SESSION_SETTLE_DELAY", 500*time.Millisecond),
		},
		Board: BoardConfig{
			Area: getEnv("BOARD_AREA", ""),
		},
		HTTP: HTTPConfig{
			Port: getEnvInt("HTTP_PORT", 8080),
		},
	}, nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
