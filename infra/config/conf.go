package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/storepay/infra/validate"
)

type CKey string

type Config struct {
	Validator *validator.Validate
}

// AppConfig represents the application configuration
type AppConfig struct {
	Port              string        `env:"APP_PORT" envDefault:"9999"`
	AppURL            string        `env:"APP_URL" envDefault:"http://localhost:9999"`
	Environment       string        `env:"ENVIRONMENT" envDefault:"development"`
	APIKey            string        `env:"API_KEY"`
	DBDriver          string        `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBPath            string        `env:"SQLITE_PATH" envDefault:"./data/storepay.db"`
	DBDSN             string        `env:"DB_DSN"`
	OpenSearchURL     string        `env:"OPENSEARCH_URL" envDefault:"http://localhost:9200"`
	OpenSearchUser    string        `env:"OPENSEARCH_USER"`
	OpenSearchPass    string        `env:"OPENSEARCH_PASSWORD"`
	EnableLogging     bool          `env:"ENABLE_OPENSEARCH_LOGGING" envDefault:"false"`
	LoggingLevel      string        `env:"LOGGING_LEVEL" envDefault:"info"`
	HTTPClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"30s"`
}

var (
	instance          *Config
	appConfigInstance *AppConfig
	appConfigMu       sync.Mutex
)

func App() *Config {
	if instance == nil {
		instance = &Config{
			Validator: validate.New(),
		}
	}
	return instance
}

// GetAppConfig returns the application configuration
func GetAppConfig() *AppConfig {
	appConfigMu.Lock()
	defer appConfigMu.Unlock()

	if appConfigInstance == nil {
		cfg := &AppConfig{}
		if err := env.Parse(cfg); err != nil {
			// a malformed value falls back to the defaults of the remaining fields
			log.Printf("Warning: failed to parse environment config: %v", err)
		}
		appConfigInstance = cfg
	}
	return appConfigInstance
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
