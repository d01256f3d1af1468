package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.2"

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Security    SecurityConfig
	Webhook     WebhookConfig
	Telephony   TelephonyConfig
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port int
	Host string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SecurityConfig struct {
	// JWTSecret signs session tokens
	JWTSecret string

	// SecretKey encrypts third-party credentials at rest
	SecretKey string

	// TokenExpiry is the lifetime of issued session tokens
	TokenExpiry time.Duration
}

type WebhookConfig struct {
	// SharedSecret guards the secured webhook variant; empty means the
	// endpoint is open and relies on idempotency plus tolerant parsing only
	SharedSecret string

	// SecretHeader is the header the shared secret is carried in
	SecretHeader string

	// RequireOwner rejects payloads without an explicit userId instead of
	// falling back to the earliest-created user
	RequireOwner bool
}

type TelephonyConfig struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	// Try to load .env file but don't require it
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "leadpipe")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	v.SetDefault("TOKEN_EXPIRY_HOURS", 72)
	v.SetDefault("WEBHOOK_SECRET_HEADER", "X-Webhook-Secret")
	v.SetDefault("WEBHOOK_REQUIRE_OWNER", false)

	v.SetDefault("TELEPHONY_BASE_URL", "https://api.callprovider.example.com")
	v.SetDefault("TELEPHONY_TIMEOUT_SECONDS", 30)
	v.SetDefault("TELEPHONY_RETRIES", 3)

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// Use the JWT secret for credential encryption if SECRET_KEY is not provided
	secretKey := v.GetString("SECRET_KEY")
	if secretKey == "" {
		secretKey = jwtSecret
	}

	config := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Security: SecurityConfig{
			JWTSecret:   jwtSecret,
			SecretKey:   secretKey,
			TokenExpiry: time.Duration(v.GetInt("TOKEN_EXPIRY_HOURS")) * time.Hour,
		},
		Webhook: WebhookConfig{
			SharedSecret: v.GetString("WEBHOOK_SHARED_SECRET"),
			SecretHeader: v.GetString("WEBHOOK_SECRET_HEADER"),
			RequireOwner: v.GetBool("WEBHOOK_REQUIRE_OWNER"),
		},
		Telephony: TelephonyConfig{
			BaseURL: v.GetString("TELEPHONY_BASE_URL"),
			Timeout: time.Duration(v.GetInt("TELEPHONY_TIMEOUT_SECONDS")) * time.Second,
			Retries: v.GetInt("TELEPHONY_RETRIES"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	return config, nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
