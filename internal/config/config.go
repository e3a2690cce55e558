// Package config loads application configuration from environment variables
// and optional config files.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config groups the application configuration.
type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
	Ledger LedgerConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	// DSN is the full connection string. Empty DSN switches the service
	// to in-memory storage (local development and tests).
	DSN string
}

// JWTConfig holds token validation settings.
type JWTConfig struct {
	// Secret signs access tokens. Empty secret disables authentication
	// (local development only).
	Secret string
	Issuer string
}

// HTTPConfig holds the server listen settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LedgerConfig holds posting policy.
type LedgerConfig struct {
	// PerpetualInventory enables financial posting generation on voucher
	// submission.
	PerpetualInventory bool

	// LockTimeout caps chain lock waits, e.g. "3s".
	LockTimeout string
}

// Load reads configuration from environment variables, with an optional
// config file (.env in the working directory). Env vars take priority.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "landedcost")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "landedcost")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("PERPETUAL_INVENTORY", true)
	v.SetDefault("CHAIN_LOCK_TIMEOUT", "3s")

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			DSN: v.GetString("DATABASE_URL"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Ledger: LedgerConfig{
			PerpetualInventory: v.GetBool("PERPETUAL_INVENTORY"),
			LockTimeout:        v.GetString("CHAIN_LOCK_TIMEOUT"),
		},
	}

	return cfg, nil
}
