// Package config loads process configuration from defaults, an optional
// YAML file and ARTISTBOOK_ environment variables.
package config

import "time"

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config captures the runtime settings of the booking service.
type Config struct {
	HTTPPort        int           `koanf:"http_port"`
	StorageDriver   string        `koanf:"storage_driver"`
	SQLiteDSN       string        `koanf:"sqlite_dsn"`
	RedisAddr       string        `koanf:"redis_addr"`
	RedisChannel    string        `koanf:"redis_channel"`
	PublishTimeout  time.Duration `koanf:"publish_timeout"`
	MaxPageSize     int           `koanf:"max_page_size"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	LogLevel        string        `koanf:"log_level"`

	// AdminTokenHash registers a single admin token, mainly for env-only setups.
	AdminTokenHash string `koanf:"admin_token_hash"`

	Tokens []Token `koanf:"tokens"`
}

// Token is an API token entry. Hash is an argon2id hash produced by
// `artistbook hash-token`.
type Token struct {
	Name string `koanf:"name"`
	Role string `koanf:"role"`
	Hash string `koanf:"hash"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		HTTPPort:        3000,
		StorageDriver:   DriverSQLite,
		SQLiteDSN:       "artistbook.db",
		RedisChannel:    "artistbook:booking_events",
		PublishTimeout:  2 * time.Second,
		MaxPageSize:     100,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
	}
}

// AllTokens returns the configured tokens, with AdminTokenHash appended as
// an admin entry named "admin" when set.
func (c Config) AllTokens() []Token {
	tokens := make([]Token, 0, len(c.Tokens)+1)
	tokens = append(tokens, c.Tokens...)
	if c.AdminTokenHash != "" {
		tokens = append(tokens, Token{Name: "admin", Role: "admin", Hash: c.AdminTokenHash})
	}
	return tokens
}
