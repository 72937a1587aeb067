package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "ARTISTBOOK_"

// Load layers configuration sources, lowest precedence first:
//  1. Default()
//  2. the YAML file at path, or at ARTISTBOOK_CONFIG when path is empty
//  3. ARTISTBOOK_* environment variables (ARTISTBOOK_HTTP_PORT -> http_port)
//
// The result is validated before it is returned.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvPrefix + "CONFIG"))
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}

	normalize(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.SQLiteDSN = strings.TrimSpace(cfg.SQLiteDSN)
	cfg.RedisAddr = strings.TrimSpace(cfg.RedisAddr)
	cfg.RedisChannel = strings.TrimSpace(cfg.RedisChannel)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.AdminTokenHash = strings.TrimSpace(cfg.AdminTokenHash)
}

// Validate checks cfg and reports every problem in a *ValidationError.
func Validate(cfg Config) error {
	verr := &ValidationError{}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		verr.Invalid = append(verr.Invalid, "http_port")
	}

	switch cfg.StorageDriver {
	case DriverSQLite:
		if cfg.SQLiteDSN == "" {
			verr.Missing = append(verr.Missing, "sqlite_dsn")
		}
	case DriverMemory:
	default:
		verr.Invalid = append(verr.Invalid, "storage_driver")
	}

	if cfg.RedisAddr != "" && cfg.RedisChannel == "" {
		verr.Missing = append(verr.Missing, "redis_channel")
	}
	if cfg.PublishTimeout <= 0 {
		verr.Invalid = append(verr.Invalid, "publish_timeout")
	}
	if cfg.MaxPageSize <= 0 {
		verr.Invalid = append(verr.Invalid, "max_page_size")
	}
	if cfg.ShutdownTimeout <= 0 {
		verr.Invalid = append(verr.Invalid, "shutdown_timeout")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		verr.Invalid = append(verr.Invalid, "log_level")
	}

	for i, token := range cfg.Tokens {
		switch token.Role {
		case "super_admin", "admin", "user":
		default:
			verr.Invalid = append(verr.Invalid, fmt.Sprintf("tokens[%d].role", i))
		}
		if strings.TrimSpace(token.Hash) == "" {
			verr.Missing = append(verr.Missing, fmt.Sprintf("tokens[%d].hash", i))
		}
	}

	if verr.hasErrors() {
		return verr
	}
	return nil
}
