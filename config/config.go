// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath        = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"sqlite", "postgres", "mongo"}
)

// envs maps every config key to the environment variable that overrides it
var envs = map[string]string{
	"app.log_level": "APP_LOG_LEVEL",

	"host.port":                     "HOST_PORT",
	"host.domain":                   "HOST_DOMAIN",
	"host.cors":                     "HOST_CORS",
	"host.ssl.enabled":              "HOST_SSL_ENABLED",
	"host.ssl.certificate_path":     "HOST_SSL_CERTIFICATE_PATH",
	"host.ssl.certificate_key_path": "HOST_SSL_CERTIFICATE_KEY_PATH",

	"storage.type":           "STORAGE_TYPE",
	"storage.sqlite_path":    "STORAGE_SQLITE_PATH",
	"storage.postgres_dsn":   "STORAGE_POSTGRES_DSN",
	"storage.mongo_uri":      "STORAGE_MONGO_URI",
	"storage.mongo_database": "STORAGE_MONGO_DATABASE",

	"security.jwt_secret":       "SECURITY_JWT_SECRET",
	"security.session_ttl":      "SECURITY_SESSION_TTL",
	"security.rate_limit":       "SECURITY_RATE_LIMIT",
	"security.turnstile_secret": "SECURITY_TURNSTILE_SECRET",

	"verification.code_ttl":        "VERIFICATION_CODE_TTL",
	"verification.resend_cooldown": "VERIFICATION_RESEND_COOLDOWN",

	"mail.enabled":  "MAIL_ENABLED",
	"mail.host":     "MAIL_HOST",
	"mail.port":     "MAIL_PORT",
	"mail.username": "MAIL_USERNAME",
	"mail.password": "MAIL_PASSWORD",
	"mail.sender":   "MAIL_SENDER_ADDRESS",

	"suggest.endpoint": "SUGGEST_ENDPOINT",
	"suggest.api_key":  "SUGGEST_API_KEY",
	"suggest.timeout":  "SUGGEST_TIMEOUT",

	"cache.redis_addr":     "CACHE_REDIS_ADDR",
	"cache.redis_password": "CACHE_REDIS_PASSWORD",

	"cleanup.schedule":         "CLEANUP_SCHEDULE",
	"cleanup.unverified_grace": "CLEANUP_UNVERIFIED_GRACE",
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	Load()

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml not found, using defaults and environment variables only")
	}

	if v.GetString("security.jwt_secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return Validate()
}

// Load binds environment variables and registers defaults
func Load() {
	for key, env := range envs {
		v.BindEnv(key, env)
	}

	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors", []string{"http://localhost:3000"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.sqlite_path", "database.db")
	v.SetDefault("storage.mongo_database", "whisperlink")

	v.SetDefault("security.session_ttl", "720h")
	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("verification.code_ttl", "1h")
	v.SetDefault("verification.resend_cooldown", "1m")

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)

	v.SetDefault("suggest.endpoint", "https://api-inference.huggingface.co/models/distilgpt2")
	v.SetDefault("suggest.timeout", "15s")

	v.SetDefault("cleanup.schedule", "@every 24h")
	v.SetDefault("cleanup.unverified_grace", "168h")
}

// Validate checks the loaded values for anything the app can't run with
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	switch v.GetString("storage.type") {
	case "sqlite":
		if v.GetString("storage.sqlite_path") == "" {
			return errors.New("sqlite path can't be empty")
		}
	case "postgres":
		if v.GetString("storage.postgres_dsn") == "" {
			return errors.New("postgres dsn can't be empty")
		}
	case "mongo":
		if v.GetString("storage.mongo_uri") == "" {
			return errors.New("mongo uri can't be empty")
		}
		if v.GetString("storage.mongo_database") == "" {
			return errors.New("mongo database can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetString("security.jwt_secret") == "" {
		return errors.New("jwt secret can't be empty")
	}

	if v.GetDuration("security.session_ttl") <= 0 {
		return errors.New("security.session_ttl must be bigger than 0")
	}

	if v.GetDuration("verification.code_ttl") <= 0 {
		return errors.New("verification.code_ttl must be bigger than 0")
	}

	if v.GetDuration("verification.resend_cooldown") < 0 {
		return errors.New("verification.resend_cooldown can't be negative")
	}

	if v.GetBool("mail.enabled") {
		if v.GetString("mail.host") == "" {
			return errors.New("mail host can't be empty")
		}
		if v.GetInt("mail.port") <= 0 {
			return errors.New("invalid mail port provided")
		}
		if v.GetString("mail.username") == "" {
			return errors.New("mail username can't be empty")
		}
	} else {
		fmt.Println("[WARNING]: Mail delivery is disabled, verification codes will be written to the log")
	}

	if v.GetString("suggest.api_key") == "" {
		fmt.Println("[WARNING]: No suggest.api_key set, message suggestions will be static")
	} else if v.GetString("suggest.endpoint") == "" {
		return errors.New("suggest endpoint can't be empty")
	}

	if v.GetDuration("suggest.timeout") <= 0 {
		return errors.New("suggest.timeout must be bigger than 0")
	}

	if v.GetString("cleanup.schedule") == "" {
		return errors.New("cleanup schedule can't be empty")
	}

	if v.GetDuration("cleanup.unverified_grace") < 0 {
		return errors.New("cleanup.unverified_grace can't be negative")
	}

	return nil
}
