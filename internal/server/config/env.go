package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from the process environment, after first
// loading a .env file if one is present in the working directory. A missing
// .env file is not an error; explicit environment variables win over it.
//
// Recognized variables:
//
//	SERVER_ADDRESS      HTTP bind address
//	DATABASE_DSN        PostgreSQL DSN
//	JWT_SECRET          HMAC signing secret
//	ACCESS_TOKEN_TTL    access token lifetime (Go duration, e.g. "15m")
//	REFRESH_TOKEN_TTL   refresh token lifetime (Go duration, e.g. "168h")
//	TOKEN_CLEANUP_CRON  sweep schedule (cron expression)
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
	if v := os.Getenv("TOKEN_CLEANUP_CRON"); v != "" {
		config.TokenCleanupSchedule = v
	}
}
