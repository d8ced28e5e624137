package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("all flags set", func(t *testing.T) {
		os.Args = []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "postgres://flag@localhost/db", "-s", "flag_secret",
			"-t", "5", "-r", "120", "-k", "@daily",
		}

		config := &Config{}
		require.NotPanics(t, func() { parseFlags(config) })

		assert.Equal(t, "127.0.0.1:9090", config.EndpointAddr)
		assert.Equal(t, "postgres://flag@localhost/db", config.DatabaseDSN)
		assert.Equal(t, "flag_secret", config.SecretKey)
		assert.Equal(t, 5*time.Minute, config.AccessTokenValidityDuration)
		assert.Equal(t, 120*time.Minute, config.RefreshTokenValidityDuration)
		assert.Equal(t, "@daily", config.TokenCleanupSchedule)
	})

	t.Run("no flags keeps current values", func(t *testing.T) {
		os.Args = []string{"cmd"}

		config := &Config{}
		config.LoadDefaults()
		parseFlags(config)

		assert.Equal(t, ":8080", config.EndpointAddr)
		assert.Equal(t, "secretKey", config.SecretKey)
		assert.Equal(t, 15*time.Minute, config.AccessTokenValidityDuration)
		assert.Equal(t, 7*24*time.Hour, config.RefreshTokenValidityDuration)
	})

	t.Run("unset duration flags keep sub-minute values", func(t *testing.T) {
		os.Args = []string{"cmd", "-a", "127.0.0.1:9090"}

		config := &Config{}
		config.LoadDefaults()
		config.AccessTokenValidityDuration = 90 * time.Second
		config.RefreshTokenValidityDuration = 30 * time.Second
		parseFlags(config)

		assert.Equal(t, "127.0.0.1:9090", config.EndpointAddr)
		assert.Equal(t, 90*time.Second, config.AccessTokenValidityDuration)
		assert.Equal(t, 30*time.Second, config.RefreshTokenValidityDuration)
	})
}
