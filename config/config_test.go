package config

import (
	"testing"
	"time"

	v "github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) {
	t.Helper()

	v.Reset()
	t.Cleanup(v.Reset)

	Load()
	v.Set("security.jwt_secret", "secret")
}

func TestLoadDefaults(t *testing.T) {
	loadDefaults(t)

	require.NoError(t, Validate())

	assert.Equal(t, 8080, v.GetInt("host.port"))
	assert.Equal(t, "sqlite", v.GetString("storage.type"))
	assert.Equal(t, time.Hour, v.GetDuration("verification.code_ttl"))
	assert.Equal(t, time.Minute, v.GetDuration("verification.resend_cooldown"))
	assert.Equal(t, 720*time.Hour, v.GetDuration("security.session_ttl"))
	assert.Equal(t, []string{"http://localhost:3000"}, v.GetStringSlice("host.cors"))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOST_PORT", "9090")
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("STORAGE_POSTGRES_DSN", "postgres://localhost/whisper")
	t.Setenv("VERIFICATION_CODE_TTL", "10m")

	loadDefaults(t)

	require.NoError(t, Validate())
	assert.Equal(t, 9090, v.GetInt("host.port"))
	assert.Equal(t, "postgres", v.GetString("storage.type"))
	assert.Equal(t, 10*time.Minute, v.GetDuration("verification.code_ttl"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{"log level", map[string]any{"app.log_level": "loud"}},
		{"port", map[string]any{"host.port": 0}},
		{"ssl without cert", map[string]any{"host.ssl.enabled": true}},
		{"storage type", map[string]any{"storage.type": "csv"}},
		{"postgres without dsn", map[string]any{"storage.type": "postgres"}},
		{"mongo without uri", map[string]any{"storage.type": "mongo"}},
		{"no jwt secret", map[string]any{"security.jwt_secret": ""}},
		{"code ttl", map[string]any{"verification.code_ttl": "0s"}},
		{"negative cooldown", map[string]any{"verification.resend_cooldown": "-1m"}},
		{"mail without host", map[string]any{"mail.enabled": true}},
		{"suggest without endpoint", map[string]any{"suggest.api_key": "k", "suggest.endpoint": ""}},
		{"cleanup schedule", map[string]any{"cleanup.schedule": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loadDefaults(t)

			for k, val := range tt.set {
				v.Set(k, val)
			}

			assert.Error(t, Validate())
		})
	}
}
