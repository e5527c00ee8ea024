package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Act
	settings, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "banco", settings.App.Name)
	assert.Equal(t, "8080", settings.HTTP.Port)
	assert.Equal(t, 10, settings.Upstream.TimeoutInSeconds)
	assert.Equal(t, 1800, settings.Session.TTLInSeconds)
	assert.False(t, settings.Nats.Enabled)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("BANCO_HTTP_PORT", "9090")
	t.Setenv("BANCO_UPSTREAM_BASEURL", "http://kitchen.internal:8000/usersnack/api/v1")

	// Act
	settings, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "9090", settings.HTTP.Port)
	assert.Equal(t, "http://kitchen.internal:8000/usersnack/api/v1", settings.Upstream.BaseURL)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad ip", "BANCO_HTTP_IP", "not-an-ip"},
		{"bad upstream url", "BANCO_UPSTREAM_BASEURL", "::::"},
		{"session ttl too small", "BANCO_SESSION_TTLINSECONDS", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			t.Setenv(tt.key, tt.value)

			// Act
			_, err := LoadConfig()

			// Assert
			assert.Error(t, err)
		})
	}
}
