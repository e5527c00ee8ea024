package crosta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseConfig = `
app:
  name: testapp
  version: 0.0.1
  env: test

http:
  ip: 127.0.0.1
  port: "8080"
  cors:
    origins:
      - http://localhost:5173
    methods:
      - GET
      - POST
    headers:
      - Accept
      - Content-Type

upstream:
  base-url: http://localhost:8000/usersnack/api/v1
  timeout-in-seconds: 10
`

type testSettings struct {
	App      AppSettings      `mapstructure:"app" validate:"required"`
	HTTP     HTTPSettings     `mapstructure:"http" validate:"required"`
	Upstream UpstreamSettings `mapstructure:"upstream" validate:"required"`
}

func TestLoadConfigFromBaseYaml(t *testing.T) {
	// Act
	cfg, err := LoadConfig[testSettings]("TESTAPP", []byte(testBaseConfig))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "testapp", cfg.App.Name)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.CORS.Origins)
	assert.Equal(t, 10, cfg.Upstream.TimeoutInSeconds)
}

func TestLoadConfigEnvOverridesBaseYaml(t *testing.T) {
	// Arrange
	t.Setenv("TESTAPP_HTTP_PORT", "9999")
	t.Setenv("TESTAPP_UPSTREAM_TIMEOUTINSECONDS", "3")

	// Act
	cfg, err := LoadConfig[testSettings]("TESTAPP", []byte(testBaseConfig))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.HTTP.Port)
	assert.Equal(t, 3, cfg.Upstream.TimeoutInSeconds)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{
			name:  "should reject a header outside the allow list",
			key:   "TESTAPP_HTTP_CORS_HEADERS",
			value: "X-Totally-Custom",
		},
		{
			name:  "should reject a non-numeric port",
			key:   "TESTAPP_HTTP_PORT",
			value: "eighty",
		},
		{
			name:  "should reject an invalid listen ip",
			key:   "TESTAPP_HTTP_IP",
			value: "localhost",
		},
		{
			name:  "should reject a zero upstream timeout",
			key:   "TESTAPP_UPSTREAM_TIMEOUTINSECONDS",
			value: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			t.Setenv(tt.key, tt.value)

			// Act
			_, err := LoadConfig[testSettings]("TESTAPP", []byte(testBaseConfig))

			// Assert
			assert.Error(t, err)
		})
	}
}
