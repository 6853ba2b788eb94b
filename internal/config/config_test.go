package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setUPSCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("UPS_CLIENT_ID", "test-client")
	t.Setenv("UPS_CLIENT_SECRET", "test-secret")
	t.Setenv("UPS_ACCOUNT_NUMBER", "A1B2C3")
}

func TestLoad_Defaults(t *testing.T) {
	setUPSCredentials(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://onlinetools.ups.com", cfg.UPSBaseURL)
	assert.True(t, cfg.UPSEnabled)
	assert.False(t, cfg.UPSUseMock)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.HTTPMaxRPS)
	assert.False(t, cfg.OTELEnabled)
	assert.Equal(t, "cybership-rateshop", cfg.ServiceName)
}

func TestLoad_Overrides(t *testing.T) {
	setUPSCredentials(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UPS_BASE_URL", "https://wwwcie.ups.com")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("HTTP_MAX_RPS", "25")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://wwwcie.ups.com", cfg.UPSBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 25.0, cfg.HTTPMaxRPS)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("UPS_CLIENT_ID", "")
	t.Setenv("UPS_CLIENT_SECRET", "")
	t.Setenv("UPS_ACCOUNT_NUMBER", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPS_CLIENT_ID")
	assert.Contains(t, err.Error(), "UPS_CLIENT_SECRET")
	assert.Contains(t, err.Error(), "UPS_ACCOUNT_NUMBER")
}

// Mock mode does not need real credentials.
func TestLoad_MockModeSkipsCredentials(t *testing.T) {
	t.Setenv("UPS_CLIENT_ID", "")
	t.Setenv("UPS_CLIENT_SECRET", "")
	t.Setenv("UPS_ACCOUNT_NUMBER", "")
	t.Setenv("UPS_USE_MOCK", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.UPSUseMock)
}

func TestLoad_DisabledCarrierSkipsCredentials(t *testing.T) {
	t.Setenv("UPS_CLIENT_ID", "")
	t.Setenv("UPS_CLIENT_SECRET", "")
	t.Setenv("UPS_ACCOUNT_NUMBER", "")
	t.Setenv("UPS_ENABLED", "false")

	_, err := Load()

	require.NoError(t, err)
}

// Validate reports every problem in one pass, not just the first.
func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		Port:           0,
		UPSEnabled:     true,
		UPSBaseURL:     "not-a-url",
		RequestTimeout: -time.Second,
		HTTPMaxRPS:     -1,
	}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
	assert.Contains(t, err.Error(), "HTTP_MAX_RPS")
	assert.Contains(t, err.Error(), "UPS_CLIENT_ID")
	assert.Contains(t, err.Error(), "UPS_BASE_URL")
}

func TestValidate_RejectsNonHTTPBaseURL(t *testing.T) {
	cfg := &Config{
		Port:           8080,
		UPSBaseURL:     "ftp://onlinetools.ups.com",
		UPSUseMock:     true,
		RequestTimeout: time.Second,
	}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPS_BASE_URL")
}
