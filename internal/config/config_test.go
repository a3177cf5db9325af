package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPasetoKey = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "patient_helpdesk", cfg.Database.DBName)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenDuration)
	assert.Equal(t, "denied_documents", cfg.Documents.Dir)
}

func TestLoadRejectsBadPasetoKey(t *testing.T) {
	t.Setenv("PASETO_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PASETO_KEY")
}

func TestLoadRequiresSMTPCredentials(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)
	t.Setenv("SMTP_HOST", "smtp.example.com")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_USER")
}

func TestLoadDefaultsFromAddressToSMTPUser(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "helpdesk@example.com")
	t.Setenv("SMTP_PASS", "relay-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "helpdesk@example.com", cfg.Email.FromAddress)
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		User:     "helpdesk",
		Password: "pw",
		DBName:   "patient_helpdesk",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=helpdesk password=pw dbname=patient_helpdesk sslmode=require",
		cfg.ConnectionString(),
	)
}

func TestGetDurationEnvParsesSeconds(t *testing.T) {
	t.Setenv("TEST_DURATION", "90")
	assert.Equal(t, 90*time.Second, getDurationEnv("TEST_DURATION", time.Minute))

	t.Setenv("TEST_DURATION", "not-a-number")
	assert.Equal(t, time.Minute, getDurationEnv("TEST_DURATION", time.Minute))
}

func TestGetSliceEnvSplitsAndTrims(t *testing.T) {
	t.Setenv("TEST_SLICE", "https://a.example.com, https://b.example.com ,")
	assert.Equal(t,
		[]string{"https://a.example.com", "https://b.example.com"},
		getSliceEnv("TEST_SLICE", nil),
	)
}
