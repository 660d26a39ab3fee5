package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_NAME", "ACCESS_TOKEN_TTL", "REQUEST_TIMEOUT", "SMTP_PORT", "STRIPE_CURRENCY", "SQUARE_CURRENCY", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "foodorder", cfg.DBName)
	assert.Equal(t, 20*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "gbp", cfg.StripeCurrency)
	assert.Equal(t, "GBP", cfg.SquareCurrency)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", " 9000 ")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ACCESS_TOKEN_TTL", "5")
	t.Setenv("REQUEST_TIMEOUT", "45")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SQUARE_BASE_URL", "http://localhost:9999")

	cfg := FromEnv()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, "http://localhost:9999", cfg.SquareBaseURL)
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "abc")
	t.Setenv("REQUEST_TIMEOUT", "-3")

	cfg := FromEnv()
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}
