package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("PAYMENT_MODE", "")
	t.Setenv("HTTP_CLIENT_TIMEOUT_MS", "")
	t.Setenv("PAYMENT_SERVICE_URL", "")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "queue", cfg.PaymentMode)
	assert.Equal(t, 5*time.Second, cfg.HTTPClientTimeout)
	assert.Empty(t, cfg.PaymentServiceURL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "3000")
	t.Setenv("PAYMENT_MODE", "HTTP")
	t.Setenv("PAYMENT_SERVICE_URL", "http://pagamentos:8080/")
	t.Setenv("HTTP_CLIENT_TIMEOUT_MS", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http", cfg.PaymentMode)
	assert.Equal(t, "http://pagamentos:8080", cfg.PaymentServiceURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPClientTimeout)
}
