package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-value")
	t.Setenv("PORT", "9090")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("ISSUE_DAILY_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "civictrack", cfg.Mongo.Database)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 5, cfg.Redis.IssueDailyLimit)
	assert.Equal(t, "Asia/Kolkata", cfg.Timezone)
	assert.Empty(t, cfg.Groq.APIKey)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate_Port(t *testing.T) {
	cfg := &Config{
		Port:  70000,
		Mongo: MongoConfig{URI: "mongodb://localhost"},
		Auth:  AuthConfig{JWTSecret: "x", TokenTTL: time.Hour},
	}
	assert.Error(t, cfg.Validate())

	cfg.Port = 8080
	assert.NoError(t, cfg.Validate())
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)

	logger, err := NewLogger(&LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
