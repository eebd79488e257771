package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "eventora", cfg.MongoDB)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10*time.Minute, cfg.OTPExpiry)
	assert.Equal(t, int64(2<<20), cfg.MaxImageBytes)
	assert.Equal(t, "usersprofilepics", cfg.ProfileImageDir)
	assert.Equal(t, "eventimages", cfg.EventImageDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRY", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiry)
}
