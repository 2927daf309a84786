package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3600, cfg.SignedURLTTLSec)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, "candidate-documents", cfg.Buckets.Candidate)
	assert.Equal(t, "company-documents", cfg.Buckets.Company)
	assert.Equal(t, "system-documents", cfg.Buckets.System)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SIGNED_URL_TTL_SEC", "600")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("BUCKET_CANDIDATE", "cand-docs")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("REDIS_CHANNEL_PREFIX", "talentdocs")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 600, cfg.SignedURLTTLSec)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "cand-docs", cfg.Buckets.Candidate)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, "talentdocs", cfg.Redis.ChannelPrefix)
}

func TestGetEnvInt_Invalid(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}
