package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "blog_comments", cfg.Database.Name)
	assert.Equal(t, 500, cfg.Cache.Size)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 20, cfg.Moderation.PageSize)
	assert.Equal(t, 1000, cfg.Import.BatchSize)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("COMMENTS_CACHE_TTL", "30s")
	t.Setenv("MODERATION_PAGE_SIZE", "50")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 50, cfg.Moderation.PageSize)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoad_InvalidSizes(t *testing.T) {
	t.Setenv("MODERATION_PAGE_SIZE", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", db.GetDSN())
}
