package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30*time.Second, cfg.Query.StaleTime)
	assert.Equal(t, "http://localhost:3000", cfg.Upstream.BaseURL)
	assert.Equal(t, 50, cfg.Assistant.HistoryLimit)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Database.Enabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("UPSTREAM_BASE_URL", "https://lms.example.com/")
	v.Set("QUERY_STALE_TIME", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")
	v.Set("ASSISTANT_HISTORY_LIMIT", 0)

	cfg := fromViper(v)

	assert.Equal(t, "https://lms.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Query.StaleTime)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 50, cfg.Assistant.HistoryLimit)
}
