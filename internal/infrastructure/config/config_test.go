package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, ":1", cfg.Display.Display)
	assert.Equal(t, 5901, cfg.Display.VNCPort)
	assert.Equal(t, "0 2 * * *", cfg.Scheduler.CronSpec)
	assert.Equal(t, 10000, cfg.Scraper.MaxContentChars)
	assert.True(t, cfg.Scraper.Headless)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("VNC_PORT", "5902")
	t.Setenv("SCRAPE_CRON", "30 1 * * *")
	t.Setenv("EMAIL_RECIPIENTS", "a@example.com,b@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 5902, cfg.Display.VNCPort)
	assert.Equal(t, "30 1 * * *", cfg.Scheduler.CronSpec)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Email.Recipients)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("VNC_PORT", "not-a-number")

	cfg := LoadOrDefault()
	assert.Equal(t, 5901, cfg.Display.VNCPort)
}
