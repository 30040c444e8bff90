package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "openrouter", cfg.OracleProvider)
	require.Equal(t, "openai/gpt-4o-mini", cfg.Model)
	require.Equal(t, cfg.Model, cfg.ResearchModel)
	require.Equal(t, "fall-aib-2025", cfg.Tournament)
	require.Equal(t, 30, cfg.NWorlds)
	require.Equal(t, 800, cfg.MaxTokens)
	require.Equal(t, 0.2, cfg.Temperature)
	require.False(t, cfg.SubmitForecasts)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 90, cfg.RequestTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ORACLE_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("TOURNAMENT", "my-cup")
	t.Setenv("N_WORLDS", "50")
	t.Setenv("TEMPERATURE", "0.7")
	t.Setenv("SUBMIT_FORECASTS", "true")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "gemini", cfg.OracleProvider)
	require.Equal(t, "key", cfg.GeminiAPIKey)
	require.Equal(t, "my-cup", cfg.Tournament)
	require.Equal(t, 50, cfg.NWorlds)
	require.Equal(t, 0.7, cfg.Temperature)
	require.True(t, cfg.SubmitForecasts)
	require.Equal(t, int64(12345), cfg.TelegramChatID)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("N_WORLDS", "lots")
	t.Setenv("TEMPERATURE", "warm")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30, cfg.NWorlds)
	require.Equal(t, 0.2, cfg.Temperature)
}
