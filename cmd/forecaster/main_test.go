package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Forecaster/config"
)

func openRouterConfig() *config.Config {
	return &config.Config{
		OracleProvider:   "openrouter",
		OpenRouterAPIKey: "key",
		Model:            "openai/gpt-4o-mini",
	}
}

func TestBuildOraclesSharedWhenModelsMatch(t *testing.T) {
	cfg := openRouterConfig()
	cfg.ResearchModel = cfg.Model

	gen, res, err := buildOracles(context.Background(), cfg)
	require.NoError(t, err)
	require.Same(t, gen, res)
}

func TestBuildOraclesSeparateResearchModel(t *testing.T) {
	cfg := openRouterConfig()
	cfg.ResearchModel = "openai/gpt-4o"

	gen, res, err := buildOracles(context.Background(), cfg)
	require.NoError(t, err)
	require.NotSame(t, gen, res)
}

func TestBuildOracleRequiresKey(t *testing.T) {
	cfg := openRouterConfig()
	cfg.OpenRouterAPIKey = ""
	_, _, err := buildOracles(context.Background(), cfg)
	require.Error(t, err)

	cfg = &config.Config{OracleProvider: "gemini", Model: "gemini-2.0-flash"}
	_, _, err = buildOracles(context.Background(), cfg)
	require.Error(t, err)
}

func TestBuildOracleUnknownProvider(t *testing.T) {
	cfg := openRouterConfig()
	cfg.OracleProvider = "delphi"
	_, _, err := buildOracles(context.Background(), cfg)
	require.Error(t, err)
}
