package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration. Every knob the sampling,
// aggregation and sanitization layers use is carried here explicitly;
// nothing reads the environment past Load.
type Config struct {
	MetaculusToken   string
	OpenRouterAPIKey string
	GeminiAPIKey     string

	// OracleProvider selects the generation backend: "openrouter" or "gemini".
	OracleProvider string
	Model          string
	ResearchModel  string

	Tournament string

	NWorlds     int
	MaxTokens   int
	Temperature float64

	SubmitForecasts bool
	LogLevel        string
	RequestTimeout  int // seconds

	DatabaseURL    string
	TelegramToken  string
	TelegramChatID int64
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.MetaculusToken = os.Getenv("METACULUS_TOKEN")
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OracleProvider = getEnvWithDefault("ORACLE_PROVIDER", "openrouter")
	cfg.Model = getEnvWithDefault("ORACLE_MODEL", "openai/gpt-4o-mini")
	cfg.ResearchModel = getEnvWithDefault("RESEARCH_MODEL", cfg.Model)
	cfg.Tournament = getEnvWithDefault("TOURNAMENT", "fall-aib-2025")
	cfg.NWorlds = getEnvIntWithDefault("N_WORLDS", 30)
	cfg.MaxTokens = getEnvIntWithDefault("MAX_TOKENS", 800)
	cfg.Temperature = getEnvFloatWithDefault("TEMPERATURE", 0.2)
	cfg.SubmitForecasts = getEnvBoolWithDefault("SUBMIT_FORECASTS", false)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 90)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = int64(getEnvIntWithDefault("TELEGRAM_CHAT_ID", 0))

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
