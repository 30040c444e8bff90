package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Forecaster/config"
	"github.com/Alias1177/Forecaster/internal/database"
	"github.com/Alias1177/Forecaster/internal/metaculus"
	"github.com/Alias1177/Forecaster/internal/notify"
	"github.com/Alias1177/Forecaster/internal/oracle"
	"github.com/Alias1177/Forecaster/internal/research"
	"github.com/Alias1177/Forecaster/internal/runner"
	"github.com/Alias1177/Forecaster/internal/worlds"
	"github.com/Alias1177/Forecaster/models"
)

func main() {
	root := &cobra.Command{
		Use:   "forecaster",
		Short: "Monte-Carlo world-sampling forecasting bot",
	}
	root.AddCommand(runCmd(), questionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var submit bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Forecast every open question of the configured tournament",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if submit {
				cfg.SubmitForecasts = true
			}
			setupLogging(cfg)

			r, cleanup, err := buildRunner(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Tournament %s: submitted %d, skipped %d, failed %d\n",
				report.Tournament, report.Submitted, report.Skipped, report.Failed)
			for _, f := range report.Failures {
				fmt.Println("  failed:", f)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&submit, "submit", false, "actually submit forecasts (overrides SUBMIT_FORECASTS)")
	return cmd
}

func questionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question <post-id>",
		Short: "Forecast a single question by post id without submitting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("post id must be numeric: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.SubmitForecasts = false
			setupLogging(cfg)

			client := metaculus.New(cfg.MetaculusToken, time.Duration(cfg.RequestTimeout)*time.Second)
			q, err := client.GetQuestion(cmd.Context(), postID)
			if err != nil {
				return err
			}

			r, cleanup, err := buildRunner(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			p, rationale, err := r.ForecastQuestion(cmd.Context(), q)
			if err != nil {
				return err
			}
			printPayload(q, p)
			fmt.Println("\nRationale:")
			fmt.Println(rationale)
			return nil
		},
	}
	return cmd
}

func setupLogging(cfg *config.Config) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
}

func buildRunner(ctx context.Context, cfg *config.Config) (*runner.Runner, func(), error) {
	orc, researchOracle, err := buildOracles(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	researcher, err := research.NewCached(research.NewLLMResearcher(researchOracle, 0), 0)
	if err != nil {
		return nil, nil, err
	}

	sampler := worlds.NewSampler(orc, worlds.SamplerOptions{
		NWorlds:     cfg.NWorlds,
		MaxTokens:   cfg.MaxTokens,
		Temperature: float32(cfg.Temperature),
	})

	client := metaculus.New(cfg.MetaculusToken, time.Duration(cfg.RequestTimeout)*time.Second)

	cleanup := func() {}
	var journal models.Journal
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening journal database: %w", err)
		}
		journal = db
		cleanup = func() { db.Close() }
	}

	var notifier models.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		notifier, err = notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("creating telegram notifier: %w", err)
		}
	}

	r := runner.New(client, sampler, researcher, journal, notifier, runner.Options{
		Tournament: cfg.Tournament,
		Submit:     cfg.SubmitForecasts,
	})
	return r, cleanup, nil
}

// buildOracles returns the sampling oracle and the research oracle. The two
// share one client when RESEARCH_MODEL is unset or equals ORACLE_MODEL.
func buildOracles(ctx context.Context, cfg *config.Config) (models.Oracle, models.Oracle, error) {
	gen, err := buildOracle(ctx, cfg, cfg.Model)
	if err != nil {
		return nil, nil, err
	}
	if cfg.ResearchModel == "" || cfg.ResearchModel == cfg.Model {
		return gen, gen, nil
	}
	res, err := buildOracle(ctx, cfg, cfg.ResearchModel)
	if err != nil {
		return nil, nil, err
	}
	return gen, res, nil
}

func buildOracle(ctx context.Context, cfg *config.Config, model string) (models.Oracle, error) {
	switch cfg.OracleProvider {
	case "openrouter":
		if cfg.OpenRouterAPIKey == "" {
			return nil, errors.New("OPENROUTER_API_KEY is required for the openrouter provider")
		}
		return oracle.NewOpenRouter(cfg.OpenRouterAPIKey, model), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
		return oracle.NewGemini(ctx, cfg.GeminiAPIKey, model)
	}
	return nil, fmt.Errorf("unknown oracle provider %q", cfg.OracleProvider)
}

func printPayload(q *models.Question, p *models.SubmissionPayload) {
	switch {
	case p.ProbabilityYes != nil:
		fmt.Printf("Question %s (%s): p(yes) = %.3f\n", q.ID, q.Title, *p.ProbabilityYes)
	case p.PerOption != nil:
		fmt.Printf("Question %s (%s):\n", q.ID, q.Title)
		for _, name := range q.Options {
			fmt.Printf("  %-24s %.3f\n", name, p.PerOption[name])
		}
	case p.ContinuousCDF != nil:
		fmt.Printf("Question %s (%s): %d-point CDF [%.4f .. %.4f]\n",
			q.ID, q.Title, len(p.ContinuousCDF), p.ContinuousCDF[0], p.ContinuousCDF[len(p.ContinuousCDF)-1])
	}
}
