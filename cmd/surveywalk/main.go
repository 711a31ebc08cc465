package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/config"
	"github.com/v0xg/surveywalk/internal/driver"
	"github.com/v0xg/surveywalk/internal/observability"
	"github.com/v0xg/surveywalk/internal/report"
	"github.com/v0xg/surveywalk/internal/survey"
	"github.com/v0xg/surveywalk/internal/synth"
)

const version = "0.1.0"

var configFile string

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "surveywalk <url>",
		Short: "Traverse and fill a dynamically rendered online survey, recording a screenshot-backed trace",
		Long: `surveywalk opens a multi-page online survey, discovers every question on
every page (including questions revealed only after earlier answers),
synthesizes plausible answers per input type, fills the survey end to end
and writes a report with on-entry/on-exit screenshots of each page.

Example:
  surveywalk "https://platform.example.com/s/abc123" --customer acme --study pain-2026 --package baseline`,
		Args:    cobra.ExactArgs(1),
		Version: version,
		RunE:    run,
	}

	flags := rootCmd.Flags()
	flags.String("customer", "", "Customer identifier for the survey instrument")
	flags.String("study", "", "Study identifier")
	flags.String("package", "", "Survey package name")
	flags.String("language", "en", "Instrument language")
	flags.String("survey-version", "", "Instrument version")
	flags.String("out", "surveywalk-out", "Output base directory")
	flags.String("provider", "heuristic", "Test value synthesizer: heuristic, claude, openai")
	flags.String("model", "", "Specific model override for AI providers")
	flags.Bool("headless", true, "Run the browser headless")
	flags.String("profile", "", "Chrome/Chromium profile directory for authenticated sessions (close browser first)")
	flags.Bool("trace-gif", false, "Build an animated recap GIF from the page screenshots")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&configFile, "config", "", "Config file (yaml)")

	v := viper.New()
	bind := map[string]string{
		"target.customer_id":  "customer",
		"target.study_id":     "study",
		"target.package_name": "package",
		"target.language":     "language",
		"target.version":      "survey-version",
		"output.dir":          "out",
		"synth.provider":      "provider",
		"synth.model":         "model",
		"browser.headless":    "headless",
		"browser.profile_dir": "profile",
		"output.trace_gif":    "trace-gif",
		"logger.level":        "log-level",
	}
	for key, flag := range bind {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	rootCmd.SetContext(context.WithValue(context.Background(), viperKey{}, v))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type viperKey struct{}

func run(cmd *cobra.Command, args []string) error {
	v := cmd.Context().Value(viperKey{}).(*viper.Viper)
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg.Target.URL = args[0]

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	identity := survey.SurveyIdentity{
		CustomerID:  cfg.Target.CustomerID,
		StudyID:     cfg.Target.StudyID,
		PackageName: cfg.Target.PackageName,
		Language:    cfg.Target.Language,
		Version:     cfg.Target.Version,
	}

	synthesizer, err := synth.NewProvider(cfg.Synth.Provider, cfg.Synth.Model, logger)
	if err != nil {
		return fmt.Errorf("synthesizer init failed: %w", err)
	}

	writer := report.NewWriter(cfg.Output.Dir, logger)
	runDir, runID, err := writer.NewRunDir(identity)
	if err != nil {
		return err
	}
	logger.Info("starting traversal",
		zap.String("url", cfg.Target.URL),
		zap.String("runId", runID),
		zap.String("dir", runDir))

	drv, err := driver.NewRod(driver.Options{
		Width:      cfg.Browser.Width,
		Height:     cfg.Browser.Height,
		Headless:   cfg.Browser.Headless,
		ProfileDir: cfg.Browser.ProfileDir,
		NavTimeout: cfg.Timing.NavTimeout,
	})
	if err != nil {
		return err
	}
	defer drv.Close()

	started := time.Now().UTC()
	traverser := survey.NewTraverser(drv, cfg, synthesizer, runDir, logger)
	rep, runErr := traverser.Run(cmd.Context(), identity, cfg.Target.URL)

	// a partial report is always preferable to none: persist whatever was
	// gathered before surfacing the traversal error
	env := report.Envelope{
		RunID:      runID,
		Tool:       "surveywalk",
		Version:    version,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Incomplete: runErr != nil,
		Report:     rep,
	}
	if runErr != nil {
		env.Error = runErr.Error()
		logger.Error("traversal ended with error, persisting partial report", zap.Error(runErr))
	}
	if err := writer.Persist(runDir, env); err != nil {
		return err
	}

	if cfg.Output.Thumbnails {
		if err := writer.Thumbnails(runDir, rep); err != nil {
			logger.Warn("thumbnail generation failed", zap.Error(err))
		}
	}
	if cfg.Output.TraceGIF {
		size, err := report.BuildTraceGIF(runDir, rep, report.TraceOptions{})
		if err != nil {
			logger.Warn("trace GIF generation failed", zap.Error(err))
		} else if size > 0 {
			logger.Info("trace GIF written", zap.Int64("bytes", size))
		}
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("traversal complete",
		zap.Int("pages", len(rep.Pages)),
		zap.Int("questions", rep.QuestionCount()))
	return nil
}
