package process

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/llm-repo-processor/models"
	"github.com/dtnitsch/llm-repo-processor/pkg/db"
	"github.com/dtnitsch/llm-repo-processor/pkg/exclude"
	"github.com/dtnitsch/llm-repo-processor/pkg/manifest"
	"github.com/dtnitsch/llm-repo-processor/pkg/storage"
	"github.com/dtnitsch/llm-repo-processor/pkg/tokenizer"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

// Exit codes for the process command.
const (
	ExitOK             = 0
	ExitPartialFailure = 1
	ExitFatal          = 2
)

// ProcessAction runs the batch conversion of every unit under the input root.
func ProcessAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := configFromContext(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit("", ExitFatal)
	}

	tok, err := tokenizer.New(cfg.Model)
	if err != nil {
		logger.Error("failed to load tokenizer", "model", cfg.Model, "error", err)
		return cli.Exit("", ExitFatal)
	}

	matcher, err := exclude.New(cfg.Exclude)
	if err != nil {
		logger.Error("invalid exclude pattern", "error", err)
		return cli.Exit("", ExitFatal)
	}

	store := &storage.Storage{}
	if err := store.EnsureDir(cfg.OutputDir); err != nil {
		logger.Error("failed to create output dir", "output_dir", cfg.OutputDir, "error", err)
		return cli.Exit("", ExitFatal)
	}

	logger.Info("Starting run",
		"input_dir", cfg.InputDir,
		"output_dir", cfg.OutputDir,
		"model", tok.Model(),
		"filepath_base", string(cfg.FilepathBase),
		"exclude", matcher.Patterns())

	started := time.Now()
	jobs, err := DiscoverUnits(logger, cfg.InputDir, cfg.OutputDir, matcher)
	if err != nil {
		logger.Error("failed to list units", "input_dir", cfg.InputDir, "error", err)
		return cli.Exit("", ExitFatal)
	}

	proc := NewProcessor(logger, tok, cfg.FilepathBase, matcher)
	results := Run(logger, proc, jobs, cfg.WorkerCount)
	finished := time.Now()

	summary := BuildManifest(results, cfg, started, finished)

	if dbPath := c.String("db"); dbPath != "" {
		summary.RunID = db.NewRunID()
		if err := recordRun(dbPath, summary, results, cfg, started, finished); err != nil {
			// Ledger failures do not change the exit code.
			logger.Error("failed to record run", "db", dbPath, "error", err)
		} else {
			logger.Info("Recorded run", "run_id", summary.RunID, "db", dbPath)
		}
	}

	logger.Info("Run complete",
		"model", tok.Model(),
		"exclude", matcher.Patterns(),
		"units", summary.Stats.Units,
		"units_failed", summary.Stats.UnitsFailed,
		"files_processed", summary.Stats.FilesProcessed,
		"files_skipped", summary.Stats.FilesSkipped,
		"tokens", summary.Stats.TokensTotal,
		"written", humanize.Bytes(uint64(summary.Stats.BytesWritten)),
		"duration", finished.Sub(started).Round(time.Millisecond).String())

	out, err := summary.Marshal(c.String("format"))
	if err != nil {
		logger.Error("failed to render summary", "error", err)
		return cli.Exit("", ExitFatal)
	}
	fmt.Fprintln(c.App.Writer, string(out))

	if path := c.String("summary-file"); path != "" {
		if err := store.EnsureDir(filepath.Dir(path)); err != nil {
			logger.Error("failed to create summary dir", "path", path, "error", err)
			return cli.Exit("", ExitFatal)
		}
		if err := summary.Save(store, path, c.String("format")); err != nil {
			logger.Error("failed to save summary", "path", path, "error", err)
			return cli.Exit("", ExitFatal)
		}
		logger.Info("Saved summary", "path", path)
	}

	if summary.Stats.UnitsFailed > 0 {
		return cli.Exit("", ExitPartialFailure)
	}
	return nil
}

// configFromContext layers CLI flags over the optional YAML config file.
func configFromContext(c *cli.Context) (*models.ProcessConfig, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("input-dir") || cfg.InputDir == "" {
		cfg.InputDir = c.String("input-dir")
	}
	if c.IsSet("output-dir") || cfg.OutputDir == "" {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("model") || cfg.Model == "" {
		cfg.Model = c.String("model")
	}
	if c.IsSet("filepath-base") {
		base, err := models.ParseFilepathBase(c.String("filepath-base"))
		if err != nil {
			return nil, err
		}
		cfg.FilepathBase = base
	}
	if c.IsSet("exclude") {
		cfg.Exclude = c.StringSlice("exclude")
	}
	if c.IsSet("keywords") {
		cfg.Keywords = c.Int("keywords")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// recordRun writes the finished run to the SQLite ledger in one transaction.
func recordRun(dbPath string, summary *manifest.SummaryManifest, results []UnitResult, cfg *models.ProcessConfig, started, finished time.Time) error {
	database, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	run, units := BuildLedger(summary, results, cfg, started, finished)
	_, err = database.RecordRun(run, units)
	return err
}
