package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/llm-repo-processor/models"
	"github.com/urfave/cli/v2"
)

// FixFilepathsAction rewrites sidecar filepath fields in place.
func FixFilepathsAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg := &models.NormalizeConfig{
		OutputDir: c.String("output-dir"),
		DryRun:    c.Bool("dry-run"),
	}
	if cfg.OutputDir == "" {
		logger.Error("output dir is required")
		return cli.Exit("", 2)
	}

	report, err := NewNormalizer(logger).Run(cfg)
	if err != nil {
		logger.Error("failed to normalize filepaths", "error", err)
		return cli.Exit("", 2)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Fprintln(c.App.Writer, string(out))

	if report.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
