package normalize

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/dtnitsch/llm-repo-processor/models"
	"github.com/dtnitsch/llm-repo-processor/pkg/pathfix"
	"github.com/dtnitsch/llm-repo-processor/pkg/storage"
)

// Report counts what a normalizer pass did.
type Report struct {
	Scanned   int      `json:"scanned"`
	Rewritten int      `json:"rewritten"`
	Unchanged int      `json:"unchanged"`
	Failed    int      `json:"failed"`
	DryRun    bool     `json:"dry_run"`
	Changed   []string `json:"changed,omitempty"`
	Failures  []string `json:"failures,omitempty"`
}

// Normalizer strips leading "../" segments from the filepath field of every
// sidecar under an output tree.
type Normalizer struct {
	logger *slog.Logger
	store  *storage.Storage
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger, store: &storage.Storage{}}
}

// Run walks cfg.OutputDir. Per-file failures are logged and counted; only a
// failure to walk the tree itself is returned.
func (n *Normalizer) Run(cfg *models.NormalizeConfig) (*Report, error) {
	report := &Report{DryRun: cfg.DryRun}

	err := filepath.WalkDir(cfg.OutputDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == cfg.OutputDir {
				return walkErr
			}
			n.logger.Warn("Could not read path", "path", path, "error", walkErr.Error())
			report.fail(path)
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		report.Scanned++
		changed, err := n.fixFile(path, cfg.DryRun)
		switch {
		case err != nil:
			n.logger.Warn("Could not normalize file", "path", path, "error", err.Error())
			report.fail(path)
		case changed:
			report.Rewritten++
			report.Changed = append(report.Changed, path)
			n.logger.Debug("Rewrote filepath", "path", path, "dry_run", cfg.DryRun)
		default:
			report.Unchanged++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to walk %s: %w", cfg.OutputDir, err)
	}

	n.logger.Info("Normalized filepaths",
		"output_dir", cfg.OutputDir,
		"scanned", report.Scanned,
		"rewritten", report.Rewritten,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
		"dry_run", cfg.DryRun)
	return report, nil
}

func (n *Normalizer) fixFile(path string, dryRun bool) (bool, error) {
	data, err := n.store.ReadFile(path)
	if err != nil {
		return false, err
	}

	out, changed, err := pathfix.FixBytes(data)
	if err != nil {
		if errors.Is(err, pathfix.ErrInvalidJSON) {
			return false, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return false, err
	}
	if !changed || dryRun {
		return changed, nil
	}
	if err := n.store.SaveFileAtomic(path, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Report) fail(path string) {
	r.Failed++
	r.Failures = append(r.Failures, path)
}
