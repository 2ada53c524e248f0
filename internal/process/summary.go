package process

import (
	"strings"
	"time"

	"github.com/dtnitsch/llm-repo-processor/models"
	"github.com/dtnitsch/llm-repo-processor/pkg/db"
	"github.com/dtnitsch/llm-repo-processor/pkg/manifest"
)

// SkippedFiles lists the unit-relative paths of files skipped for decode errors.
func (r UnitResult) SkippedFiles() []string {
	var out []string
	for _, f := range r.Files {
		if f.Status == FileSkipped {
			out = append(out, f.RelPath)
		}
	}
	return out
}

// BuildManifest converts unit results into the run summary.
func BuildManifest(results []UnitResult, cfg *models.ProcessConfig, started, finished time.Time) *manifest.SummaryManifest {
	converted := make([]manifest.UnitResult, 0, len(results))
	for _, r := range results {
		converted = append(converted, manifest.UnitResult{
			Unit:         r.Unit,
			Processed:    r.Processed,
			Skipped:      r.Skipped,
			SkippedFiles: r.SkippedFiles(),
			Words:        r.Words,
			Tokens:       r.Tokens,
			BytesWritten: r.BytesWritten,
			WordCounts:   r.WordCounts,
			Error:        r.Error,
			ErrorType:    r.ErrorType,
		})
	}
	return manifest.Generate(converted, cfg.InputDir, cfg.OutputDir, started, finished, cfg.Keywords)
}

// BuildLedger converts a finished run into ledger rows.
func BuildLedger(m *manifest.SummaryManifest, results []UnitResult, cfg *models.ProcessConfig, started, finished time.Time) (*db.Run, []db.Unit) {
	run := &db.Run{
		RunID:          m.RunID,
		StartedAt:      started,
		FinishedAt:     finished,
		InputDir:       cfg.InputDir,
		OutputDir:      cfg.OutputDir,
		Model:          cfg.Model,
		FilepathBase:   string(cfg.FilepathBase),
		Workers:        cfg.WorkerCount,
		Status:         m.Status,
		UnitsTotal:     m.Stats.Units,
		UnitsFailed:    m.Stats.UnitsFailed,
		FilesProcessed: m.Stats.FilesProcessed,
		FilesSkipped:   m.Stats.FilesSkipped,
		WordsTotal:     m.Stats.WordsTotal,
		TokensTotal:    m.Stats.TokensTotal,
		BytesWritten:   m.Stats.BytesWritten,
		TopKeywords:    strings.Join(m.Stats.TopKeywords, ","),
	}

	units := make([]db.Unit, 0, len(results))
	for _, r := range results {
		u := db.Unit{
			Name:         r.Unit,
			Status:       "success",
			Processed:    r.Processed,
			Skipped:      r.Skipped,
			BytesWritten: r.BytesWritten,
			Duration:     r.Duration,
		}
		if r.Failed() {
			u.Status = "failed"
			u.ErrorType = r.ErrorType
			u.ErrorMessage = r.Error.Error()
		}
		for _, f := range r.Files {
			relPath := f.RelPath
			if cfg.FilepathBase == models.FilepathBaseRoot {
				relPath = strings.TrimPrefix(relPath, r.Unit+"/")
			}
			file := db.File{
				RelPath:     relPath,
				OutputPath:  f.OutputPath,
				Status:      f.Status,
				ContentHash: f.ContentHash,
				WordCount:   f.WordCount,
				TokenCount:  f.TokenCount,
			}
			if f.Error != nil {
				file.ErrorMessage = f.Error.Error()
			}
			u.Files = append(u.Files, file)
		}
		units = append(units, u)
	}
	return run, units
}
