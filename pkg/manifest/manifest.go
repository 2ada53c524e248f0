package manifest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dtnitsch/llm-repo-processor/pkg/mapreduce"
	"github.com/dtnitsch/llm-repo-processor/pkg/storage"
	"gopkg.in/yaml.v3"
)

const (
	StatusSuccess        = "success"
	StatusPartialFailure = "partial_failure"
)

// UnitResult is the outcome of one unit, passed in by the process command
// to avoid a dependency from this package on it.
type UnitResult struct {
	Unit         string
	Processed    int
	Skipped      int
	SkippedFiles []string
	Words        int64
	Tokens       int64
	BytesWritten int64
	WordCounts   map[string]int
	Error        error
	ErrorType    string
}

// Generate builds the summary manifest for a run. keywords is the number of
// top aggregate keywords to include.
func Generate(results []UnitResult, inputDir, outputDir string, started, finished time.Time, keywords int) *SummaryManifest {
	m := &SummaryManifest{
		GeneratedAt: finished.Format(time.RFC3339),
		Status:      StatusSuccess,
		InputDir:    inputDir,
		OutputDir:   outputDir,
		Units:       make([]UnitSummary, 0, len(results)),
	}
	m.Stats.Units = len(results)
	m.Stats.TotalTimeSeconds = finished.Sub(started).Seconds()

	intermediate := make([]map[string]int, 0, len(results))
	for _, r := range results {
		summary := UnitSummary{
			Unit:         r.Unit,
			Status:       "success",
			Processed:    r.Processed,
			Skipped:      r.Skipped,
			SkippedFiles: r.SkippedFiles,
			BytesWritten: r.BytesWritten,
		}
		if r.Error != nil {
			m.Stats.UnitsFailed++
			summary.Status = "failed"
			summary.ErrorType = r.ErrorType
			summary.ErrorMessage = r.Error.Error()
		}

		m.Stats.FilesProcessed += r.Processed
		m.Stats.FilesSkipped += r.Skipped
		m.Stats.WordsTotal += r.Words
		m.Stats.TokensTotal += r.Tokens
		m.Stats.BytesWritten += r.BytesWritten
		if r.WordCounts != nil {
			intermediate = append(intermediate, r.WordCounts)
		}

		m.Units = append(m.Units, summary)
	}

	if m.Stats.UnitsFailed > 0 {
		m.Status = StatusPartialFailure
	}
	if keywords > 0 {
		m.Stats.TopKeywords = mapreduce.TopKeywords(mapreduce.Reduce(intermediate), keywords)
	}
	return m
}

// Marshal renders the manifest as indented JSON (default) or YAML.
func (m *SummaryManifest) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("error marshalling manifest: %w", err)
		}
		return data, nil
	case "yaml", "yml":
		data, err := yaml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("error marshalling manifest: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want json or yaml)", format)
}

// Save writes the manifest to path in the given format.
func (m *SummaryManifest) Save(s *storage.Storage, path, format string) error {
	data, err := m.Marshal(format)
	if err != nil {
		return err
	}
	if err := s.SaveFile(path, data); err != nil {
		return fmt.Errorf("error saving manifest: %w", err)
	}
	return nil
}
