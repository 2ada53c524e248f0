package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dtnitsch/llm-repo-processor/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResults() []UnitResult {
	return []UnitResult{
		{
			Unit:         "repoA",
			Processed:    2,
			Skipped:      1,
			SkippedFiles: []string{"sub/x.bin"},
			Words:        10,
			Tokens:       14,
			BytesWritten: 300,
			WordCounts:   map[string]int{"walker": 3, "token": 1},
		},
		{
			Unit:      "repoB",
			Processed: 1,
			Words:     2,
			Tokens:    3,
			Error:     errors.New("unit repoB: permission denied"),
			ErrorType: "read_error",
		},
	}
}

func TestGenerate(t *testing.T) {
	started := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Second)

	m := Generate(sampleResults(), "raw_repos", "processed_repos", started, finished, 5)

	assert.Equal(t, StatusPartialFailure, m.Status)
	assert.Equal(t, "2026-10-19T12:00:02Z", m.GeneratedAt)
	assert.Equal(t, 2, m.Stats.Units)
	assert.Equal(t, 1, m.Stats.UnitsFailed)
	assert.Equal(t, 3, m.Stats.FilesProcessed)
	assert.Equal(t, 1, m.Stats.FilesSkipped)
	assert.Equal(t, int64(12), m.Stats.WordsTotal)
	assert.Equal(t, int64(17), m.Stats.TokensTotal)
	assert.Equal(t, 2.0, m.Stats.TotalTimeSeconds)
	assert.Equal(t, []string{"walker:3", "token:1"}, m.Stats.TopKeywords)

	require.Len(t, m.Units, 2)
	assert.Equal(t, "success", m.Units[0].Status)
	assert.Equal(t, []string{"sub/x.bin"}, m.Units[0].SkippedFiles)
	assert.Equal(t, "failed", m.Units[1].Status)
	assert.Equal(t, "read_error", m.Units[1].ErrorType)
	assert.Equal(t, "unit repoB: permission denied", m.Units[1].ErrorMessage)
}

func TestGenerateAllSuccess(t *testing.T) {
	now := time.Now()
	m := Generate(sampleResults()[:1], "in", "out", now, now, 0)
	assert.Equal(t, StatusSuccess, m.Status)
	assert.Empty(t, m.Stats.TopKeywords)
}

func TestGenerateEmpty(t *testing.T) {
	now := time.Now()
	m := Generate(nil, "in", "out", now, now, 25)
	assert.Equal(t, StatusSuccess, m.Status)
	assert.NotNil(t, m.Units)

	data, err := m.Marshal("json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"units": []`)
}

func TestMarshalFormats(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	m := Generate(sampleResults(), "in", "out", now, now, 5)

	jsonData, err := m.Marshal("json")
	require.NoError(t, err)
	var fromJSON SummaryManifest
	require.NoError(t, json.Unmarshal(jsonData, &fromJSON))
	assert.Equal(t, m.Stats, fromJSON.Stats)

	yamlData, err := m.Marshal("YAML")
	require.NoError(t, err)
	var fromYAML SummaryManifest
	require.NoError(t, yaml.Unmarshal(yamlData, &fromYAML))
	assert.Equal(t, m.Units, fromYAML.Units)

	_, err = m.Marshal("xml")
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	now := time.Now()
	m := Generate(sampleResults(), "in", "out", now, now, 5)
	path := filepath.Join(t.TempDir(), "summary.json")

	require.NoError(t, m.Save(&storage.Storage{}, path, "json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved SummaryManifest
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, m.Stats, saved.Stats)

	assert.Error(t, m.Save(&storage.Storage{}, path, "toml"))
}
