package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	dbpkg "github.com/dtnitsch/llm-repo-processor/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"lrp"}, args...))
	return out.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}

func TestProcessEndToEnd(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"raw/repoA/main.txt":    "hello big world\n",
		"raw/repoB/sub/util.go": "package sub\n",
	})
	in := filepath.Join(root, "raw")
	out := filepath.Join(root, "out")
	dbPath := filepath.Join(root, "state", "lrp.db")

	stdout, err := runApp(t, "process", "--quiet",
		"--input-dir", in, "--output-dir", out, "--workers", "2", "--db", dbPath)
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, "success", summary["status"])
	assert.NotEmpty(t, summary["run_id"])

	data, err := os.ReadFile(filepath.Join(out, "repoA", "main_txt.json"))
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "main", record["filename"])
	assert.Equal(t, "main.txt", record["filepath"])
	assert.EqualValues(t, 3, record["word_count"])
	assert.EqualValues(t, len(record["tokens"].([]any)), record["token_count"])

	assert.FileExists(t, filepath.Join(out, "repoB", "sub", "util_go.json"))

	database, err := dbpkg.Open(dbPath)
	require.NoError(t, err)
	defer database.Close()
	runs, err := database.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, summary["run_id"], runs[0].RunID)
	assert.Equal(t, 2, runs[0].FilesProcessed)

	listing, err := runApp(t, "db", "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, listing, runs[0].RunID[:8])

	detail, err := runApp(t, "db", "run", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, detail, "repoA")
	assert.Contains(t, detail, "repoB")
}

func TestProcessYAMLConfigAndFlags(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"raw/repoA/pkg/a.go": "package pkg\n",
	})
	in := filepath.Join(root, "raw")
	out := filepath.Join(root, "out")
	cfgPath := filepath.Join(root, "lrp.yaml")
	cfg := "input_dir: " + in + "\noutput_dir: " + filepath.Join(root, "ignored") + "\nfilepath_base: root\nkeywords: 0\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	summaryPath := filepath.Join(root, "reports", "summary.yaml")
	stdout, err := runApp(t, "process", "--quiet", "--config", cfgPath, "--output-dir", out,
		"--format", "yaml", "--summary-file", summaryPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "status: success")

	saved, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	assert.Equal(t, stdout, string(saved)+"\n")

	data, err := os.ReadFile(filepath.Join(out, "repoA", "pkg", "a_go.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"filepath": "repoA/pkg/a.go"`)
	assert.NoDirExists(t, filepath.Join(root, "ignored"))
}

func TestProcessFatalConfig(t *testing.T) {
	root := t.TempDir()
	_, err := runApp(t, "process", "--quiet", "--input-dir", root, "--output-dir", root)
	assert.Equal(t, 2, exitCode(err))

	_, err = runApp(t, "process", "--quiet", "--input-dir", root, "--output-dir", t.TempDir(), "--model", "no-such-model")
	assert.Equal(t, 2, exitCode(err))
}

func TestFixFilepathsCommand(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"out/r/a_go.json": `{"filepath": "../../../r/a.go"}`,
		"out/r/bad.json":  `{`,
	})
	out := filepath.Join(root, "out")

	stdout, err := runApp(t, "fix-filepaths", "--quiet", "--output-dir", out)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, stdout, `"rewritten": 1`)

	data, err := os.ReadFile(filepath.Join(out, "r", "a_go.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"filepath": "r/a.go"}`, string(data))
}
