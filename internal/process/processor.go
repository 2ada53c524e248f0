package process

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/llm-repo-processor/internal/common"
	"github.com/dtnitsch/llm-repo-processor/models"
	"github.com/dtnitsch/llm-repo-processor/pkg/analytics"
	"github.com/dtnitsch/llm-repo-processor/pkg/exclude"
	"github.com/dtnitsch/llm-repo-processor/pkg/mapreduce"
	"github.com/dtnitsch/llm-repo-processor/pkg/storage"
	"github.com/dtnitsch/llm-repo-processor/pkg/textenc"
	"github.com/dtnitsch/llm-repo-processor/pkg/tokenizer"
)

// Processor turns one unit's source tree into sidecar JSON files.
// It is built once per run and shared by all workers; it holds no mutable state.
type Processor struct {
	logger       *slog.Logger
	tok          tokenizer.Tokenizer
	store        *storage.Storage
	analytics    *analytics.Analytics
	exclude      *exclude.Matcher
	filepathBase models.FilepathBase
}

// NewProcessor wires a processor. A nil matcher excludes nothing.
func NewProcessor(logger *slog.Logger, tok tokenizer.Tokenizer, base models.FilepathBase, matcher *exclude.Matcher) *Processor {
	if base == "" {
		base = models.FilepathBaseUnit
	}
	return &Processor{
		logger:       logger,
		tok:          tok,
		store:        &storage.Storage{},
		analytics:    &analytics.Analytics{},
		exclude:      matcher,
		filepathBase: base,
	}
}

// ProcessDirectory walks one unit, mirroring its directories under
// job.OutputDir and writing one sidecar per eligible file. Decode failures
// skip the file; any other error abandons the rest of the unit and is
// returned in the result.
func (p *Processor) ProcessDirectory(job Job) UnitResult {
	start := time.Now()
	res := UnitResult{Unit: job.Unit}

	err := filepath.WalkDir(job.InputDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return newUnitError(ErrTypeWalk, walkErr)
		}

		rel, err := filepath.Rel(job.InputDir, path)
		if err != nil {
			return newUnitError(ErrTypeWalk, err)
		}

		if d.IsDir() {
			return p.mirrorDir(job, path, rel)
		}

		if common.IsHidden(d.Name()) || p.exclude.Match(rel) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// Symlinked directories are mirrored but not descended.
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return p.mirrorSymlinkDir(job, path, rel)
			}
		} else if !d.Type().IsRegular() {
			p.logger.Debug("Skipping non-regular file", "unit", job.Unit, "path", path)
			return nil
		}

		p.logger.Info("Processing file", "unit", job.Unit, "path", path)
		outDir := filepath.Join(job.OutputDir, filepath.Dir(rel))
		outcome, counts, err := p.processFile(job, path, outDir)
		if err != nil {
			return err
		}

		res.Files = append(res.Files, outcome)
		switch outcome.Status {
		case FileProcessed:
			res.Processed++
			res.Words += int64(outcome.WordCount)
			res.Tokens += int64(outcome.TokenCount)
			res.BytesWritten += outcome.Bytes
			res.WordCounts = mapreduce.Merge(res.WordCounts, counts)
		case FileSkipped:
			res.Skipped++
		}
		return nil
	})

	res.Duration = time.Since(start)
	if err != nil {
		res.Error = fmt.Errorf("unit %s: %w", job.Unit, err)
		res.ErrorType = errorType(err)
		return res
	}

	p.logger.Info("Finished processing directory",
		"unit", job.Unit,
		"input_dir", job.InputDir,
		"processed", res.Processed,
		"skipped", res.Skipped,
		"duration", res.Duration.String())
	return res
}

// mirrorDir creates the output directory for an input directory, or prunes
// it when excluded or not nested under the unit root.
func (p *Processor) mirrorDir(job Job, path, rel string) error {
	if rel != "." {
		if p.exclude.Match(rel) {
			p.logger.Debug("Excluding directory", "unit", job.Unit, "path", path)
			return filepath.SkipDir
		}
		if !common.HasPathPrefix(path, job.InputDir) {
			return filepath.SkipDir
		}
	}
	if err := p.store.EnsureDir(filepath.Join(job.OutputDir, rel)); err != nil {
		return newUnitError(ErrTypeMkdir, err)
	}
	return nil
}

// mirrorSymlinkDir mirrors a symlinked directory only when its target
// resolves inside the unit root.
func (p *Processor) mirrorSymlinkDir(job Job, path, rel string) error {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return newUnitError(ErrTypeWalk, err)
	}
	root, err := filepath.EvalSymlinks(job.InputDir)
	if err != nil {
		return newUnitError(ErrTypeWalk, err)
	}
	if !common.HasPathPrefix(target, root) {
		p.logger.Debug("Symlinked directory escapes unit root", "unit", job.Unit, "path", path, "target", target)
		return nil
	}
	if err := p.store.EnsureDir(filepath.Join(job.OutputDir, rel)); err != nil {
		return newUnitError(ErrTypeMkdir, err)
	}
	return nil
}

// processFile converts one source file into one sidecar in outDir.
// A decode failure is logged and reported as a skipped outcome with a nil error.
func (p *Processor) processFile(job Job, path, outDir string) (FileOutcome, map[string]int, error) {
	relPath, err := p.recordPath(job, path)
	if err != nil {
		return FileOutcome{}, nil, newUnitError(ErrTypeWalk, err)
	}
	outcome := FileOutcome{RelPath: relPath}

	raw, err := p.store.ReadFile(path)
	if err != nil {
		return outcome, nil, newUnitError(ErrTypeRead, err)
	}

	content, err := textenc.Decode(path, raw)
	if err != nil {
		if textenc.IsDecodeError(err) {
			p.logger.Warn("Could not process file", "unit", job.Unit, "path", path, "error", err.Error())
			outcome.Status = FileSkipped
			outcome.Error = err
			return outcome, nil, nil
		}
		return outcome, nil, newUnitError(ErrTypeRead, err)
	}

	base := filepath.Base(path)
	stem, ext := common.SplitName(base)
	tokens := p.tok.Encode(content)
	record := models.NewSourceFileRecord(stem, ext, relPath, content, analytics.WordCount(content), tokens)

	data, err := marshalRecord(record)
	if err != nil {
		return outcome, nil, newUnitError(ErrTypeWrite, err)
	}

	outPath := filepath.Join(outDir, common.SidecarName(base))
	if err := p.store.SaveFile(outPath, data); err != nil {
		return outcome, nil, newUnitError(ErrTypeWrite, err)
	}

	outcome.OutputPath = outPath
	outcome.Status = FileProcessed
	outcome.ContentHash = common.ContentHash(raw)
	outcome.WordCount = record.WordCount
	outcome.TokenCount = record.TokenCount
	outcome.Bytes = int64(len(data))
	return outcome, mapreduce.Map(content, p.analytics), nil
}

// recordPath is the slash-separated "filepath" value for a source file:
// relative to the unit root, or prefixed with the unit name for root-relative paths.
func (p *Processor) recordPath(job Job, path string) (string, error) {
	rel, err := filepath.Rel(job.InputDir, path)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if p.filepathBase == models.FilepathBaseRoot {
		return job.Unit + "/" + rel, nil
	}
	return rel, nil
}

// marshalRecord serializes a record as two-space indented JSON without HTML
// escaping, so source text such as "a < b && c" is stored verbatim.
func marshalRecord(record *models.SourceFileRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("error marshalling record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
