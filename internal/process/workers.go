package process

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/dtnitsch/llm-repo-processor/pkg/exclude"
)

// DiscoverUnits lists the first-level subdirectories of inputRoot as jobs.
// Nested directories are left to each unit's own walk. Regular files directly
// under inputRoot belong to no unit and are ignored. Symlinked unit
// directories are resolved so the walk descends into them.
func DiscoverUnits(logger *slog.Logger, inputRoot, outputRoot string, matcher *exclude.Matcher) ([]Job, error) {
	entries, err := os.ReadDir(inputRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir: %w", err)
	}

	var jobs []Job
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(inputRoot, name)

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				resolved, err := filepath.EvalSymlinks(path)
				if err != nil {
					return nil, fmt.Errorf("failed to resolve unit %s: %w", name, err)
				}
				path = resolved
				isDir = true
			}
		}

		if !isDir {
			logger.Debug("Ignoring file outside any unit", "path", path)
			continue
		}
		if matcher.Match(name) {
			logger.Info("Excluding unit", "unit", name)
			continue
		}

		jobs = append(jobs, Job{
			Unit:      name,
			InputDir:  path,
			OutputDir: filepath.Join(outputRoot, name),
		})
	}
	return jobs, nil
}

// Run ensures each unit's output directory exists, fans the units out over
// workerCount workers and waits for all of them. Unit failures are logged and
// returned in the results; they never stop sibling units. Results are sorted
// by unit name.
func Run(logger *slog.Logger, proc *Processor, jobs []Job, workerCount int) []UnitResult {
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(jobs) && len(jobs) > 0 {
		workerCount = len(jobs)
	}

	logger.Info("Starting unit workers", "unit_count", len(jobs), "workers", workerCount)

	var wg sync.WaitGroup
	jobsCh := make(chan Job, len(jobs))
	results := make(chan UnitResult, len(jobs))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go worker(w, logger, proc, &wg, jobsCh, results)
	}

	for _, job := range jobs {
		if err := proc.store.EnsureDir(job.OutputDir); err != nil {
			results <- UnitResult{
				Unit:      job.Unit,
				Error:     fmt.Errorf("unit %s: %w", job.Unit, err),
				ErrorType: ErrTypeMkdir,
			}
			continue
		}
		jobsCh <- job
	}
	close(jobsCh)

	wg.Wait()
	close(results)
	logger.Info("All unit workers finished")

	all := make([]UnitResult, 0, len(jobs))
	for r := range results {
		if r.Failed() {
			logger.Error("Unit failed", "unit", r.Unit, "error_type", r.ErrorType, "error", fmt.Sprintf("%+v", r.Error))
		}
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Unit < all[j].Unit })
	return all
}

// worker processes units from jobs until the channel is closed.
func worker(id int, logger *slog.Logger, proc *Processor, wg *sync.WaitGroup, jobs <-chan Job, results chan<- UnitResult) {
	defer wg.Done()
	for job := range jobs {
		logger.Info("Worker started unit", "worker_id", id, "unit", job.Unit)
		results <- processSafely(logger, proc, job)
	}
}

// processSafely converts a panic inside one unit into a failed result.
func processSafely(logger *slog.Logger, proc *Processor, job Job) (res UnitResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unit panicked", "unit", job.Unit, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			res = UnitResult{
				Unit:      job.Unit,
				Error:     fmt.Errorf("unit %s: panic: %v", job.Unit, r),
				ErrorType: ErrTypePanic,
			}
		}
	}()
	return proc.ProcessDirectory(job)
}
