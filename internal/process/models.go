package process

import (
	"errors"
	"time"
)

// Error types recorded for failed units.
const (
	ErrTypeWalk  = "walk_error"
	ErrTypeRead  = "read_error"
	ErrTypeWrite = "write_error"
	ErrTypeMkdir = "mkdir_error"
	ErrTypePanic = "panic"
)

// File outcome statuses.
const (
	FileProcessed = "processed"
	FileSkipped   = "skipped"
)

// Job is one top-level unit: a first-level subdirectory of the input root.
type Job struct {
	Unit      string
	InputDir  string
	OutputDir string
}

// FileOutcome records what happened to one source file.
type FileOutcome struct {
	RelPath     string
	OutputPath  string
	Status      string
	ContentHash string
	WordCount   int
	TokenCount  int
	Bytes       int64
	Error       error
}

// UnitResult holds the outcome of one processed unit. It replaces a shared
// progress counter: each worker fills its own result and the dispatcher
// aggregates them after the pool drains.
type UnitResult struct {
	Unit         string
	Processed    int
	Skipped      int
	Words        int64
	Tokens       int64
	BytesWritten int64
	Duration     time.Duration
	WordCounts   map[string]int
	Files        []FileOutcome
	Error        error
	ErrorType    string
}

// Failed reports whether the unit was abandoned.
func (r UnitResult) Failed() bool {
	return r.Error != nil
}

// unitError tags an error that aborts a unit with its error type.
type unitError struct {
	kind string
	err  error
}

func (e *unitError) Error() string { return e.err.Error() }
func (e *unitError) Unwrap() error { return e.err }

func newUnitError(kind string, err error) error {
	return &unitError{kind: kind, err: err}
}

// errorType extracts the error type recorded for err, defaulting to walk_error.
func errorType(err error) string {
	var ue *unitError
	if errors.As(err, &ue) {
		return ue.kind
	}
	return ErrTypeWalk
}
