package manifest

// SummaryManifest is the run summary printed after a process run. It gives
// per-unit outcomes and aggregate counts without reading the sidecar files.
type SummaryManifest struct {
	RunID       string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	GeneratedAt string        `json:"generated_at" yaml:"generated_at"`
	Status      string        `json:"status" yaml:"status"` // "success" or "partial_failure"
	InputDir    string        `json:"input_dir" yaml:"input_dir"`
	OutputDir   string        `json:"output_dir" yaml:"output_dir"`
	Stats       Stats         `json:"stats" yaml:"stats"`
	Units       []UnitSummary `json:"units" yaml:"units"`
}

// Stats aggregates counts across all units of a run.
type Stats struct {
	Units            int      `json:"units" yaml:"units"`
	UnitsFailed      int      `json:"units_failed" yaml:"units_failed"`
	FilesProcessed   int      `json:"files_processed" yaml:"files_processed"`
	FilesSkipped     int      `json:"files_skipped" yaml:"files_skipped"`
	WordsTotal       int64    `json:"words_total" yaml:"words_total"`
	TokensTotal      int64    `json:"tokens_total" yaml:"tokens_total"`
	BytesWritten     int64    `json:"bytes_written" yaml:"bytes_written"`
	TotalTimeSeconds float64  `json:"total_time_seconds" yaml:"total_time_seconds"`
	TopKeywords      []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
}

// UnitSummary represents the outcome of one top-level unit.
type UnitSummary struct {
	Unit         string   `json:"unit" yaml:"unit"`
	Status       string   `json:"status" yaml:"status"` // "success" or "failed"
	Processed    int      `json:"processed" yaml:"processed"`
	Skipped      int      `json:"skipped" yaml:"skipped"`
	SkippedFiles []string `json:"skipped_files,omitempty" yaml:"skipped_files,omitempty"`
	BytesWritten int64    `json:"bytes_written,omitempty" yaml:"bytes_written,omitempty"`
	ErrorType    string   `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}
