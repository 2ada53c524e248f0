package models

// SourceFileRecord is the sidecar document written for one source file.
// Field order is the serialized order.
type SourceFileRecord struct {
	Filename   string `json:"filename"`
	Filepath   string `json:"filepath"`
	Content    string `json:"content"`
	WordCount  int    `json:"word_count"`
	Tokens     []int  `json:"tokens"`
	TokenCount int    `json:"token_count"`

	// Extension is only used to build the sidecar name.
	Extension string `json:"-"`
}

// NewSourceFileRecord builds a record, deriving TokenCount from tokens.
// A nil token slice is stored as empty so it serializes as [].
func NewSourceFileRecord(filename, extension, relPath, content string, wordCount int, tokens []int) *SourceFileRecord {
	if tokens == nil {
		tokens = []int{}
	}
	return &SourceFileRecord{
		Filename:   filename,
		Filepath:   relPath,
		Content:    content,
		WordCount:  wordCount,
		Tokens:     tokens,
		TokenCount: len(tokens),
		Extension:  extension,
	}
}
