// Package tokenizer binds a BPE tokenizer model once and reuses it for every file.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Tokenizer maps text to a sequence of integer token ids.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	Encode(text string) []int
}

var loaderOnce sync.Once

// Tiktoken wraps a tiktoken encoding bound to one model.
type Tiktoken struct {
	model string
	enc   *tiktoken.Tiktoken
}

// New binds the encoding used by model (e.g. "gpt-3.5-turbo" -> cl100k_base).
// BPE ranks come from the embedded offline loader, so no network access is needed.
func New(model string) (*Tiktoken, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("failed to bind tokenizer for model %q: %w", model, err)
	}
	return &Tiktoken{model: model, enc: enc}, nil
}

// Encode tokenizes text. Special-token strings such as "<|endoftext|>" are
// encoded as ordinary text rather than rejected, so a source file containing
// one is processed like any other instead of failing its unit.
func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Model returns the model name the encoding was bound for.
func (t *Tiktoken) Model() string {
	return t.model
}
