package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tok, err := New("gpt-3.5-turbo")
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", tok.Model())

	assert.Equal(t, []int{15339, 1917}, tok.Encode("hello world"))
	assert.Empty(t, tok.Encode(""))
}

func TestNewUnknownModel(t *testing.T) {
	_, err := New("definitely-not-a-model")
	assert.Error(t, err)
}

func TestEncodeSpecialTokenAsText(t *testing.T) {
	tok, err := New("gpt-3.5-turbo")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		ids := tok.Encode("before <|endoftext|> after")
		assert.NotContains(t, ids, 100257)
	})
}

func TestEncodeDeterministic(t *testing.T) {
	tok, err := New("gpt-3.5-turbo")
	require.NoError(t, err)

	text := "func main() {\n\tfmt.Println(\"hi\")\n}\n"
	assert.Equal(t, tok.Encode(text), tok.Encode(text))
}
