package exclude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	m, err := New([]string{"**/node_modules", "*.lock", "/build/", " ", "docs/**/*.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{"**/node_modules", "*.lock", "build", "docs/**/*.png"}, m.Patterns())

	tests := []struct {
		path string
		want bool
	}{
		{path: "node_modules", want: true},
		{path: "web/node_modules", want: true},
		{path: "yarn.lock", want: true},
		{path: "sub/yarn.lock", want: false},
		{path: "build", want: true},
		{path: "src/build", want: false},
		{path: "docs/img/a.png", want: true},
		{path: "docs/a.md", want: false},
		{path: "main.go", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	assert.False(t, m.Match("anything"))
	assert.Nil(t, m.Patterns())

	empty, err := New(nil)
	require.NoError(t, err)
	assert.False(t, empty.Match("main.go"))
}

func TestInvalidPattern(t *testing.T) {
	_, err := New([]string{"[unclosed"})
	assert.Error(t, err)
}
