// Package textenc decodes raw file bytes under the single supported text
// encoding (UTF-8) with text-mode newline translation.
package textenc

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// DecodeError reports bytes that are not valid UTF-8.
type DecodeError struct {
	Path   string
	Offset int
	Byte   byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("'utf-8' codec can't decode byte 0x%02x in position %d: invalid utf-8", e.Byte, e.Offset)
}

// IsDecodeError reports whether err (or anything it wraps) is a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Decode validates data as UTF-8 and translates \r\n and lone \r to \n.
func Decode(path string, data []byte) (string, error) {
	valid, n, err := transform.Bytes(encoding.UTF8Validator, data)
	if err != nil {
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			de := &DecodeError{Path: path, Offset: n}
			if n < len(data) {
				de.Byte = data[n]
			}
			return "", de
		}
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return newlines.Replace(string(valid)), nil
}
