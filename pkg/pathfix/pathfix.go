// Package pathfix rewrites the "filepath" field of sidecar JSON documents so
// that it carries no leading parent-directory segments.
package pathfix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Field is the top-level key that gets rewritten.
const Field = "filepath"

// ErrInvalidJSON is returned for documents that do not parse as JSON.
var ErrInvalidJSON = errors.New("invalid json document")

// StripParentRefs removes every leading "../" from p. A value made only of
// "../" segments keeps its last one so the result is never empty.
func StripParentRefs(p string) string {
	for strings.HasPrefix(p, "../") && len(p) > len("../") {
		p = p[len("../"):]
	}
	return p
}

// FixBytes returns data with its top-level filepath string stripped of
// leading "../" segments. changed is false when there is nothing to rewrite
// (field missing, not a string, or already clean); data is then returned as is.
// Bytes outside the rewritten value are preserved.
func FixBytes(data []byte) (out []byte, changed bool, err error) {
	if !gjson.ValidBytes(data) {
		return data, false, ErrInvalidJSON
	}

	res := gjson.GetBytes(data, Field)
	if !res.Exists() || res.Type != gjson.String {
		return data, false, nil
	}

	fixed := StripParentRefs(res.Str)
	if fixed == res.Str {
		return data, false, nil
	}

	out, err = sjson.SetBytes(data, Field, fixed)
	if err != nil {
		return data, false, fmt.Errorf("failed to set %s: %w", Field, err)
	}
	return out, true, nil
}
