package common

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// IsHidden reports whether a file or directory name starts with a dot.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// SplitName splits a base name into stem and extension (with its dot).
// "main.go" -> ("main", ".go"), "Makefile" -> ("Makefile", "").
func SplitName(base string) (stem, ext string) {
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

// SidecarName returns the output file name for a source base name:
// {stem}_{extension without dot}.json.
func SidecarName(base string) string {
	stem, ext := SplitName(base)
	return fmt.Sprintf("%s_%s.json", stem, strings.TrimPrefix(ext, "."))
}

// HasPathPrefix reports whether path equals base or lies underneath it.
func HasPathPrefix(path, base string) bool {
	path = filepath.Clean(path)
	base = filepath.Clean(base)
	if path == base {
		return true
	}
	sep := string(os.PathSeparator)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		base = strings.ToLower(base)
	}
	if !strings.HasSuffix(base, sep) {
		base += sep
	}
	return strings.HasPrefix(path, base)
}
