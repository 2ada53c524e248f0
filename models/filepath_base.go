package models

import "fmt"

// FilepathBase selects the directory the "filepath" field is relative to.
type FilepathBase string

const (
	// FilepathBaseUnit makes paths relative to the top-level unit directory.
	FilepathBaseUnit FilepathBase = "unit"
	// FilepathBaseRoot makes paths relative to the input root, unique across units.
	FilepathBaseRoot FilepathBase = "root"
)

// ParseFilepathBase converts a flag value to a FilepathBase. Empty means unit.
func ParseFilepathBase(s string) (FilepathBase, error) {
	switch FilepathBase(s) {
	case "", FilepathBaseUnit:
		return FilepathBaseUnit, nil
	case FilepathBaseRoot:
		return FilepathBaseRoot, nil
	}
	return "", fmt.Errorf("unknown filepath base %q (want unit or root)", s)
}
