package share

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Segments decomposes a relative path into its ordered components for the
// stepwise store walk. Input uses forward-slash segments and must not be
// empty, absolute, or escape upward.
func Segments(rel string) ([]string, error) {
	if rel == "" {
		return nil, fmt.Errorf("empty relative path")
	}
	if strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return nil, fmt.Errorf("relative path required, got %q", rel)
	}

	clean := path.Clean(filepath.ToSlash(rel))
	if clean == "." {
		return nil, fmt.Errorf("relative path %q names no file", rel)
	}
	segs := strings.Split(clean, "/")
	for _, seg := range segs {
		if seg == ".." {
			return nil, fmt.Errorf("relative path %q escapes its root", rel)
		}
	}
	return segs, nil
}
