// Package output writes generated pages under the site output directory.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Result describes one write.
type Result struct {
	Path string
	// Changed is false when the file already held identical bytes and was left alone.
	Changed bool
}

// Writer writes files below a root directory.
type Writer struct {
	root string
}

// NewWriter returns a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// Root returns the output directory.
func (w *Writer) Root() string { return w.root }

// Write stores content at relativePath under the root.
//
// The function ensures:
//   - The path is relative to the root (no path traversal)
//   - Parent directories are created if needed
//   - A file whose bytes already equal content is not rewritten, so its
//     mtime survives repeated builds
func (w *Writer) Write(relativePath string, content []byte) (Result, error) {
	if w.root == "" {
		return Result{}, errors.New("output directory is required")
	}
	if relativePath == "" {
		return Result{}, errors.New("output path is required")
	}

	cleanRel := filepath.Clean(relativePath)
	if filepath.IsAbs(cleanRel) || escapes(cleanRel) {
		return Result{}, fmt.Errorf("output path must be relative to %s", w.root)
	}

	fullPath := filepath.Join(w.root, cleanRel)
	rel, err := filepath.Rel(w.root, fullPath)
	if err != nil || escapes(rel) {
		return Result{}, fmt.Errorf("output path escapes %s", w.root)
	}

	// #nosec G304 -- fullPath is validated to stay under the root.
	if existing, err := os.ReadFile(fullPath); err == nil && bytes.Equal(existing, content) {
		return Result{Path: fullPath, Changed: false}, nil
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}
	// #nosec G306 -- generated pages are public site content.
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return Result{}, fmt.Errorf("write output file: %w", err)
	}
	return Result{Path: fullPath, Changed: true}, nil
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
