package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options configures the markdown engine.
type Options struct {
	// Extensions names goldmark extensions to enable; see Extensions().
	// Fenced code blocks are part of CommonMark and always on.
	Extensions []string
	// UnsafeHTML passes raw HTML in the source through to the output.
	UnsafeHTML bool
}

// DefaultOptions enables tables and raw HTML passthrough.
func DefaultOptions() Options {
	return Options{Extensions: []string{"table"}, UnsafeHTML: true}
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// Extensions returns the accepted extension names, sorted.
func Extensions() []string {
	names := make([]string, 0, len(extensionRegistry))
	for name := range extensionRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsExtension reports whether name is a known extension.
func IsExtension(name string) bool {
	_, ok := extensionRegistry[normalizeName(name)]
	return ok
}

// Renderer converts markdown to HTML. It holds one goldmark instance and is
// safe for reuse across articles.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a renderer. Unknown extension names are an error.
func NewRenderer(opts Options) (*Renderer, error) {
	exts := make([]goldmark.Extender, 0, len(opts.Extensions))
	seen := map[string]struct{}{}
	for _, name := range opts.Extensions {
		key := normalizeName(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			return nil, fmt.Errorf("unknown markdown extension %q", name)
		}
		seen[key] = struct{}{}
		exts = append(exts, ext)
	}

	var rendererOptions []renderer.Option
	if opts.UnsafeHTML {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithRendererOptions(rendererOptions...),
		),
	}, nil
}

// Render converts a markdown body to an HTML fragment.
func (r *Renderer) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

func normalizeName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "tables" {
		return "table"
	}
	return key
}
