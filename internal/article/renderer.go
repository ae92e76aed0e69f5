package article

import (
	"os"
	"path/filepath"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/markdown"
	"git.home.luguber.info/inful/articlebuilder/internal/metadata"
	"git.home.luguber.info/inful/articlebuilder/internal/templates"
)

// Rendered is one article page and the fields substituted into it.
type Rendered struct {
	HTML     string
	Title    string
	Date     string
	Time     string
	Author   string
	Metadata metadata.Metadata
}

// Renderer turns a source document into a page using the article template.
type Renderer struct {
	parser    *metadata.Parser
	markdown  *markdown.Renderer
	ext       string
	rawFields bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRawFields substitutes metadata values without HTML escaping.
func WithRawFields(raw bool) Option {
	return func(r *Renderer) { r.rawFields = raw }
}

// WithExtension sets the source extension stripped to form titles (default ".md").
func WithExtension(ext string) Option {
	return func(r *Renderer) { r.ext = ext }
}

func NewRenderer(parser *metadata.Parser, md *markdown.Renderer, opts ...Option) *Renderer {
	r := &Renderer{parser: parser, markdown: md, ext: ".md"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render reads the source file at path and renders it.
func (r *Renderer) Render(path string, tmpl *templates.Template) (Rendered, error) {
	// #nosec G304 -- sources are listed from the configured articles directory.
	content, err := os.ReadFile(path)
	if err != nil {
		return Rendered{}, ferrors.FileSystemError("read article").WithCause(err).WithContext("path", path).Build()
	}
	out, err := r.RenderSource(filepath.Base(path), content, tmpl)
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return Rendered{}, ce.WithContext("path", path)
		}
		return Rendered{}, err
	}
	return out, nil
}

// RenderSource renders a document already in memory; name is its file name.
//
// The template receives, in order: title, date, time, author, content.
func (r *Renderer) RenderSource(name string, content []byte, tmpl *templates.Template) (Rendered, error) {
	doc, err := r.parser.Parse(content)
	if err != nil {
		return Rendered{}, err
	}

	body, err := r.markdown.Render([]byte(doc.Body))
	if err != nil {
		return Rendered{}, ferrors.MarkdownError("render markdown").WithCause(err).Build()
	}

	title := TitleFromFilename(name, r.ext)
	if doc.Metadata.Title != "" {
		title = doc.Metadata.Title
	}
	md := doc.Metadata

	page := tmpl.Execute(
		templates.Binding{Token: templates.TokenTitle, Value: r.field(title)},
		templates.Binding{Token: templates.TokenDate, Value: r.field(md.Date)},
		templates.Binding{Token: templates.TokenTime, Value: r.field(md.Time)},
		templates.Binding{Token: templates.TokenAuthor, Value: r.field(md.Author)},
		templates.Binding{Token: templates.TokenContent, Value: body},
	)

	return Rendered{
		HTML:     page,
		Title:    title,
		Date:     md.Date,
		Time:     md.Time,
		Author:   md.Author,
		Metadata: md,
	}, nil
}

func (r *Renderer) field(v string) string {
	if r.rawFields {
		return v
	}
	return html.EscapeString(v)
}
