// Package index renders the listing page that links to every article.
package index

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/articlebuilder/internal/article"
	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/output"
	"git.home.luguber.info/inful/articlebuilder/internal/templates"
)

const fragmentFormat = `<a href="%s" class="block p-4 bg-white rounded-xl shadow hover:bg-gray-50">` +
	`<h3 class="text-xl font-bold">%s</h3>` +
	`<p class="text-gray-500 text-sm">%s %s · %s</p></a>`

// Builder renders and writes the index page.
type Builder struct {
	writer    *output.Writer
	name      string
	rawFields bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithRawFields inserts record values without HTML escaping.
func WithRawFields(raw bool) Option {
	return func(b *Builder) { b.rawFields = raw }
}

// NewBuilder returns a builder writing the page name under the writer's root.
func NewBuilder(writer *output.Writer, name string, opts ...Option) *Builder {
	b := &Builder{writer: writer, name: name}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fragment renders the link for one record. The byline keeps its separators
// when fields are empty.
func (b *Builder) Fragment(rec article.Record) string {
	esc := html.EscapeString
	if b.rawFields {
		esc = func(s string) string { return s }
	}
	return fmt.Sprintf(fragmentFormat,
		esc(rec.URL), esc(rec.Title), esc(rec.Date), esc(rec.Time), esc(rec.Author))
}

// Render substitutes the joined fragments into the template.
func (b *Builder) Render(records []article.Record, tmpl *templates.Template) string {
	fragments := make([]string, 0, len(records))
	for _, rec := range records {
		fragments = append(fragments, b.Fragment(rec))
	}
	return tmpl.Execute(
		templates.Binding{Token: templates.TokenArticles, Value: strings.Join(fragments, "\n")},
		templates.Binding{Token: templates.TokenArticlesCount, Value: strconv.Itoa(len(records))},
	)
}

// Write renders the page and stores it.
func (b *Builder) Write(records []article.Record, tmpl *templates.Template) (output.Result, error) {
	page := b.Render(records, tmpl)
	res, err := b.writer.Write(b.name, []byte(page))
	if err != nil {
		return output.Result{}, ferrors.FileSystemError("write index").
			WithCause(err).
			WithContext("output", b.name).
			Build()
	}
	return res, nil
}
