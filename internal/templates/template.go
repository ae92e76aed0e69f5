// Package templates loads page templates and resolves their placeholders by
// literal substitution.
//
// Placeholders are fixed tokens such as `{{ title }}`; there is no template
// language, no escaping and no recursion. Substitution happens in the order
// the bindings are given, one pass per token, each pass replacing every
// occurrence of that token.
package templates

import (
	"os"
	"strings"

	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
)

// Article template tokens, in substitution order.
const (
	TokenTitle   = "{{ title }}"
	TokenDate    = "{{ date }}"
	TokenTime    = "{{ time }}"
	TokenAuthor  = "{{ author }}"
	TokenContent = "{{ content }}"
)

// Index template tokens.
const (
	TokenArticles      = "{{articles}}"
	TokenArticlesCount = "{{articles_count}}"
)

// Template is an immutable text blob with placeholder tokens.
type Template struct {
	name string
	text string
}

// New wraps text as a template; name is used in errors and logs.
func New(name, text string) *Template {
	return &Template{name: name, text: text}
}

// Load reads a template file.
func Load(path string) (*Template, error) {
	// #nosec G304 -- template paths come from the build configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NotFoundError("template not found").WithCause(err).WithContext("path", path).Build()
		}
		return nil, ferrors.TemplateError("read template").WithCause(err).WithContext("path", path).Build()
	}
	return New(path, string(data)), nil
}

func (t *Template) Name() string { return t.name }
func (t *Template) Text() string { return t.text }

// Has reports whether the template contains token.
func (t *Template) Has(token string) bool {
	return strings.Contains(t.text, token)
}

// Missing returns the tokens not present in the template, in the given order.
func (t *Template) Missing(tokens ...string) []string {
	var missing []string
	for _, tok := range tokens {
		if !t.Has(tok) {
			missing = append(missing, tok)
		}
	}
	return missing
}

// Binding pairs a placeholder token with its replacement.
type Binding struct {
	Token string
	Value string
}

// Execute applies bindings in order. A value that contains a token handled by
// a later binding is substituted again by that binding; tokens handled by
// earlier bindings are never revisited.
func (t *Template) Execute(bindings ...Binding) string {
	out := t.text
	for _, b := range bindings {
		out = strings.ReplaceAll(out, b.Token, b.Value)
	}
	return out
}
