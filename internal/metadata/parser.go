package metadata

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/frontmatter"
)

// Parser turns raw source bytes into a Document.
type Parser struct {
	mode              Mode
	frontMatter       bool
	strictFrontMatter bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithStrictFrontMatter makes a malformed front matter block an error instead
// of falling back to first-line handling.
func WithStrictFrontMatter(strict bool) ParserOption {
	return func(p *Parser) { p.strictFrontMatter = strict }
}

// NewParser returns a parser. An empty mode means ModeLegacy.
func NewParser(mode Mode, frontMatter bool, opts ...ParserOption) *Parser {
	if mode == "" {
		mode = ModeLegacy
	}
	p := &Parser{mode: mode, frontMatter: frontMatter}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mode returns the parser's first-line mode.
func (p *Parser) Mode() Mode { return p.mode }

// Parse extracts the header and body of a source document.
//
// When front matter is enabled and the document opens with a well-formed
// `---` block decoding to a mapping, the block is the header and the body
// follows it untouched. Otherwise the first line is handled according to the
// parser's Mode, so an article opening with a `---` rule still renders. With
// strict front matter a malformed block is a validation error.
func (p *Parser) Parse(content []byte) (Document, error) {
	if p.frontMatter {
		doc, ok, err := parseFrontMatter(content)
		switch {
		case err != nil && p.strictFrontMatter:
			return Document{}, err
		case err == nil && ok:
			return doc, nil
		}
	}

	lines := SplitLines(string(content))
	if len(lines) == 0 {
		return Document{Metadata: Metadata{Source: SourceNone}}, nil
	}

	date, tm, author, ok := ParseLine(lines[0])
	if !ok {
		if p.mode == ModeStrict {
			return Document{Metadata: Metadata{Source: SourceNone}, Body: string(content)}, nil
		}
		return Document{Metadata: Metadata{Source: SourceNone}, Body: strings.Join(lines[1:], "")}, nil
	}

	return Document{
		Metadata: Metadata{Date: date, Time: tm, Author: author, Source: SourceLine},
		Body:     strings.Join(lines[1:], ""),
	}, nil
}

// parseFrontMatter reports ok=false when content has no front matter block.
func parseFrontMatter(content []byte) (Document, bool, error) {
	block, err := frontmatter.Split(content)
	if err != nil {
		return Document{}, false, ferrors.ValidationError("invalid front matter").WithCause(err).Build()
	}
	if !block.Present {
		return Document{}, false, nil
	}
	md, err := decodeHeader(block)
	if err != nil {
		return Document{}, false, err
	}
	return Document{Metadata: md, Body: string(block.Body)}, true, nil
}

// header fields are yaml.Node so scalars keep their source text: an unquoted
// 2024-01-01 stays "2024-01-01" rather than becoming a timestamp.
type header struct {
	Title  yaml.Node `yaml:"title"`
	Date   yaml.Node `yaml:"date"`
	Time   yaml.Node `yaml:"time"`
	Author yaml.Node `yaml:"author"`
}

func decodeHeader(block frontmatter.Block) (Metadata, error) {
	var root yaml.Node
	if err := block.Decode(&root); err != nil {
		return Metadata{}, ferrors.ValidationError("invalid front matter").WithCause(err).Build()
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return Metadata{}, ferrors.ValidationError("front matter is not a mapping").Build()
	}

	var h header
	if err := root.Content[0].Decode(&h); err != nil {
		return Metadata{}, ferrors.ValidationError("invalid front matter").WithCause(err).Build()
	}

	md := Metadata{Source: SourceFrontMatter}
	fields := []struct {
		key  string
		node *yaml.Node
		dst  *string
	}{
		{"title", &h.Title, &md.Title},
		{"date", &h.Date, &md.Date},
		{"time", &h.Time, &md.Time},
		{"author", &h.Author, &md.Author},
	}
	for _, f := range fields {
		v, err := scalar(f.node)
		if err != nil {
			return Metadata{}, ferrors.ValidationError("invalid front matter").
				WithCause(err).
				WithContext("field", f.key).
				Build()
		}
		*f.dst = v
	}
	return md, nil
}

func scalar(n *yaml.Node) (string, error) {
	switch n.Kind {
	case 0:
		return "", nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", nil
		}
		return n.Value, nil
	default:
		return "", fmt.Errorf("expected a scalar value at line %d", n.Line)
	}
}
