// Package metadata extracts article metadata (date, time, author) from the
// head of a markdown source file.
//
// Two header formats are recognized: the single metadata line
//
//	!!!2024-01-01!!09:00!!Alice!!!
//
// and a `---` delimited YAML front matter block.
package metadata

// Source reports where a document's metadata came from.
type Source string

const (
	SourceNone        Source = "none"
	SourceLine        Source = "line"
	SourceFrontMatter Source = "frontmatter"
)

// Metadata is the typed header of an article. Absent fields are empty strings;
// Source tells absence apart from an explicitly empty header.
type Metadata struct {
	// Title overrides the filename-derived title. Only front matter sets it.
	Title  string
	Date   string
	Time   string
	Author string
	Source Source
}

// Present reports whether a recognized header was found.
func (m Metadata) Present() bool {
	return m.Source == SourceLine || m.Source == SourceFrontMatter
}

// Document is a parsed source file.
type Document struct {
	Metadata Metadata
	Body     string
}

// Mode selects what happens to a first line that is not a metadata line.
type Mode string

const (
	// ModeLegacy always consumes the first line, matching or not.
	ModeLegacy Mode = "legacy"
	// ModeStrict consumes the first line only when it is a metadata line.
	ModeStrict Mode = "strict"
)

// Modes lists the accepted Mode values.
var Modes = []Mode{ModeLegacy, ModeStrict}
