package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
)

func TestParser_LegacyMatchesParseLines(t *testing.T) {
	inputs := []string{
		"",
		"!!!2024-01-01!!09:00!!Alice!!!\n# Title\n",
		"# Title\nbody\n",
		"only line",
	}
	p := NewParser(ModeLegacy, false)

	for _, in := range inputs {
		doc, err := p.Parse([]byte(in))
		require.NoError(t, err)

		date, tm, author, body := ParseLines(SplitLines(in))
		assert.Equal(t, date, doc.Metadata.Date)
		assert.Equal(t, tm, doc.Metadata.Time)
		assert.Equal(t, author, doc.Metadata.Author)
		assert.Equal(t, body, doc.Body)
	}
}

func TestParser_ReportsSource(t *testing.T) {
	p := NewParser("", true)
	assert.Equal(t, ModeLegacy, p.Mode())

	doc, err := p.Parse([]byte("!!!2024-03-01!!10:30!!Bob!!!\n# Hi\n"))
	require.NoError(t, err)
	assert.Equal(t, SourceLine, doc.Metadata.Source)
	assert.True(t, doc.Metadata.Present())

	doc, err = p.Parse([]byte("# Hi\n"))
	require.NoError(t, err)
	assert.Equal(t, SourceNone, doc.Metadata.Source)
	assert.False(t, doc.Metadata.Present())
}

func TestParser_StrictKeepsNonMetadataFirstLine(t *testing.T) {
	p := NewParser(ModeStrict, false)

	doc, err := p.Parse([]byte("# Title\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, SourceNone, doc.Metadata.Source)
	assert.Equal(t, "# Title\nbody\n", doc.Body)

	doc, err = p.Parse([]byte("!!!2024-01-01!!09:00!!Alice!!!\n# Title\n"))
	require.NoError(t, err)
	assert.Equal(t, "Alice", doc.Metadata.Author)
	assert.Equal(t, "# Title\n", doc.Body)
}

func TestParser_FrontMatter(t *testing.T) {
	p := NewParser(ModeLegacy, true)
	src := "---\ntitle: Custom Title\ndate: 2024-01-01\ntime: \"09:00\"\nauthor: Alice\ntags: [go]\n---\n# Heading\nbody\n"

	doc, err := p.Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, Metadata{
		Title:  "Custom Title",
		Date:   "2024-01-01",
		Time:   "09:00",
		Author: "Alice",
		Source: SourceFrontMatter,
	}, doc.Metadata)
	// The first body line is kept: the block itself is the header.
	assert.Equal(t, "# Heading\nbody\n", doc.Body)
}

func TestParser_FrontMatterNullAndMissingFields(t *testing.T) {
	p := NewParser(ModeLegacy, true)

	doc, err := p.Parse([]byte("---\nauthor: ~\n---\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, SourceFrontMatter, doc.Metadata.Source)
	assert.Empty(t, doc.Metadata.Author)
	assert.Empty(t, doc.Metadata.Date)
}

func TestParser_FrontMatterDisabledTreatsDelimiterAsFirstLine(t *testing.T) {
	p := NewParser(ModeLegacy, false)

	doc, err := p.Parse([]byte("---\nauthor: Alice\n---\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, SourceNone, doc.Metadata.Source)
	assert.Equal(t, "author: Alice\n---\nbody\n", doc.Body)
}

func TestParser_MalformedFrontMatterFallsBackToFirstLine(t *testing.T) {
	p := NewParser(ModeLegacy, true)

	cases := map[string]struct {
		src  string
		body string
	}{
		"horizontal rule opening": {"---\n# Heading\ntext\n", "# Heading\ntext\n"},
		"rules around a sentence": {"---\nJust a sentence.\n---\nbody\n", "Just a sentence.\n---\nbody\n"},
		"invalid yaml":            {"---\nauthor: [unclosed\n---\nbody\n", "author: [unclosed\n---\nbody\n"},
		"empty block":             {"---\n---\nbody\n", "---\nbody\n"},
		"comment only block":      {"---\n# Heading\n---\nbody\n", "# Heading\n---\nbody\n"},
		"non-scalar header value": {"---\nauthor:\n  name: Alice\n---\nbody\n", "author:\n  name: Alice\n---\nbody\n"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := p.Parse([]byte(tc.src))
			require.NoError(t, err)
			assert.Equal(t, Metadata{Source: SourceNone}, doc.Metadata)
			assert.Equal(t, tc.body, doc.Body)
		})
	}
}

func TestParser_StrictModeKeepsRuleOpeningLine(t *testing.T) {
	p := NewParser(ModeStrict, true)

	doc, err := p.Parse([]byte("---\n# Heading\n"))
	require.NoError(t, err)
	assert.Equal(t, "---\n# Heading\n", doc.Body)
}

func TestParser_StrictFrontMatterErrors(t *testing.T) {
	p := NewParser(ModeLegacy, true, WithStrictFrontMatter(true))

	cases := map[string]string{
		"unterminated":   "---\nauthor: Alice\nbody\n",
		"invalid yaml":   "---\nauthor: [unclosed\n---\nbody\n",
		"non-scalar":     "---\nauthor:\n  name: Alice\n---\nbody\n",
		"sequence value": "---\ndate: [1, 2]\n---\nbody\n",
		"scalar block":   "---\nJust a sentence.\n---\nbody\n",
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.Parse([]byte(src))
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
		})
	}
}
