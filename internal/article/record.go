// Package article renders markdown sources into article pages.
package article

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record is what the index needs to know about one rendered article.
type Record struct {
	Title  string
	Date   string
	Time   string
	Author string
	// URL is the article page relative to the index page.
	URL string

	// Source and Output are filesystem paths, for logs and reports.
	Source string
	Output string
}

// TitleFromFilename strips ext from a source file name. The result is NFC
// normalized so decomposed filenames (as stored by macOS) yield the same title.
func TitleFromFilename(name, ext string) string {
	return norm.NFC.String(strings.TrimSuffix(name, ext))
}

// OutputName maps a source file name to its page name.
func OutputName(name, ext string) string {
	return strings.TrimSuffix(name, ext) + ".html"
}
