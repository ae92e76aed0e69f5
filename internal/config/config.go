// Package config holds the build configuration: where articles and templates
// are read from, where pages are written, and how sources are interpreted.
package config

import (
	"path"
	"path/filepath"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "articlebuilder.yaml"

// Config represents the application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Metadata MetadataConfig `yaml:"metadata"`
	Render   RenderConfig   `yaml:"render"`
}

// SourceConfig locates the inputs. Articles and templates are relative to Dir.
type SourceConfig struct {
	Dir             string `yaml:"dir"`
	Articles        string `yaml:"articles"`
	ArticleTemplate string `yaml:"article_template"`
	IndexTemplate   string `yaml:"index_template"`
	Extension       string `yaml:"extension"`
}

// OutputConfig locates the generated site. Articles and Index are relative to Dir.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Articles string `yaml:"articles"`
	Index    string `yaml:"index"`
}

// MetadataConfig controls header parsing.
type MetadataConfig struct {
	// Mode is "legacy" (first line always consumed) or "strict".
	Mode              string `yaml:"mode"`
	FrontMatter       bool   `yaml:"front_matter"`
	// FrontMatterStrict fails the build on a malformed front matter block
	// instead of treating its first line as an ordinary first line.
	FrontMatterStrict bool   `yaml:"front_matter_strict"`
}

// RenderConfig controls HTML generation.
type RenderConfig struct {
	// RawFields disables HTML escaping of substituted metadata values.
	RawFields          bool     `yaml:"raw_fields"`
	UnsafeHTML         bool     `yaml:"unsafe_html"`
	MarkdownExtensions []string `yaml:"markdown_extensions"`
}

// ArticlesDir is the directory scanned for article sources.
func (c *Config) ArticlesDir() string {
	return filepath.Join(c.Source.Dir, c.Source.Articles)
}

func (c *Config) ArticleTemplatePath() string {
	return filepath.Join(c.Source.Dir, c.Source.ArticleTemplate)
}

func (c *Config) IndexTemplatePath() string {
	return filepath.Join(c.Source.Dir, c.Source.IndexTemplate)
}

// ArticleOutputPath is the path of an article page relative to Output.Dir.
func (c *Config) ArticleOutputPath(name string) string {
	return filepath.Join(c.Output.Articles, name)
}

// ArticleURL is the link to an article page as seen from the index page.
func (c *Config) ArticleURL(name string) string {
	return path.Join(filepath.ToSlash(c.Output.Articles), name)
}

// IndexPath is the full path of the index page.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Output.Dir, c.Output.Index)
}
