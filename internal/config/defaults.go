package config

import "git.home.luguber.info/inful/articlebuilder/internal/metadata"

// Default returns the configuration used when no file is present: sources
// under src/, pages under public/.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Dir:             "src",
			Articles:        "articles",
			ArticleTemplate: "template.html",
			IndexTemplate:   "index_template.html",
			Extension:       ".md",
		},
		Output: OutputConfig{
			Dir:      "public",
			Articles: "articles",
			Index:    "index.html",
		},
		Metadata: MetadataConfig{
			Mode:        string(metadata.ModeLegacy),
			FrontMatter: true,
		},
		Render: RenderConfig{
			UnsafeHTML:         true,
			MarkdownExtensions: []string{"table"},
		},
	}
}
