package config

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/markdown"
	"git.home.luguber.info/inful/articlebuilder/internal/metadata"
)

var (
	extensionPattern = regexp.MustCompile(`^\.[^./\\]+$`)
	fileNamePattern  = regexp.MustCompile(`^[^/\\]+$`)
)

// Validate checks the whole configuration and wraps failures as config errors.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Source),
		validation.Field(&c.Output),
		validation.Field(&c.Metadata),
		validation.Field(&c.Render),
	)
	if err != nil {
		return ferrors.ConfigError("invalid configuration").WithCause(err).Build()
	}
	return nil
}

func (s SourceConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Dir, validation.Required),
		validation.Field(&s.Articles, validation.Required),
		validation.Field(&s.ArticleTemplate, validation.Required),
		validation.Field(&s.IndexTemplate, validation.Required),
		validation.Field(&s.Extension, validation.Required,
			validation.Match(extensionPattern).Error("must look like .md")),
	)
}

func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Dir, validation.Required),
		validation.Field(&o.Articles, validation.Required),
		// The index sits at the output root so article URLs stay relative to it.
		validation.Field(&o.Index, validation.Required,
			validation.Match(fileNamePattern).Error("must be a file name without directories")),
	)
}

func (m MetadataConfig) Validate() error {
	modes := make([]any, 0, len(metadata.Modes))
	for _, mode := range metadata.Modes {
		modes = append(modes, string(mode))
	}
	return validation.ValidateStruct(&m,
		validation.Field(&m.Mode, validation.Required, validation.In(modes...)),
	)
}

func (r RenderConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MarkdownExtensions, validation.Each(validation.By(knownExtension))),
	)
}

func knownExtension(value any) error {
	name, _ := value.(string)
	if !markdown.IsExtension(name) {
		return fmt.Errorf("unknown markdown extension %q (known: %v)", name, markdown.Extensions())
	}
	return nil
}

func init() {
	// Report field names as they appear in the YAML file.
	validation.ErrorTag = "yaml"
}
