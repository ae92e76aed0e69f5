package article

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/articlebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/logfields"
	"git.home.luguber.info/inful/articlebuilder/internal/output"
	"git.home.luguber.info/inful/articlebuilder/internal/templates"
)

// BuildResult is the outcome of rendering every article.
type BuildResult struct {
	Records   []Record
	Written   int
	Unchanged int
}

// Builder renders all sources in the articles directory, one at a time.
type Builder struct {
	cfg      *config.Config
	renderer *Renderer
	writer   *output.Writer
	logger   *slog.Logger
	onWrite  func(output.Result)
}

func NewBuilder(cfg *config.Config, renderer *Renderer, writer *output.Writer) *Builder {
	return &Builder{
		cfg:      cfg,
		renderer: renderer,
		writer:   writer,
		logger:   slog.Default(),
		onWrite:  func(output.Result) {},
	}
}

// WithLogger sets the logger used for per-article progress.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// OnWrite registers a callback invoked after every page write.
func (b *Builder) OnWrite(fn func(output.Result)) *Builder {
	if fn != nil {
		b.onWrite = fn
	}
	return b
}

// Sources lists the article sources in dir with extension ext, sorted by name.
// Subdirectories are not descended into.
func Sources(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.NotFoundError("articles directory not found").WithCause(err).WithContext("path", dir).Build()
		}
		return nil, ferrors.FileSystemError("list articles").WithCause(err).WithContext("path", dir).Build()
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Build renders and writes every article, returning records in source order.
// The first failure aborts the build.
func (b *Builder) Build(ctx context.Context, tmpl *templates.Template) (*BuildResult, error) {
	dir := b.cfg.ArticlesDir()
	ext := b.cfg.Source.Extension

	names, err := Sources(dir, ext)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{Records: make([]Record, 0, len(names))}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := filepath.Join(dir, name)
		rendered, err := b.renderer.Render(src, tmpl)
		if err != nil {
			return nil, err
		}

		outName := OutputName(name, ext)
		res, err := b.writer.Write(b.cfg.ArticleOutputPath(outName), []byte(rendered.HTML))
		if err != nil {
			return nil, ferrors.FileSystemError("write article").
				WithCause(err).
				WithContextMap(ferrors.ErrorContext{"path": src, "output": outName}).
				Build()
		}
		b.onWrite(res)
		if res.Changed {
			result.Written++
		} else {
			result.Unchanged++
		}

		b.logger.Info(name+" → "+outName,
			logfields.Article(rendered.Title),
			logfields.Output(res.Path),
			logfields.Result(writeResult(res)))

		result.Records = append(result.Records, Record{
			Title:  rendered.Title,
			Date:   rendered.Date,
			Time:   rendered.Time,
			Author: rendered.Author,
			URL:    b.cfg.ArticleURL(outName),
			Source: src,
			Output: res.Path,
		})
	}
	return result, nil
}

func writeResult(res output.Result) string {
	if res.Changed {
		return "written"
	}
	return "unchanged"
}
