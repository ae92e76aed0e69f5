package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/articlebuilder/internal/article"
	"git.home.luguber.info/inful/articlebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/index"
	"git.home.luguber.info/inful/articlebuilder/internal/logfields"
	"git.home.luguber.info/inful/articlebuilder/internal/markdown"
	"git.home.luguber.info/inful/articlebuilder/internal/metadata"
	"git.home.luguber.info/inful/articlebuilder/internal/metrics"
	"git.home.luguber.info/inful/articlebuilder/internal/output"
	"git.home.luguber.info/inful/articlebuilder/internal/templates"
)

// Pipeline builds the site described by a Config.
type Pipeline struct {
	cfg      *config.Config
	recorder metrics.Recorder
	logger   *slog.Logger
	newID    func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sets the metrics recorder (default: no-op).
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline returns a pipeline for cfg. The config is read on every Run.
func NewPipeline(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// state is shared by the stages of one run.
type state struct {
	cfg         *config.Config
	logger      *slog.Logger
	recorder    metrics.Recorder
	report      *Report
	writer      *output.Writer
	renderer    *article.Renderer
	articleTmpl *templates.Template
	indexTmpl   *templates.Template
}

// Run performs one build. The report is returned even when the build fails,
// with Outcome set accordingly.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := newReport(p.newID())
	logger := p.logger.With(logfields.BuildID(report.BuildID))
	logger.Info("Build started",
		logfields.Path(p.cfg.Source.Dir),
		logfields.Output(p.cfg.Output.Dir))

	err := p.run(ctx, report, logger)
	report.finish(err)
	p.recorder.ObserveBuildDuration(report.Duration())
	p.recorder.IncBuildOutcome(report.Outcome)

	if err != nil {
		logger.Error("Build failed",
			logfields.Result(string(report.Outcome)),
			logfields.Error(err))
		return report, err
	}
	logger.Info("Build completed",
		logfields.Count(len(report.Records)),
		logfields.DurationMS(float64(report.Duration().Microseconds())/1000),
		slog.String("summary", report.Summary()))
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, report *Report, logger *slog.Logger) error {
	st, err := p.prepare(report, logger)
	if err != nil {
		return err
	}
	return runStages(ctx, st, []StageDef{
		{Name: StageArticles, Fn: stageArticles},
		{Name: StageIndex, Fn: stageIndex},
	})
}

// prepare builds the renderers and loads both templates before any page is written.
func (p *Pipeline) prepare(report *Report, logger *slog.Logger) (*state, error) {
	md, err := markdown.NewRenderer(markdown.Options{
		Extensions: p.cfg.Render.MarkdownExtensions,
		UnsafeHTML: p.cfg.Render.UnsafeHTML,
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "configure markdown").Build()
	}
	parser := metadata.NewParser(metadata.Mode(p.cfg.Metadata.Mode), p.cfg.Metadata.FrontMatter,
		metadata.WithStrictFrontMatter(p.cfg.Metadata.FrontMatterStrict))

	articleTmpl, err := loadTemplate(p.cfg.ArticleTemplatePath(), report, logger,
		templates.TokenTitle, templates.TokenDate, templates.TokenTime, templates.TokenAuthor, templates.TokenContent)
	if err != nil {
		return nil, err
	}
	indexTmpl, err := loadTemplate(p.cfg.IndexTemplatePath(), report, logger, templates.TokenArticles)
	if err != nil {
		return nil, err
	}

	return &state{
		cfg:      p.cfg,
		logger:   logger,
		recorder: p.recorder,
		report:   report,
		writer:   output.NewWriter(p.cfg.Output.Dir),
		renderer: article.NewRenderer(parser, md,
			article.WithRawFields(p.cfg.Render.RawFields),
			article.WithExtension(p.cfg.Source.Extension)),
		articleTmpl: articleTmpl,
		indexTmpl:   indexTmpl,
	}, nil
}

// loadTemplate reads a template. Expected tokens it lacks are reported as
// warnings; the build goes on.
func loadTemplate(path string, report *Report, logger *slog.Logger, expected ...string) (*templates.Template, error) {
	tmpl, err := templates.Load(path)
	if err != nil {
		return nil, err
	}
	for _, tok := range tmpl.Missing(expected...) {
		report.Warnings = append(report.Warnings, ferrors.TemplateError("template placeholder missing").
			Warning().
			WithContext("template", path).
			WithContext("placeholder", tok).
			Build())
		logger.Warn("Template placeholder missing",
			logfields.Template(path),
			slog.String("placeholder", tok))
	}
	return tmpl, nil
}

func stageArticles(ctx context.Context, st *state) error {
	b := article.NewBuilder(st.cfg, st.renderer, st.writer).
		WithLogger(st.logger.With(logfields.Stage(string(StageArticles)))).
		OnWrite(func(res output.Result) {
			st.recorder.IncPageWrite("article", writeLabel(res))
		})

	res, err := b.Build(ctx, st.articleTmpl)
	if err != nil {
		return err
	}
	st.report.Records = res.Records
	st.report.ArticlesWritten = res.Written
	st.report.ArticlesUnchanged = res.Unchanged
	st.recorder.SetArticles(len(res.Records))
	return nil
}

func stageIndex(_ context.Context, st *state) error {
	b := index.NewBuilder(st.writer, st.cfg.Output.Index, index.WithRawFields(st.cfg.Render.RawFields))

	t0 := time.Now()
	res, err := b.Write(st.report.Records, st.indexTmpl)
	if err != nil {
		return err
	}
	st.recorder.IncPageWrite("index", writeLabel(res))
	st.report.IndexChanged = res.Changed
	st.report.IndexPath = res.Path
	st.logger.Info("Index written",
		logfields.Stage(string(StageIndex)),
		logfields.Output(res.Path),
		logfields.Count(len(st.report.Records)),
		logfields.DurationMS(float64(time.Since(t0).Microseconds())/1000))
	return nil
}

func writeLabel(res output.Result) metrics.WriteLabel {
	if res.Changed {
		return metrics.WriteWritten
	}
	return metrics.WriteUnchanged
}
