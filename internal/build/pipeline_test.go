package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/articlebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/metrics"
)

const (
	articleTemplate = `<html><head><title>{{ title }}</title></head><body>` +
		`<span id="date">{{ date }}</span><span id="time">{{ time }}</span>` +
		`<span id="author">{{ author }}</span><main>{{ content }}</main></body></html>`
	indexTemplate = `<html><body><p>{{articles_count}} articles</p>{{articles}}</body></html>`
)

// fakeRecorder captures recorder calls for assertions.
type fakeRecorder struct {
	mu       sync.Mutex
	stages   map[string]metrics.ResultLabel
	outcomes []metrics.ResultLabel
	writes   map[string][]metrics.WriteLabel
	articles int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{stages: map[string]metrics.ResultLabel{}, writes: map[string][]metrics.WriteLabel{}}
}

func (f *fakeRecorder) ObserveStageDuration(string, time.Duration) {}
func (f *fakeRecorder) ObserveBuildDuration(time.Duration)         {}
func (f *fakeRecorder) IncStageResult(stage string, r metrics.ResultLabel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages[stage] = r
}
func (f *fakeRecorder) IncBuildOutcome(o metrics.ResultLabel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, o)
}
func (f *fakeRecorder) IncPageWrite(kind string, r metrics.WriteLabel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes[kind] = append(f.writes[kind], r)
}
func (f *fakeRecorder) SetArticles(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles = n
}

func newSite(t *testing.T, articles map[string]string) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Source.Dir = filepath.Join(root, "src")
	cfg.Output.Dir = filepath.Join(root, "public")

	require.NoError(t, os.MkdirAll(cfg.ArticlesDir(), 0o755))
	require.NoError(t, os.WriteFile(cfg.ArticleTemplatePath(), []byte(articleTemplate), 0o600))
	require.NoError(t, os.WriteFile(cfg.IndexTemplatePath(), []byte(indexTemplate), 0o600))
	for name, content := range articles {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.ArticlesDir(), name), []byte(content), 0o600))
	}
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	// #nosec G304 -- path is controlled by test.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func links(t *testing.T, page string) []string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" {
					out = append(out, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func TestPipeline_HelloArticle(t *testing.T) {
	cfg := newSite(t, map[string]string{
		"hello.md": "!!!2024-03-01!!10:30!!Bob!!!\n# Hi\n",
	})
	rec := newFakeRecorder()

	report, err := NewPipeline(cfg, WithRecorder(rec)).Run(context.Background())
	require.NoError(t, err)

	page := readFile(t, filepath.Join(cfg.Output.Dir, "articles", "hello.html"))
	assert.Contains(t, page, "Bob")
	assert.Contains(t, page, "2024-03-01")
	assert.Contains(t, page, "10:30")
	assert.Contains(t, page, "<h1>Hi</h1>")
	assert.Contains(t, page, "<title>hello</title>")

	indexPage := readFile(t, filepath.Join(cfg.Output.Dir, "index.html"))
	assert.Equal(t, []string{"articles/hello.html"}, links(t, indexPage))
	assert.Contains(t, indexPage, "2024-03-01 10:30 · Bob")
	assert.Contains(t, indexPage, "<p>1 articles</p>")

	assert.NotEmpty(t, report.BuildID)
	assert.Equal(t, metrics.ResultSuccess, report.Outcome)
	assert.Equal(t, 1, report.ArticlesWritten)
	assert.True(t, report.IndexChanged)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "index.html"), report.IndexPath)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "articles/hello.html", report.Records[0].URL)

	assert.Equal(t, metrics.ResultSuccess, rec.stages["articles"])
	assert.Equal(t, metrics.ResultSuccess, rec.stages["index"])
	assert.Equal(t, []metrics.ResultLabel{metrics.ResultSuccess}, rec.outcomes)
	assert.Equal(t, []metrics.WriteLabel{metrics.WriteWritten}, rec.writes["article"])
	assert.Equal(t, []metrics.WriteLabel{metrics.WriteWritten}, rec.writes["index"])
	assert.Equal(t, 1, rec.articles)
}

func TestPipeline_ArticlesWithoutMetadata(t *testing.T) {
	cfg := newSite(t, map[string]string{
		"first.md":  "just text\n\nParagraph one.\n",
		"second.md": "# not a header\n\nParagraph two.\n",
	})

	report, err := NewPipeline(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Records, 2)

	for _, name := range []string{"first", "second"} {
		page := readFile(t, filepath.Join(cfg.Output.Dir, "articles", name+".html"))
		assert.Contains(t, page, `<span id="date"></span>`)
		assert.Contains(t, page, `<span id="time"></span>`)
		assert.Contains(t, page, `<span id="author"></span>`)
	}

	indexPage := readFile(t, filepath.Join(cfg.Output.Dir, "index.html"))
	assert.Equal(t, []string{"articles/first.html", "articles/second.html"}, links(t, indexPage))
	assert.Equal(t, 2, strings.Count(indexPage, `<p class="text-gray-500 text-sm">  · </p>`))
}

func TestPipeline_Idempotent(t *testing.T) {
	cfg := newSite(t, map[string]string{
		"a.md": "!!!2024-01-01!!09:00!!Ann!!!\nAlpha\n",
		"b.md": "!!!2024-01-02!!10:00!!Ben!!!\n| x | y |\n|---|---|\n| 1 | 2 |\n",
	})
	rec := newFakeRecorder()
	p := NewPipeline(cfg, WithRecorder(rec))

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	first := map[string]string{
		"a":     readFile(t, filepath.Join(cfg.Output.Dir, "articles", "a.html")),
		"b":     readFile(t, filepath.Join(cfg.Output.Dir, "articles", "b.html")),
		"index": readFile(t, filepath.Join(cfg.Output.Dir, "index.html")),
	}
	assert.Contains(t, first["b"], "<table>")

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.ArticlesWritten)
	assert.Equal(t, 2, report.ArticlesUnchanged)
	assert.False(t, report.IndexChanged)

	assert.Equal(t, first["a"], readFile(t, filepath.Join(cfg.Output.Dir, "articles", "a.html")))
	assert.Equal(t, first["b"], readFile(t, filepath.Join(cfg.Output.Dir, "articles", "b.html")))
	assert.Equal(t, first["index"], readFile(t, filepath.Join(cfg.Output.Dir, "index.html")))
	assert.Equal(t, []metrics.WriteLabel{metrics.WriteWritten, metrics.WriteUnchanged}, rec.writes["index"])
}

func TestPipeline_MissingTemplate(t *testing.T) {
	cfg := newSite(t, map[string]string{"a.md": "x\n"})
	require.NoError(t, os.Remove(cfg.IndexTemplatePath()))
	rec := newFakeRecorder()

	report, err := NewPipeline(cfg, WithRecorder(rec)).Run(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
	assert.Equal(t, metrics.ResultFailed, report.Outcome)
	assert.Equal(t, []metrics.ResultLabel{metrics.ResultFailed}, rec.outcomes)

	_, statErr := os.Stat(filepath.Join(cfg.Output.Dir, "articles", "a.html"))
	assert.True(t, os.IsNotExist(statErr), "templates are loaded before any page is written")
}

func TestPipeline_UnknownMarkdownExtension(t *testing.T) {
	cfg := newSite(t, nil)
	cfg.Render.MarkdownExtensions = []string{"nope"}

	_, err := NewPipeline(cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestPipeline_RuleOpeningArticleBuilds(t *testing.T) {
	cfg := newSite(t, map[string]string{
		"rule.md":     "---\n# Heading\ntext\n",
		"sentence.md": "---\nJust a sentence.\n---\nbody\n",
	})

	report, err := NewPipeline(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Records, 2)

	page := readFile(t, filepath.Join(cfg.Output.Dir, "articles", "rule.html"))
	assert.Contains(t, page, "<h1>Heading</h1>")
	assert.Contains(t, page, `<span id="author"></span>`)
	page = readFile(t, filepath.Join(cfg.Output.Dir, "articles", "sentence.html"))
	assert.Contains(t, page, "Just a sentence.")
}

func TestPipeline_ArticleFailureStopsBuild(t *testing.T) {
	cfg := newSite(t, map[string]string{"a.md": "---\ntitle: [x\n---\n"})
	cfg.Metadata.FrontMatterStrict = true
	rec := newFakeRecorder()

	report, err := NewPipeline(cfg, WithRecorder(rec)).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, metrics.ResultFailed, rec.stages["articles"])
	_, ran := rec.stages["index"]
	assert.False(t, ran)
	assert.Equal(t, metrics.ResultFailed, report.StageResults[StageArticles])
}

func TestPipeline_Canceled(t *testing.T) {
	cfg := newSite(t, map[string]string{"a.md": "x\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := newFakeRecorder()

	report, err := NewPipeline(cfg, WithRecorder(rec)).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, metrics.ResultCanceled, report.Outcome)
	assert.Equal(t, metrics.ResultCanceled, rec.stages["articles"])
}

func TestPipeline_EscapesMetadataByDefault(t *testing.T) {
	cfg := newSite(t, map[string]string{"x.md": "!!!d!!t!!<script>alert(1)</script>!!!\nbody\n"})

	_, err := NewPipeline(cfg).Run(context.Background())
	require.NoError(t, err)
	page := readFile(t, filepath.Join(cfg.Output.Dir, "articles", "x.html"))
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "&lt;script&gt;")

	cfg.Render.RawFields = true
	_, err = NewPipeline(cfg).Run(context.Background())
	require.NoError(t, err)
	page = readFile(t, filepath.Join(cfg.Output.Dir, "articles", "x.html"))
	assert.Contains(t, page, "<script>alert(1)</script>")
}

func TestReport_Summary(t *testing.T) {
	r := newReport("abc")
	r.finish(nil)
	s := r.Summary()
	assert.Contains(t, s, "build=abc")
	assert.Contains(t, s, "outcome=success")
}

func TestPipeline_MissingPlaceholderIsWarning(t *testing.T) {
	cfg := newSite(t, map[string]string{"a.md": "x\n"})
	require.NoError(t, os.WriteFile(cfg.ArticleTemplatePath(), []byte("{{ title }}{{ content }}"), 0o600))

	report, err := NewPipeline(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Warnings, 3)

	ce, ok := ferrors.AsClassified(report.Warnings[0])
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryTemplate, ce.Category())
	assert.Equal(t, ferrors.SeverityWarning, ce.Severity())
	placeholder, _ := ce.Context().GetString("placeholder")
	assert.Equal(t, "{{ date }}", placeholder)
	assert.Contains(t, report.Summary(), "warnings=3")
}

func TestRunStages_TagsFailingStage(t *testing.T) {
	st := &state{report: newReport("id"), recorder: metrics.NoopRecorder{}}
	failing := func(context.Context, *state) error { return errors.New("boom") }

	err := runStages(context.Background(), st, []StageDef{{Name: StageArticles, Fn: failing}})
	require.Error(t, err)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryBuild, ce.Category())
	stage, _ := ce.Context().GetString("stage")
	assert.Equal(t, "articles", stage)
	require.ErrorContains(t, err, "boom")

	classified := func(context.Context, *state) error { return ferrors.MarkdownError("render markdown").Build() }
	err = runStages(context.Background(), st, []StageDef{{Name: StageIndex, Fn: classified}})
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryMarkdown))
	ce, _ = ferrors.AsClassified(err)
	stage, _ = ce.Context().GetString("stage")
	assert.Equal(t, "index", stage)
}
