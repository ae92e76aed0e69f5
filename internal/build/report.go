package build

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/articlebuilder/internal/article"
	"git.home.luguber.info/inful/articlebuilder/internal/metrics"
)

// Report summarizes one pipeline run.
type Report struct {
	BuildID string
	Start   time.Time
	End     time.Time

	Records           []article.Record
	ArticlesWritten   int
	ArticlesUnchanged int
	IndexChanged      bool
	IndexPath         string

	// Warnings are non-fatal issues, such as a template lacking a placeholder.
	Warnings []error

	StageDurations map[StageName]time.Duration
	StageResults   map[StageName]metrics.ResultLabel
	Outcome        metrics.ResultLabel
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageResults:   make(map[StageName]metrics.ResultLabel),
	}
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("build=%s articles=%d written=%d unchanged=%d index_changed=%t warnings=%d duration=%s outcome=%s",
		r.BuildID, len(r.Records), r.ArticlesWritten, r.ArticlesUnchanged, r.IndexChanged,
		len(r.Warnings), r.Duration().Truncate(time.Millisecond), r.Outcome)
}

func (r *Report) recordStage(name StageName, d time.Duration, result metrics.ResultLabel, rec metrics.Recorder) {
	r.StageDurations[name] = d
	r.StageResults[name] = result
	rec.ObserveStageDuration(string(name), d)
	rec.IncStageResult(string(name), result)
}

// finish stamps the end time and derives the outcome from err.
func (r *Report) finish(err error) {
	r.End = time.Now()
	r.Outcome = classify(err)
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
