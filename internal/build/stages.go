package build

import (
	"context"
	"time"

	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/metrics"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StageArticles StageName = "articles"
	StageIndex    StageName = "index"
)

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   func(ctx context.Context, st *state) error
}

// runStages executes stages in order, recording timing and stopping on the first error.
func runStages(ctx context.Context, st *state, stages []StageDef) error {
	for _, def := range stages {
		if err := ctx.Err(); err != nil {
			st.report.recordStage(def.Name, 0, metrics.ResultCanceled, st.recorder)
			return err
		}

		t0 := time.Now()
		err := def.Fn(ctx, st)
		dur := time.Since(t0)

		st.report.recordStage(def.Name, dur, classify(err), st.recorder)
		if err != nil {
			return stageError(def.Name, err)
		}
	}
	return nil
}

// stageError tags err with the failing stage. Unclassified errors become build
// errors; cancellation is returned unchanged.
func stageError(name StageName, err error) error {
	if isCanceled(err) {
		return err
	}
	if ce, ok := ferrors.AsClassified(err); ok {
		return ce.WithContext("stage", string(name))
	}
	return ferrors.BuildError("stage failed").WithCause(err).WithContext("stage", string(name)).Build()
}

func classify(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case isCanceled(err):
		return metrics.ResultCanceled
	default:
		return metrics.ResultFailed
	}
}
