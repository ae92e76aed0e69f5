package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/articlebuilder/internal/build"
	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Source      string        `short:"s" help:"Source directory (overrides source.dir)" type:"path"`
	Output      string        `short:"o" help:"Output directory (overrides output.dir)" type:"path"`
	QuietWindow time.Duration `name:"quiet-window" help:"Wait this long after the last change before rebuilding" default:"300ms"`
	Interval    time.Duration `help:"Also rebuild on this interval (0 disables)" default:"0s"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, w.Source, w.Output)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipeline := build.NewPipeline(cfg, build.WithLogger(g.Logger))
	watcher := watch.New(pipeline, watch.Options{
		SourceDir:   cfg.Source.Dir,
		OutputDir:   cfg.Output.Dir,
		QuietWindow: w.QuietWindow,
		Interval:    w.Interval,
		Logger:      g.Logger,
	})

	g.Logger.Info("Watch mode started; press Ctrl+C to stop")
	if err := watcher.Run(ctx); err != nil {
		return ferrors.RuntimeError("watch failed").WithCause(err).Build()
	}
	g.Logger.Info("Watch mode stopped")
	return nil
}
