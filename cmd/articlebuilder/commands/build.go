package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/articlebuilder/internal/build"
	"git.home.luguber.info/inful/articlebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/logfields"
	"git.home.luguber.info/inful/articlebuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source      string `short:"s" help:"Source directory (overrides source.dir)" type:"path"`
	Output      string `short:"o" help:"Output directory (overrides output.dir)" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics for this build to a textfile" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, b.Source, b.Output)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = RunBuild(ctx, cfg, b.MetricsFile, g.Logger)
	return err
}

// RunBuild runs one pipeline. When metricsFile is set the build's metrics are
// written there, also after a failed build.
func RunBuild(ctx context.Context, cfg *config.Config, metricsFile string, logger *slog.Logger) (*build.Report, error) {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if metricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	report, err := build.NewPipeline(cfg, build.WithRecorder(recorder), build.WithLogger(logger)).Run(ctx)

	if prom != nil {
		if werr := metrics.WriteTextfile(metricsFile, prom.Registry()); werr != nil {
			logger.Warn("Failed to write metrics file", logfields.Path(metricsFile), logfields.Error(werr))
			if err == nil {
				err = ferrors.FileSystemError("failed to write metrics file").
					WithCause(werr).
					WithContext("path", metricsFile).
					Build()
			}
		}
	}
	return report, err
}
