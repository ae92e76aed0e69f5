// Package watch rebuilds the site when its sources change.
//
// Triggers come from filesystem events (debounced by a quiet window) and,
// optionally, from a periodic schedule. Builds never overlap: a trigger that
// arrives while a build runs queues exactly one follow-up build, and any
// further triggers fold into it.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/articlebuilder/internal/build"
	"git.home.luguber.info/inful/articlebuilder/internal/logfields"
)

// Trigger reasons, reported in logs.
const (
	TriggerInitial  = "initial"
	TriggerFS       = "fs"
	TriggerSchedule = "schedule"
)

// DefaultQuietWindow is how long the source tree must stay quiet before a rebuild.
const DefaultQuietWindow = 300 * time.Millisecond

// Runner performs one build.
type Runner interface {
	Run(ctx context.Context) (*build.Report, error)
}

// Options configures a Watcher.
type Options struct {
	// SourceDir is watched recursively.
	SourceDir string
	// OutputDir is ignored when it lies inside SourceDir.
	OutputDir   string
	QuietWindow time.Duration
	// Interval schedules periodic rebuilds; zero disables them.
	Interval time.Duration
	Logger   *slog.Logger
}

// Watcher drives a Runner from filesystem events and a schedule.
type Watcher struct {
	runner  Runner
	opts    Options
	logger  *slog.Logger
	pending chan string

	mu     sync.Mutex
	timer  *time.Timer
	builds atomic.Int64
}

// New returns a watcher for runner.
func New(runner Runner, opts Options) *Watcher {
	if opts.QuietWindow <= 0 {
		opts.QuietWindow = DefaultQuietWindow
	}
	opts.SourceDir = absPath(opts.SourceDir)
	if opts.OutputDir != "" {
		opts.OutputDir = absPath(opts.OutputDir)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		runner:  runner,
		opts:    opts,
		logger:  logger,
		pending: make(chan string, 1),
	}
}

// Builds returns the number of builds started so far.
func (w *Watcher) Builds() int64 { return w.builds.Load() }

// Trigger requests a build. It never blocks; if a build is already queued the
// request folds into it.
func (w *Watcher) Trigger(reason string) {
	select {
	case w.pending <- reason:
	default:
		w.logger.Debug("Build already queued", logfields.Trigger(reason))
	}
}

// Run performs an initial build and then rebuilds on every trigger until ctx
// is canceled. Build failures are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if cerr := fsw.Close(); cerr != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(cerr))
		}
	}()

	if err := w.addTree(fsw, w.opts.SourceDir); err != nil {
		return err
	}

	if w.opts.Interval > 0 {
		sched, err := w.schedule()
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				w.logger.Error("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	w.logger.Info("Watching for changes",
		logfields.Path(w.opts.SourceDir),
		slog.Duration("quiet_window", w.opts.QuietWindow),
		slog.Duration("interval", w.opts.Interval))

	go w.eventLoop(ctx, fsw)

	w.Trigger(TriggerInitial)
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case reason := <-w.pending:
			w.runBuild(ctx, reason)
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context, reason string) {
	n := w.builds.Add(1)
	logger := w.logger.With(logfields.Trigger(reason), slog.Int64("build_seq", n))
	logger.Debug("Rebuilding")

	report, err := w.runner.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Error("Rebuild failed", logfields.Error(err))
		return
	}
	if report != nil {
		logger.Info("Rebuilt site",
			logfields.BuildID(report.BuildID),
			logfields.Count(len(report.Records)),
			logfields.Result(string(report.Outcome)))
	}
}

func (w *Watcher) schedule() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.Trigger, TriggerSchedule),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic build job: %w", err)
	}
	return s, nil
}

// eventLoop turns relevant filesystem events into debounced triggers.
func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				// New directories are not watched by fsnotify automatically.
				if err := w.addTree(fsw, event.Name); err != nil {
					w.logger.Debug("Could not watch new path", logfields.Path(event.Name), logfields.Error(err))
				}
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			w.debounce()
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", logfields.Error(err))
		}
	}
}

// debounce (re)starts the quiet window timer.
func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.QuietWindow, func() { w.Trigger(TriggerFS) })
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// addTree watches root and every directory below it. Non-directories are skipped.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// ignored reports whether path is inside the output directory or is an
// editor temporary file.
func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return path != w.opts.SourceDir
	}
	if w.opts.OutputDir == "" {
		return false
	}
	rel, err := filepath.Rel(w.opts.OutputDir, path)
	return err == nil && (rel == "." || !strings.HasPrefix(rel, ".."))
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
