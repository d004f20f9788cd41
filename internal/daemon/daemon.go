// Package daemon re-runs the copyright synchronization whenever the
// checked-out commit moves.
//
// The daemon:
//  1. Performs an initial run
//  2. Watches HEAD, packed-refs and refs/heads in the git metadata
//  3. Debounces bursts of ref updates (a rebase touches refs many times)
//  4. Re-runs once the resolved commit differs from the last run
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mschirtzinger/git-copyright/internal/syncer"
	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// Runner performs one synchronization run. *syncer.Syncer satisfies it.
type Runner interface {
	Run(ctx context.Context) (*syncer.Summary, error)
}

// RefResolver resolves a ref to a commit hash. vcs.VCS satisfies it.
type RefResolver interface {
	ResolveRef(ctx context.Context, ref string) (string, error)
}

// Config holds configuration for the daemon.
type Config struct {
	// Ref is the ref whose movement triggers a run
	Ref string

	// DebounceInterval is how long the refs must stay quiet before a run
	DebounceInterval time.Duration

	// OnRun is called after every run with its summary or error
	OnRun func(*syncer.Summary, error)

	// Logger for daemon activity
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Ref:              vcs.DefaultRef,
		DebounceInterval: 500 * time.Millisecond,
	}
}

// Daemon ties a RefWatcher to a Runner.
type Daemon struct {
	runner  Runner
	refs    RefResolver
	watcher *RefWatcher
	config  *Config
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   time.Time // zero when nothing is queued

	lastCommit string
	runs       int

	wg sync.WaitGroup
}

// New creates a daemon for the repository whose metadata lives in gitDir
// and commonDir.
func New(runner Runner, refs RefResolver, gitDir, commonDir string, config *Config) (*Daemon, error) {
	if runner == nil {
		return nil, errors.New("runner cannot be nil")
	}
	if refs == nil {
		return nil, errors.New("ref resolver cannot be nil")
	}
	if gitDir == "" || commonDir == "" {
		return nil, errors.New("git directories cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Ref == "" {
		config.Ref = vcs.DefaultRef
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultConfig().DebounceInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := NewRefWatcher(gitDir, commonDir)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		runner:  runner,
		refs:    refs,
		watcher: watcher,
		config:  config,
		logger:  logger,
	}, nil
}

// Start performs the initial run, then watches refs and re-runs on change.
// It blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.logger.Info("starting watch", "ref", d.config.Ref, "debounce", d.config.DebounceInterval)

	d.runIfMoved(ctx, true)

	if err := d.watcher.Start(); err != nil {
		return fmt.Errorf("failed to start ref watcher: %w", err)
	}

	d.wg.Add(2)
	go d.watchRefEvents(ctx)
	go d.processQueue(ctx)

	<-ctx.Done()
	d.logger.Info("shutdown signal received")
	return d.stop()
}

// Runs returns the number of runs performed so far.
func (d *Daemon) Runs() int {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	return d.runs
}

func (d *Daemon) stop() error {
	err := d.watcher.Stop()
	d.wg.Wait()
	d.logger.Info("watch stopped")
	return err
}

func (d *Daemon) watchRefEvents(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-d.watcher.Events():
			if !ok {
				return
			}
			d.logger.Debug("ref event", "path", ev.Path, "op", ev.Op.String())
			d.queue()

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return
			}
			d.logger.Warn("watcher error", "error", err)
		}
	}
}

func (d *Daemon) queue() {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	d.pending = time.Now()
}

// processQueue runs once the queue has been quiet for DebounceInterval.
func (d *Daemon) processQueue(ctx context.Context) {
	defer d.wg.Done()

	tick := d.config.DebounceInterval / 4
	if tick <= 0 {
		tick = d.config.DebounceInterval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			d.pendingMu.Lock()
			ready := !d.pending.IsZero() && time.Since(d.pending) >= d.config.DebounceInterval
			if ready {
				d.pending = time.Time{}
			}
			d.pendingMu.Unlock()

			if ready {
				d.runIfMoved(ctx, false)
			}
		}
	}
}

// runIfMoved runs the synchronization unless the ref still resolves to the
// commit of the previous run. The initial run is forced.
func (d *Daemon) runIfMoved(ctx context.Context, force bool) {
	commit, err := d.refs.ResolveRef(ctx, d.config.Ref)
	if err != nil {
		// Unborn branch or a ref mid-update; try again on the next event.
		d.logger.Warn("failed to resolve ref", "ref", d.config.Ref, "error", err)
		if !force {
			return
		}
	}
	if !force && commit == d.lastCommit {
		d.logger.Debug("ref unchanged, skipping run", "commit", commit)
		return
	}

	d.logger.Info("running", "ref", d.config.Ref, "commit", commit)
	sum, runErr := d.runner.Run(ctx)
	if ctx.Err() != nil {
		return
	}

	d.pendingMu.Lock()
	d.runs++
	d.pendingMu.Unlock()
	d.lastCommit = commit

	if runErr != nil {
		d.logger.Error("run failed", "error", runErr)
	}
	if d.config.OnRun != nil {
		d.config.OnRun(sum, runErr)
	}
}
