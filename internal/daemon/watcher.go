package daemon

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// RefEvent reports that a ref file changed.
type RefEvent struct {
	// Path is the absolute path of the ref file (HEAD, packed-refs or a
	// file under refs/heads).
	Path string

	// Op is the fsnotify operation.
	Op fsnotify.Op
}

// RefWatcher watches a git metadata directory for moves of HEAD and the
// local branch refs. fsnotify is not recursive, so every directory under
// refs/heads is added, including ones created while watching.
type RefWatcher struct {
	watcher *fsnotify.Watcher
	events  chan RefEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	gitDirs  []string
	headsDir string
}

// NewRefWatcher creates a RefWatcher. gitDir is the per-worktree metadata
// directory holding HEAD; commonDir holds refs and packed-refs. They are
// the same directory outside of linked worktrees.
func NewRefWatcher(gitDir, commonDir string) (*RefWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dirs := []string{filepath.Clean(gitDir)}
	if c := filepath.Clean(commonDir); c != dirs[0] {
		dirs = append(dirs, c)
	}

	return &RefWatcher{
		watcher:  watcher,
		events:   make(chan RefEvent, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
		gitDirs:  dirs,
		headsDir: filepath.Join(filepath.Clean(commonDir), "refs", "heads"),
	}, nil
}

// Start adds the watches and begins emitting events.
func (rw *RefWatcher) Start() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.running {
		return fmt.Errorf("watcher already running")
	}

	for _, dir := range rw.gitDirs {
		if err := rw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	err := filepath.WalkDir(rw.headsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return rw.watcher.Add(p)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to watch %s: %w", rw.headsDir, err)
	}

	rw.running = true
	rw.wg.Add(1)
	go rw.processEvents()

	return nil
}

// Stop closes the watcher and waits for the event loop to exit.
func (rw *RefWatcher) Stop() error {
	rw.mu.Lock()
	if !rw.running {
		rw.mu.Unlock()
		return rw.watcher.Close()
	}
	rw.running = false
	rw.mu.Unlock()

	close(rw.done)

	if err := rw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	rw.wg.Wait()

	close(rw.events)
	close(rw.errors)

	return nil
}

// Events returns the channel of ref changes. It is closed by Stop.
func (rw *RefWatcher) Events() <-chan RefEvent {
	return rw.events
}

// Errors returns the channel of watcher errors. It is closed by Stop.
func (rw *RefWatcher) Errors() <-chan error {
	return rw.errors
}

func (rw *RefWatcher) processEvents() {
	defer rw.wg.Done()

	for {
		select {
		case <-rw.done:
			return

		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}

			// New branch namespace directories (refs/heads/feature/...)
			if event.Has(fsnotify.Create) && rw.underHeads(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = rw.watcher.Add(event.Name)
					continue
				}
			}

			if !rw.isRefFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			select {
			case rw.events <- RefEvent{Path: event.Name, Op: event.Op}:
			case <-rw.done:
				return
			}

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			select {
			case rw.errors <- err:
			case <-rw.done:
				return
			default:
				// Drop errors nobody reads.
			}
		}
	}
}

// isRefFile reports whether p is HEAD, packed-refs or a branch ref.
// Lock files git writes before renaming into place are skipped; the
// rename itself produces the event.
func (rw *RefWatcher) isRefFile(p string) bool {
	if strings.HasSuffix(p, ".lock") {
		return false
	}
	dir, base := filepath.Split(filepath.Clean(p))
	dir = filepath.Clean(dir)
	for _, g := range rw.gitDirs {
		if dir == g && (base == "HEAD" || base == "packed-refs") {
			return true
		}
	}
	return rw.underHeads(p)
}

func (rw *RefWatcher) underHeads(p string) bool {
	return strings.HasPrefix(filepath.Clean(p), rw.headsDir+string(filepath.Separator))
}
