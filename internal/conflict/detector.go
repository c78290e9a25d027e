// Package conflict watches active worktrees for overlapping edits.
// Domain plans partition files so worktrees should never touch the
// same path; the detector reports any path modified in two or more
// worktrees so the overlap surfaces during the parallel phase instead
// of at merge time.
package conflict

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the detector waits after a burst of
// filesystem events before processing them. Editors commonly emit
// several events per save.
const DefaultDebounce = 400 * time.Millisecond

// FileConflict is a relative path modified in more than one worktree.
type FileConflict struct {
	// RelativePath is the path relative to each worktree root.
	RelativePath string
	// Worktrees lists the worktree names that modified the path,
	// sorted.
	Worktrees []string
	// LastModified is the most recent modification seen.
	LastModified time.Time
}

// Detector watches worktree directories and tracks which worktrees
// modified which relative paths.
type Detector struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	// worktree name -> root path
	worktrees map[string]string

	// relative path -> worktree name -> last modification
	modifications map[string]map[string]time.Time

	conflicts  []FileConflict
	onConflict func([]FileConflict)

	// Directory names never watched or reported.
	ignoreNames []string

	mu        sync.RWMutex
	stopCh    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New creates a detector with the default debounce window.
func New() (*Detector, error) {
	return NewWithDebounce(DefaultDebounce)
}

// NewWithDebounce creates a detector with a custom debounce window.
func NewWithDebounce(debounce time.Duration) (*Detector, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Detector{
		watcher:       watcher,
		debounce:      debounce,
		worktrees:     make(map[string]string),
		modifications: make(map[string]map[string]time.Time),
		conflicts:     make([]FileConflict, 0),
		ignoreNames:   []string{".git", ".divvy", "node_modules", ".DS_Store"},
		stopCh:        make(chan struct{}),
	}, nil
}

// SetCallback registers a function invoked whenever the conflict set
// is recalculated and non-empty. The callback runs on the watch
// goroutine and must not block.
func (d *Detector) SetCallback(cb func([]FileConflict)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onConflict = cb
}

// AddWorktree starts watching a worktree's directory tree.
func (d *Detector) AddWorktree(name, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("worktree path does not exist: %s", path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("worktree path is not a directory: %s", path)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.worktrees[name] = path

	if err := d.watcher.Add(path); err != nil {
		return err
	}
	// fsnotify only reports events for directories it watches
	// directly, so every subdirectory needs its own watch.
	return d.watchDirRecursive(path)
}

func (d *Detector) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if d.ignored(filepath.Base(path)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			_ = d.watcher.Add(path)
		}
		return nil
	})
}

// RemoveWorktree stops watching a worktree and drops its
// modifications from conflict tracking.
func (d *Detector) RemoveWorktree(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	path, ok := d.worktrees[name]
	if !ok {
		return
	}

	_ = d.watcher.Remove(path)
	delete(d.worktrees, name)

	for relPath, byWorktree := range d.modifications {
		delete(byWorktree, name)
		if len(byWorktree) == 0 {
			delete(d.modifications, relPath)
		}
	}

	d.recalculate()
}

// Start begins processing filesystem events.
func (d *Detector) Start() {
	go d.watchLoop()
}

// Close stops the detector and releases the watcher. Safe to call
// more than once.
func (d *Detector) Close() error {
	d.closeOnce.Do(func() {
		close(d.stopCh)
		d.closeErr = d.watcher.Close()
	})
	return d.closeErr
}

func (d *Detector) watchLoop() {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	pending := make(map[string]fsnotify.Event)

	for {
		select {
		case <-d.stopCh:
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[event.Name] = event
			debounceTimer.Reset(d.debounce)

		case <-debounceTimer.C:
			events := pending
			pending = make(map[string]fsnotify.Event)
			for _, event := range events {
				d.handleEvent(event)
			}

		case _, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (d *Detector) handleEvent(event fsnotify.Event) {
	path := event.Name
	if d.pathIgnored(path) {
		return
	}

	// Directories created after AddWorktree need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			_ = d.watcher.Add(path)
			return
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var matched, relPath string
	for name, root := range d.worktrees {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			matched = name
			relPath, _ = filepath.Rel(root, path)
			break
		}
	}
	if matched == "" {
		return
	}

	if d.modifications[relPath] == nil {
		d.modifications[relPath] = make(map[string]time.Time)
	}
	d.modifications[relPath][matched] = time.Now()

	d.recalculate()
}

func (d *Detector) ignored(base string) bool {
	for _, name := range d.ignoreNames {
		if base == name {
			return true
		}
	}
	return false
}

func (d *Detector) pathIgnored(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if d.ignored(part) {
			return true
		}
	}
	return false
}

// recalculate rebuilds the conflict list. Caller holds mu.
func (d *Detector) recalculate() {
	conflicts := make([]FileConflict, 0)

	for relPath, byWorktree := range d.modifications {
		if len(byWorktree) < 2 {
			continue
		}

		names := make([]string, 0, len(byWorktree))
		var lastMod time.Time
		for name, modTime := range byWorktree {
			names = append(names, name)
			if modTime.After(lastMod) {
				lastMod = modTime
			}
		}
		sort.Strings(names)

		conflicts = append(conflicts, FileConflict{
			RelativePath: relPath,
			Worktrees:    names,
			LastModified: lastMod,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].RelativePath < conflicts[j].RelativePath
	})
	d.conflicts = conflicts

	if d.onConflict != nil && len(conflicts) > 0 {
		d.onConflict(conflicts)
	}
}

// Snapshot returns a copy of the current conflicts, sorted by path.
func (d *Detector) Snapshot() []FileConflict {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]FileConflict, len(d.conflicts))
	copy(out, d.conflicts)
	return out
}

// HasConflicts reports whether any path is modified in more than one
// worktree.
func (d *Detector) HasConflicts() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conflicts) > 0
}

// Count returns the number of conflicting paths.
func (d *Detector) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conflicts)
}

// ModifiedBy returns the relative paths a worktree has modified,
// sorted.
func (d *Detector) ModifiedBy(name string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var files []string
	for relPath, byWorktree := range d.modifications {
		if _, ok := byWorktree[name]; ok {
			files = append(files, relPath)
		}
	}
	sort.Strings(files)
	return files
}

// ClearOlderThan drops modification records older than maxAge so
// long-running watches do not report stale overlaps.
func (d *Detector) ClearOlderThan(maxAge time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for relPath, byWorktree := range d.modifications {
		for name, modTime := range byWorktree {
			if modTime.Before(cutoff) {
				delete(byWorktree, name)
			}
		}
		if len(byWorktree) == 0 {
			delete(d.modifications, relPath)
		}
	}

	d.recalculate()
}
