// Package filedaemon is the background workspace indexer spec §4.7
// describes: it walks a root directory respecting gitignore-style rules,
// publishes a naturally-sorted list of repo-relative paths, and
// republishes whenever the file system changes underneath it.
//
// Adapted from the teacher's internal/project/watcher package: the
// fsnotify wiring and the debounce-then-refresh lifecycle follow
// watcher.FSNotifyWatcher and watcher.DebouncedWatcher, and the ignore
// semantics follow watcher.IgnorePatterns, restructured in ignore.go into
// a per-directory matcher cache (the teacher's version is a single flat
// pattern list, which doesn't give spec's "cache of compiled
// ignore-matchers per directory... cleared periodically when idle" a
// place to live). internal/project/index/incremental.go's worker
// contributed the "emit a progress event every N processed" chunking
// idiom this package's initial walk uses.
package filedaemon

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/vellum/internal/natsort"
)

// DefaultChunkSize is how many newly discovered entries trigger an
// incremental publish during the initial walk, per spec §4.7.
const DefaultChunkSize = 1000

// Config configures a FileDaemon.
type Config struct {
	Root string

	// Recursive watches every subdirectory, not just Root.
	Recursive bool

	// Watch enables the fsnotify-backed watcher. When false, only the
	// initial walk runs and the daemon never republishes.
	Watch bool

	IgnoreHidden bool

	// FilterBinary excludes files that sniff as non-text.
	FilterBinary bool

	ChunkSize      int
	DebounceDelay  time.Duration
	IdleGCInterval time.Duration
}

// DefaultConfig returns sensible defaults for root.
func DefaultConfig(root string) Config {
	return Config{
		Root:           root,
		Recursive:      true,
		Watch:          true,
		IgnoreHidden:   false,
		FilterBinary:   false,
		ChunkSize:      DefaultChunkSize,
		DebounceDelay:  200 * time.Millisecond,
		IdleGCInterval: 30 * time.Second,
	}
}

// Option customizes a FileDaemon at construction.
type Option func(*Config)

func WithRecursive(b bool) Option          { return func(c *Config) { c.Recursive = b } }
func WithWatch(b bool) Option              { return func(c *Config) { c.Watch = b } }
func WithIgnoreHidden(b bool) Option       { return func(c *Config) { c.IgnoreHidden = b } }
func WithFilterBinary(b bool) Option       { return func(c *Config) { c.FilterBinary = b } }
func WithChunkSize(n int) Option           { return func(c *Config) { c.ChunkSize = n } }
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Config) { c.DebounceDelay = d }
}
func WithIdleGCInterval(d time.Duration) Option {
	return func(c *Config) { c.IdleGCInterval = d }
}

// FileDaemon walks config.Root, publishes a sorted relative-path list,
// and watches for changes. The zero value is not usable; build one with
// New.
type FileDaemon struct {
	config  Config
	ignores *matcherCache

	listCh    chan []string
	changedCh chan struct{}

	watcher *fsnotify.Watcher

	mu            sync.Mutex
	debounceTimer *time.Timer
	watchedDirs   map[string]bool

	closeCh  chan struct{}
	closedWg sync.WaitGroup
	closed   bool
}

// New constructs a FileDaemon over root. Call Start to begin walking and
// (if Config.Watch) watching.
func New(root string, opts ...Option) *FileDaemon {
	config := DefaultConfig(root)
	for _, opt := range opts {
		opt(&config)
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}

	return &FileDaemon{
		config:      config,
		ignores:     newMatcherCache(),
		listCh:      make(chan []string, 1),
		changedCh:   make(chan struct{}, 1),
		watchedDirs: make(map[string]bool),
		closeCh:     make(chan struct{}),
	}
}

// Lists is the subscriber channel spec §4.7 calls out: every send is a
// complete, freshly-sorted snapshot, never a diff. Only the most recent
// snapshot is ever buffered.
func (d *FileDaemon) Lists() <-chan []string { return d.listCh }

// Changed is the lightweight "something happened" pulse, fired as soon as
// a qualifying file-system event is observed, well before the heavier
// rewalk-and-resort that refreshes Lists.
func (d *FileDaemon) Changed() <-chan struct{} { return d.changedCh }

// Start runs the initial chunked walk synchronously, then (if
// Config.Watch) launches the fsnotify watcher and idle-GC loop in the
// background. The initial walk's final, complete list is always
// published before Start returns.
func (d *FileDaemon) Start() error {
	d.walkAndPublish()

	if !d.config.Watch {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	d.watcher = w

	if err := d.addWatch(d.config.Root); err != nil {
		_ = w.Close()
		return err
	}

	d.closedWg.Add(2)
	go d.watchLoop()
	go d.gcLoop()
	return nil
}

// Close honors the shutdown signal spec §4.7 requires: it stops the
// watcher and GC goroutines and releases the fsnotify handle.
func (d *FileDaemon) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.closeCh)
	if d.debounceTimer != nil {
		d.debounceTimer.Stop()
	}
	d.mu.Unlock()

	if d.watcher != nil {
		d.closedWg.Wait()
		return d.watcher.Close()
	}
	return nil
}

// addWatch registers dir (and, if Config.Recursive, every unignored
// subdirectory) with fsnotify.
func (d *FileDaemon) addWatch(dir string) error {
	if err := d.watcher.Add(dir); err != nil {
		return err
	}
	d.mu.Lock()
	d.watchedDirs[dir] = true
	d.mu.Unlock()

	if !d.config.Recursive {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil // directory vanished mid-walk; nothing to watch
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		child := filepath.Join(dir, e.Name())
		if d.shouldIgnore(child, true) {
			continue
		}
		_ = d.addWatch(child)
	}
	return nil
}

// walkAndPublish performs the full walk described by spec §4.7: entries
// accumulate in WalkDir's lexical order, and a naturally sorted copy is
// published every ChunkSize new entries, then once more at the end.
func (d *FileDaemon) walkAndPublish() {
	var paths []string
	since := 0

	_ = filepath.WalkDir(d.config.Root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entry; skip and keep walking
		}
		if p == d.config.Root {
			return nil
		}

		isDir := entry.IsDir()
		if d.shouldIgnore(p, isDir) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		if isDir {
			return nil
		}
		if d.config.FilterBinary && looksBinary(p) {
			return nil
		}

		rel, err := filepath.Rel(d.config.Root, p)
		if err != nil {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))

		if len(paths)-since >= d.config.ChunkSize {
			since = len(paths)
			d.publishSorted(paths)
		}
		return nil
	})

	d.publishSorted(paths)
}

func (d *FileDaemon) publishSorted(paths []string) {
	snapshot := make([]string, len(paths))
	copy(snapshot, paths)
	sort.Slice(snapshot, func(i, j int) bool { return natsort.Less(snapshot[i], snapshot[j]) })
	publishLatest(d.listCh, snapshot)
}

func (d *FileDaemon) shouldIgnore(path string, isDir bool) bool {
	if d.config.IgnoreHidden {
		base := filepath.Base(path)
		if len(base) > 0 && base[0] == '.' {
			return true
		}
	}
	dir := filepath.Dir(path)
	m := d.ignores.resolve(d.config.Root, dir, time.Now().UnixNano())
	return m.ignores(path, isDir)
}

// publishLatest overwrites whatever was buffered in ch with v, so a slow
// subscriber only ever sees the newest snapshot rather than a backlog.
func publishLatest[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
