// Package config loads vellum's small ambient configuration file — tab
// width, default indentation, ignore-file behavior, and watch mode — via
// TOML, grounded on the teacher's internal/config/loader.TOMLLoader (a
// FileSystem seam plus github.com/pelletier/go-toml/v2 parsing). The
// teacher's loader is generic (map[string]any, @include directives, deep
// merge, keymap/plugin sections) because it backs a much larger
// configuration surface that spec's non-goals explicitly exclude (a
// specific keymap, plugin hosting); this package keeps the FileSystem seam
// and the TOML choice but unmarshals directly into a typed Config, since
// there is no keymap layering left to merge.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the subset of editor settings the editing core itself consumes.
type Config struct {
	TabWidth  int    `toml:"tab_width"`
	Indent    Indent `toml:"indent"`
	Ignore    Ignore `toml:"ignore"`
	WatchMode string `toml:"watch_mode"` // "fsnotify" or "poll"
}

// Indent configures the default indentation used before content-based
// detection runs (e.g. for a brand-new empty buffer).
type Indent struct {
	Style string `toml:"style"` // "spaces" or "tabs"
	Width int    `toml:"width"`
}

// Ignore configures FileDaemon's ignore-file handling.
type Ignore struct {
	RespectGitignore  bool     `toml:"respect_gitignore"`
	RespectIgnoreFile bool     `toml:"respect_ignore_file"`
	RespectGitExclude bool     `toml:"respect_git_exclude"`
	Hidden            bool     `toml:"hidden"`
	ExtraPatterns     []string `toml:"extra_patterns"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		TabWidth: 4,
		Indent:   Indent{Style: "spaces", Width: 4},
		Ignore: Ignore{
			RespectGitignore:  true,
			RespectIgnoreFile: true,
			RespectGitExclude: true,
			Hidden:            false,
		},
		WatchMode: "fsnotify",
	}
}

// FileSystem is the minimal seam Loader needs, letting tests substitute an
// in-memory filesystem instead of touching disk.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// DefaultFS returns the real-disk FileSystem implementation.
func DefaultFS() FileSystem { return osFS{} }

// Loader loads a Config from a TOML file, falling back to Default when the
// file does not exist.
type Loader struct {
	fs   FileSystem
	path string
}

// NewLoader creates a Loader reading from path using the real filesystem.
func NewLoader(path string) *Loader {
	return &Loader{fs: DefaultFS(), path: path}
}

// NewLoaderWithFS creates a Loader with a custom FileSystem, for tests.
func NewLoaderWithFS(fs FileSystem, path string) *Loader {
	return &Loader{fs: fs, path: path}
}

// Load reads and parses the configured path, returning Default() when the
// file does not exist.
func (l *Loader) Load() (Config, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return parse(l.path, data)
}

// LoadFromReader reads and parses TOML from r.
func LoadFromReader(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return parse("<reader>", data)
}

func parse(source string, data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ParseError{Path: source, Err: err}
	}
	return cfg, nil
}

// ParseError wraps a TOML syntax error with the source path that produced it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
