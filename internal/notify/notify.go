// Package notify defines the capability interfaces that replace the global
// singletons spec's design notes call out: instead of a process-wide event
// bus (the teacher's internal/event.Bus, a topic-matching pub/sub registry
// with sync/async dispatch — far more machinery than a one-way wake-up
// needs), every Buffer takes a Notifier at construction and calls it
// directly. The dependency is explicit and one-way: Buffer -> Notifier.
// Buffer never receives a callback back.
//
// ClipboardProvider replaces the teacher's implicit process-wide clipboard
// singleton the same way: an injected capability instead of a global.
package notify

import "github.com/dshills/vellum/internal/rope"

// Notifier is the one-way capability a Buffer uses to wake up external,
// out-of-scope collaborators (a syntax highlighter, a Searcher, a UI) after
// a mutation, without ever holding a reference back into them.
type Notifier interface {
	// NotifyChanged is called after every mutating Buffer operation,
	// including edits still coalescing into an open history transaction,
	// with the new buffer text, for collaborators that want the
	// whole snapshot rather than a diff (e.g. a syntax highlighter
	// re-parsing the file, a Searcher refreshing live matches).
	NotifyChanged(text string, revision uint64)

	// NotifyCursorMoved is called after any motion or edit changes the
	// cursor, for collaborators that only care about the visible position
	// (e.g. a status line).
	NotifyCursorMoved(pos rope.Point)
}

// NopNotifier discards every notification. It's the default when a Buffer
// is constructed without an explicit Notifier (e.g. in tests).
type NopNotifier struct{}

func (NopNotifier) NotifyChanged(string, uint64)  {}
func (NopNotifier) NotifyCursorMoved(rope.Point)  {}

// ClipboardProvider is the external clipboard boundary: get/set plain text,
// plus an optional "primary selection" channel (X11-style select-to-copy),
// which implementations that don't have one can simply alias to the main
// clipboard.
type ClipboardProvider interface {
	Get() (string, error)
	Set(text string) error
	GetPrimary() (string, error)
	SetPrimary(text string) error
}

// MemClipboard is an in-process ClipboardProvider, useful for tests and for
// hosts that don't integrate with an OS clipboard.
type MemClipboard struct {
	main    string
	primary string
}

func NewMemClipboard() *MemClipboard { return &MemClipboard{} }

func (c *MemClipboard) Get() (string, error)  { return c.main, nil }
func (c *MemClipboard) Set(text string) error { c.main = text; return nil }

func (c *MemClipboard) GetPrimary() (string, error)  { return c.primary, nil }
func (c *MemClipboard) SetPrimary(text string) error { c.primary = text; return nil }
