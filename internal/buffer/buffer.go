// Package buffer implements spec's Buffer: the component that owns a
// Rope, a History, and a Cursor, and exposes every motion and editing
// operation a command can invoke.
//
// Adapted from the teacher's two-layer split (internal/engine/buffer, a
// thin Rope wrapper, plus internal/engine/engine.go, the facade adding
// cursor/history/undo on top) collapsed into one type, since spec's
// component table has no equivalent of that split — Buffer is a single
// leaf-level component. The teacher's multi-cursor (CursorSet) and
// AI-context/diff-tracking methods (internal/engine/tracking) are not
// carried forward; see DESIGN.md.
package buffer

import (
	"strings"
	"sync"
	"time"

	"github.com/dshills/vellum/internal/cursor"
	"github.com/dshills/vellum/internal/grapheme"
	"github.com/dshills/vellum/internal/history"
	"github.com/dshills/vellum/internal/indent"
	"github.com/dshills/vellum/internal/notify"
	"github.com/dshills/vellum/internal/rope"
	"github.com/dshills/vellum/internal/search"
)

// ByteOffset is the fundamental position type: a byte index into the rope.
type ByteOffset = rope.ByteOffset

// Searcher is the one-way capability Buffer calls out to after edits; see
// the cyclic-relationship design note. The concrete implementation lives
// in internal/search and is supplied by Workspace at construction time.
type Searcher interface {
	UpdateBuffer(r rope.Rope, cursorByte *ByteOffset)

	// Matches returns the Searcher's current match list in source order,
	// used by ReplaceAll/ReplaceCurrentMatch to rewrite occurrences in a
	// single transaction.
	Matches() []search.Match

	// NextMatch and PrevMatch return the match whose start is strictly
	// after/before cursorByte, wrapping around, per spec §4.5. Buffer's
	// SelectNextMatch/SelectPrevMatch call these and select the
	// returned range, since spec assigns that selection step to Buffer
	// rather than the Searcher.
	NextMatch(cursorByte ByteOffset) (search.Match, bool)
	PrevMatch(cursorByte ByteOffset) (search.Match, bool)
}

// Buffer owns a Rope, History, and Cursor, plus the ambient state spec's
// data model lists: optional file path, encoding identity, line-ending
// kind, Indentation, scroll position, viewport size, and a dirty flag
// (delegated to History, which is the sole source of truth for it).
type Buffer struct {
	mu sync.Mutex

	rope rope.Rope
	hist *history.History
	cur  cursor.Cursor

	path     string
	encoding string

	lineEnding  grapheme.LineEnding
	indentation indent.Indentation
	tabWidth    int
	tabWidthSet bool

	scrollLineTop uint32
	scrollColLeft int
	viewportLines int
	viewportCols  int

	lastEdit time.Time

	searcher  Searcher
	notifier  notify.Notifier
	clipboard notify.ClipboardProvider

	click clickStreak
}

// Option configures a Buffer at construction, following the teacher's
// functional-option convention (internal/engine/buffer/options.go).
type Option func(*Buffer)

// WithPath binds the buffer to a file path.
func WithPath(path string) Option { return func(b *Buffer) { b.path = path } }

// WithEncoding sets the buffer's encoding identity (e.g. "utf-8").
func WithEncoding(enc string) Option { return func(b *Buffer) { b.encoding = enc } }

// WithLineEnding sets the buffer's line-ending kind.
func WithLineEnding(le grapheme.LineEnding) Option {
	return func(b *Buffer) { b.lineEnding = le }
}

// WithIndentation sets the buffer's indentation style explicitly,
// bypassing content-based detection.
func WithIndentation(ind indent.Indentation) Option {
	return func(b *Buffer) { b.indentation = ind }
}

// WithTabWidth sets the display width of a literal tab character,
// overriding the width NewFromString would otherwise seed from a
// tab-indented file's detected Indentation.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
			b.tabWidthSet = true
		}
	}
}

// WithSearcher attaches the Searcher handle Buffer notifies after edits.
func WithSearcher(s Searcher) Option { return func(b *Buffer) { b.searcher = s } }

// WithNotifier attaches the capability Buffer uses to wake the UI and
// collaborators such as a syntax highlighter (design note, §9).
func WithNotifier(n notify.Notifier) Option { return func(b *Buffer) { b.notifier = n } }

// WithClipboard attaches the clipboard Copy/Cut/Paste read and write.
func WithClipboard(c notify.ClipboardProvider) Option {
	return func(b *Buffer) { b.clipboard = c }
}

// WithViewport sets the initial viewport size in (lines, cols).
func WithViewport(lines, cols int) Option {
	return func(b *Buffer) { b.viewportLines, b.viewportCols = lines, cols }
}

// New creates an empty Buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		rope:        rope.New(),
		hist:        history.New(0),
		cur:         cursor.NewCursor(0),
		lineEnding:  grapheme.LF,
		indentation: indent.Default(),
		tabWidth:    4,
		notifier:    notify.NopNotifier{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromString creates a Buffer pre-loaded with text, detecting its
// indentation and line ending from content when neither was supplied
// explicitly via an Option.
func NewFromString(text string, opts ...Option) *Buffer {
	b := New(opts...)
	b.loadContent(text)
	return b
}

func (b *Buffer) loadContent(text string) {
	if b.indentation == indent.Default() {
		b.indentation = indent.DetectIndentation(text)
		// A tab-indented file's tab display width and its indent level
		// width are the same number (spec's Tabs(n) is "one tab of
		// logical width n"); seed tabWidth from it unless the caller
		// already pinned one explicitly via WithTabWidth.
		if b.indentation.Kind == indent.KindTabs && !b.tabWidthSet {
			b.tabWidth = b.indentation.Width
		}
	}
	if b.lineEnding == grapheme.LF {
		b.lineEnding = grapheme.DetectLineEnding(text)
	}
	b.rope = rope.FromString(text)
}

// Rope returns the buffer's current rope snapshot. Ropes are immutable,
// safe to retain and share across goroutines.
func (b *Buffer) Rope() rope.Rope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rope
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rope.String()
}

// Cursor returns the buffer's current cursor.
func (b *Buffer) Cursor() cursor.Cursor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cur
}

// SetCursor overwrites the buffer's cursor directly, clamped to the rope's
// bounds. Used by Workspace to restore a persisted {anchor, position,
// affinity} snapshot on layout reload.
func (b *Buffer) SetCursor(c cursor.Cursor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cur = c.Clamp(rope.ByteOffset(b.rope.Len()))
}

// Path returns the bound file path, or "" if unbound.
func (b *Buffer) Path() string { return b.path }

// SetPath rebinds the buffer's file path, e.g. after "save as".
func (b *Buffer) SetPath(path string) { b.path = path }

// Encoding returns the buffer's encoding identity.
func (b *Buffer) Encoding() string { return b.encoding }

// LineEnding returns the buffer's line-ending kind.
func (b *Buffer) LineEnding() grapheme.LineEnding { return b.lineEnding }

// Indentation returns the buffer's current indentation style.
func (b *Buffer) Indentation() indent.Indentation { return b.indentation }

// SetIndentation overrides the buffer's indentation style.
func (b *Buffer) SetIndentation(ind indent.Indentation) { b.indentation = ind }

// TabWidth returns the display width of a literal tab character.
func (b *Buffer) TabWidth() int { return b.tabWidth }

// Dirty reports whether the buffer has unsaved edits, per History's
// save-marker tracking.
func (b *Buffer) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hist.Dirty()
}

// MarkSaved records the current undo position as the clean boundary.
func (b *Buffer) MarkSaved() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hist.MarkSaved()
}

// MarkHistoryDirty invalidates the saved boundary, used when an external
// write-back detects a concurrent edit it did not make itself.
func (b *Buffer) MarkHistoryDirty() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hist.InvalidateSaved()
}

// Scroll returns the buffer's current scroll position.
func (b *Buffer) Scroll() (lineTop uint32, colLeft int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scrollLineTop, b.scrollColLeft
}

// SetScroll sets the scroll position directly, clamping lineTop to a
// valid line per the buffer invariant.
func (b *Buffer) SetScroll(lineTop uint32, colLeft int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setScrollLocked(lineTop, colLeft)
}

// VerticalScroll nudges the scroll position by n lines (negative scrolls
// up), clamped to the rope's valid line range. This is the primitive
// behind spec §6's VerticalScroll(n) view command.
func (b *Buffer) VerticalScroll(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	target := int64(b.scrollLineTop) + int64(n)
	if target < 0 {
		target = 0
	}
	if lc := int64(b.rope.LineCount()); lc == 0 {
		target = 0
	} else if target >= lc {
		target = lc - 1
	}
	b.setScrollLocked(uint32(target), b.scrollColLeft)
}

func (b *Buffer) setScrollLocked(lineTop uint32, colLeft int) {
	lc := b.rope.LineCount()
	if lc == 0 {
		lineTop = 0
	} else if lineTop >= lc {
		lineTop = lc - 1
	}
	if colLeft < 0 {
		colLeft = 0
	}
	b.scrollLineTop, b.scrollColLeft = lineTop, colLeft
}

// SetViewport sets the visible viewport size in (lines, cols).
func (b *Buffer) SetViewport(lines, cols int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewportLines, b.viewportCols = lines, cols
}

// centerOnCursor adjusts scroll so the cursor is visible, recentering
// vertically when it was off-screen, per §4.2's post-motion contract.
func (b *Buffer) centerOnCursor() {
	if b.viewportLines <= 0 {
		return
	}
	pt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))
	line := pt.Line
	top := b.scrollLineTop
	bottom := top + uint32(b.viewportLines)
	if line >= top && line < bottom {
		return
	}
	half := uint32(b.viewportLines / 2)
	var newTop uint32
	if line > half {
		newTop = line - half
	}
	b.setScrollLocked(newTop, b.scrollColLeft)
}

// finishMotion terminates any coalesced transaction and recenters the
// viewport, per §4.2's "after every motion" contract.
func (b *Buffer) finishMotion(clampCursor bool) {
	b.hist.Finish(b.cur)
	if clampCursor {
		b.centerOnCursor()
	}
	b.notifier.NotifyCursorMoved(b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position)))
}

// notifyChanged tells the Notifier and the Searcher about a new rope
// snapshot, per the one-way cyclic-relationship design (§9): Buffer
// calls out, the Searcher never calls back in.
func (b *Buffer) notifyChanged() {
	b.lastEdit = time.Now()
	if b.searcher != nil {
		pos := b.cur.Position
		b.searcher.UpdateBuffer(b.rope, &pos)
	}
	b.notifier.NotifyChanged(b.rope.String(), 0)
}

// currentLineIndent returns the leading whitespace of the line containing
// offset, up to (but not past) offset itself.
func (b *Buffer) currentLineIndent(offset ByteOffset) string {
	pt := b.rope.OffsetToPoint(rope.ByteOffset(offset))
	lineStart := b.rope.LineStartOffset(pt.Line)
	prefix := b.rope.Slice(lineStart, rope.ByteOffset(offset))
	trimmed := strings.TrimLeft(prefix, " \t")
	return prefix[:len(prefix)-len(trimmed)]
}

// firstNonWhitespaceOffset returns the byte offset of the first
// non-whitespace grapheme on line, or the line's end offset if the line
// is all whitespace.
func (b *Buffer) firstNonWhitespaceOffset(line uint32) ByteOffset {
	start := b.rope.LineStartOffset(line)
	end := b.rope.LineEndOffset(line)
	text := b.rope.Slice(start, end)
	trimmed := strings.TrimLeft(text, " \t")
	return start + rope.ByteOffset(len(text)-len(trimmed))
}

// displayColumn computes the visual column of offset within its line,
// honoring tab stops per GraphemeOps' additive width contract.
func (b *Buffer) displayColumn(offset ByteOffset) int {
	pt := b.rope.OffsetToPoint(rope.ByteOffset(offset))
	lineStart := b.rope.LineStartOffset(pt.Line)
	prefix := b.rope.Slice(lineStart, rope.ByteOffset(offset))
	return grapheme.Width(prefix, 0, b.tabWidth)
}
