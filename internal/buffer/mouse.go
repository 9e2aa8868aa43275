package buffer

import (
	"time"

	"github.com/dshills/vellum/internal/cursor"
	"github.com/dshills/vellum/internal/rope"
)

// clickWindow bounds the double/triple-click escalation window: a click
// lands in the same sequence as the previous one only if it falls
// within clickWindow of it and addresses the same (col, line) cell.
// Adapted from the teacher's clickTracker
// (internal/input/mouse/click.go), which tracks a max time plus a
// Manhattan pixel distance; spec's §6 ClickCell works in cell
// coordinates rather than screen pixels, so "same cell" replaces the
// teacher's distance threshold.
const clickWindow = 500 * time.Millisecond

// clickStreak is the per-buffer double/triple-click tracker. It lives on
// Buffer rather than a standalone input-layer handler since ClickCell is
// one of spec's Buffer-addressed commands (§6), not an event routed
// through a keymap/dispatcher (both dropped as non-goals; see
// DESIGN.md).
type clickStreak struct {
	lastCol, lastLine int
	lastTime          time.Time
	count             int
}

// recordClick registers a click at (col, line) and returns the streak
// count: 1 for a fresh click, 2 for a same-cell click within
// clickWindow of the last, 3 for a third, wrapping back to 1 on a
// fourth. Mirrors the teacher's recordClick wrap-after-3 behavior.
func (s *clickStreak) recordClick(col, line int, at time.Time) int {
	if at.IsZero() {
		at = time.Now()
	}
	sameCell := s.count > 0 && col == s.lastCol && line == s.lastLine
	elapsed := at.Sub(s.lastTime)
	if sameCell && elapsed >= 0 && elapsed <= clickWindow {
		s.count++
		if s.count > 3 {
			s.count = 1
		}
	} else {
		s.count = 1
	}
	s.lastCol, s.lastLine, s.lastTime = col, line, at
	return s.count
}

// ClickCell positions the cursor at the grapheme under (col, line),
// honoring spec's click-streak escalation: a single click places the
// cursor, a double click (same cell, within 500ms) selects the
// surrounding word, and a triple click selects the whole line. A fourth
// click in the same streak wraps back to a plain single-click
// placement. If extend is true, a single click extends the current
// selection instead of collapsing it (shift-click).
func (b *Buffer) ClickCell(col, line int, extend bool, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pos := b.offsetAtCell(col, line)
	streak := b.click.recordClick(col, line, at)

	switch streak {
	case 2:
		start := b.wordBackward(pos, false)
		end := b.wordForward(pos, false)
		if end == pos {
			end = b.wordForward(start, false)
		}
		b.cur = cursorRange(start, end)
	case 3:
		pt := b.rope.OffsetToPoint(rope.ByteOffset(pos))
		lineStart := b.rope.LineStartOffset(pt.Line)
		lc := b.rope.LineCount()
		var lineEnd ByteOffset
		if pt.Line+1 < lc {
			lineEnd = b.rope.LineStartOffset(pt.Line + 1)
		} else {
			lineEnd = ByteOffset(b.rope.Len())
		}
		b.cur = cursor.Cursor{Anchor: lineStart, Position: lineEnd, Affinity: -1}
	default:
		if extend {
			b.cur = b.cur.ExtendWithAffinity(pos, b.displayColumn(pos))
		} else {
			b.cur = b.cur.MoveToWithAffinity(pos, b.displayColumn(pos))
		}
	}
	b.finishMotion(true)
}

// SelectArea sets anchor and position directly from two (col, line)
// points, for drag-selection input sources that track screen cells
// rather than byte offsets.
func (b *Buffer) SelectArea(anchorCol, anchorLine, curCol, curLine int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	anchor := b.offsetAtCell(anchorCol, anchorLine)
	pos := b.offsetAtCell(curCol, curLine)
	b.cur = cursor.Cursor{Anchor: anchor, Position: pos, Affinity: b.displayColumn(pos)}
	b.finishMotion(true)
}

// PastePrimary moves the cursor to (col, line) and inserts the
// "primary selection" clipboard channel's content there, auto-indenting
// like Paste.
func (b *Buffer) PastePrimary(col, line int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clipboard == nil {
		return ErrNothingToPaste
	}
	text, err := b.clipboard.GetPrimary()
	if err != nil {
		return err
	}
	if text == "" {
		return ErrNothingToPaste
	}
	pos := b.offsetAtCell(col, line)
	b.cur = cursor.NewCursor(pos)
	b.insertTextLocked(text, true)
	return nil
}

// offsetAtCell converts a (col, line) screen cell into a byte offset,
// clamping line to the rope's line range the way Goto does.
func (b *Buffer) offsetAtCell(col, line int) ByteOffset {
	lc := b.rope.LineCount()
	l := line
	if l < 0 {
		l = 0
	}
	if lc > 0 && uint32(l) >= lc {
		l = int(lc) - 1
	}
	if col < 0 {
		col = 0
	}
	return b.offsetAtDisplayColumn(uint32(l), col)
}
