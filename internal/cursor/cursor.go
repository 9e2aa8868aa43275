package cursor

import (
	"fmt"

	"github.com/dshills/vellum/internal/rope"
)

// ByteOffset is an alias for rope.ByteOffset for convenience throughout the
// cursor package and its callers.
type ByteOffset = rope.ByteOffset

// Range is a half-open byte range [Start, End).
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

// Len returns the length of the range in bytes.
func (r Range) Len() ByteOffset { return r.End - r.Start }

// Cursor is the spec's {anchor, position, affinity} triple. Position is
// where typing occurs; Anchor is the other end of the selection (equal to
// Position when there is no selection). Affinity is the desired visual
// column remembered across vertical motion: MoveToWithAffinity and
// ExtendWithAffinity carry it through, while MoveTo, Extend and the
// Collapse methods reset it to -1 (unknown).
type Cursor struct {
	Anchor   ByteOffset
	Position ByteOffset
	Affinity int
}

// NewCursor creates a cursor with no selection at offset, with affinity
// unset (callers performing vertical motion should seed it from the actual
// visual column on first use).
func NewCursor(offset ByteOffset) Cursor {
	return Cursor{Anchor: offset, Position: offset, Affinity: -1}
}

// IsEmpty reports whether the cursor has no selection extent.
func (c Cursor) IsEmpty() bool {
	return c.Anchor == c.Position
}

// Len returns the selection length in bytes.
func (c Cursor) Len() ByteOffset {
	if c.Anchor <= c.Position {
		return c.Position - c.Anchor
	}
	return c.Anchor - c.Position
}

// Range returns the selection as a forward range.
func (c Cursor) Range() Range {
	if c.Anchor <= c.Position {
		return Range{Start: c.Anchor, End: c.Position}
	}
	return Range{Start: c.Position, End: c.Anchor}
}

// Start returns the lower bound of the selection.
func (c Cursor) Start() ByteOffset {
	if c.Anchor <= c.Position {
		return c.Anchor
	}
	return c.Position
}

// End returns the upper bound of the selection.
func (c Cursor) End() ByteOffset {
	if c.Anchor >= c.Position {
		return c.Anchor
	}
	return c.Position
}

// IsForward reports whether Position >= Anchor.
func (c Cursor) IsForward() bool { return c.Position >= c.Anchor }

// IsBackward reports whether Position < Anchor.
func (c Cursor) IsBackward() bool { return c.Position < c.Anchor }

// MoveTo returns a collapsed cursor at offset with affinity reset to -1
// (unknown — recomputed lazily from the new visual column). Used by every
// non-extending horizontal motion and edit.
func (c Cursor) MoveTo(offset ByteOffset) Cursor {
	return Cursor{Anchor: offset, Position: offset, Affinity: -1}
}

// MoveToWithAffinity is MoveTo but preserves a caller-supplied affinity,
// used by vertical motion where the column must survive the move.
func (c Cursor) MoveToWithAffinity(offset ByteOffset, affinity int) Cursor {
	return Cursor{Anchor: offset, Position: offset, Affinity: affinity}
}

// Extend returns a cursor with Position moved to offset and Anchor held
// fixed — the "extend selection" half of a motion with extend=true.
func (c Cursor) Extend(offset ByteOffset) Cursor {
	return Cursor{Anchor: c.Anchor, Position: offset, Affinity: -1}
}

// ExtendWithAffinity is Extend but preserves the affinity column.
func (c Cursor) ExtendWithAffinity(offset ByteOffset, affinity int) Cursor {
	return Cursor{Anchor: c.Anchor, Position: offset, Affinity: affinity}
}

// CollapseToStart collapses the selection to its lower bound.
func (c Cursor) CollapseToStart() Cursor {
	start := c.Start()
	return Cursor{Anchor: start, Position: start, Affinity: -1}
}

// CollapseToEnd collapses the selection to its upper bound.
func (c Cursor) CollapseToEnd() Cursor {
	end := c.End()
	return Cursor{Anchor: end, Position: end, Affinity: -1}
}

// Flip swaps anchor and position.
func (c Cursor) Flip() Cursor {
	return Cursor{Anchor: c.Position, Position: c.Anchor, Affinity: c.Affinity}
}

// Normalize returns a forward cursor (anchor <= position).
func (c Cursor) Normalize() Cursor {
	if c.Anchor <= c.Position {
		return c
	}
	return Cursor{Anchor: c.Position, Position: c.Anchor, Affinity: c.Affinity}
}

// Contains reports whether offset lies within the open selection range.
// Always false for an empty (cursor-only) selection.
func (c Cursor) Contains(offset ByteOffset) bool {
	if c.IsEmpty() {
		return false
	}
	return offset >= c.Start() && offset < c.End()
}

// Clamp clamps both ends of the cursor into [0, maxOffset].
func (c Cursor) Clamp(maxOffset ByteOffset) Cursor {
	clampOne := func(v ByteOffset) ByteOffset {
		if v > maxOffset {
			return maxOffset
		}
		return v
	}
	return Cursor{Anchor: clampOne(c.Anchor), Position: clampOne(c.Position), Affinity: c.Affinity}
}

// String renders the cursor for logs and test failures.
func (c Cursor) String() string {
	if c.IsEmpty() {
		return fmt.Sprintf("Cursor(%d)", c.Position)
	}
	dir := "->"
	if c.IsBackward() {
		dir = "<-"
	}
	return fmt.Sprintf("Cursor(%d%s%d)", c.Anchor, dir, c.Position)
}

// Equals reports whether two cursors have the same anchor, position, and
// affinity.
func (c Cursor) Equals(other Cursor) bool {
	return c.Anchor == other.Anchor && c.Position == other.Position && c.Affinity == other.Affinity
}

// SameRange reports whether two cursors cover the same byte range,
// regardless of direction or affinity.
func (c Cursor) SameRange(other Cursor) bool {
	return c.Start() == other.Start() && c.End() == other.End()
}
