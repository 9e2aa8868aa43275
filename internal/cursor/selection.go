package cursor

import "github.com/dshills/vellum/internal/rope"

// LinePos is a (line, column) position in display space: Column is a
// visual-width column (tabs/wide glyphs expanded), not a byte offset.
type LinePos struct {
	Line   uint32
	Column int
}

// Selection is the rendering-facing projection of a Cursor into (line,
// column) space: an ordered pair Start <= End, independent of which end is
// the anchor and which is the live position.
type Selection struct {
	Start LinePos
	End   LinePos
}

// PointWidth converts a rope.Point plus a precomputed display column into a
// LinePos. Computing the column itself is package grapheme's job (it needs
// the line's text and the buffer's tab width); this helper just assembles
// the result so buffer doesn't have to import both packages' internals.
func PointWidth(p rope.Point, column int) LinePos {
	return LinePos{Line: p.Line, Column: column}
}

// FromPoints builds a Selection from two LinePos values, ordering them so
// Start <= End in (line, column) order.
func FromPoints(a, b LinePos) Selection {
	if linePosLess(b, a) {
		return Selection{Start: b, End: a}
	}
	return Selection{Start: a, End: b}
}

func linePosLess(a, b LinePos) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

// IsEmpty reports whether the selection spans no text.
func (s Selection) IsEmpty() bool {
	return s.Start == s.End
}
