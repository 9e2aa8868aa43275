package buffer

import (
	"github.com/dshills/vellum/internal/grapheme"
	"github.com/dshills/vellum/internal/rope"
)

// VisibleLine is one line of a BufferView snapshot: the slice of its text
// actually within the viewport's horizontal window, plus the visual-column
// facts spec §6 lists a renderer needs to line it up against neighboring
// rows (first non-whitespace column, end-of-text column) and to handle a
// wide grapheme straddling the left scroll edge.
type VisibleLine struct {
	Line uint32
	Text string

	// FirstColOffset is how many display columns of the first rendered
	// grapheme are hidden off the left edge, nonzero only when a wide
	// grapheme (e.g. a double-width CJK character) straddles ScrollColLeft.
	FirstColOffset int

	FirstNonWhitespaceCol int
	EndOfTextCol          int
}

// SelectionView is the buffer's selection expressed in viewport (line,
// column) coordinates rather than byte offsets, per spec §6.
type SelectionView struct {
	Empty      bool
	AnchorLine uint32
	PosLine    uint32
	AnchorCol  int
	PosCol     int
}

// BufferView is the read-only snapshot a renderer consumes, per spec §6:
// it never touches the Buffer's internals directly.
type BufferView struct {
	Lines         []VisibleLine
	Selection     SelectionView
	ScrollLineTop uint32
	ScrollColLeft int
}

// View renders the buffer's current viewport into a BufferView snapshot.
func (b *Buffer) View() BufferView {
	b.mu.Lock()
	defer b.mu.Unlock()

	lc := b.rope.LineCount()
	top := b.scrollLineTop
	height := b.viewportLines
	if height < 0 {
		height = 0
	}

	var lines []VisibleLine
	for i := 0; i < height; i++ {
		line := top + uint32(i)
		if line >= lc {
			break
		}
		lines = append(lines, b.visibleLine(line))
	}

	return BufferView{
		Lines:         lines,
		Selection:     b.selectionView(),
		ScrollLineTop: top,
		ScrollColLeft: b.scrollColLeft,
	}
}

func (b *Buffer) visibleLine(line uint32) VisibleLine {
	start := b.rope.LineStartOffset(line)
	end := b.rope.LineEndOffset(line)
	full := b.rope.Slice(start, end)

	firstNonWSOffset := b.firstNonWhitespaceOffset(line)
	firstNonWSCol := b.displayColumn(firstNonWSOffset)
	endOfTextCol := grapheme.Width(full, 0, b.tabWidth)

	text, firstColOffset := b.clipToWidth(full, b.scrollColLeft, b.viewportCols)

	return VisibleLine{
		Line:                  line,
		Text:                  text,
		FirstColOffset:        firstColOffset,
		FirstNonWhitespaceCol: firstNonWSCol,
		EndOfTextCol:          endOfTextCol,
	}
}

// clipToWidth returns the portion of full visible within [colLeft,
// colLeft+width) display columns, plus how many columns of the first
// included grapheme are hidden off the left edge (nonzero only when that
// grapheme started before colLeft but extends past it).
func (b *Buffer) clipToWidth(full string, colLeft, width int) (string, int) {
	pos := 0
	col := 0
	for pos < len(full) {
		next := grapheme.NextBoundary(full, pos)
		cluster := full[pos:next]
		w := grapheme.Width(cluster, col, b.tabWidth)
		if col+w > colLeft {
			break
		}
		col += w
		pos = next
	}
	if pos >= len(full) {
		return "", 0
	}

	firstColOffset := 0
	if col < colLeft {
		firstColOffset = colLeft - col
	}
	startBytePos := pos

	if width <= 0 {
		return "", firstColOffset
	}

	visCol := 0
	startCol := col
	endBytePos := startBytePos
	for pos < len(full) {
		next := grapheme.NextBoundary(full, pos)
		cluster := full[pos:next]
		w := grapheme.Width(cluster, startCol, b.tabWidth)
		visibleW := w
		if pos == startBytePos {
			visibleW -= firstColOffset
		}
		if visCol+visibleW > width && endBytePos > startBytePos {
			break
		}
		visCol += visibleW
		startCol += w
		pos = next
		endBytePos = pos
		if visCol >= width {
			break
		}
	}

	return full[startBytePos:endBytePos], firstColOffset
}

// selectionView converts the cursor's byte-offset selection into the
// viewport's (line, column) coordinate space.
func (b *Buffer) selectionView() SelectionView {
	anchorPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Anchor))
	posPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))
	return SelectionView{
		Empty:      b.cur.IsEmpty(),
		AnchorLine: anchorPt.Line,
		AnchorCol:  b.displayColumn(b.cur.Anchor),
		PosLine:    posPt.Line,
		PosCol:     b.displayColumn(b.cur.Position),
	}
}
