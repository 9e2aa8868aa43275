package buffer

import (
	"github.com/dshills/vellum/internal/cursor"
	"github.com/dshills/vellum/internal/grapheme"
	"github.com/dshills/vellum/internal/rope"
)

const graphemeSearchWindow = 64

// nextGraphemeBoundary finds the next cluster boundary strictly after
// offset, growing its search window until the boundary is found or the
// rope end is reached.
func (b *Buffer) nextGraphemeBoundary(offset ByteOffset) ByteOffset {
	total := rope.ByteOffset(b.rope.Len())
	if offset >= total {
		return total
	}
	window := ByteOffset(graphemeSearchWindow)
	for {
		end := offset + window
		if end > total {
			end = total
		}
		s := b.rope.Slice(rope.ByteOffset(offset), rope.ByteOffset(end))
		nb := grapheme.NextBoundary(s, 0)
		if ByteOffset(nb) < end-offset || end == total {
			return offset + ByteOffset(nb)
		}
		window *= 2
	}
}

// prevGraphemeBoundary finds the previous cluster boundary strictly
// before offset, symmetric to nextGraphemeBoundary.
func (b *Buffer) prevGraphemeBoundary(offset ByteOffset) ByteOffset {
	if offset <= 0 {
		return 0
	}
	window := ByteOffset(graphemeSearchWindow)
	for {
		start := offset - window
		if start < 0 {
			start = 0
		}
		s := b.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(offset))
		pb := grapheme.PrevBoundary(s, len(s))
		if pb > 0 || start == 0 {
			return start + ByteOffset(pb)
		}
		window *= 2
	}
}

func (b *Buffer) classAt(offset ByteOffset) grapheme.Class {
	total := rope.ByteOffset(b.rope.Len())
	if offset >= total {
		return grapheme.ClassOther
	}
	end := b.nextGraphemeBoundary(offset)
	return grapheme.ClassOf(b.rope.Slice(rope.ByteOffset(offset), rope.ByteOffset(end)))
}

func (b *Buffer) classBefore(offset ByteOffset) grapheme.Class {
	if offset <= 0 {
		return grapheme.ClassOther
	}
	start := b.prevGraphemeBoundary(offset)
	return grapheme.ClassOf(b.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(offset)))
}

func (b *Buffer) lineBounds(offset ByteOffset) (start, end ByteOffset) {
	pt := b.rope.OffsetToPoint(rope.ByteOffset(offset))
	return b.rope.LineStartOffset(pt.Line), b.rope.LineEndOffset(pt.Line)
}

// wordForward implements §4.2's word-left/right contract: classify the
// grapheme at the cursor, skip the run of its class, then, only in the
// greedy variant used for motion (as opposed to word-delete), also skip
// any whitespace run and the following class run. Stops at line endings.
func (b *Buffer) wordForward(offset ByteOffset, greedy bool) ByteOffset {
	_, lineEnd := b.lineBounds(offset)
	pos := offset
	if pos >= lineEnd {
		return lineEnd
	}
	c0 := b.classAt(pos)
	for pos < lineEnd && b.classAt(pos) == c0 {
		pos = b.nextGraphemeBoundary(pos)
	}
	if !greedy || pos >= lineEnd {
		return pos
	}
	for pos < lineEnd && b.classAt(pos) == grapheme.ClassWhitespace {
		pos = b.nextGraphemeBoundary(pos)
	}
	if pos >= lineEnd {
		return pos
	}
	c1 := b.classAt(pos)
	for pos < lineEnd && b.classAt(pos) == c1 {
		pos = b.nextGraphemeBoundary(pos)
	}
	return pos
}

// wordBackward is the mirror of wordForward, walking toward line start.
func (b *Buffer) wordBackward(offset ByteOffset, greedy bool) ByteOffset {
	lineStart, _ := b.lineBounds(offset)
	pos := offset
	if pos <= lineStart {
		return lineStart
	}
	c0 := b.classBefore(pos)
	for pos > lineStart && b.classBefore(pos) == c0 {
		pos = b.prevGraphemeBoundary(pos)
	}
	if !greedy || pos <= lineStart {
		return pos
	}
	for pos > lineStart && b.classBefore(pos) == grapheme.ClassWhitespace {
		pos = b.prevGraphemeBoundary(pos)
	}
	if pos <= lineStart {
		return pos
	}
	c1 := b.classBefore(pos)
	for pos > lineStart && b.classBefore(pos) == c1 {
		pos = b.prevGraphemeBoundary(pos)
	}
	return pos
}

func (b *Buffer) moveTo(pos ByteOffset, extend bool) {
	if extend {
		b.cur = b.cur.Extend(pos)
	} else {
		b.cur = b.cur.MoveTo(pos)
	}
}

// MoveLeft moves the cursor one grapheme to the left, or collapses an
// existing selection to its near (start) edge when not extending.
func (b *Buffer) MoveLeft(extend bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !extend && !b.cur.IsEmpty() {
		b.cur = b.cur.CollapseToStart()
	} else {
		b.moveTo(b.prevGraphemeBoundary(b.cur.Position), extend)
	}
	b.finishMotion(true)
}

// MoveRight moves the cursor one grapheme to the right, or collapses an
// existing selection to its far (end) edge when not extending.
func (b *Buffer) MoveRight(extend bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !extend && !b.cur.IsEmpty() {
		b.cur = b.cur.CollapseToEnd()
	} else {
		b.moveTo(b.nextGraphemeBoundary(b.cur.Position), extend)
	}
	b.finishMotion(true)
}

// MoveLeftWord moves the cursor to the previous greedy word boundary.
func (b *Buffer) MoveLeftWord(extend bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moveTo(b.wordBackward(b.cur.Position, true), extend)
	b.finishMotion(true)
}

// MoveRightWord moves the cursor to the next greedy word boundary.
func (b *Buffer) MoveRightWord(extend bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moveTo(b.wordForward(b.cur.Position, true), extend)
	b.finishMotion(true)
}

// MoveUp moves the cursor up distance lines, preserving affinity.
func (b *Buffer) MoveUp(extend bool, distance uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moveVertical(-int64(distance), extend)
	b.finishMotion(true)
}

// MoveDown moves the cursor down distance lines, preserving affinity.
func (b *Buffer) MoveDown(extend bool, distance uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moveVertical(int64(distance), extend)
	b.finishMotion(true)
}

func (b *Buffer) moveVertical(delta int64, extend bool) {
	pt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))
	curCol := b.displayColumn(b.cur.Position)
	desiredCol := curCol
	if b.cur.Affinity >= 0 && b.cur.Affinity > desiredCol {
		desiredCol = b.cur.Affinity
	}

	lastLine := int64(b.rope.LineCount()) - 1
	if lastLine < 0 {
		lastLine = 0
	}
	target := int64(pt.Line) + delta
	if target < 0 {
		target = 0
	}
	if target > lastLine {
		target = lastLine
	}

	pos := b.offsetAtDisplayColumn(uint32(target), desiredCol)
	if extend {
		b.cur = b.cur.ExtendWithAffinity(pos, desiredCol)
	} else {
		b.cur = b.cur.MoveToWithAffinity(pos, desiredCol)
	}
}

// offsetAtDisplayColumn walks the graphemes of line, accumulating display
// width, and returns the byte offset of the grapheme reaching col (or the
// line's end if the line is shorter).
func (b *Buffer) offsetAtDisplayColumn(line uint32, col int) ByteOffset {
	start := b.rope.LineStartOffset(line)
	end := b.rope.LineEndOffset(line)
	text := b.rope.Slice(start, end)

	pos := 0
	curCol := 0
	for pos < len(text) {
		next := grapheme.NextBoundary(text, pos)
		cluster := text[pos:next]
		w := grapheme.Width(cluster, curCol, b.tabWidth)
		if curCol+w > col {
			break
		}
		curCol += w
		pos = next
	}
	return start + rope.ByteOffset(pos)
}

// Home jumps to the first non-whitespace column, or to column 0 if the
// cursor is already there or before it.
func (b *Buffer) Home(extend bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))
	firstNonWS := b.firstNonWhitespaceOffset(pt.Line)
	lineStart := b.rope.LineStartOffset(pt.Line)

	var target ByteOffset
	if b.cur.Position > firstNonWS {
		target = firstNonWS
	} else {
		target = lineStart
	}
	col := b.displayColumn(target)
	if extend {
		b.cur = b.cur.ExtendWithAffinity(target, col)
	} else {
		b.cur = b.cur.MoveToWithAffinity(target, col)
	}
	b.finishMotion(true)
}

// End moves to the end of the current line.
func (b *Buffer) End(extend bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))
	target := b.rope.LineEndOffset(pt.Line)
	b.moveTo(target, extend)
	b.finishMotion(true)
}

// Start moves to byte 0 of the rope.
func (b *Buffer) Start(extend bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moveTo(0, extend)
	b.finishMotion(true)
}

// Eof moves to the end of the rope (offset Len(), just past the last byte).
func (b *Buffer) Eof(extend bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moveTo(ByteOffset(b.rope.Len()), extend)
	b.finishMotion(true)
}

// Goto moves to the first column of the given 1-indexed line, clamped to
// the rope's line range.
func (b *Buffer) Goto(line1based uint32, extend bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	lc := b.rope.LineCount()
	var line uint32
	if line1based > 0 {
		line = line1based - 1
	}
	if lc > 0 && line >= lc {
		line = lc - 1
	}
	b.moveTo(b.rope.LineStartOffset(line), extend)
	b.finishMotion(true)
}

// SelectWord expands the cursor to the word graphemes surrounding it, or
// does nothing if a selection already exists.
func (b *Buffer) SelectWord() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.cur.IsEmpty() {
		b.finishMotion(true)
		return
	}
	start := b.wordBackward(b.cur.Position, false)
	end := b.wordForward(b.cur.Position, false)
	if end == b.cur.Position {
		end = b.wordForward(start, false)
	}
	b.cur = cursorRange(start, end)
	b.finishMotion(true)
}

// SelectLine selects from the start of the anchor's line to the start of
// the line following the cursor's line.
func (b *Buffer) SelectLine() {
	b.mu.Lock()
	defer b.mu.Unlock()
	anchorLine := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Anchor)).Line
	curLine := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position)).Line
	anchorStart := b.rope.LineStartOffset(anchorLine)

	lc := b.rope.LineCount()
	var posStart ByteOffset
	if curLine+1 < lc {
		posStart = b.rope.LineStartOffset(curLine + 1)
	} else {
		posStart = ByteOffset(b.rope.Len())
	}
	b.cur = cursor.Cursor{Anchor: anchorStart, Position: posStart, Affinity: -1}
	b.finishMotion(true)
}

// SelectAll selects the entire rope.
func (b *Buffer) SelectAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cur = cursorRange(0, ByteOffset(b.rope.Len()))
	b.finishMotion(true)
}

func cursorRange(start, end ByteOffset) cursor.Cursor {
	return cursor.Cursor{Anchor: start, Position: end, Affinity: -1}
}
