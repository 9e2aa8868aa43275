package buffer

import (
	"sort"
	"strings"

	"github.com/dshills/vellum/internal/cursor"
	"github.com/dshills/vellum/internal/grapheme"
	"github.com/dshills/vellum/internal/history"
	"github.com/dshills/vellum/internal/natsort"
	"github.com/dshills/vellum/internal/rope"
)

// bracketPairs lists the openers InsertText treats specially when wrapping
// a selection (§4.3's wrap-bracket policy).
var bracketPairs = map[rune]rune{
	'{': '}', '[': ']', '(': ')', '\'': '\'', '"': '"', '`': '`', '<': '>',
}

// singleOpener reports whether text is exactly one of bracketPairs' opening
// characters, returning its matching closer.
func singleOpener(text string) (opener, closer rune, ok bool) {
	if grapheme.Count(text) != 1 {
		return 0, 0, false
	}
	runes := []rune(text)
	if len(runes) != 1 {
		return 0, 0, false
	}
	c, found := bracketPairs[runes[0]]
	if !found {
		return 0, 0, false
	}
	return runes[0], c, true
}

func countLines(s string) int { return strings.Count(s, "\n") + 1 }

// rawInsert mutates the rope and records the inverse into the open
// transaction. Every editing operation goes through raw{Insert,Remove,
// Replace} so History never has to be told about an edit separately from
// applying it.
func (b *Buffer) rawInsert(pos ByteOffset, text string) {
	b.rope = b.rope.Insert(rope.ByteOffset(pos), text)
	b.hist.RecordInsert(rope.ByteOffset(pos), text)
}

func (b *Buffer) rawRemove(start, end ByteOffset) string {
	removed := b.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end))
	b.rope = b.rope.Delete(rope.ByteOffset(start), rope.ByteOffset(end))
	b.hist.RecordRemove(rope.ByteOffset(start), removed)
	return removed
}

func (b *Buffer) rawReplace(start, end ByteOffset, text string) string {
	removed := b.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end))
	b.rope = b.rope.Replace(rope.ByteOffset(start), rope.ByteOffset(end), text)
	b.hist.RecordReplace(rope.ByteOffset(start), removed, text)
	return removed
}

// afterEdit closes the open transaction when closeTxn is set, then
// recenters the viewport and wakes the cursor-moved notification, mirroring
// finishMotion's contract for edits that don't go through a motion method.
func (b *Buffer) afterEdit(closeTxn bool) {
	if closeTxn {
		b.hist.Finish(b.cur)
	}
	b.centerOnCursor()
	b.notifier.NotifyCursorMoved(b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position)))
}

// touchedLineRange returns the inclusive line range a selection (or, absent
// one, the cursor's own line) covers, excluding the last line when the
// selection end sits exactly at that line's start (§4.3/§4.4's shared
// rule, also used by SortLines and MoveLine).
func (b *Buffer) touchedLineRange() (uint32, uint32) {
	if b.cur.IsEmpty() {
		line := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position)).Line
		return line, line
	}
	startLine := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Start())).Line
	endPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.End()))
	endLine := endPt.Line
	if endPt.Column == 0 && endLine > startLine {
		endLine--
	}
	return startLine, endLine
}

// pointToValidOffset converts a (line, column) pair to a byte offset and
// snaps it to the nearest grapheme boundary at or before that offset, so a
// cursor restored after an edit never lands mid-cluster.
func (b *Buffer) pointToValidOffset(p rope.Point) ByteOffset {
	off := ByteOffset(b.rope.PointToOffset(p))
	return b.snapToBoundary(off)
}

func (b *Buffer) snapToBoundary(off ByteOffset) ByteOffset {
	total := ByteOffset(b.rope.Len())
	if off <= 0 {
		return 0
	}
	if off >= total {
		return total
	}
	return b.prevGraphemeBoundary(off + 1)
}

// selectionOrLineRange returns the current selection's range, or, when
// there is none, the current line including its trailing line terminator
// (§4.3's "whole current line" fallback for Copy/Cut/Trash).
func (b *Buffer) selectionOrLineRange() (ByteOffset, ByteOffset) {
	if !b.cur.IsEmpty() {
		return b.cur.Start(), b.cur.End()
	}
	line := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position)).Line
	start := ByteOffset(b.rope.LineStartOffset(line))
	lc := b.rope.LineCount()
	var end ByteOffset
	if line+1 < lc {
		end = ByteOffset(b.rope.LineStartOffset(line + 1))
	} else {
		end = ByteOffset(b.rope.Len())
	}
	return start, end
}

// InsertText implements §4.3's InsertText: wraps a selection in matching
// brackets when text is a single opener, replaces a non-empty selection
// outright, auto-indents a multi-line paste, or else inserts plainly.
func (b *Buffer) InsertText(text string, autoIndent bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.insertTextLocked(text, autoIndent)
}

func (b *Buffer) insertTextLocked(text string, autoIndent bool) {
	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)

	closeTxn := false
	switch {
	case !b.cur.IsEmpty():
		if opener, closer, ok := singleOpener(text); ok {
			b.wrapSelection(opener, closer)
		} else {
			start, end := b.cur.Start(), b.cur.End()
			b.rawReplace(start, end, text)
			b.cur = cursor.NewCursor(start + ByteOffset(len(text)))
		}
	case autoIndent && countLines(text) >= 2:
		ins := b.insertWithAutoIndent(text)
		pos := b.cur.Position
		b.rawInsert(pos, ins)
		b.cur = cursor.NewCursor(pos + ByteOffset(len(ins)))
		closeTxn = true
	default:
		pos := b.cur.Position
		b.rawInsert(pos, text)
		b.cur = cursor.NewCursor(pos + ByteOffset(len(text)))
	}

	b.notifyChanged()
	b.afterEdit(closeTxn)
}

// wrapSelection inserts closer at the selection's far edge and opener at
// its near edge, in that order so the first insert doesn't invalidate the
// second's offset, then collapses the cursor past the wrapped range.
func (b *Buffer) wrapSelection(opener, closer rune) {
	start, end := b.cur.Start(), b.cur.End()
	closerText, openerText := string(closer), string(opener)
	b.rawInsert(end, closerText)
	b.rawInsert(start, openerText)
	b.cur = cursor.NewCursor(end + ByteOffset(len(openerText)) + ByteOffset(len(closerText)))
}

// insertWithAutoIndent reindents a multi-line paste relative to the
// cursor's current line, per §4.3 step 3: each line's extra indentation
// (beyond the pasted block's own minimum) is preserved on top of the
// line the cursor sits on; the first line never gets a prefix since it
// continues that existing line rather than starting a new one.
func (b *Buffer) insertWithAutoIndent(text string) string {
	lines := strings.Split(text, "\n")
	baseIndent := b.currentLineIndent(b.cur.Position)
	baseWidth := grapheme.Width(baseIndent, 0, b.tabWidth)

	minIndent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indentText := line[:len(line)-len(trimmed)]
		w := grapheme.Width(indentText, 0, b.tabWidth)
		if minIndent == -1 || w < minIndent {
			minIndent = w
		}
	}
	if minIndent == -1 {
		minIndent = 0
	}

	var sb strings.Builder
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		indentText := line[:len(line)-len(trimmed)]
		lineWidth := grapheme.Width(indentText, 0, b.tabWidth)
		extra := lineWidth - minIndent
		if i > 0 {
			sb.WriteString("\n")
			sb.WriteString(b.indentation.FromWidth(baseWidth + extra))
		}
		sb.WriteString(trimmed)
	}
	return sb.String()
}

// Backspace implements §4.3: a back-tab when the cursor sits at or before
// the line's first non-whitespace column (and isn't already at column 0),
// otherwise a plain one-grapheme-left (or selection) delete.
func (b *Buffer) Backspace() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cur.IsEmpty() {
		pos := b.cur.Position
		line := b.rope.OffsetToPoint(rope.ByteOffset(pos)).Line
		lineStart := ByteOffset(b.rope.LineStartOffset(line))
		firstNonWS := b.firstNonWhitespaceOffset(line)
		if pos > lineStart && pos <= firstNonWS {
			b.indentLines(false)
			return
		}
	}

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	if !b.cur.IsEmpty() {
		start := b.cur.Start()
		b.rawRemove(start, b.cur.End())
		b.cur = cursor.NewCursor(start)
	} else {
		prev := b.prevGraphemeBoundary(b.cur.Position)
		b.rawRemove(prev, b.cur.Position)
		b.cur = cursor.NewCursor(prev)
	}
	b.notifyChanged()
	b.afterEdit(false)
}

// BackspaceWord deletes from the cursor to the previous non-greedy word
// boundary, or the selection if one exists.
func (b *Buffer) BackspaceWord() {
	b.mu.Lock()
	defer b.mu.Unlock()

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	if !b.cur.IsEmpty() {
		start := b.cur.Start()
		b.rawRemove(start, b.cur.End())
		b.cur = cursor.NewCursor(start)
	} else {
		target := b.wordBackward(b.cur.Position, false)
		b.rawRemove(target, b.cur.Position)
		b.cur = cursor.NewCursor(target)
	}
	b.notifyChanged()
	b.afterEdit(false)
}

// DeleteWord deletes from the cursor to the next non-greedy word boundary,
// or the selection if one exists.
func (b *Buffer) DeleteWord() {
	b.mu.Lock()
	defer b.mu.Unlock()

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	if !b.cur.IsEmpty() {
		start := b.cur.Start()
		b.rawRemove(start, b.cur.End())
		b.cur = cursor.NewCursor(start)
	} else {
		target := b.wordForward(b.cur.Position, false)
		b.rawRemove(b.cur.Position, target)
		b.cur = cursor.NewCursor(b.cur.Position)
	}
	b.notifyChanged()
	b.afterEdit(false)
}

// Delete deletes one grapheme to the right, or the selection if one exists.
func (b *Buffer) Delete() {
	b.mu.Lock()
	defer b.mu.Unlock()

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	if !b.cur.IsEmpty() {
		start := b.cur.Start()
		b.rawRemove(start, b.cur.End())
		b.cur = cursor.NewCursor(start)
	} else {
		next := b.nextGraphemeBoundary(b.cur.Position)
		b.rawRemove(b.cur.Position, next)
		b.cur = cursor.NewCursor(b.cur.Position)
	}
	b.notifyChanged()
	b.afterEdit(false)
}

// NewLine replaces any selection with a single line break and advances the
// cursor past it.
func (b *Buffer) NewLine() {
	b.mu.Lock()
	defer b.mu.Unlock()

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	start, end := b.cur.Start(), b.cur.End()
	b.rawReplace(start, end, "\n")
	b.cur = cursor.NewCursor(start + 1)
	b.notifyChanged()
	b.afterEdit(true)
}

// Tab inserts spaces/tabs to the next indent stop when there's no
// selection, or widens the indent of every touched line (§4.4) when there
// is one.
func (b *Buffer) Tab() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.cur.IsEmpty() {
		b.indentLines(true)
		return
	}

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	col := b.displayColumn(b.cur.Position)
	unit := b.indentation.ColumnWidth()
	next := ((col / unit) + 1) * unit
	text := b.indentation.FromWidth(next - col)
	pos := b.cur.Position
	b.rawInsert(pos, text)
	b.cur = cursor.NewCursor(pos + ByteOffset(len(text)))
	b.notifyChanged()
	b.afterEdit(true)
}

// BackTab narrows the indent of every touched line by one level (§4.4),
// touching just the cursor's own line when there's no selection.
func (b *Buffer) BackTab() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.indentLines(false)
}

// indentLines implements §4.4's shared Tab-with-selection/back-tab body:
// for every touched line, the indent count moves by one level (clamped at
// zero going backward), and the cursor/anchor columns shift by the
// resulting per-line byte delta.
func (b *Buffer) indentLines(forward bool) {
	startLine, endLine := b.touchedLineRange()

	anchorPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Anchor))
	posPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)

	unit := b.indentation.ColumnWidth()
	deltas := make(map[uint32]int)

	for line := int64(endLine); line >= int64(startLine); line-- {
		l := uint32(line)
		lineStart := ByteOffset(b.rope.LineStartOffset(l))
		lineEnd := ByteOffset(b.rope.LineEndOffset(l))
		text := b.rope.Slice(rope.ByteOffset(lineStart), rope.ByteOffset(lineEnd))
		trimmed := strings.TrimLeft(text, " \t")
		oldIndent := text[:len(text)-len(trimmed)]
		curWidth := grapheme.Width(oldIndent, 0, b.tabWidth)

		count := curWidth / unit
		if forward {
			count++
		} else {
			count--
			if count < 0 {
				count = 0
			}
		}
		newIndent := b.indentation.FromWidth(count * unit)
		if newIndent == oldIndent {
			continue
		}
		b.rawReplace(lineStart, lineStart+ByteOffset(len(oldIndent)), newIndent)
		deltas[l] = len(newIndent) - len(oldIndent)
	}

	remap := func(p rope.Point) ByteOffset {
		col := int(p.Column) + deltas[p.Line]
		if col < 0 {
			col = 0
		}
		return ByteOffset(b.rope.PointToOffset(rope.Point{Line: p.Line, Column: uint32(col)}))
	}
	b.cur = cursor.Cursor{Anchor: remap(anchorPt), Position: remap(posPt), Affinity: -1}

	b.notifyChanged()
	b.afterEdit(true)
}

// MoveLine moves the touched-line block up or down by one line, swapping
// it with the adjacent line, per §4.3. A no-op at either edge of the rope.
func (b *Buffer) MoveLine(up bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lc := b.rope.LineCount()
	if lc == 0 {
		return
	}
	startLine, endLine := b.touchedLineRange()
	if up && startLine == 0 {
		return
	}
	if !up && endLine >= lc-1 {
		return
	}

	anchorPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Anchor))
	posPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)

	var firstLine, lastLine uint32
	if up {
		firstLine, lastLine = startLine-1, endLine
	} else {
		firstLine, lastLine = startLine, endLine+1
	}

	regionStart := ByteOffset(b.rope.LineStartOffset(firstLine))
	hadTrailingNL := lastLine+1 < lc
	var regionEnd ByteOffset
	if hadTrailingNL {
		regionEnd = ByteOffset(b.rope.LineStartOffset(lastLine + 1))
	} else {
		regionEnd = ByteOffset(b.rope.Len())
	}

	lines := make([]string, 0, lastLine-firstLine+1)
	for l := firstLine; l <= lastLine; l++ {
		lines = append(lines, b.rope.LineText(l))
	}

	var reordered []string
	if up {
		other, block := lines[0], lines[1:]
		reordered = append(append([]string{}, block...), other)
	} else {
		other, block := lines[len(lines)-1], lines[:len(lines)-1]
		reordered = append([]string{other}, block...)
	}

	newText := strings.Join(reordered, "\n")
	if hadTrailingNL {
		newText += "\n"
	}
	b.rawReplace(regionStart, regionEnd, newText)

	shift := int64(-1)
	if !up {
		shift = 1
	}
	remap := func(p rope.Point) ByteOffset {
		line := p.Line
		if line >= startLine && line <= endLine {
			line = uint32(int64(line) + shift)
		}
		return ByteOffset(b.rope.PointToOffset(rope.Point{Line: line, Column: p.Column}))
	}
	b.cur = cursor.Cursor{Anchor: remap(anchorPt), Position: remap(posPt), Affinity: -1}

	b.notifyChanged()
	b.afterEdit(true)
}

// MoveLineUp moves the touched lines up by one.
func (b *Buffer) MoveLineUp() { b.MoveLine(true) }

// MoveLineDown moves the touched lines down by one.
func (b *Buffer) MoveLineDown() { b.MoveLine(false) }

// SortLines sorts the touched lines by natural lexical order of their
// start-trimmed content, per §4.3.
func (b *Buffer) SortLines(ascending bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	startLine, endLine := b.touchedLineRange()
	if endLine <= startLine {
		return
	}

	anchorPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Anchor))
	posPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)

	lc := b.rope.LineCount()
	regionStart := ByteOffset(b.rope.LineStartOffset(startLine))
	hadTrailingNL := endLine+1 < lc
	var regionEnd ByteOffset
	if hadTrailingNL {
		regionEnd = ByteOffset(b.rope.LineStartOffset(endLine + 1))
	} else {
		regionEnd = ByteOffset(b.rope.Len())
	}

	lines := make([]string, 0, endLine-startLine+1)
	for l := startLine; l <= endLine; l++ {
		lines = append(lines, b.rope.LineText(l))
	}

	sort.SliceStable(lines, func(i, j int) bool {
		a := strings.TrimLeft(lines[i], " \t")
		c := strings.TrimLeft(lines[j], " \t")
		if ascending {
			return natsort.Less(a, c)
		}
		return natsort.Less(c, a)
	})

	newText := strings.Join(lines, "\n")
	if hadTrailingNL {
		newText += "\n"
	}
	b.rawReplace(regionStart, regionEnd, newText)

	b.cur = cursor.Cursor{
		Anchor:   b.pointToValidOffset(anchorPt),
		Position: b.pointToValidOffset(posPt),
		Affinity: -1,
	}

	b.notifyChanged()
	b.afterEdit(true)
}

// Replace performs a search-replace edit at an arbitrary byte range,
// restoring the cursor/anchor to the same (line, column) pair they had
// before, validated against grapheme boundaries.
func (b *Buffer) Replace(start, end ByteOffset, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	anchorPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Anchor))
	posPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	b.rawReplace(start, end, text)

	b.cur = cursor.Cursor{
		Anchor:   b.pointToValidOffset(anchorPt),
		Position: b.pointToValidOffset(posPt),
		Affinity: -1,
	}

	b.notifyChanged()
	b.afterEdit(true)
}

// ReplaceAll rewrites every match the attached Searcher currently reports,
// in source order, adjusting later match offsets and the cursor/anchor by
// the accumulated byte delta as it goes. Returns the number of replacements
// made.
func (b *Buffer) ReplaceAll(replacement string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.searcher == nil {
		return 0
	}
	matches := b.searcher.Matches()
	if len(matches) == 0 {
		return 0
	}

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)

	origAnchor := int64(b.cur.Anchor)
	origPos := int64(b.cur.Position)

	delta := int64(0)
	for _, m := range matches {
		start := ByteOffset(int64(m.StartByte) + delta)
		end := ByteOffset(int64(m.EndByte) + delta)
		b.rawReplace(start, end, replacement)
		delta += int64(len(replacement)) - (int64(m.EndByte) - int64(m.StartByte))
	}

	remap := func(orig int64) ByteOffset {
		var acc int64
		for _, m := range matches {
			ms, me := int64(m.StartByte), int64(m.EndByte)
			if orig < ms {
				break
			}
			ld := int64(len(replacement)) - (me - ms)
			if orig >= me {
				acc += ld
				continue
			}
			return ByteOffset(ms + acc + int64(len(replacement)))
		}
		return ByteOffset(orig + acc)
	}

	b.cur = cursor.Cursor{Anchor: remap(origAnchor), Position: remap(origPos), Affinity: -1}

	b.notifyChanged()
	b.afterEdit(true)
	return len(matches)
}

// ReplaceCurrentMatch rewrites the Searcher's match at or after the
// cursor with replacement, then advances the selection to the following
// match (wrapping), mirroring a typical find/replace-next workflow.
// Returns false if no Searcher is attached or it currently has no
// matches.
func (b *Buffer) ReplaceCurrentMatch(replacement string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.searcher == nil {
		return false
	}
	matches := b.searcher.Matches()
	if len(matches) == 0 {
		return false
	}

	idx := 0
	for i, m := range matches {
		if m.StartByte >= b.cur.Position {
			idx = i
			break
		}
	}
	m := matches[idx]

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	b.rawReplace(ByteOffset(m.StartByte), ByteOffset(m.EndByte), replacement)

	delta := int64(len(replacement)) - (int64(m.EndByte) - int64(m.StartByte))
	newPos := ByteOffset(int64(m.StartByte) + int64(len(replacement)))

	if len(matches) > 1 {
		nextIdx := idx + 1
		if nextIdx >= len(matches) {
			nextIdx = 0
		}
		nm := matches[nextIdx]
		start, end := nm.StartByte, nm.EndByte
		if nextIdx > idx {
			start = ByteOffset(int64(start) + delta)
			end = ByteOffset(int64(end) + delta)
		}
		b.cur = cursorRange(start, end)
	} else {
		b.cur = cursor.NewCursor(newPos)
	}

	b.notifyChanged()
	b.afterEdit(true)
	return true
}

// SelectNextMatch moves the selection to the Searcher's match whose
// start is strictly after the cursor, wrapping to the first match, per
// spec §4.5: "Buffer then selects that range". Returns false if no
// Searcher is attached or it currently has no matches.
func (b *Buffer) SelectNextMatch() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.searcher == nil {
		return false
	}
	m, ok := b.searcher.NextMatch(b.cur.Position)
	if !ok {
		return false
	}
	b.cur = cursorRange(ByteOffset(m.StartByte), ByteOffset(m.EndByte))
	b.finishMotion(true)
	return true
}

// SelectPrevMatch is SelectNextMatch's mirror, selecting the match whose
// start is strictly before the cursor, wrapping to the last match.
func (b *Buffer) SelectPrevMatch() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.searcher == nil {
		return false
	}
	m, ok := b.searcher.PrevMatch(b.cur.Position)
	if !ok {
		return false
	}
	b.cur = cursorRange(ByteOffset(m.StartByte), ByteOffset(m.EndByte))
	b.finishMotion(true)
	return true
}

// Copy sends the selection (or the whole current line, if empty) to the
// clipboard without modifying the buffer.
func (b *Buffer) Copy() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, end := b.selectionOrLineRange()
	text := b.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end))
	if b.clipboard == nil {
		return nil
	}
	return b.clipboard.Set(text)
}

// Cut sends the selection (or whole current line) to the clipboard and
// removes it.
func (b *Buffer) Cut() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, end := b.selectionOrLineRange()
	text := b.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end))
	var err error
	if b.clipboard != nil {
		err = b.clipboard.Set(text)
	}

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	b.rawRemove(start, end)
	b.cur = cursor.NewCursor(start)
	b.notifyChanged()
	b.afterEdit(true)
	return err
}

// Trash removes the selection (or whole current line) without touching
// the clipboard.
func (b *Buffer) Trash() {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, end := b.selectionOrLineRange()

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)
	b.rawRemove(start, end)
	b.cur = cursor.NewCursor(start)
	b.notifyChanged()
	b.afterEdit(true)
}

// Paste inserts the clipboard's content at the cursor with auto-indent
// enabled, per §4.3.
func (b *Buffer) Paste() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clipboard == nil {
		return ErrNothingToPaste
	}
	text, err := b.clipboard.Get()
	if err != nil {
		return err
	}
	if text == "" {
		return ErrNothingToPaste
	}
	b.insertTextLocked(text, true)
	return nil
}

// TrimTrailingWhitespace removes trailing space/tab runs from every line,
// shifting the cursor/anchor columns by each touched line's byte delta
// exactly like Tab/back-tab.
func (b *Buffer) TrimTrailingWhitespace() {
	b.mu.Lock()
	defer b.mu.Unlock()

	lc := b.rope.LineCount()
	if lc == 0 {
		return
	}

	anchorPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Anchor))
	posPt := b.rope.OffsetToPoint(rope.ByteOffset(b.cur.Position))

	dirty := b.hist.Dirty()
	b.hist.Begin(b.cur, dirty)

	deltas := make(map[uint32]int)
	changed := false
	for line := int64(lc - 1); line >= 0; line-- {
		l := uint32(line)
		start := ByteOffset(b.rope.LineStartOffset(l))
		end := ByteOffset(b.rope.LineEndOffset(l))
		text := b.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end))
		trimmed := strings.TrimRight(text, " \t")
		if len(trimmed) == len(text) {
			continue
		}
		b.rawReplace(start+ByteOffset(len(trimmed)), end, "")
		deltas[l] = len(trimmed) - len(text)
		changed = true
	}
	if !changed {
		b.hist.Finish(b.cur)
		return
	}

	remap := func(p rope.Point) ByteOffset {
		col := int(p.Column) + deltas[p.Line]
		if col < 0 {
			col = 0
		}
		return ByteOffset(b.rope.PointToOffset(rope.Point{Line: p.Line, Column: uint32(col)}))
	}
	b.cur = cursor.Cursor{Anchor: remap(anchorPt), Position: remap(posPt), Affinity: -1}

	b.notifyChanged()
	b.afterEdit(true)
}

// RevertBuffer replaces the buffer's content wholesale with text (the
// on-disk content, typically), clearing undo/redo history and marking the
// buffer clean, since there is nothing meaningful left to undo into once
// the in-memory state no longer reflects the discarded edits.
func (b *Buffer) RevertBuffer(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rope = rope.FromString(text)
	b.hist.Clear()
	b.cur = cursor.NewCursor(0)
	b.hist.MarkSaved()

	b.notifyChanged()
	b.afterEdit(false)
}

// Undo pops and inverts the most recent transaction.
func (b *Buffer) Undo() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hist.IsOpen() {
		b.hist.Finish(b.cur)
	}
	txn, err := b.hist.Undo()
	if err != nil {
		return err
	}
	for i := len(txn.Edits) - 1; i >= 0; i-- {
		b.applyRaw(txn.Edits[i].Invert())
	}
	b.cur = txn.CursorBefore
	b.notifyChanged()
	b.afterEdit(false)
	return nil
}

// Redo replays the most recently undone transaction.
func (b *Buffer) Redo() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	txn, err := b.hist.Redo()
	if err != nil {
		return err
	}
	for _, e := range txn.Edits {
		b.applyRaw(e)
	}
	b.cur = txn.CursorAfter
	b.notifyChanged()
	b.afterEdit(false)
	return nil
}

// applyRaw mutates the rope per e without recording anything to History,
// used by Undo/Redo to replay entries that are already on a stack.
func (b *Buffer) applyRaw(e history.Edit) {
	switch e.Kind {
	case history.EditInsert:
		b.rope = b.rope.Insert(rope.ByteOffset(e.Start), e.Inserted)
	case history.EditRemove:
		end := rope.ByteOffset(e.Start) + rope.ByteOffset(len(e.Removed))
		b.rope = b.rope.Delete(rope.ByteOffset(e.Start), end)
	case history.EditReplace:
		end := rope.ByteOffset(e.Start) + rope.ByteOffset(len(e.Removed))
		b.rope = b.rope.Replace(rope.ByteOffset(e.Start), end, e.Inserted)
	}
}

// CanUndo reports whether Undo would succeed.
func (b *Buffer) CanUndo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hist.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (b *Buffer) CanRedo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hist.CanRedo()
}
