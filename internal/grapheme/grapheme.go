package grapheme

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/width"
)

// Class classifies a grapheme cluster for word-motion purposes.
type Class int

const (
	ClassOther Class = iota
	ClassWhitespace
	ClassWord
)

// ClassOf returns the motion class of the grapheme cluster at the start of s.
func ClassOf(s string) Class {
	if s == "" {
		return ClassOther
	}
	r := firstRune(s)
	switch {
	case unicode.IsSpace(r):
		return ClassWhitespace
	case IsWordRune(r):
		return ClassWord
	default:
		return ClassOther
	}
}

// IsWordRune reports whether r belongs to a word per spec: letters, marks,
// decimal or letter numbers, or connector punctuation (e.g. underscore).
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) ||
		unicode.Is(unicode.Nd, r) || unicode.Is(unicode.Nl, r) ||
		unicode.Is(unicode.Pc, r)
}

// IsWhitespace reports whether the grapheme cluster at the start of s is
// whitespace.
func IsWhitespace(s string) bool {
	if s == "" {
		return false
	}
	return unicode.IsSpace(firstRune(s))
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// boundaries returns every grapheme cluster boundary in s, in ascending
// order, including 0 and len(s).
func boundaries(s string) []int {
	out := []int{0}
	if s == "" {
		return out
	}
	state := -1
	pos := 0
	rest := s
	for rest != "" {
		cluster, remaining, _, newState := uniseg.FirstGraphemeClusterInString(rest, state)
		state = newState
		pos += len(cluster)
		out = append(out, pos)
		rest = remaining
	}
	return out
}

// NextBoundary returns the byte offset of the next grapheme cluster boundary
// in s strictly after b, rounding b itself forward first if it does not
// already land on one. It returns len(s) once b reaches the end.
func NextBoundary(s string, b int) int {
	if b >= len(s) {
		return len(s)
	}
	if b < 0 {
		b = 0
	}
	for _, boundary := range boundaries(s) {
		if boundary > b {
			return boundary
		}
	}
	return len(s)
}

// PrevBoundary returns the byte offset of the previous grapheme cluster
// boundary in s strictly before b, rounding b backward first if it does not
// already land on one. It returns 0 if none exists before b.
func PrevBoundary(s string, b int) int {
	if b <= 0 {
		return 0
	}
	if b > len(s) {
		b = len(s)
	}
	prev := 0
	for _, boundary := range boundaries(s) {
		if boundary >= b {
			break
		}
		prev = boundary
	}
	return prev
}

// NthBoundary returns the byte offset reached after stepping n grapheme
// clusters forward from b (n >= 0), clamped to len(s).
func NthBoundary(s string, b, n int) int {
	pos := b
	for i := 0; i < n; i++ {
		next := NextBoundary(s, pos)
		if next == pos {
			break
		}
		pos = next
	}
	return pos
}

// Count returns the number of grapheme clusters in s.
func Count(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Width computes the display width of s, given the visual column the slice
// starts at (needed for tab-stop math) and the editor's tab width. Width is
// additive: Width(a+b, c, tw) == Width(a, c, tw) + Width(b, c+Width(a,c,tw), tw).
func Width(s string, startCol, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = 1
	}
	col := startCol
	state := -1
	rest := s
	for rest != "" {
		cluster, remaining, _, newState := uniseg.FirstGraphemeClusterInString(rest, state)
		state = newState
		rest = remaining
		if cluster == "\t" {
			col += tabWidth - (col % tabWidth)
			continue
		}
		col += clusterWidth(cluster)
	}
	return col - startCol
}

// clusterWidth reports a grapheme cluster's display width. For a
// single-rune cluster, golang.org/x/text/width's East Asian Width
// property table is consulted first: Wide and Fullwidth runes are
// authoritatively 2 columns wide regardless of what uniseg's own
// (UAX #11 narrow-by-default) table would say for code points outside
// its embedded range. Ambiguous-width and multi-rune clusters (ZWJ
// sequences, combining marks) fall back to uniseg.StringWidth, which
// already folds the cluster's zero-width components into one figure.
func clusterWidth(cluster string) int {
	if r, size := utf8.DecodeRuneInString(cluster); size == len(cluster) {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			return 2
		}
	}
	w := uniseg.StringWidth(cluster)
	if w < 0 {
		w = 0
	}
	return w
}

// LineEnding identifies the dominant line terminator of a buffer.
type LineEnding int

const (
	LF LineEnding = iota
	CRLF
	CR
)

func (e LineEnding) String() string {
	switch e {
	case CRLF:
		return "\r\n"
	case CR:
		return "\r"
	default:
		return "\n"
	}
}

// DetectLineEnding scans s for the first line terminator and reports its
// kind. Defaults to LF when s contains no line terminator.
func DetectLineEnding(s string) LineEnding {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				return CRLF
			}
			return CR
		case '\n':
			return LF
		}
	}
	return LF
}
