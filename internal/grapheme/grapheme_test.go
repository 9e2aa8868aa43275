package grapheme

import "testing"

func TestNextPrevBoundary(t *testing.T) {
	s := "a\U0001F1FA\U0001F1F8b" // a, regional-indicator pair (one cluster), b
	cases := []struct {
		name string
		b    int
		want int
	}{
		{"start", 0, 1},
		{"mid-cluster rounds forward", 2, 5},
		{"at boundary advances", 5, 6},
		{"at end stays", 6, 6},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NextBoundary(s, c.b); got != c.want {
				t.Errorf("NextBoundary(%d) = %d, want %d", c.b, got, c.want)
			}
		})
	}
}

func TestPrevBoundary(t *testing.T) {
	s := "ab"
	if got := PrevBoundary(s, 2); got != 1 {
		t.Errorf("PrevBoundary(2) = %d, want 1", got)
	}
	if got := PrevBoundary(s, 1); got != 0 {
		t.Errorf("PrevBoundary(1) = %d, want 0", got)
	}
	if got := PrevBoundary(s, 0); got != 0 {
		t.Errorf("PrevBoundary(0) = %d, want 0", got)
	}
}

func TestWidthTabStops(t *testing.T) {
	if got := Width("\t", 0, 4); got != 4 {
		t.Errorf("Width(tab at col 0) = %d, want 4", got)
	}
	if got := Width("\t", 2, 4); got != 2 {
		t.Errorf("Width(tab at col 2) = %d, want 2", got)
	}
}

func TestWidthAdditive(t *testing.T) {
	a, b := "ab", "\tcd"
	wa := Width(a, 0, 4)
	wTotal := Width(a+b, 0, 4)
	wb := Width(b, wa, 4)
	if wa+wb != wTotal {
		t.Errorf("width not additive: %d + %d != %d", wa, wb, wTotal)
	}
}

func TestIsWordRune(t *testing.T) {
	for _, r := range []rune{'a', 'Z', '_', '3'} {
		if !IsWordRune(r) {
			t.Errorf("IsWordRune(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{' ', '.', '(', '\t'} {
		if IsWordRune(r) {
			t.Errorf("IsWordRune(%q) = true, want false", r)
		}
	}
}

func TestDetectLineEnding(t *testing.T) {
	cases := map[string]LineEnding{
		"a\nb":   LF,
		"a\r\nb": CRLF,
		"a\rb":   CR,
		"noeol":  LF,
	}
	for s, want := range cases {
		if got := DetectLineEnding(s); got != want {
			t.Errorf("DetectLineEnding(%q) = %v, want %v", s, got, want)
		}
	}
}
