package search

import (
	"testing"
	"time"

	"github.com/dshills/vellum/internal/rope"
)

func newSyncSearcher() *Searcher {
	s := New()
	s.SetDelay(time.Millisecond)
	return s
}

func TestStartFindsAllMatches(t *testing.T) {
	s := newSyncSearcher()
	s.Start("abc", false, rope.FromString("abc abc abc"))

	matches := s.Matches()
	if len(matches) != 3 {
		t.Fatalf("len(Matches()) = %d, want 3", len(matches))
	}
	for i, m := range matches {
		if i > 0 && matches[i-1].StartByte >= m.StartByte {
			t.Fatalf("matches not sorted by StartByte: %+v", matches)
		}
		if got := s.snapshotSlice(m); got != "abc" {
			t.Fatalf("match %d text = %q, want %q", i, got, "abc")
		}
	}
}

// snapshotSlice is a tiny test helper reaching into the package to confirm
// a match's byte range really is the query text, per spec §8's property 7.
func (s *Searcher) snapshotSlice(m Match) string {
	return s.snapshot.Slice(m.StartByte, m.EndByte)
}

func TestUpdateQueryIsCaseInsensitive(t *testing.T) {
	s := newSyncSearcher()
	s.Start("", false, rope.FromString("abc Abc ABC"))
	s.UpdateQuery("ABC", true)
	time.Sleep(20 * time.Millisecond)

	matches := s.Matches()
	if len(matches) != 3 {
		t.Fatalf("len(Matches()) = %d, want 3", len(matches))
	}
}

func TestNextMatchWrapsAround(t *testing.T) {
	s := newSyncSearcher()
	s.Start("abc", false, rope.FromString("abc abc abc"))

	m, ok := s.NextMatch(6)
	if !ok || m.StartByte != 8 {
		t.Fatalf("NextMatch(6) = %+v, %v, want start=8", m, ok)
	}

	m, ok = s.NextMatch(8)
	if !ok || m.StartByte != 0 {
		t.Fatalf("NextMatch(8) = %+v, %v, want wrap to start=0", m, ok)
	}
}

func TestPrevMatchWrapsAround(t *testing.T) {
	s := newSyncSearcher()
	s.Start("abc", false, rope.FromString("abc abc abc"))

	m, ok := s.PrevMatch(8)
	if !ok || m.StartByte != 4 {
		t.Fatalf("PrevMatch(8) = %+v, %v, want start=4", m, ok)
	}

	m, ok = s.PrevMatch(0)
	if !ok || m.StartByte != 8 {
		t.Fatalf("PrevMatch(0) = %+v, %v, want wrap to start=8", m, ok)
	}
}

func TestUpdateBufferRescansAgainstNewSnapshot(t *testing.T) {
	s := newSyncSearcher()
	s.Start("x", false, rope.FromString("no match here"))
	if len(s.Matches()) != 0 {
		t.Fatal("expected no matches before update")
	}

	pos := rope.ByteOffset(0)
	s.UpdateBuffer(rope.FromString("x marks the x spot"), &pos)
	time.Sleep(20 * time.Millisecond)

	if got := len(s.Matches()); got != 2 {
		t.Fatalf("len(Matches()) after UpdateBuffer = %d, want 2", got)
	}
}

func TestEmptyQueryProducesNoMatches(t *testing.T) {
	s := newSyncSearcher()
	s.Start("", false, rope.FromString("abc abc"))
	if got := s.Matches(); len(got) != 0 {
		t.Fatalf("Matches() = %+v, want none for empty query", got)
	}
}
