// Package search implements Searcher, spec's background match finder: it
// owns a query, a case-insensitivity flag, a rope snapshot, and a match
// list, and recomputes that list off the editor goroutine whenever the
// query or buffer changes.
//
// Modeled on the teacher's debounced-worker shape
// (internal/project/watcher/debounce.go, internal/integration/debounce.go):
// a mutex-guarded state struct, a sequence number to discard stale
// rescans, and time.AfterFunc instead of a busy goroutine loop, since a
// Searcher only ever reacts to the last update, never needs to drain a
// queue of them.
package search

import (
	"strings"
	"sync"
	"time"

	"github.com/dshills/vellum/internal/rope"
)

// Match is one occurrence of the current query in the buffer.
type Match struct {
	StartByte rope.ByteOffset
	EndByte   rope.ByteOffset
	Start     rope.Point
	End       rope.Point
}

// Searcher is spec §4.5's background worker. The zero value is not usable;
// construct with New.
type Searcher struct {
	mu sync.Mutex

	query           string
	caseInsensitive bool
	snapshot        rope.Rope

	matches []Match

	seq   uint64
	delay time.Duration
	timer *time.Timer
}

// New creates an idle Searcher with no query and an empty rope.
func New() *Searcher {
	return &Searcher{delay: 50 * time.Millisecond}
}

// SetDelay overrides the debounce delay before a rescan runs (default 50ms).
func (s *Searcher) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.delay = d
	}
}

// Start seeds (or re-seeds) the Searcher with a query and buffer and
// rescans synchronously on the caller's goroutine. It takes no cursor
// position; NextMatch/PrevMatch receive one directly.
func (s *Searcher) Start(query string, caseInsensitive bool, snapshot rope.Rope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.caseInsensitive = caseInsensitive
	s.snapshot = snapshot
	s.rescanLocked()
}

// UpdateQuery replaces the query and/or case sensitivity and schedules a
// rescan, debounced so rapid keystrokes in a search box coalesce into one
// scan of the (possibly large) buffer.
func (s *Searcher) UpdateQuery(query string, caseInsensitive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.caseInsensitive = caseInsensitive
	s.scheduleLocked()
}

// UpdateBuffer implements buffer.Searcher: it replaces the rope snapshot
// Buffer calls out with after every mutating operation and schedules a
// rescan. cursorByte is currently unused (nextMatch/prevMatch read the
// cursor position the caller passes them directly) but is accepted to
// match spec's updateBuffer(newRope, optionalCursorByte) contract.
func (s *Searcher) UpdateBuffer(r rope.Rope, cursorByte *rope.ByteOffset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = r
	s.scheduleLocked()
}

// scheduleLocked debounces a rescan: mu must be held by the caller.
func (s *Searcher) scheduleLocked() {
	s.seq++
	mySeq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.seq != mySeq {
			return // superseded by a later update
		}
		s.rescanLocked()
	})
}

// rescanLocked recomputes the match list against the current snapshot and
// query. mu must be held by the caller.
func (s *Searcher) rescanLocked() {
	if s.query == "" || s.snapshot.IsEmpty() {
		s.matches = nil
		return
	}
	text := s.snapshot.String()
	haystack, needle := text, s.query
	if s.caseInsensitive {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}
	if needle == "" {
		s.matches = nil
		return
	}

	var out []Match
	pos := 0
	for {
		idx := strings.Index(haystack[pos:], needle)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(needle)
		out = append(out, Match{
			StartByte: rope.ByteOffset(start),
			EndByte:   rope.ByteOffset(end),
			Start:     s.snapshot.OffsetToPoint(rope.ByteOffset(start)),
			End:       s.snapshot.OffsetToPoint(rope.ByteOffset(end)),
		})
		pos = start + 1
	}
	s.matches = out
}

// Matches returns the current match list, sorted by StartByte (the scan in
// rescanLocked already produces it in that order). The returned slice is a
// fresh copy, safe for the caller to range over without holding a lock.
func (s *Searcher) Matches() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Match, len(s.matches))
	copy(out, s.matches)
	return out
}

// NextMatch returns the match whose start is strictly after cursorByte,
// wrapping to the first match if cursorByte is at or past the last one.
func (s *Searcher) NextMatch(cursorByte rope.ByteOffset) (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matches) == 0 {
		return Match{}, false
	}
	for _, m := range s.matches {
		if m.StartByte > cursorByte {
			return m, true
		}
	}
	return s.matches[0], true
}

// PrevMatch returns the match whose start is strictly before cursorByte,
// wrapping to the last match if cursorByte is at or before the first one.
func (s *Searcher) PrevMatch(cursorByte rope.ByteOffset) (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matches) == 0 {
		return Match{}, false
	}
	for i := len(s.matches) - 1; i >= 0; i-- {
		if s.matches[i].StartByte < cursorByte {
			return s.matches[i], true
		}
	}
	return s.matches[len(s.matches)-1], true
}

// Query returns the current query string and case-sensitivity flag.
func (s *Searcher) Query() (query string, caseInsensitive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, s.caseInsensitive
}
