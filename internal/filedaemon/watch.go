package filedaemon

import (
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchLoop drains fsnotify events: every qualifying event fires an
// immediate Changed pulse, and (re)arms a debounce timer that triggers a
// full rewalk once events settle for DebounceDelay, matching the
// teacher's watcher.DebouncedWatcher coalescing idiom.
func (d *FileDaemon) watchLoop() {
	defer d.closedWg.Done()

	for {
		select {
		case <-d.closeCh:
			return

		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			d.handleEvent(ev)

		case _, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			// The watcher can't surface watch errors anywhere useful
			// without a logger dependency FileDaemon doesn't otherwise
			// need; dropping keeps this package's surface to the two
			// channels spec §4.7 names.
		}
	}
}

func (d *FileDaemon) handleEvent(ev fsnotify.Event) {
	isDir := false
	if info, err := os.Stat(ev.Name); err == nil {
		isDir = info.IsDir()
	}
	if d.shouldIgnore(ev.Name, isDir) {
		return
	}

	if ev.Op.Has(fsnotify.Create) && isDir && d.config.Recursive {
		_ = d.addWatch(ev.Name)
	}

	publishLatest(d.changedCh, struct{}{})
	d.armRewalk()
}

func (d *FileDaemon) armRewalk() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.debounceTimer != nil {
		d.debounceTimer.Stop()
	}
	d.debounceTimer = time.AfterFunc(d.config.DebounceDelay, d.walkAndPublish)
}

// gcLoop periodically clears the per-directory ignore-matcher cache, per
// spec §4.7's "cleared periodically when idle."
func (d *FileDaemon) gcLoop() {
	defer d.closedWg.Done()

	interval := d.config.IdleGCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.closeCh:
			return
		case <-ticker.C:
			d.ignores.evictIdle(time.Now().Add(-interval).UnixNano())
		}
	}
}

// looksBinary sniffs a small prefix of path for non-text content: a NUL
// byte, or a byte sequence that is not valid UTF-8 (a multi-byte sequence
// cut off at the end of the prefix is tolerated). This stands in for the original's content_inspector
// crate, which has no Go equivalent in the example pack.
func looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return sniffBinary(buf[:n])
}

func sniffBinary(b []byte) bool {
	for _, c := range b {
		if c == 0 {
			return true
		}
	}
	return !validUTF8Prefix(b)
}

// validUTF8Prefix reports whether b decodes as UTF-8, tolerating an
// incomplete multi-byte sequence at the very end (the sniff buffer may
// have been cut mid-rune).
func validUTF8Prefix(b []byte) bool {
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c < 0x80:
			i++
		case c&0xE0 == 0xC0:
			if !utf8Continuation(b, i, 2) {
				return false
			}
			i += 2
		case c&0xF0 == 0xE0:
			if !utf8Continuation(b, i, 3) {
				return false
			}
			i += 3
		case c&0xF8 == 0xF0:
			if !utf8Continuation(b, i, 4) {
				return false
			}
			i += 4
		default:
			return false
		}
	}
	return true
}

// utf8Continuation reports whether b[i:i+n] is a valid lead byte plus
// continuation bytes, allowing the sequence to run off the end of b
// (truncated by the sniff buffer) without failing.
func utf8Continuation(b []byte, i, n int) bool {
	for j := 1; j < n; j++ {
		if i+j >= len(b) {
			return true // truncated by buffer edge, not malformed
		}
		if b[i+j]&0xC0 != 0x80 {
			return false
		}
	}
	return true
}
