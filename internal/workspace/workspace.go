// Package workspace implements spec §3/§6's Workspace: a stable-id
// mapping from BufferID to Buffer plus a PaneTree, with a serializable
// layout that rebinds panes to buffers by file path on reload.
//
// Adapted from the teacher's internal/app.DocumentManager (path-keyed
// map, insertion-stable ordering, active-document tracking), generalized
// from a path-only key to the BufferID spec's data model requires (so a
// scratch buffer with no path still has a stable identity a PaneTree leaf
// can reference) and given a panetree.Tree in place of the teacher's
// flat "active document" pointer, since spec's Workspace manages a full
// split layout, not a single current file.
package workspace

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/vellum/internal/buffer"
	"github.com/dshills/vellum/internal/cursor"
	"github.com/dshills/vellum/internal/panetree"
)

// BufferID is a stable identity for an open buffer, independent of its
// file path (so renames and scratch buffers both have a durable handle a
// PaneTree leaf or a persisted layout can reference).
type BufferID uint64

// entry pairs a Buffer with the path it's bound to, kept alongside the
// buffer itself so Close and layout export don't need to reopen it.
type entry struct {
	id   BufferID
	path string
	buf  *buffer.Buffer
}

// Workspace owns every open Buffer plus the PaneTree arranging them on
// screen.
type Workspace struct {
	mu sync.RWMutex

	nextID  atomic.Uint64
	buffers map[BufferID]*entry
	order   []BufferID // insertion-stable, for All()

	panes *panetree.Tree
}

// New creates an empty Workspace. The first buffer Opened becomes the
// PaneTree's sole pane.
func New() *Workspace {
	return &Workspace{
		buffers: make(map[BufferID]*entry),
	}
}

// Open reads path and adds it as a new buffer, or returns the existing
// one if path is already open. The first buffer ever opened seeds the
// PaneTree; subsequent ones do not touch the layout — callers use
// Split/ReplaceCurrent explicitly for that.
func (w *Workspace) Open(path string, opts ...buffer.Option) (BufferID, *buffer.Buffer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range w.buffers {
		if e.path != "" && e.path == path {
			return e.id, e.buf, nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}

	allOpts := append([]buffer.Option{buffer.WithPath(path)}, opts...)
	buf := buffer.NewFromString(string(content), allOpts...)
	return w.addLocked(path, buf), buf, nil
}

// OpenScratch adds buf (typically buffer.New()) with no backing path.
func (w *Workspace) OpenScratch(buf *buffer.Buffer) BufferID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addLocked("", buf)
}

func (w *Workspace) addLocked(path string, buf *buffer.Buffer) BufferID {
	id := BufferID(w.nextID.Add(1))
	w.buffers[id] = &entry{id: id, path: path, buf: buf}
	w.order = append(w.order, id)

	identity := panetree.PaneIdentity{BufferID: uint64(id)}
	if w.panes == nil {
		w.panes = panetree.New(identity)
	}
	return id
}

// Close removes a buffer from the workspace and prunes any PaneTree
// leaves that referenced it. If it was the last pane's buffer, the
// PaneTree is dropped and the next buffer added seeds a new one.
func (w *Workspace) Close(id BufferID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.buffers[id]; !ok {
		return fmt.Errorf("workspace: buffer %d not open", id)
	}
	delete(w.buffers, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}

	if w.panes != nil {
		w.panes.PruneMissing(func(p panetree.PaneIdentity) bool {
			_, ok := w.buffers[BufferID(p.BufferID)]
			return ok
		})
		// PruneMissing never removes the tree's last leaf; drop the tree
		// when that leaf referenced the closed buffer.
		if _, ok := w.buffers[BufferID(w.panes.Current().BufferID)]; !ok {
			w.panes = nil
		}
	}
	return nil
}

// Get returns the buffer for id.
func (w *Workspace) Get(id BufferID) (*buffer.Buffer, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.buffers[id]
	if !ok {
		return nil, false
	}
	return e.buf, true
}

// Path returns the file path bound to id, or "" for a scratch buffer.
func (w *Workspace) Path(id BufferID) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if e, ok := w.buffers[id]; ok {
		return e.path
	}
	return ""
}

// All returns every open buffer ID in insertion order.
func (w *Workspace) All() []BufferID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make([]BufferID, len(w.order))
	copy(ids, w.order)
	return ids
}

// Count returns the number of open buffers.
func (w *Workspace) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.buffers)
}

// Panes returns the workspace's PaneTree, or nil if no buffer has been
// opened yet or the last pane's buffer was closed.
func (w *Workspace) Panes() *panetree.Tree {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.panes
}

// CurrentBuffer returns the Buffer behind the PaneTree's current leaf.
func (w *Workspace) CurrentBuffer() (*buffer.Buffer, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.panes == nil {
		return nil, false
	}
	id := BufferID(w.panes.Current().BufferID)
	e, ok := w.buffers[id]
	if !ok {
		return nil, false
	}
	return e.buf, true
}

// restoreCursorSnapshot applies a persisted cursor onto the buffer bound
// to id, used while loading a layout.
func (w *Workspace) restoreCursorSnapshot(id BufferID, snap CursorSnapshot, lineTop uint32, colLeft int) {
	buf, ok := w.Get(id)
	if !ok {
		return
	}
	buf.SetCursor(cursor.Cursor{
		Anchor:   cursor.ByteOffset(snap.Anchor),
		Position: cursor.ByteOffset(snap.Position),
		Affinity: snap.Affinity,
	})
	buf.SetScroll(lineTop, colLeft)
}
