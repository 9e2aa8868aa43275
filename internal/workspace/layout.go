package workspace

import (
	"encoding/json"

	"github.com/dshills/vellum/internal/panetree"
)

// CursorSnapshot is the persisted form of a cursor.Cursor: spec §6's
// "{anchor, position, affinity}".
type CursorSnapshot struct {
	Anchor   int64 `json:"anchor"`
	Position int64 `json:"position"`
	Affinity int   `json:"affinity"`
}

// LeafSnapshot is spec §6's per-leaf persisted state: "{path, cursor,
// lineTop, colLeft}". Buffers are identified by path here, not by the
// in-process BufferID, since a BufferID is only meaningful for the
// lifetime of the process that assigned it.
type LeafSnapshot struct {
	Path    string         `json:"path"`
	Cursor  CursorSnapshot `json:"cursor"`
	LineTop uint32         `json:"lineTop"`
	ColLeft int            `json:"colLeft"`
}

// LayoutNode mirrors panetree.Snapshot's shape with LeafSnapshot in place
// of a bare PaneIdentity, so the persisted JSON carries everything needed
// to rebind on load without any in-process state.
type LayoutNode struct {
	Leaf  *LeafSnapshot `json:"leaf,omitempty"`
	Split panetree.Split `json:"split,omitempty"`
	Ratio float64        `json:"ratio,omitempty"`
	Left  *LayoutNode    `json:"left,omitempty"`
	Right *LayoutNode    `json:"right,omitempty"`
}

// ExportLayout captures the workspace's current PaneTree and every
// referenced buffer's path/cursor/scroll into a persistable tree, or nil
// if there is no PaneTree (see Panes).
func (w *Workspace) ExportLayout() *LayoutNode {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.panes == nil {
		return nil
	}
	return w.exportNodeLocked(w.panes.ExportSnapshot())
}

func (w *Workspace) exportNodeLocked(s *panetree.Snapshot) *LayoutNode {
	if s.Leaf != nil {
		e := w.buffers[BufferID(s.Leaf.BufferID)]
		cur := e.buf.Cursor()
		lineTop, colLeft := e.buf.Scroll()
		return &LayoutNode{Leaf: &LeafSnapshot{
			Path: e.path,
			Cursor: CursorSnapshot{
				Anchor:   int64(cur.Anchor),
				Position: int64(cur.Position),
				Affinity: cur.Affinity,
			},
			LineTop: lineTop,
			ColLeft: colLeft,
		}}
	}
	return &LayoutNode{
		Split: s.Split,
		Ratio: s.Ratio,
		Left:  w.exportNodeLocked(s.Left),
		Right: w.exportNodeLocked(s.Right),
	}
}

// SaveLayoutJSON marshals ExportLayout as indented JSON, vellum's one
// serialization format for structured application state (the ambient
// config layer uses TOML for settings, but JSON round-trips plain Go
// values here, matching the pack's other structured-state idiom).
func (w *Workspace) SaveLayoutJSON() ([]byte, error) {
	return json.MarshalIndent(w.ExportLayout(), "", "  ")
}

// LoadLayout re-opens every leaf's path (reading it from disk if not
// already open) and rebuilds the PaneTree around the result. A leaf whose
// path can no longer be opened is dropped; per spec §6, this collapses
// its parent split onto the surviving sibling, and an internal node whose
// whole subtree is unopenable is dropped in turn.
func (w *Workspace) LoadLayout(root *LayoutNode) error {
	if root == nil {
		return nil
	}
	snap, current, ok := w.importNode(root)
	if !ok {
		return nil
	}

	w.mu.Lock()
	w.panes = panetree.FromSnapshot(snap, panetree.PaneIdentity{BufferID: uint64(current)})
	w.panes.EnsureCurrentExists()
	w.mu.Unlock()
	return nil
}

// LoadLayoutJSON unmarshals data into a LayoutNode tree and applies it
// via LoadLayout.
func (w *Workspace) LoadLayoutJSON(data []byte) error {
	var root LayoutNode
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	return w.LoadLayout(&root)
}

// importNode rebinds one LayoutNode to a live buffer (opening it from
// disk as needed) and returns the equivalent panetree.Snapshot, the
// BufferID to treat as current within this subtree, and whether anything
// survived rebinding.
func (w *Workspace) importNode(n *LayoutNode) (*panetree.Snapshot, BufferID, bool) {
	if n.Leaf != nil {
		id, _, err := w.Open(n.Leaf.Path)
		if err != nil {
			return nil, 0, false
		}
		w.restoreCursorSnapshot(id, n.Leaf.Cursor, n.Leaf.LineTop, n.Leaf.ColLeft)
		return &panetree.Snapshot{Leaf: &panetree.PaneIdentity{BufferID: uint64(id)}}, id, true
	}

	left, leftID, leftOK := w.importNode(n.Left)
	right, rightID, rightOK := w.importNode(n.Right)

	switch {
	case leftOK && rightOK:
		return &panetree.Snapshot{
			Split: n.Split,
			Ratio: n.Ratio,
			Left:  left,
			Right: right,
		}, rightID, true
	case leftOK:
		return left, leftID, true
	case rightOK:
		return right, rightID, true
	default:
		return nil, 0, false
	}
}
