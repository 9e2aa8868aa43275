// Package buffer implements spec's Buffer: the component that owns a
// Rope, a History, and a Cursor, and exposes every motion and editing
// operation a command can invoke.
//
// Adapted from the teacher's two-layer split (internal/engine/buffer, a
// thin Rope wrapper, plus internal/engine/engine.go, the facade adding
// cursor/history/undo on top) collapsed into one type, since spec's
// component table has no equivalent of that split — Buffer is a single
// leaf-level component. The teacher's multi-cursor (CursorSet) and
// AI-context/diff-tracking methods (internal/engine/tracking) are not
// carried forward; see DESIGN.md.
package buffer
