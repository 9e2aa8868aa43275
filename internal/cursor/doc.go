// Package cursor implements the Cursor and Selection types: an anchor/
// position pair plus the affinity column remembered across vertical motion,
// and the selection geometry derived from it.
//
// Adapted from the teacher's internal/engine/cursor package (Selection's
// method set is kept almost entirely), generalized to add the affinity
// field spec's data model requires and renaming Head to Position to match
// the vocabulary used throughout the rest of this module.
package cursor
