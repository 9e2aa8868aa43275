package history

import (
	"errors"
	"sync"

	"github.com/dshills/vellum/internal/cursor"
	"github.com/dshills/vellum/internal/rope"
)

// Errors returned by Undo and Redo when the respective stack is empty.
var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
)

// EditKind tags an Edit as one of the three shapes spec's History entry
// can take.
type EditKind int

const (
	EditInsert EditKind = iota
	EditRemove
	EditReplace
)

// Edit is one atomic mutation within a Transaction.
type Edit struct {
	Kind     EditKind
	Start    rope.ByteOffset
	Removed  string // text removed by Remove/Replace; empty for Insert
	Inserted string // text inserted by Insert/Replace; empty for Remove
}

// Invert returns the edit that undoes this one.
func (e Edit) Invert() Edit {
	switch e.Kind {
	case EditInsert:
		return Edit{Kind: EditRemove, Start: e.Start, Removed: e.Inserted}
	case EditRemove:
		return Edit{Kind: EditInsert, Start: e.Start, Inserted: e.Removed}
	default: // EditReplace
		return Edit{Kind: EditReplace, Start: e.Start, Removed: e.Inserted, Inserted: e.Removed}
	}
}

// Transaction is a coalesced group of edits sharing one undo/redo step.
type Transaction struct {
	Edits []Edit

	// CursorBefore/DirtyBefore are the cursor and dirty flag as they stood
	// at the moment the transaction was opened (the first Begin call).
	CursorBefore cursor.Cursor
	DirtyBefore  bool

	// CursorAfter is captured at Finish and restored on Redo.
	CursorAfter cursor.Cursor
}

// IsEmpty reports whether the transaction recorded no edits.
func (t Transaction) IsEmpty() bool { return len(t.Edits) == 0 }

// History is the transactional undo/redo log described in spec §4.3: two
// stacks of Transaction, an open transaction accumulating edits between
// Begin and Finish, and a save marker for dirty tracking.
type History struct {
	mu sync.Mutex

	undoStack []*Transaction
	redoStack []*Transaction
	open      *Transaction

	maxEntries int

	// savedIndex is the undo-stack length at the last MarkSaved call. Since
	// any new edit after an undo clears the redo stack (making history
	// strictly linear from that point on), comparing the current stack
	// depth to savedIndex is sufficient to answer Dirty() correctly. A
	// fresh or just-cleared history starts clean at depth 0, matching an
	// implicit MarkSaved at that point.
	savedIndex int
}

// New creates a History with the given maximum number of retained
// transactions (<=0 means a default of 1000, matching the teacher's
// default).
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &History{maxEntries: maxEntries, savedIndex: 0}
}

// Begin opens a transaction if none is currently open. Idempotent: repeated
// calls while a transaction is open do nothing, which is how consecutive
// keystrokes coalesce into one undo step until the caller calls Finish.
func (h *History) Begin(cur cursor.Cursor, dirty bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.open != nil {
		return
	}
	h.open = &Transaction{CursorBefore: cur, DirtyBefore: dirty}
}

// IsOpen reports whether a transaction is currently accumulating edits.
func (h *History) IsOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open != nil
}

// RecordInsert appends an Insert edit to the open transaction. Callers in
// this module always call Begin immediately before; if no transaction is
// open, one is opened implicitly with a zero CursorBefore and DirtyBefore
// false.
func (h *History) RecordInsert(start rope.ByteOffset, text string) {
	h.record(Edit{Kind: EditInsert, Start: start, Inserted: text})
}

// RecordRemove appends a Remove edit to the open transaction.
func (h *History) RecordRemove(start rope.ByteOffset, removed string) {
	h.record(Edit{Kind: EditRemove, Start: start, Removed: removed})
}

// RecordReplace appends a Replace edit to the open transaction.
func (h *History) RecordReplace(start rope.ByteOffset, removed, inserted string) {
	h.record(Edit{Kind: EditReplace, Start: start, Removed: removed, Inserted: inserted})
}

func (h *History) record(e Edit) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.open == nil {
		h.open = &Transaction{}
	}
	h.open.Edits = append(h.open.Edits, e)
}

// Finish closes the open transaction, if any, and pushes it onto the undo
// stack, clearing the redo stack. cursorAfter is the cursor position once
// every edit in the transaction has been applied; it's replayed on Redo. An
// empty transaction (Begin with no Record calls) is discarded silently.
func (h *History) Finish(cursorAfter cursor.Cursor) {
	h.mu.Lock()
	defer h.mu.Unlock()

	txn := h.open
	h.open = nil
	if txn == nil || txn.IsEmpty() {
		return
	}
	txn.CursorAfter = cursorAfter

	h.undoStack = append(h.undoStack, txn)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
		if h.savedIndex >= 0 {
			h.savedIndex -= excess
			if h.savedIndex < 0 {
				h.savedIndex = -1 // the saved point fell off the retained window
			}
		}
	}
}

// Undo pops the most recent transaction off the undo stack and pushes it
// onto the redo stack, returning it so the caller (package buffer) can
// apply each edit's inverse, in reverse order, and restore CursorBefore.
func (h *History) Undo() (*Transaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}
	txn := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, txn)
	return txn, nil
}

// Redo pops the most recent transaction off the redo stack and pushes it
// back onto the undo stack, returning it so the caller can replay each edit
// in forward order and restore CursorAfter.
func (h *History) Redo() (*Transaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}
	txn := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, txn)
	return txn, nil
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of transactions available to undo.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of transactions available to redo.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// MarkSaved records the current undo-stack depth as the saved point; Dirty
// returns false until the next edit.
func (h *History) MarkSaved() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.savedIndex = len(h.undoStack)
}

// Dirty reports whether there exist un-saved edits since the last
// MarkSaved call (or since creation, if MarkSaved has never been called
// and at least one transaction has been recorded).
func (h *History) Dirty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.open != nil && !h.open.IsEmpty() {
		return true
	}
	return len(h.undoStack) != h.savedIndex
}

// InvalidateSaved forces Dirty to report true until the next MarkSaved,
// used when an external write-back detects a concurrent edit it didn't
// make itself (spec §4.3's markHistoryDirty).
func (h *History) InvalidateSaved() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.savedIndex = -2
}

// Clear discards all undo/redo state and any open transaction, and resets
// the save marker as if nothing had ever been saved.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.open = nil
	h.savedIndex = 0
}

// SetMaxEntries changes the retained transaction count, trimming the undo
// stack immediately if it is now over the limit.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = 1000
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maxEntries = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
		if h.savedIndex >= 0 {
			h.savedIndex -= excess
			if h.savedIndex < 0 {
				h.savedIndex = -1
			}
		}
	}
}

// MaxEntries returns the current retained-transaction limit.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
