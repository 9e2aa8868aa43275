package history

import (
	"testing"

	"github.com/dshills/vellum/internal/cursor"
)

func TestCoalescingWithinTransaction(t *testing.T) {
	h := New(0)
	h.Begin(cursor.NewCursor(0), false)
	h.RecordInsert(0, "a")
	h.Begin(cursor.NewCursor(1), false) // idempotent, no-op
	h.RecordInsert(1, "b")
	h.Finish(cursor.NewCursor(2))

	if h.UndoCount() != 1 {
		t.Fatalf("expected one coalesced transaction, got %d", h.UndoCount())
	}
	txn, err := h.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if len(txn.Edits) != 2 {
		t.Fatalf("expected 2 edits in coalesced transaction, got %d", len(txn.Edits))
	}
}

func TestFinishTerminatesTransaction(t *testing.T) {
	h := New(0)
	h.Begin(cursor.NewCursor(0), false)
	h.RecordInsert(0, "a")
	h.Finish(cursor.NewCursor(1))

	h.Begin(cursor.NewCursor(1), false)
	h.RecordInsert(1, "b")
	h.Finish(cursor.NewCursor(2))

	if h.UndoCount() != 2 {
		t.Fatalf("expected 2 separate transactions, got %d", h.UndoCount())
	}
}

func TestEmptyTransactionDiscarded(t *testing.T) {
	h := New(0)
	h.Begin(cursor.NewCursor(0), false)
	h.Finish(cursor.NewCursor(0))
	if h.UndoCount() != 0 {
		t.Fatalf("expected empty transaction to be discarded, got count %d", h.UndoCount())
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New(0)
	h.Begin(cursor.NewCursor(0), false)
	h.RecordInsert(0, "hi")
	h.Finish(cursor.NewCursor(2))

	txn, err := h.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if txn.Edits[0].Invert().Kind != EditRemove {
		t.Fatalf("expected inverse of insert to be remove")
	}
	if !h.CanRedo() {
		t.Fatalf("expected redo to be available after undo")
	}

	redone, err := h.Redo()
	if err != nil {
		t.Fatal(err)
	}
	if redone.CursorAfter.Position != 2 {
		t.Fatalf("CursorAfter not preserved through redo")
	}
}

func TestNewEditClearsRedoStack(t *testing.T) {
	h := New(0)
	h.Begin(cursor.NewCursor(0), false)
	h.RecordInsert(0, "a")
	h.Finish(cursor.NewCursor(1))
	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	if !h.CanRedo() {
		t.Fatal("expected redo available")
	}

	h.Begin(cursor.NewCursor(0), false)
	h.RecordInsert(0, "b")
	h.Finish(cursor.NewCursor(1))

	if h.CanRedo() {
		t.Fatal("new edit after undo should clear redo stack")
	}
}

func TestDirtyTracking(t *testing.T) {
	h := New(0)
	if h.Dirty() {
		t.Fatal("fresh history should not be dirty")
	}
	h.Begin(cursor.NewCursor(0), false)
	h.RecordInsert(0, "a")
	h.Finish(cursor.NewCursor(1))
	if !h.Dirty() {
		t.Fatal("expected dirty after an edit")
	}
	h.MarkSaved()
	if h.Dirty() {
		t.Fatal("expected clean immediately after MarkSaved")
	}
	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	if !h.Dirty() {
		t.Fatal("expected dirty after undoing past the saved point")
	}
}

func TestMaxEntriesTrims(t *testing.T) {
	h := New(2)
	for i := 0; i < 5; i++ {
		h.Begin(cursor.NewCursor(0), false)
		h.RecordInsert(0, "x")
		h.Finish(cursor.NewCursor(1))
	}
	if h.UndoCount() != 2 {
		t.Fatalf("expected trimming to 2 entries, got %d", h.UndoCount())
	}
}
