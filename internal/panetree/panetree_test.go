package panetree

import "testing"

func pane(id uint64) PaneIdentity { return PaneIdentity{BufferID: id} }

func TestNewSingleLeaf(t *testing.T) {
	tr := New(pane(1))
	if tr.NumPanes() != 1 {
		t.Fatalf("NumPanes() = %d, want 1", tr.NumPanes())
	}
	if tr.Current() != pane(1) {
		t.Fatalf("Current() = %v, want pane(1)", tr.Current())
	}
}

func TestSplitOrdering(t *testing.T) {
	tests := []struct {
		name     string
		dir      Direction
		wantLeft PaneIdentity
	}{
		{"right places new after", DirRight, pane(1)},
		{"left places new before", DirLeft, pane(2)},
		{"down places new after", DirDown, pane(1)},
		{"up places new before", DirUp, pane(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(pane(1))
			tr.Split(pane(2), tt.dir)
			if tr.Current() != pane(2) {
				t.Fatalf("Current() = %v, want pane(2)", tr.Current())
			}
			leaves := tr.Leaves()
			if len(leaves) != 2 {
				t.Fatalf("Leaves() len = %d, want 2", len(leaves))
			}
			if leaves[0] != tt.wantLeft {
				t.Fatalf("Leaves()[0] = %v, want %v", leaves[0], tt.wantLeft)
			}
		})
	}
}

func TestSplitAxis(t *testing.T) {
	tr := New(pane(1))
	tr.Split(pane(2), DirRight)
	bounds := tr.PaneBounds(Rect{Width: 100, Height: 40})
	if len(bounds) != 2 {
		t.Fatalf("PaneBounds() len = %d, want 2", len(bounds))
	}
	for _, b := range bounds {
		if b.Rect.Height != 40 {
			t.Errorf("vertical split should preserve height, got %d", b.Rect.Height)
		}
	}
	if bounds[0].Rect.Width+bounds[1].Rect.Width != 100 {
		t.Errorf("widths should tile exactly, got %d + %d", bounds[0].Rect.Width, bounds[1].Rect.Width)
	}
}

func TestRemoveSingleLeafNoOp(t *testing.T) {
	tr := New(pane(1))
	if tr.Remove(pane(1)) {
		t.Fatalf("Remove() on single-leaf tree should be a no-op")
	}
	if tr.NumPanes() != 1 {
		t.Fatalf("NumPanes() = %d, want 1", tr.NumPanes())
	}
}

func TestRemoveRestoresSibling(t *testing.T) {
	tr := New(pane(1))
	tr.Split(pane(2), DirRight)
	tr.Split(pane(3), DirDown) // splits pane 2 (current) into 2/3

	if !tr.Remove(pane(3)) {
		t.Fatalf("Remove(pane(3)) = false, want true")
	}
	if tr.NumPanes() != 2 {
		t.Fatalf("NumPanes() after remove = %d, want 2", tr.NumPanes())
	}
	if tr.Current() != pane(2) {
		t.Fatalf("Current() after removing the current leaf = %v, want pane(2)", tr.Current())
	}
	if tr.Contains(pane(3)) {
		t.Fatalf("tree still contains removed pane(3)")
	}
}

func TestEnsureCurrentExists(t *testing.T) {
	tr := New(pane(1))
	tr.Split(pane(2), DirRight)
	tr.Remove(pane(2)) // current becomes pane(1) via removal logic already

	// Force current to point at a pane no longer in the tree: rebuild the
	// single-leaf tree from a snapshot with the removed pane as current.
	tr2 := FromSnapshot(tr.ExportSnapshot(), pane(2))
	tr2.EnsureCurrentExists()
	if tr2.Current() != pane(1) {
		t.Fatalf("EnsureCurrentExists() left Current() = %v, want pane(1)", tr2.Current())
	}
}

func TestReplaceCurrentDedupesExistingLeaf(t *testing.T) {
	tr := New(pane(1))
	tr.Split(pane(2), DirRight)
	tr.MakeCurrent(pane(1))

	old := tr.ReplaceCurrent(pane(2))
	if old != pane(1) {
		t.Fatalf("ReplaceCurrent() returned %v, want pane(1)", old)
	}
	if tr.NumPanes() != 1 {
		t.Fatalf("NumPanes() = %d, want 1 (duplicate pane(2) should collapse)", tr.NumPanes())
	}
	if tr.Current() != pane(2) {
		t.Fatalf("Current() = %v, want pane(2)", tr.Current())
	}
}

func TestGrowShrinkClamped(t *testing.T) {
	tr := New(pane(1))
	tr.Split(pane(2), DirRight)
	rect := Rect{Width: 10, Height: 10}

	for i := 0; i < 50; i++ {
		tr.GrowCurrent(rect)
	}
	bounds := tr.PaneBounds(rect)
	for _, b := range bounds {
		if b.Rect.Width < 0 || b.Rect.Width > rect.Width {
			t.Fatalf("ratio not clamped: pane %v got width %d", b.Pane, b.Rect.Width)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	tr := New(pane(1))
	tr.Split(pane(2), DirRight)
	tr.Split(pane(3), DirDown)

	snap := tr.ExportSnapshot()
	rebuilt := FromSnapshot(snap, tr.Current())

	if rebuilt.NumPanes() != tr.NumPanes() {
		t.Fatalf("rebuilt NumPanes() = %d, want %d", rebuilt.NumPanes(), tr.NumPanes())
	}
	origBounds := tr.PaneBounds(Rect{Width: 80, Height: 24})
	newBounds := rebuilt.PaneBounds(Rect{Width: 80, Height: 24})
	if len(origBounds) != len(newBounds) {
		t.Fatalf("rebuilt PaneBounds() len = %d, want %d", len(newBounds), len(origBounds))
	}
	for i := range origBounds {
		if origBounds[i] != newBounds[i] {
			t.Errorf("bound %d = %+v, want %+v", i, newBounds[i], origBounds[i])
		}
	}
}

func TestPruneMissing(t *testing.T) {
	tr := New(pane(1))
	tr.Split(pane(2), DirRight)
	tr.Split(pane(3), DirDown)

	ok := tr.PruneMissing(func(p PaneIdentity) bool { return p != pane(3) })
	if !ok {
		t.Fatalf("PruneMissing() = false, want true (panes remain)")
	}
	if tr.Contains(pane(3)) {
		t.Fatalf("tree still contains pruned pane(3)")
	}
	if tr.NumPanes() != 2 {
		t.Fatalf("NumPanes() = %d, want 2", tr.NumPanes())
	}
}
