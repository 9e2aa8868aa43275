package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/vellum/internal/buffer"
	"github.com/dshills/vellum/internal/panetree"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func TestOpenSeedsPaneTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "hello")

	w := New()
	id, buf, err := w.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if buf.Text() != "hello" {
		t.Errorf("buf.Text() = %q, want %q", buf.Text(), "hello")
	}
	if w.Panes() == nil {
		t.Fatal("Panes() = nil after first Open()")
	}
	if w.Panes().NumPanes() != 1 {
		t.Errorf("NumPanes() = %d, want 1", w.Panes().NumPanes())
	}
	if w.Panes().Current().BufferID != uint64(id) {
		t.Errorf("Current().BufferID = %d, want %d", w.Panes().Current().BufferID, id)
	}
}

func TestOpenIsIdempotentByPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "hello")

	w := New()
	id1, _, err := w.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	id2, _, err := w.Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("second Open() returned a new id %d, want %d", id2, id1)
	}
	if w.Count() != 1 {
		t.Errorf("Count() = %d, want 1", w.Count())
	}
}

func TestOpenScratchAndClose(t *testing.T) {
	w := New()
	id := w.OpenScratch(buffer.NewFromString("scratch text"))
	if w.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", w.Count())
	}

	if err := w.Close(id); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if w.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after Close()", w.Count())
	}
	if _, ok := w.Get(id); ok {
		t.Error("Get() found a buffer after Close()")
	}
}

func TestClosePrunesPaneTree(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	writeFile(t, pathA, "a")
	writeFile(t, pathB, "b")

	w := New()
	idA, _, _ := w.Open(pathA)
	idB, _, _ := w.Open(pathB)

	w.Panes().Split(panetree.PaneIdentity{BufferID: uint64(idB)}, panetree.DirRight)
	if w.Panes().NumPanes() != 2 {
		t.Fatalf("NumPanes() = %d, want 2", w.Panes().NumPanes())
	}

	if err := w.Close(idB); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if w.Panes().NumPanes() != 1 {
		t.Errorf("NumPanes() = %d, want 1 after closing idB", w.Panes().NumPanes())
	}
	if w.Panes().Current().BufferID != uint64(idA) {
		t.Errorf("Current().BufferID = %d, want %d", w.Panes().Current().BufferID, idA)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	writeFile(t, pathA, "hello world")
	writeFile(t, pathB, "goodbye world")

	w := New()
	idA, bufA, _ := w.Open(pathA)
	idB, _, _ := w.Open(pathB)
	w.Panes().Split(panetree.PaneIdentity{BufferID: uint64(idB)}, panetree.DirRight)
	bufA.SetScroll(3, 2)

	data, err := w.SaveLayoutJSON()
	if err != nil {
		t.Fatalf("SaveLayoutJSON() error = %v", err)
	}

	w2 := New()
	if err := w2.LoadLayoutJSON(data); err != nil {
		t.Fatalf("LoadLayoutJSON() error = %v", err)
	}
	if w2.Count() != 2 {
		t.Fatalf("reloaded Count() = %d, want 2", w2.Count())
	}
	if w2.Panes().NumPanes() != 2 {
		t.Errorf("reloaded NumPanes() = %d, want 2", w2.Panes().NumPanes())
	}

	var reloadedA *buffer.Buffer
	for _, id := range w2.All() {
		if w2.Path(id) == pathA {
			reloadedA, _ = w2.Get(id)
		}
	}
	if reloadedA == nil {
		t.Fatal("reloaded workspace missing path a.txt")
	}
	lineTop, colLeft := reloadedA.Scroll()
	if lineTop != 3 || colLeft != 2 {
		t.Errorf("reloaded scroll = (%d,%d), want (3,2)", lineTop, colLeft)
	}
}

func TestLoadLayoutDropsMissingPaths(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	writeFile(t, pathA, "a")

	root := &LayoutNode{
		Split: panetree.SplitVertical,
		Ratio: 0.5,
		Left:  &LayoutNode{Leaf: &LeafSnapshot{Path: pathA}},
		Right: &LayoutNode{Leaf: &LeafSnapshot{Path: filepath.Join(dir, "missing.txt")}},
	}

	w := New()
	if err := w.LoadLayout(root); err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}
	if w.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 (missing path dropped)", w.Count())
	}
	if w.Panes().NumPanes() != 1 {
		t.Errorf("NumPanes() = %d, want 1", w.Panes().NumPanes())
	}
}
