package filedaemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func TestWalkAndPublishSortsNaturally(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "file10.txt"), "a")
	writeFile(t, filepath.Join(root, "file2.txt"), "b")
	writeFile(t, filepath.Join(root, "file1.txt"), "c")

	d := New(root, WithWatch(false))
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case list := <-d.Lists():
		want := []string{"file1.txt", "file2.txt", "file10.txt"}
		if len(list) != len(want) {
			t.Fatalf("list = %v, want %v", list, want)
		}
		for i := range want {
			if list[i] != want[i] {
				t.Errorf("list[%d] = %q, want %q", i, list[i], want[i])
			}
		}
	default:
		t.Fatal("expected a published list after Start()")
	}
}

func TestWalkRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\nbuild/\n")
	writeFile(t, filepath.Join(root, "keep.txt"), "a")
	writeFile(t, filepath.Join(root, "drop.log"), "a")
	writeFile(t, filepath.Join(root, "build", "out.bin"), "a")

	d := New(root, WithWatch(false))
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	list := <-d.Lists()
	for _, p := range list {
		if p == "drop.log" || filepath.Dir(p) == "build" {
			t.Errorf("list contains ignored path %q: %v", p, list)
		}
	}
	found := false
	for _, p := range list {
		if p == "keep.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf("list missing keep.txt: %v", list)
	}
}

func TestWalkRespectsNestedGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", ".gitignore"), "local.tmp\n")
	writeFile(t, filepath.Join(root, "sub", "local.tmp"), "a")
	writeFile(t, filepath.Join(root, "sub", "keep.go"), "a")

	d := New(root, WithWatch(false))
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	list := <-d.Lists()
	for _, p := range list {
		if p == filepath.ToSlash(filepath.Join("sub", "local.tmp")) {
			t.Errorf("list contains nested-ignored path: %v", list)
		}
	}
}

func TestIgnoreHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden"), "a")
	writeFile(t, filepath.Join(root, "visible.txt"), "a")

	d := New(root, WithWatch(false), WithIgnoreHidden(true))
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	list := <-d.Lists()
	for _, p := range list {
		if p == ".hidden" {
			t.Errorf("list contains hidden path despite IgnoreHidden: %v", list)
		}
	}
}

func TestFilterBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "text.txt"), "hello world\n")
	if err := os.WriteFile(filepath.Join(root, "blob.bin"), []byte{0, 1, 2, 3, 0}, 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	d := New(root, WithWatch(false), WithFilterBinary(true))
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	list := <-d.Lists()
	for _, p := range list {
		if p == "blob.bin" {
			t.Errorf("list contains binary file despite FilterBinary: %v", list)
		}
	}
}

func TestChunkedPublishYieldsFinalCompleteList(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(root, string(rune('a'+i))+".txt"), "x")
	}

	d := New(root, WithWatch(false), WithChunkSize(2))
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	list := <-d.Lists()
	if len(list) != 5 {
		t.Fatalf("final list len = %d, want 5: %v", len(list), list)
	}
}

func TestWatchRepublishesOnChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	d := New(root, WithDebounceDelay(20*time.Millisecond))
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer d.Close()

	<-d.Lists() // drain the initial publish

	writeFile(t, filepath.Join(root, "b.txt"), "b")

	select {
	case <-d.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a Changed pulse after a new file was created")
	}

	select {
	case list := <-d.Lists():
		found := false
		for _, p := range list {
			if p == "b.txt" {
				found = true
			}
		}
		if !found {
			t.Errorf("republished list missing new file: %v", list)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a republished list after the debounce window")
	}
}

func TestCloseStopsWatcher(t *testing.T) {
	root := t.TempDir()
	d := New(root)
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-d.Lists()

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close() error = %v, want nil (idempotent)", err)
	}
}

func TestMatcherCacheEviction(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	c := newMatcherCache()
	_ = c.resolve(root, root, time.Now().UnixNano())
	if len(c.entries) != 1 {
		t.Fatalf("entries = %d, want 1 after resolve", len(c.entries))
	}

	c.evictIdle(time.Now().UnixNano())
	if len(c.entries) != 0 {
		t.Fatalf("entries = %d, want 0 after evictIdle", len(c.entries))
	}
}

func TestSniffBinary(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"plain text", []byte("hello, world\n"), false},
		{"utf8 text", []byte("caf\xc3\xa9\n"), false},
		{"nul byte", []byte("hello\x00world"), true},
		{"invalid utf8 lead byte", []byte{0x80, 0x81, 0x82}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffBinary(tt.data); got != tt.want {
				t.Errorf("sniffBinary(%q) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}
