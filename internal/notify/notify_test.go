package notify

import (
	"testing"

	"github.com/dshills/vellum/internal/rope"
)

func TestNopNotifierDiscardsEverything(t *testing.T) {
	var n Notifier = NopNotifier{}
	// Neither call should panic; NopNotifier exists purely to give Buffer a
	// safe default when no real collaborator is wired up.
	n.NotifyChanged("text", 1)
	n.NotifyCursorMoved(rope.Point{Line: 0, Column: 0})
}

func TestMemClipboardRoundTripsMainChannel(t *testing.T) {
	c := NewMemClipboard()

	if got, err := c.Get(); err != nil || got != "" {
		t.Fatalf("Get() on fresh clipboard = %q, %v, want empty, nil", got, err)
	}

	if err := c.Set("hello"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := c.Get(); err != nil || got != "hello" {
		t.Fatalf("Get() = %q, %v, want %q, nil", got, err, "hello")
	}
}

func TestMemClipboardPrimaryChannelIsIndependent(t *testing.T) {
	c := NewMemClipboard()

	if err := c.Set("main"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.SetPrimary("primary"); err != nil {
		t.Fatalf("SetPrimary: %v", err)
	}

	main, _ := c.Get()
	primary, _ := c.GetPrimary()
	if main != "main" || primary != "primary" {
		t.Fatalf("main=%q primary=%q, want independent channels", main, primary)
	}
}
