package logx

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFilteringSuppressesBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: Warn, Output: &buf})

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing logged below Warn, got %q", buf.String())
	}

	l.Warn("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Fatalf("expected warn message logged, got %q", buf.String())
	}
}

func TestWithFieldChainsWithoutMutatingParent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: Debug, Output: &buf})
	child := base.WithField("component", "buffer")

	child.Info("hello")
	if !strings.Contains(buf.String(), "component=buffer") {
		t.Fatalf("expected child log to carry field, got %q", buf.String())
	}

	buf.Reset()
	base.Info("world")
	if strings.Contains(buf.String(), "component=buffer") {
		t.Fatalf("parent logger should not carry the child's field, got %q", buf.String())
	}
}

func TestWithComponentIsFieldShorthand(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: Debug, Output: &buf}).WithComponent("search")
	l.Info("rescanned")
	if !strings.Contains(buf.String(), "component=search") {
		t.Fatalf("expected component field, got %q", buf.String())
	}
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Fatal("Default() should return the same process-wide instance across calls")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"WARN":    Warn,
		"warning": Warn,
		"error":   Error,
		"bogus":   Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
