package indent

import "testing"

func TestDetectIndentationSpaces(t *testing.T) {
	text := "func f() {\n    x := 1\n    if x {\n        y := 2\n    }\n}\n"
	got := DetectIndentation(text)
	if got.Kind != KindSpaces || got.Width != 4 {
		t.Errorf("got %+v, want Spaces(4)", got)
	}
}

func TestDetectIndentationTabs(t *testing.T) {
	text := "func f() {\n\tx := 1\n\tif x {\n\t\ty := 2\n\t}\n}\n"
	got := DetectIndentation(text)
	if got.Kind != KindTabs {
		t.Errorf("got %+v, want Tabs", got)
	}
}

func TestDetectIndentationEmpty(t *testing.T) {
	got := DetectIndentation("")
	if got != Default() {
		t.Errorf("got %+v, want default", got)
	}
}

func TestUnitAndColumnWidth(t *testing.T) {
	sp := Spaces(2)
	if sp.Unit() != "  " || sp.ColumnWidth() != 2 {
		t.Errorf("Spaces(2) unit/width mismatch: %q %d", sp.Unit(), sp.ColumnWidth())
	}
	tb := Tabs(8)
	if tb.Unit() != "\t" || tb.ColumnWidth() != 8 {
		t.Errorf("Tabs(8) unit/width mismatch: %q %d", tb.Unit(), tb.ColumnWidth())
	}
}
