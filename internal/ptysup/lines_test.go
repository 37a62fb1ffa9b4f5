package ptysup

import "testing"

func TestLineSplitterFeedCompleteLines(t *testing.T) {
	var l lineSplitter
	lines := l.feed([]byte("a\nb\nc\n"))
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, want := range []string{"a\n", "b\n", "c\n"} {
		if string(lines[i]) != want {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want)
		}
	}
}

func TestLineSplitterCarriesPartialAcrossCalls(t *testing.T) {
	var l lineSplitter
	lines := l.feed([]byte("abc"))
	if len(lines) != 0 {
		t.Fatalf("got %d lines from partial chunk, want 0", len(lines))
	}
	lines = l.feed([]byte("def\n"))
	if len(lines) != 1 || string(lines[0]) != "abcdef\n" {
		t.Fatalf("lines = %q, want [%q]", lines, "abcdef\n")
	}
}

func TestLineSplitterFlushPartialOnlyAtEOF(t *testing.T) {
	var l lineSplitter
	l.feed([]byte("trailing"))
	partial := l.flushPartial()
	if string(partial) != "trailing" {
		t.Errorf("flushPartial() = %q, want %q", partial, "trailing")
	}
	if p := l.flushPartial(); p != nil {
		t.Errorf("second flushPartial() = %q, want nil", p)
	}
}
