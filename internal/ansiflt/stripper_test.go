package ansiflt

import "testing"

func TestStripper(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello\n", "hello\n"},
		{"csi color", "\x1b[31mred\x1b[0m\n", "red\n"},
		{"csi with params and intermediate", "\x1b[1;37;40mX\x1b[m\n", "X\n"},
		{"two byte esc", "a\x1bcb\n", "ab\n"},
		{"osc terminated by bel", "\x1b]0;title\x07done\n", "done\n"},
		{"preserves tab and backspace", "a\tb\bc\n", "a\tb\bc\n"},
		{"drops other c0 controls", "a\x07b\n", "ab\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStripper()
			got := string(s.Strip([]byte(tc.in)))
			if got != tc.want {
				t.Errorf("Strip(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStripperAcrossChunkBoundary(t *testing.T) {
	s := NewStripper()
	var got []byte
	got = append(got, s.Strip([]byte("\x1b[3"))...)
	got = append(got, s.Strip([]byte("1mred\x1b[0m\n"))...)
	if string(got) != "red\n" {
		t.Errorf("chunked strip = %q, want %q", got, "red\n")
	}
}

func TestStripperOSCAcrossChunkBoundary(t *testing.T) {
	s := NewStripper()
	var got []byte
	got = append(got, s.Strip([]byte("\x1b]0;ti"))...)
	got = append(got, s.Strip([]byte("tle\x07after\n"))...)
	if string(got) != "after\n" {
		t.Errorf("chunked OSC strip = %q, want %q", got, "after\n")
	}
}
