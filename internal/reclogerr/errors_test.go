package reclogerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", Usage("bad flag %s", "-x"), 2},
		{"system", System(fmt.Errorf("boom")), 1},
		{"exec", Exec(fmt.Errorf("enoent")), 126},
		{"plain error defaults to system", fmt.Errorf("unclassified"), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	wrapped := System(inner)
	if !errors.Is(wrapped, inner) {
		t.Error("errors.Is(wrapped, inner) = false, want true")
	}
}
