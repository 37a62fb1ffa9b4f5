package ptysup

import (
	"os/exec"
	"syscall"
	"testing"
)

func TestExitCodeForNormalExit(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 3")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected non-nil error from exit 3")
	}
	if got := exitCodeFor(cmd.ProcessState, err); got != 3 {
		t.Errorf("exitCodeFor() = %d, want 3", got)
	}
}

func TestExitCodeForSignaled(t *testing.T) {
	cmd := exec.Command("sh", "-c", "kill -TERM $$")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected non-nil error from self-termination")
	}
	want := 128 + int(syscall.SIGTERM)
	if got := exitCodeFor(cmd.ProcessState, err); got != want {
		t.Errorf("exitCodeFor() = %d, want %d", got, want)
	}
}

func TestExitCodeForNilState(t *testing.T) {
	if got := exitCodeFor(nil, nil); got != 1 {
		t.Errorf("exitCodeFor(nil, nil) = %d, want 1", got)
	}
}
