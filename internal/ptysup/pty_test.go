package ptysup

import "testing"

func TestOpenPtyAndVEOF(t *testing.T) {
	pair, slave, err := openPty()
	if err != nil {
		t.Skipf("no pty available in this environment: %v", err)
	}
	defer pair.Close()
	defer slave.Close()

	eof, err := pair.veof()
	if err != nil {
		t.Fatalf("veof() error = %v", err)
	}
	if eof == 0 {
		t.Error("veof() returned zero byte, want the termios VEOF character")
	}
}
