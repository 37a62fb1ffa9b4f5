//go:build linux || darwin

package ptysup

import (
	"fmt"
	"os"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ptyPair owns the master side of an allocated pseudo-terminal. The slave is
// handed to the child at fork time and closed in the parent immediately
// after, per §4.1 — only master survives past child launch.
type ptyPair struct {
	master *os.File
}

// openPty allocates a pty pair sized to the wrapper's controlling terminal
// (preferring stdout, per the SIGWINCH open question decision in
// SPEC_FULL.md), falling back to 80x24 when neither stdin nor stdout is a
// tty.
func openPty() (*ptyPair, *os.File, error) {
	size := windowSize()

	master, slave, err := pty.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("allocate pty: %w", err)
	}
	if err := pty.Setsize(master, size); err != nil {
		master.Close()
		slave.Close()
		return nil, nil, fmt.Errorf("set initial pty size: %w", err)
	}

	return &ptyPair{master: master}, slave, nil
}

// windowSize reads the wrapper's own terminal size, preferring stdout over
// stdin; if neither is a tty it returns the 80x24 default from §4.1.
func windowSize() *pty.Winsize {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return &pty.Winsize{Rows: uint16(h), Cols: uint16(w)}
	}
	if w, h, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
		return &pty.Winsize{Rows: uint16(h), Cols: uint16(w)}
	}
	return &pty.Winsize{Rows: 24, Cols: 80}
}

// resize applies the wrapper's current terminal size to the pty master, in
// response to SIGWINCH.
func (p *ptyPair) resize() {
	pty.Setsize(p.master, windowSize())
}

// veof returns the master termios' EOF byte (usually Ctrl-D), used by pump A
// to signal end-of-input to the child after the wrapper's own stdin EOFs.
func (p *ptyPair) veof() (byte, error) {
	termios, err := unix.IoctlGetTermios(int(p.master.Fd()), ioctlGetTermios)
	if err != nil {
		return 0, fmt.Errorf("read pty termios: %w", err)
	}
	return termios.Cc[unix.VEOF], nil
}

// disableONLCR clears ONLCR on the slave-side termios so that, when the
// wrapper's own stdout is not a tty, the child's CRLF-translated output
// does not leak CRLF into a piped/redirected stream. Resolves an open
// rendering artifact the same way cbrunnkvist-ttylag does.
func disableONLCR(slave *os.File) {
	termios, err := unix.IoctlGetTermios(int(slave.Fd()), ioctlGetTermios)
	if err != nil {
		return
	}
	termios.Oflag &^= unix.ONLCR
	_ = unix.IoctlSetTermios(int(slave.Fd()), ioctlSetTermios, termios)
}

func (p *ptyPair) Close() error {
	return p.master.Close()
}
