package ptysup

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// termGuard is the "scoped acquirer" of §9: it snapshots the user's stdin
// terminal mode once at startup and restores it exactly once on any exit
// path, including panics, mirroring the teacher's closeOnce/startOnce
// idempotence idiom (processmgr.process) applied to global terminal state
// instead of process lifecycle.
type termGuard struct {
	fd       int
	isTTY    bool
	orig     *unix.Termios
	restored bool
}

func newTermGuard(fd int) *termGuard {
	g := &termGuard{fd: fd}
	if !term.IsTerminal(fd) {
		return g
	}
	g.isTTY = true
	if t, err := unix.IoctlGetTermios(fd, ioctlGetTermios); err == nil {
		g.orig = t
	}
	return g
}

// setCanonical ensures stdin is in canonical, line-buffered, echoing mode
// (§4.7 pump A: "If stdin is a tty, switch it to canonical mode with
// line-buffered input at startup").
func (g *termGuard) setCanonical() {
	if !g.isTTY || g.orig == nil {
		return
	}
	t := *g.orig
	t.Lflag |= unix.ICANON | unix.ECHO
	_ = unix.IoctlSetTermios(g.fd, ioctlSetTermios, &t)
}

// restore puts stdin back exactly as found. Idempotent and safe to call
// from a deferred recover() handler as well as the normal exit path.
func (g *termGuard) restore() {
	if !g.isTTY || g.orig == nil || g.restored {
		return
	}
	g.restored = true
	_ = unix.IoctlSetTermios(g.fd, ioctlSetTermios, g.orig)
}

var stdinFd = int(os.Stdin.Fd())
