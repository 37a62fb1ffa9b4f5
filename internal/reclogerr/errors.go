// Package reclogerr classifies wrapper-level errors into the five kinds of
// spec §7, so the CLI entrypoint can map any error to an exit code without
// string-sniffing, the way the teacher's HTTP handlers classify
// processmgr errors into status codes without inspecting error text.
package reclogerr

import (
	"errors"
	"fmt"
)

// Kind is one of the five error classes of §7.
type Kind int

const (
	// KindUsage is an invalid flag or argument; exit code 2.
	KindUsage Kind = iota
	// KindSystem is an open/fork/ioctl failure before the child starts; exit code 1.
	KindSystem
	// KindExec is the child failing to exec; exit code 126.
	KindExec
	// KindChildExit carries the child's own exit status; see §4.8.
	KindChildExit
	// KindRuntimeIO is a write failure on stdout or the log file; not fatal
	// on its own (§7: "mark the sink dead... continue supervising").
	KindRuntimeIO
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindSystem:
		return "system"
	case KindExec:
		return "exec"
	case KindChildExit:
		return "child-exit"
	case KindRuntimeIO:
		return "runtime-io"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with its classification, so reclog's
// main() can look it up once and map it to an exit code.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Usage wraps err as a usage error (exit 2: bad flag, bad argument).
func Usage(format string, a ...any) *Error {
	return &Error{Kind: KindUsage, Err: fmt.Errorf(format, a...)}
}

// System wraps err as a system error (exit 1: pty/fork/ioctl failure).
func System(err error) *Error {
	return &Error{Kind: KindSystem, Err: err}
}

// Exec wraps err as an exec failure (exit 126).
func Exec(err error) *Error {
	return &Error{Kind: KindExec, Err: err}
}

// ExitCode maps an Error to the process exit code per §4.8/§7. Errors that
// are not of this package's type are treated as system errors (exit 1) —
// the conservative default for anything the classifier never saw.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindUsage:
			return 2
		case KindExec:
			return 126
		default:
			return 1
		}
	}
	return 1
}
