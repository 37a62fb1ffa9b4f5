// Package diag provides go-spew debug dump helpers for --debug output,
// adapted from the teacher's pkg/fmtt.PrintErrChainDebug: walk an error
// chain printing type and value at each layer, and spew.Dump arbitrary
// session state (phase, ring eviction count, sink dead flags) to stderr.
package diag

import (
	"errors"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// DumpErrChain walks err's Unwrap chain, writing type and message for each
// layer to w. Mirrors the teacher's PrintErrChainDebug without the
// reflection-based field dump, which this package's callers don't need.
func DumpErrChain(w io.Writer, err error) {
	if err == nil {
		fmt.Fprintln(w, "<nil>")
		return
	}
	for i, e := 0, err; e != nil; i, e = i+1, errors.Unwrap(e) {
		fmt.Fprintf(w, "[%d] %T: %v\n", i, e, e)
	}
}

// DumpState spew.Dumps an arbitrary value to w, labeled. Used to print
// session phase/ring-eviction/sink-state snapshots when --debug is set.
func DumpState(w io.Writer, label string, v any) {
	fmt.Fprintf(w, "-- %s --\n", label)
	spew.Fdump(w, v)
}
