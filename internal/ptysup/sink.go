package ptysup

import (
	"bufio"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/edirooss/reclog/internal/ansiflt"
)

// outputSink is pump D's target (§3 "Output sink"). It wraps the log file
// (or discards everything for the null sink, §6 "-N/--null"), optionally
// strips ANSI escape sequences, and optionally prepends per-line
// timestamps. Write errors mark the sink dead without propagating into the
// pty read path (§9 "Error on write to stdout or file").
type outputSink struct {
	w          io.Writer
	bufw       *bufio.Writer
	stripper   *ansiflt.Stripper // nil when --raw
	ts         *Timestamper      // nil when --ts is off
	split      lineSplitter      // only used when ts != nil
	dead       atomic.Bool
	onWriteErr func(error)
}

func newOutputSink(w io.Writer, strip bool, ts *Timestamper, onWriteErr func(error)) *outputSink {
	s := &outputSink{
		w:          w,
		ts:         ts,
		onWriteErr: onWriteErr,
	}
	if w != nil {
		s.bufw = bufio.NewWriter(w)
	}
	if strip {
		s.stripper = ansiflt.NewStripper()
	}
	return s
}

// write processes a raw chunk from pump B: optionally strips ANSI, then
// either streams the result straight through (no timestamps) or splits it
// into complete lines and prepends a timestamp to each (§4.6).
//
// This is only ever called from pump D, so no internal locking is needed.
func (s *outputSink) write(p []byte) {
	if s.dead.Load() || s.w == nil {
		return
	}
	if s.stripper != nil {
		p = s.stripper.Strip(p)
	}
	if s.ts == nil {
		if _, err := s.bufw.Write(p); err != nil {
			s.fail(err)
			return
		}
		if err := s.bufw.Flush(); err != nil {
			s.fail(err)
		}
		return
	}
	for _, line := range s.split.feed(p) {
		if err := writeTimestampedLine(s.bufw, s.ts, line); err != nil {
			s.fail(err)
			return
		}
	}
}

// closeFinal flushes any trailing partial line (timestamped mode only),
// called once at EOF so a final unterminated line is not lost.
func (s *outputSink) closeFinal() {
	if s.ts == nil || s.w == nil || s.dead.Load() {
		return
	}
	if partial := s.split.flushPartial(); len(partial) > 0 {
		_ = writeTimestampedLine(s.bufw, s.ts, partial)
	}
}

func (s *outputSink) fail(err error) {
	if s.dead.CompareAndSwap(false, true) {
		if s.onWriteErr != nil {
			s.onWriteErr(err)
		}
	}
}

func (s *outputSink) isDead() bool { return s.dead.Load() }

// writeTimestampedLine writes a single already-newline-terminated line,
// prepending a timestamp when ts is non-nil. Used by both the stdout and
// file pipelines so the "single timestamp per newline-terminated unit"
// invariant (§4.6) holds identically for both.
func writeTimestampedLine(w *bufio.Writer, ts *Timestamper, line []byte) error {
	if ts != nil {
		if _, err := w.WriteString(ts.Next(time.Now())); err != nil {
			return err
		}
	}
	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.Flush()
}

// stdoutSink is pump C's target: the wrapper's own stdout, with a "silent"
// mode (§6 "-s/--silent") and a dead flag so a broken stdout never blocks
// the ring consumer (§4.7 pump C).
type stdoutSink struct {
	w      *bufio.Writer
	silent bool
	dead   atomic.Bool
}

func newStdoutSink(silent bool) *stdoutSink {
	return &stdoutSink{w: bufio.NewWriter(os.Stdout), silent: silent}
}

func (s *stdoutSink) writeLine(ts *Timestamper, line []byte) {
	if s.silent || s.dead.Load() {
		return
	}
	if err := writeTimestampedLine(s.w, ts, line); err != nil {
		s.dead.Store(true)
	}
}
