package ptysup

import (
	"bytes"
	"testing"
	"time"
)

func TestOutputSinkRawPassthrough(t *testing.T) {
	var buf bytes.Buffer
	s := newOutputSink(&buf, false, nil, nil)
	s.write([]byte("\x1b[31mred\x1b[0m\n"))
	if got := buf.String(); got != "\x1b[31mred\x1b[0m\n" {
		t.Errorf("raw sink wrote %q, want ANSI preserved", got)
	}
}

func TestOutputSinkStripsANSI(t *testing.T) {
	var buf bytes.Buffer
	s := newOutputSink(&buf, true, nil, nil)
	s.write([]byte("\x1b[31mred\x1b[0m\n"))
	if got := buf.String(); got != "red\n" {
		t.Errorf("stripping sink wrote %q, want %q", got, "red\n")
	}
}

func TestOutputSinkTimestampsPerLine(t *testing.T) {
	var buf bytes.Buffer
	// The sink stamps each line with time.Now(), so anchor an elapsed-source
	// timestamper at the current instant to get a deterministic 00:00:00.
	ts := NewTimestamper(TimestampElapsed, "%T ", time.Now())
	s := newOutputSink(&buf, false, ts, nil)
	s.write([]byte("hello\n"))
	if got := buf.String(); got != "00:00:00 hello\n" {
		t.Errorf("timestamped sink wrote %q", got)
	}
}

func TestOutputSinkNilWriterNoOps(t *testing.T) {
	s := newOutputSink(nil, true, nil, nil)
	s.write([]byte("anything\n"))
	s.closeFinal()
	if s.isDead() {
		t.Error("nil-writer sink should not be marked dead")
	}
}

func TestOutputSinkFailMarksDeadOnce(t *testing.T) {
	calls := 0
	s := newOutputSink(nil, false, nil, nil)
	s.onWriteErr = func(error) { calls++ }
	s.fail(errTest)
	s.fail(errTest)
	if !s.isDead() {
		t.Error("sink should be dead after fail")
	}
	if calls != 1 {
		t.Errorf("onWriteErr called %d times, want 1", calls)
	}
}

var errTest = errSentinel("boom")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }
