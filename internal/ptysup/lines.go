package ptysup

// lineSplitter turns an arbitrary byte-chunk stream into complete,
// newline-terminated lines, carrying over an incomplete trailing line
// across calls. This is the "carry-over byte accumulator" described for the
// ring buffer producer in §4.4, and is reused by the file sink's
// timestamp-per-line prefixing so both pipelines apply the same
// one-timestamp-per-newline-terminated-unit rule (§4.6).
type lineSplitter struct {
	carry []byte
}

// feed returns zero or more complete lines (each including its trailing
// \n) extracted from chunk, retaining any trailing partial line internally.
func (l *lineSplitter) feed(chunk []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range chunk {
		if b == '\n' {
			var line []byte
			if len(l.carry) > 0 {
				line = make([]byte, 0, len(l.carry)+i+1-start)
				line = append(line, l.carry...)
				line = append(line, chunk[start:i+1]...)
				l.carry = nil
			} else {
				line = append([]byte(nil), chunk[start:i+1]...)
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(chunk) {
		l.carry = append(l.carry, chunk[start:]...)
	}
	return lines
}

// flushPartial returns any carried-over partial line (without a trailing
// newline) and clears it. Only called at EOF, per the ring buffer contract
// of §4.4 ("a trailing partial line only at EOF").
func (l *lineSplitter) flushPartial() []byte {
	if len(l.carry) == 0 {
		return nil
	}
	out := l.carry
	l.carry = nil
	return out
}
