package ptysup

import (
	"strings"
	"time"
)

// TimestampSource selects what a Timestamper measures (§4.6).
type TimestampSource int

const (
	TimestampWall TimestampSource = iota
	TimestampElapsed
	TimestampDelta
)

// Timestamper renders a per-line timestamp prefix. It mutates lastEmit/first
// on every call and is not safe for concurrent or shared use: the stdout
// pipeline (pump C) and file pipeline (pump D) each get their own instance
// from New, constructed from the same start instant, which preserves the
// "strictly per newline-terminated unit" ordering guarantee of §4.6
// independently per stream.
type Timestamper struct {
	source   TimestampSource
	format   string
	start    time.Time
	lastEmit time.Time
	first    bool
}

// NewTimestamper constructs a Timestamper anchored at the given start
// instant (normally session start).
func NewTimestamper(source TimestampSource, format string, start time.Time) *Timestamper {
	return &Timestamper{
		source: source,
		format: format,
		start:  start,
		first:  true,
	}
}

// Next renders the timestamp for the next line and advances internal state
// (for TimestampDelta, lastEmit moves to now).
func (t *Timestamper) Next(now time.Time) string {
	var d time.Duration
	switch t.source {
	case TimestampElapsed:
		d = now.Sub(t.start)
	case TimestampDelta:
		if t.first {
			d = 0
		} else {
			d = now.Sub(t.lastEmit)
		}
		t.lastEmit = now
		t.first = false
	default: // TimestampWall
		return formatStrftime(t.format, now)
	}
	// Render duration-based sources against the Unix epoch plus the
	// duration, so the same strftime-style format string works uniformly
	// for wall, elapsed and delta sources.
	return formatStrftime(t.format, time.Unix(0, 0).UTC().Add(d))
}

// formatStrftime renders a small, commonly-used subset of strftime-style
// directives (the set §6 documents via the default "%T%.3f "): %T (HH:MM:SS),
// %S (seconds, 2-digit), %M (minutes), %H (hours), and a literal ".3f"-style
// fractional-seconds suffix written as "%.3f" in the format string.
func formatStrftime(format string, t time.Time) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'T':
			b.WriteString(t.Format("15:04:05"))
		case 'H':
			b.WriteString(t.Format("15"))
		case 'M':
			b.WriteString(t.Format("04"))
		case 'S':
			b.WriteString(t.Format("05"))
		case '.':
			// "%.Nf" — N digits of fractional seconds.
			if i+1 < len(format)-1 && format[i+2] == 'f' {
				n := int(format[i+1] - '0')
				if n < 1 || n > 9 {
					n = 3
				}
				frac := t.Format(".000000000")[1 : 1+n]
				b.WriteByte('.')
				b.WriteString(frac)
				i += 2
			} else {
				b.WriteByte('%')
				b.WriteByte('.')
			}
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}
