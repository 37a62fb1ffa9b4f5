package ptysup

import (
	"bufio"
	"errors"
	"io"
	"os"
	"syscall"

	"go.uber.org/zap"
)

// pumpStdinToPty is pump A (§4.7.A): forwards the wrapper's stdin to the pty
// master. On stdin EOF it writes the pty's VEOF byte so the child's next
// read returns 0, then returns.
//
// A blocking read on os.Stdin cannot be cancelled from outside in Go; on
// shutdown this goroutine is simply abandoned (the process exit reclaims
// it), which is the same trade-off cbrunnkvist-ttylag's upstream shaper
// goroutine makes.
func (s *Session) pumpStdinToPty() {
	defer s.pumpDone("A")

	if s.termGuard.isTTY {
		s.termGuard.setCanonical()
	}

	r := bufio.NewReaderSize(os.Stdin, 64*1024)
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := s.pty.master.Write(buf[:n]); werr != nil {
				s.log.Debug("pump A write to pty failed", zap.Error(werr))
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				s.log.Debug("pump A stdin read error", zap.Error(err))
			}
			s.sendVEOF()
			return
		}
	}
}

// sendVEOF writes the pty master's EOF byte so the child's next slave read
// returns 0, per the VEOF glossary entry and the open question in §9 about
// non-tty stdin EOF: the wrapper stays alive and exits only on child exit.
func (s *Session) sendVEOF() {
	eof, err := s.pty.veof()
	if err != nil {
		return
	}
	_, _ = s.pty.master.Write([]byte{eof})
}

// pumpPtyToSplitter is pump B (§4.7.B): reads the pty master and fans each
// chunk out to the file pipeline (via a bounded channel to pump D, so a
// slow disk never stalls this hot read loop beyond the channel's capacity)
// and the stdout-via-ring pipeline (in-process, non-blocking). Both
// pipelines see bytes in the same order pump B read them. Terminates on EOF
// or EIO, both treated as clean end-of-session per §4.7.
func (s *Session) pumpPtyToSplitter() {
	defer s.pumpDone("B")
	defer close(s.pumpBDone)
	defer close(s.fileChunks)

	var ringSplit lineSplitter
	buf := make([]byte, 64*1024)
	for {
		n, err := s.pty.master.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			s.fileChunks <- chunk
			for _, line := range ringSplit.feed(chunk) {
				s.pushRing(line)
			}
		}
		if err != nil {
			if isCleanPtyEOF(err) {
				if partial := ringSplit.flushPartial(); len(partial) > 0 {
					s.pushRing(partial)
				}
				return
			}
			s.log.Debug("pump B pty read error", zap.Error(err))
			return
		}
	}
}

// pumpFileWriter is pump D (§4.7.D): consumes the byte-chunk stream pump B
// produced and writes it (optionally stripped, optionally timestamped) to
// the output file, flushing after each write. On write error it marks the
// file sink dead and surfaces the error to the supervisor, without ever
// blocking pump B beyond the channel's buffering.
func (s *Session) pumpFileWriter() {
	defer s.pumpDone("D")
	for chunk := range s.fileChunks {
		s.fileSink.write(chunk)
	}
	s.fileSink.closeFinal()
}

func isCleanPtyEOF(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, syscall.EIO) {
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr.Err, syscall.EIO)
	}
	return false
}

func (s *Session) pushRing(line []byte) {
	if s.ring == nil {
		// Buffering disabled (--buffer 0): write straight through.
		s.stdoutSink.writeLine(s.stdoutTS, line)
		return
	}
	s.ring.push(string(line))
}

// pumpRingToStdout is pump C (§4.7.C): dequeues lines and writes them to
// stdout, flushing after each. If stdout dies it keeps draining and
// discarding so pump B is never blocked on a full ring (§4.7).
func (s *Session) pumpRingToStdout() {
	defer s.pumpDone("C")
	if s.ring == nil {
		return
	}
	for {
		line, ok := s.ring.pop()
		if !ok {
			return
		}
		s.stdoutSink.writeLine(s.stdoutTS, []byte(line))
	}
}
