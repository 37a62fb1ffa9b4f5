// Package ptysup implements the session supervisor of spec §1: the
// concurrent I/O and control-flow engine that pairs a pty master with three
// byte streams (user stdin, user stdout, log file) and drives the
// RUN/DRAINING/KILLING/EXITED lifecycle of §4.8.
//
// The package is the direct descendant of the teacher's
// internal/infrastructure/processmgr package: process-group signal
// forwarding, SIGTERM-then-SIGKILL escalation, a fixed-capacity circular
// buffer and sync.Once-guarded idempotent shutdown are all carried over from
// processmgr.process and processmgr.logBuffer, generalized from managing a
// fleet of remux children to supervising exactly one pty-attached child.
package ptysup

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/edirooss/reclog/internal/diag"
	"github.com/edirooss/reclog/internal/reclogerr"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Phase is the lifecycle state of §4.8's RUN/DRAINING/KILLING/EXITED
// state machine.
type Phase int32

const (
	PhaseRun Phase = iota
	PhaseDraining
	PhaseKilling
	PhaseExited
)

func (p Phase) String() string {
	switch p {
	case PhaseRun:
		return "RUN"
	case PhaseDraining:
		return "DRAINING"
	case PhaseKilling:
		return "KILLING"
	case PhaseExited:
		return "EXITED"
	default:
		return "UNKNOWN"
	}
}

// Options configures a Session. Everything here is parsed once by the CLI
// layer (out of this package's scope per §1) into this immutable struct,
// the way the teacher parses its channel DTOs once before handing them to
// processmgr.
type Options struct {
	Argv []string
	Env  []string

	HeaderLine string // written verbatim + "\n" to stdout and file before child output, if non-empty

	Timestamp bool
	TSFormat  string
	TSSource  TimestampSource

	FileWriter io.Writer // nil selects the null sink (§6 -N/--null)
	RawFile    bool      // disable ANSI stripping on the file sink (§6 -R/--raw)
	Silent     bool      // disable stdout output (§6 -s/--silent)

	QuitDeadline time.Duration // §6 -q/--quit, drain/termination deadline
	KillDeadline time.Duration // deadline after escalating to SIGKILL

	BufferLines int // §6 -b/--buffer; 0 disables the ring entirely

	Logger *zap.Logger
	Debug  bool // §6 -D/--debug; also dumps session state via internal/diag
}

// Session owns the pty, the child process, the pumps and the deadline
// timers for one reclog invocation (§3 "Session").
type Session struct {
	id   string
	opts Options
	log  *zap.Logger

	pty   *ptyPair
	slave *os.File
	pg    int
	cmd   *exec.Cmd

	fileSink   *outputSink
	fileChunks chan []byte
	ring       *ringBuffer
	stdoutSink *stdoutSink
	stdoutTS   *Timestamper
	termGuard  *termGuard
	sigs       *signalPlane

	pumpBDone chan struct{}

	start time.Time

	phase atomic.Int32

	firstWriteErr atomic.Pointer[error]
}

// New allocates the pty, wires the sinks, writes the header line if
// configured, and launches the child. On success the slave fd has already
// been closed in the parent per §4.1.
func New(opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New().String()
	log = log.With(zap.String("session_id", id))

	pair, slave, err := openPty()
	if err != nil {
		return nil, reclogerr.System(fmt.Errorf("new session: %w", err))
	}

	if !stdoutIsTTY() {
		// stdout is not the controlling terminal; suppress ONLCR on the
		// slave so the child's CRLF-translated output doesn't leak CRLF
		// into a piped/redirected stream, resolving the same rendering
		// artifact cbrunnkvist-ttylag does.
		disableONLCR(slave)
	}

	var ring *ringBuffer
	if opts.BufferLines > 0 {
		ring = newRingBuffer(opts.BufferLines)
	}

	// Each pipeline gets its own Timestamper: pump C (stdout) and pump D
	// (file) run concurrently, and Timestamper.Next mutates lastEmit/first
	// with no synchronization, so a shared instance races and double-counts
	// deltas. Both start from the same instant so wall/elapsed output still
	// agrees between the two streams.
	var stdoutTS, fileTS *Timestamper
	if opts.Timestamp {
		tsStart := time.Now()
		stdoutTS = NewTimestamper(opts.TSSource, opts.TSFormat, tsStart)
		fileTS = NewTimestamper(opts.TSSource, opts.TSFormat, tsStart)
	}

	s := &Session{
		id:         id,
		opts:       opts,
		log:        log,
		pty:        pair,
		slave:      slave,
		fileChunks: make(chan []byte, 256),
		ring:       ring,
		stdoutSink: newStdoutSink(opts.Silent),
		stdoutTS:   stdoutTS,
		pumpBDone:  make(chan struct{}),
		start:      time.Now(),
	}
	s.termGuard = newTermGuard(stdinFd)
	s.fileSink = newOutputSink(opts.FileWriter, !opts.RawFile, fileTS, s.onFileWriteErr)

	if opts.HeaderLine != "" {
		s.stdoutSink.writeLine(nil, []byte(opts.HeaderLine+"\n"))
		if opts.FileWriter != nil {
			io.WriteString(opts.FileWriter, opts.HeaderLine+"\n")
		}
	}

	cmd, err := launchChild(opts.Argv, opts.Env, slave)
	if err != nil {
		if opts.Debug {
			diag.DumpErrChain(os.Stderr, err)
		}
		pair.Close()
		slave.Close()
		return nil, err
	}
	s.cmd = cmd
	s.pg = pgid(cmd)
	slave.Close()

	return s, nil
}

func (s *Session) onFileWriteErr(err error) {
	s.firstWriteErr.CompareAndSwap(nil, &err)
	s.log.Debug("file sink write failed, continuing without it", zap.Error(err))
}

func (s *Session) pumpDone(name string) {
	s.log.Debug("pump terminated", zap.String("pump", name))
}

// Run drives the supervisor loop until the session reaches EXITED, and
// returns the process's exit code per §4.8's exit status mapping.
func (s *Session) Run() int {
	s.sigs = newSignalPlane()
	defer s.sigs.stop()
	defer s.termGuard.restore()

	// Pump A is abandoned on shutdown: a blocking stdin read cannot be
	// cancelled from outside in Go, so it is never waited on (§9 open
	// question; §5 "Cancellation and timeouts").
	go s.pumpStdinToPty()

	eg := &errgroup.Group{}
	eg.Go(func() error { s.pumpPtyToSplitter(); return nil })
	eg.Go(func() error { s.pumpFileWriter(); return nil })
	eg.Go(func() error { s.pumpRingToStdout(); return nil })

	type childResult struct {
		state *os.ProcessState
		err   error
	}
	childDone := make(chan childResult, 1)
	go func() {
		state, err := s.cmd.Wait()
		childDone <- childResult{state, err}
	}()

	s.phase.Store(int32(PhaseRun))

	var (
		armedGraceful bool
		tstpArmed     bool
		deadlineTimer *time.Timer
		deadlineCh    <-chan time.Time
		pumpBDoneCh   = s.pumpBDone
		childDoneCh   = childDone
		result        childResult
		haveResult    bool
	)

	enterDraining := func() {
		if Phase(s.phase.Load()) != PhaseRun {
			return
		}
		s.phase.Store(int32(PhaseDraining))
		deadlineTimer = time.NewTimer(s.opts.QuitDeadline)
		deadlineCh = deadlineTimer.C
	}
	enterKilling := func(d time.Duration) {
		s.phase.Store(int32(PhaseKilling))
		if deadlineTimer != nil {
			deadlineTimer.Stop()
		}
		deadlineTimer = time.NewTimer(d)
		deadlineCh = deadlineTimer.C
	}

loop:
	for Phase(s.phase.Load()) != PhaseExited {
		select {
		case sig, ok := <-s.sigs.ch:
			if !ok {
				continue
			}
			s.handleSignal(sig, &armedGraceful, &tstpArmed, enterKilling)

		case r := <-childDoneCh:
			result, haveResult = r, true
			childDoneCh = nil
			if Phase(s.phase.Load()) == PhaseKilling {
				s.phase.Store(int32(PhaseExited))
				break loop
			}
			enterDraining()

		case <-pumpBDoneCh:
			pumpBDoneCh = nil
			switch Phase(s.phase.Load()) {
			case PhaseRun:
				enterDraining()
			case PhaseDraining:
				s.phase.Store(int32(PhaseExited))
			}

		case <-deadlineCh:
			switch Phase(s.phase.Load()) {
			case PhaseDraining:
				s.pty.Close() // forces pump B to observe EOF/EIO
				s.phase.Store(int32(PhaseExited))
			case PhaseKilling:
				signalGroup(s.pg, syscall.SIGKILL)
				s.phase.Store(int32(PhaseExited))
			}
			break loop
		}
	}

	if deadlineTimer != nil {
		deadlineTimer.Stop()
	}
	s.pty.Close() // unblocks pump B (EOF/EIO)
	if s.ring != nil {
		s.ring.close() // unblocks pump C once B stops producing
	}
	eg.Wait()

	if !haveResult {
		select {
		case r := <-childDone:
			result, haveResult = r, true
		case <-time.After(s.opts.KillDeadline):
		}
	}

	if s.opts.Debug {
		var evicted uint64
		if s.ring != nil {
			evicted = s.ring.evictedCount()
		}
		diag.DumpState(os.Stderr, "session", struct {
			Phase          string
			RingEvicted    uint64
			StdoutSinkDead bool
			FileSinkDead   bool
		}{
			Phase:          Phase(s.phase.Load()).String(),
			RingEvicted:    evicted,
			StdoutSinkDead: s.stdoutSink.dead.Load(),
			FileSinkDead:   s.fileSink.isDead(),
		})
	}

	return exitCodeFor(result.state, result.err)
}

func (s *Session) handleSignal(sig os.Signal, armedGraceful, tstpArmed *bool, enterKilling func(time.Duration)) {
	ssig, _ := sig.(syscall.Signal)
	switch classify(sig) {
	case classGraceful:
		if Phase(s.phase.Load()) == PhaseKilling {
			return
		}
		if *armedGraceful || Phase(s.phase.Load()) == PhaseDraining {
			_ = signalGroup(s.pg, syscall.SIGKILL)
			enterKilling(s.opts.KillDeadline)
			return
		}
		// Always forward SIGTERM on the first graceful occurrence, regardless
		// of whether SIGINT or SIGTERM arrived: a child that traps TERM
		// (§8.6) must see the same signal it ignores before escalation, or
		// the untrapped alternate (SIGINT) kills it before the second signal
		// can ever reach the SIGKILL path.
		_ = signalGroup(s.pg, syscall.SIGTERM)
		*armedGraceful = true

	case classEmergency:
		_ = signalGroup(s.pg, ssig)
		enterKilling(s.opts.QuitDeadline)

	case classSuspend:
		if *tstpArmed {
			_ = signalGroup(s.pg, syscall.SIGSTOP)
			return
		}
		_ = signalGroup(s.pg, syscall.SIGTSTP)
		*tstpArmed = true
		// Wait for the child to actually stop (WUNTRACED-equivalent) before
		// stopping ourselves, so the terminal's process-group stop isn't
		// racing the child's own transition into the T state (§4.3).
		waitChildStopped(s.pg, 200*time.Millisecond)
		_ = syscall.Kill(os.Getpid(), syscall.SIGSTOP)

	case classResume:
		*tstpArmed = false
		_ = signalGroup(s.pg, syscall.SIGCONT)

	case classWinch:
		s.pty.resize()

	case classChild, classIgnored:
		// SIGCHLD reaping is handled by the dedicated cmd.Wait() goroutine;
		// SIGPIPE is handled at write sites (§4.3).
	}
}

// exitCodeFor implements the mapping of §4.8 / §7: normal exit → code N;
// killed by signal S → 128+S; exec failure is handled earlier by New and
// never reaches here.
func exitCodeFor(state *os.ProcessState, err error) int {
	if state == nil {
		return 1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		if ws.Exited() {
			return ws.ExitStatus()
		}
	}
	return state.ExitCode()
}

// stdoutIsTTY reports whether the wrapper's stdout is a terminal, using
// go-isatty. (termGuard detects a stdin terminal with golang.org/x/term's
// IsTerminal and changes its mode through golang.org/x/sys/unix ioctls.)
func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
