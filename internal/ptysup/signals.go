package ptysup

import (
	"os"
	"os/signal"
	"syscall"
)

// signalClass buckets an incoming signal into one of the action categories
// of §4.3.
type signalClass int

const (
	classGraceful signalClass = iota
	classEmergency
	classSuspend
	classResume
	classWinch
	classChild
	classIgnored
)

var handledSignals = []os.Signal{
	syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT,
	syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU, syscall.SIGCONT,
	syscall.SIGWINCH, syscall.SIGCHLD, syscall.SIGPIPE,
}

// signalPlane is the dedicated waiter of §4.3: it is installed once by
// Session.Run, after New has launched the child (signals that arrive before
// Run starts get their default disposition), delivers signals to the
// supervisor over a channel for classification, and is uninstalled at exit. Go's os/signal package is the
// idiomatic stand-in for the blocked-mask-plus-sigtimedwait primitive the
// spec describes — delivery here is already async-signal-safe and
// channel-serialized, so no additional self-pipe is needed on the platforms
// this module targets.
type signalPlane struct {
	ch chan os.Signal
}

func newSignalPlane() *signalPlane {
	p := &signalPlane{ch: make(chan os.Signal, 16)}
	signal.Notify(p.ch, handledSignals...)
	return p
}

// stop uninstalls the signal plane. Safe to call once at exit.
func (p *signalPlane) stop() {
	signal.Stop(p.ch)
	close(p.ch)
}

func classify(sig os.Signal) signalClass {
	switch sig {
	case syscall.SIGINT, syscall.SIGTERM:
		return classGraceful
	case syscall.SIGQUIT, syscall.SIGHUP:
		return classEmergency
	case syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU:
		return classSuspend
	case syscall.SIGCONT:
		return classResume
	case syscall.SIGWINCH:
		return classWinch
	case syscall.SIGCHLD:
		return classChild
	case syscall.SIGPIPE:
		return classIgnored
	default:
		return classIgnored
	}
}
