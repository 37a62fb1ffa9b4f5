package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/edirooss/reclog/internal/header"
	"github.com/edirooss/reclog/internal/outfile"
	"github.com/edirooss/reclog/internal/ptysup"
	"github.com/edirooss/reclog/internal/reclogerr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.1.0"

const manualPreamble = `RECLOG(1)

NAME
    reclog - run COMMAND under a pty, recording its output to a file

SYNOPSIS
    reclog [OPTIONS] -- COMMAND [ARG...]

DESCRIPTION
    reclog allocates a pseudo-terminal, runs COMMAND attached to its slave
    side, and tees the output to both the invoking terminal and a log file,
    optionally prefixing every line with a timestamp.

OPTIONS
`

const manualExitStatus = `
EXIT STATUS
    The child's own exit code, or 128+N if killed by signal N, or 126 if
    COMMAND could not be executed, or 1 on an internal error, or 2 on a
    usage error.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("reclog", pflag.ContinueOnError)
	flags.SetInterspersed(false)

	emitHeader := flags.BoolP("header", "H", false, "emit header line before running child")
	ts := flags.BoolP("ts", "t", false, "enable per-line timestamp prefix")
	tsFmt := flags.String("ts-fmt", "%T%.3f ", "strftime-style timestamp format")
	tsSrc := flags.String("ts-src", "wall", "timestamp source: wall|elapsed|delta")
	output := flags.StringP("output", "o", "", "output file path (auto-derived from COMMAND otherwise)")
	force := flags.BoolP("force", "f", false, "overwrite an existing output file")
	appendF := flags.BoolP("append", "a", false, "append to an existing output file")
	null := flags.BoolP("null", "N", false, "no output file (stdout only)")
	raw := flags.BoolP("raw", "R", false, "don't strip ANSI escapes in the output file")
	silent := flags.BoolP("silent", "s", false, "no stdout output")
	quitMS := flags.IntP("quit", "q", 15, "drain/termination deadline, milliseconds")
	bufLines := flags.IntP("buffer", "b", 10000, "ring buffer capacity, lines (0 disables buffering)")
	debug := flags.BoolP("debug", "D", false, "enable stderr debug logging")
	help := flags.BoolP("help", "h", false, "show usage and exit")
	showVersion := flags.BoolP("version", "V", false, "show version and exit")
	man := flags.Bool("man", false, "show the manual page and exit")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if *help {
		fmt.Fprintf(os.Stdout, "Usage: reclog [OPTIONS] -- COMMAND [ARG...]\n\n%s", flags.FlagUsages())
		return 0
	}
	if *showVersion {
		fmt.Fprintln(os.Stdout, "reclog", version)
		return 0
	}
	if *man {
		fmt.Fprint(os.Stdout, manualPreamble, flags.FlagUsages(), manualExitStatus)
		return 0
	}

	argv := flags.Args()
	if len(argv) == 0 {
		fmt.Fprintln(os.Stderr, reclogerr.Usage("missing COMMAND"))
		return 2
	}

	tsSource, err := parseTSSource(*tsSrc)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	if *debug {
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		logConfig.DisableCaller = false
	} else {
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		logConfig.DisableCaller = true
	}
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("reclog")

	outFile, err := outfile.Open(outfile.Options{
		Explicit: *output,
		Null:     *null,
		Command:  argv[0],
		Force:    *force,
		Append:   *appendF,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return reclogerr.ExitCode(err)
	}
	if outFile != nil {
		defer outFile.Close()
	}

	var headerLine string
	if *emitHeader {
		headerLine = header.Format(argv, time.Now())
	}

	// outFile is a *os.File; assigning a nil *os.File directly to the
	// io.Writer field would produce a non-nil interface wrapping a nil
	// pointer, breaking New's FileWriter == nil check for --null.
	var fileWriter io.Writer
	if outFile != nil {
		fileWriter = outFile
	}

	sess, err := ptysup.New(ptysup.Options{
		Argv:         argv,
		Env:          os.Environ(),
		HeaderLine:   headerLine,
		Timestamp:    *ts,
		TSFormat:     *tsFmt,
		TSSource:     tsSource,
		FileWriter:   fileWriter,
		RawFile:      *raw,
		Silent:       *silent,
		QuitDeadline: time.Duration(*quitMS) * time.Millisecond,
		KillDeadline: 2 * time.Second,
		BufferLines:  *bufLines,
		Logger:       log,
		Debug:        *debug,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return reclogerr.ExitCode(err)
	}

	return sess.Run()
}

func parseTSSource(s string) (ptysup.TimestampSource, error) {
	switch s {
	case "wall":
		return ptysup.TimestampWall, nil
	case "elapsed":
		return ptysup.TimestampElapsed, nil
	case "delta":
		return ptysup.TimestampDelta, nil
	default:
		return 0, reclogerr.Usage("invalid --ts-src %q: want wall, elapsed or delta", s)
	}
}
