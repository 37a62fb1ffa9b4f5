// Package outfile selects and opens the log file per spec §6 "Auto path
// selection": derive a basename from the command, suffix-rotate on
// collision, and honor --force/--append/--null.
package outfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edirooss/reclog/internal/reclogerr"
)

// maxAutoSuffix bounds the NAME-1.log, NAME-2.log, ... search so a stale
// directory full of old logs can't make startup spin forever.
const maxAutoSuffix = 1000

// Options configures path resolution for one invocation.
type Options struct {
	Explicit string // --output value; "" means auto-derive
	Null     bool   // --null: no output file at all
	Command  string // COMMAND[0], used to derive the auto basename
	Force    bool   // --force: truncate an existing file
	Append   bool   // --append: append to an existing file
}

// Resolve returns the path to open, or "" if Null is set. It never touches
// the filesystem beyond stat calls; Open performs the actual creation.
func Resolve(o Options) (string, error) {
	if o.Null {
		return "", nil
	}

	if o.Explicit != "" {
		if exists(o.Explicit) && !o.Force && !o.Append {
			return "", reclogerr.Usage("output path %q already exists (use -f/--force or -a/--append)", o.Explicit)
		}
		return o.Explicit, nil
	}

	base := filepath.Base(o.Command) + ".log"
	if !exists(base) || o.Force || o.Append {
		return base, nil
	}

	stem := strings.TrimSuffix(base, ".log")
	for i := 1; i <= maxAutoSuffix; i++ {
		candidate := fmt.Sprintf("%s-%d.log", stem, i)
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", reclogerr.System(fmt.Errorf("no available auto output path after %d attempts for %q", maxAutoSuffix, base))
}

// Open resolves and opens the output file per o, returning nil (no error)
// if Null is set. The caller owns closing the returned file.
func Open(o Options) (*os.File, error) {
	path, err := Resolve(o)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	flags := os.O_WRONLY | os.O_CREATE
	if o.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, reclogerr.System(fmt.Errorf("open output file %q: %w", path, err))
	}
	return f, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
