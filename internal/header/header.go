// Package header formats the single header line spec §6 describes, emitted
// before any child output when -H/--header is set.
package header

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// Format renders `# HOST=[<hostname>] OS=[<os>_<arch>] TIME=[<YYYY-MM-DD
// HH:MM:SS ±ZZZZ>] CMD=[<argv joined>]`, using now for TIME.
func Format(argv []string, now time.Time) string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("# HOST=[%s] OS=[%s_%s] TIME=[%s] CMD=[%s]",
		host,
		runtime.GOOS, runtime.GOARCH,
		now.Format("2006-01-02 15:04:05 -0700"),
		strings.Join(argv, " "),
	)
}
