//go:build darwin

package ptysup

import "time"

// waitChildStopped is a no-op on Darwin: there's no /proc to poll for
// process state without a second wait4 on pid, which would race the
// cmd.Wait() goroutine's reap. Self-SIGSTOP proceeds immediately after
// forwarding SIGTSTP, same as before this was added for Linux.
func waitChildStopped(pid int, timeout time.Duration) {}
