package ptysup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"syscall"

	"github.com/edirooss/reclog/internal/reclogerr"
)

// launchChild starts argv with the pty slave as its controlling terminal,
// stdin/stdout/stderr. It adapts the teacher's process-group setup
// (Setpgid, Pdeathsig) from processmgr.newProcess by setting Setsid +
// Setctty instead (neither Setpgid nor Pdeathsig is set), so the child
// becomes a session leader with the slave as its controlling terminal
// (§4.2).
//
// The slave fd passed in is owned by the caller, which is responsible for
// closing it once Start returns (success or failure) per §4.1 ("master is
// set nonblocking... slave is handed to the child then closed in the
// parent"); launchChild itself never closes it, since on failure the caller
// may want it left open for diagnostics.
func launchChild(argv []string, env []string, slave *os.File) (*exec.Cmd, error) {
	if len(argv) == 0 {
		return nil, reclogerr.Usage("launch child: empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0, // fd 0 (stdin) in the child's fd table, post-dup
	}

	if err := cmd.Start(); err != nil {
		if isExecFailure(err) {
			return nil, reclogerr.Exec(fmt.Errorf("exec %s: %w", argv[0], err))
		}
		return nil, reclogerr.System(fmt.Errorf("start %s: %w", argv[0], err))
	}

	// The pgid equals the pid because of Setsid (§3 invariant).
	return cmd, nil
}

// isExecFailure reports whether err is a failure to locate or execute the
// command itself (§4.2 step 5, §7 "exec" kind), as opposed to a system-level
// failure in the fork/setsid/pipe setup that precedes execvp (§7 "system"
// kind). *exec.Error wraps LookPath failures; ENOENT/EACCES on the resolved
// path cover the execve(2) failure itself.
func isExecFailure(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
}

// pgid returns the child's process group id, which is always its pid
// because launchChild starts it as a new session leader.
func pgid(cmd *exec.Cmd) int {
	return cmd.Process.Pid
}

// signalGroup forwards sig to the child's entire process group. Errors are
// swallowed when the group is already gone (ESRCH), matching the teacher's
// best-effort SIGTERM/SIGKILL delivery in processmgr.process.Close.
func signalGroup(pg int, sig syscall.Signal) error {
	if err := syscall.Kill(-pg, sig); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("signal pgid %d with %v: %w", pg, sig, err)
	}
	return nil
}
