package tmux

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Shell is the interpreter rendered scripts are handed to.
const Shell = "sh"

// Indirection points for tests.
var (
	execLookPath = exec.LookPath
	syscallExec  = syscall.Exec
)

// Exec replaces the current process with a shell running script. On success
// it does not return. Replacing the process lets the final attach-session
// take over the terminal.
func Exec(script string) error {
	shell, err := execLookPath(Shell)
	if err != nil {
		return fmt.Errorf("finding %s: %w", Shell, err)
	}
	return syscallExec(shell, []string{Shell, "-c", script}, os.Environ())
}

// Run executes script in a child shell and waits for it. Output is returned
// in the error when the script fails.
func Run(ctx context.Context, script string) error {
	cmd := exec.CommandContext(ctx, Shell, "-c", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
