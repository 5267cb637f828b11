package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Iron-Ham/muxer/internal/cmd/style"
	"github.com/Iron-Ham/muxer/internal/logging"
	"github.com/Iron-Ham/muxer/internal/project"
	"github.com/Iron-Ham/muxer/internal/tmux"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [project]",
	Short: "Check your environment for problems",
	Long: `Check that tmux and the editor are available.

With a project name, tmux is run with the project's tmux_command,
socket_name and tmux_options.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// tmuxVersion reports the version of the given tmux binary. Tests replace it.
var tmuxVersion = func(ctx context.Context, bin tmux.Binary) (string, error) {
	return bin.Version(ctx)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	e, err := newEnv("doctor")
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bin := tmux.Binary{Command: e.cfg.Tmux.Command}
	if len(args) == 1 {
		p, err := e.loader().Load(args[0], false, project.Overrides{})
		if err != nil {
			return err
		}
		bin = p.Binary()
	}

	ok := checkTmux(ctx, cmd.OutOrStdout(), bin)
	checkEnvVar(cmd.OutOrStdout(), "EDITOR", e.cfg.Editor)
	checkEnvVar(cmd.OutOrStdout(), "SHELL", "")
	checkLogFile(cmd.OutOrStdout(), e.logger)

	if !ok {
		return fmt.Errorf("%s is required", bin.Command)
	}
	return nil
}

func checkTmux(ctx context.Context, w io.Writer, bin tmux.Binary) bool {
	if _, err := execLookPath(bin.Command); err != nil {
		fmt.Fprintln(w, style.Fail(fmt.Sprintf("%s not found on PATH", bin.Command)))
		return false
	}
	version, err := tmuxVersion(ctx, bin)
	if err != nil {
		fmt.Fprintln(w, style.Fail(fmt.Sprintf("%s: %v", bin.Line("-V"), err)))
		return false
	}
	fmt.Fprintln(w, style.Ok(version))
	return true
}

// checkEnvVar reports whether name is set. A non-empty override counts as
// set and is shown instead.
func checkEnvVar(w io.Writer, name, override string) {
	if override != "" {
		fmt.Fprintln(w, style.Ok(fmt.Sprintf("%s (from config): %s", name, override)))
		return
	}
	if v := os.Getenv(name); v != "" {
		fmt.Fprintln(w, style.Ok(fmt.Sprintf("$%s: %s", name, v)))
		return
	}
	fmt.Fprintln(w, style.Warn(fmt.Sprintf("$%s is not set", name)))
}

func checkLogFile(w io.Writer, logger *logging.Logger) {
	path, size, ok := logger.File()
	if !ok {
		fmt.Fprintln(w, style.Muted.Render("debug logging disabled"))
		return
	}
	fmt.Fprintln(w, style.Ok(fmt.Sprintf("log file: %s (%d bytes)", path, size)))
}
