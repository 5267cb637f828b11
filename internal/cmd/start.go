package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Iron-Ham/muxer/internal/cmd/style"
	"github.com/Iron-Ham/muxer/internal/project"
	"github.com/Iron-Ham/muxer/internal/tmux"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var startCmd = &cobra.Command{
	Use:   "start [project] [args...]",
	Short: "Start a tmux session for a project",
	Long: `Start a tmux session using a project's configuration.

Extra arguments are substituted into the project's commands: {{1}} is
the first argument, {{2}} the second, and the variadic marker ({{@}} by
default) receives every argument no placeholder consumed.

Examples:
  muxer start blog
  muxer start blog --name blog-review --no-attach
  muxer start api feature/login -- --verbose
  muxer start --local`,
	Args:              projectArgs,
	ValidArgsFunction: completeProjectNames,
	RunE:              runStart,
}

var debugCmd = &cobra.Command{
	Use:   "debug [project] [args...]",
	Short: "Print the commands start would run",
	Long: `Print the shell script 'muxer start' would run for a project,
without executing it. Accepts the same flags as start.`,
	Args:              projectArgs,
	ValidArgsFunction: completeProjectNames,
	RunE:              runDebug,
}

// Wrapper for process replacement to allow testing
var execScript = tmux.Exec

// isTerminal reports whether stdin is interactive.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func init() {
	for _, c := range []*cobra.Command{startCmd, debugCmd} {
		c.Flags().BoolP("local", "l", false, "use the project file in the current directory")
		c.Flags().StringP("name", "n", "", "session name to use instead of the project name")
		c.Flags().Bool("attach", false, "attach to the session after creating it")
		c.Flags().Bool("no-attach", false, "leave the session detached")
		c.Flags().Bool("suppress-warnings", false, "don't show deprecation warnings")
		c.MarkFlagsMutuallyExclusive("attach", "no-attach")
		rootCmd.AddCommand(c)
	}
}

// projectArgs requires a project name unless --local is set.
func projectArgs(cmd *cobra.Command, args []string) error {
	if local, _ := cmd.Flags().GetBool("local"); local {
		return nil
	}
	return cobra.MinimumNArgs(1)(cmd, args)
}

// startOptions are the parsed arguments of start, debug and stop.
type startOptions struct {
	name      string
	local     bool
	overrides project.Overrides
	quiet     bool
}

func parseStartOptions(cmd *cobra.Command, args []string) startOptions {
	var o startOptions
	o.local, _ = cmd.Flags().GetBool("local")
	if !o.local && len(args) > 0 {
		o.name, args = args[0], args[1:]
	}

	o.overrides.Args = args
	o.overrides.CustomName, _ = cmd.Flags().GetString("name")

	if f := cmd.Flags().Lookup("attach"); f != nil && f.Changed {
		o.overrides.Attach = project.AttachOn
	}
	if f := cmd.Flags().Lookup("no-attach"); f != nil && f.Changed {
		o.overrides.Attach = project.AttachOff
	}
	o.quiet, _ = cmd.Flags().GetBool("suppress-warnings")
	return o
}

func runStart(cmd *cobra.Command, args []string) error {
	e, err := newEnv("start")
	if err != nil {
		return err
	}

	script, err := startScript(cmd, e, args)
	// The log must be closed here: a successful exec never returns.
	if cerr := e.logger.Close(); cerr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", cerr)
	}
	if err != nil {
		return err
	}
	return execScript(script)
}

// startScript loads the project named by args and renders its start script.
func startScript(cmd *cobra.Command, e *env, args []string) (string, error) {
	o := parseStartOptions(cmd, args)
	p, err := e.loader().Load(o.name, o.local, o.overrides)
	if err != nil {
		return "", err
	}

	if !o.quiet && len(p.Deprecations) > 0 {
		showDeprecations(cmd.ErrOrStderr(), os.Stdin, p.Deprecations, isTerminal())
	}

	lines := e.renderer().Start(p)
	e.logger.Info("starting session",
		"session", p.SessionName(),
		"commands", len(lines),
		"attach", p.Attach,
	)
	return tmux.Script(lines), nil
}

func runDebug(cmd *cobra.Command, args []string) error {
	e, err := newEnv("debug")
	if err != nil {
		return err
	}
	defer e.close()

	o := parseStartOptions(cmd, args)
	p, err := e.loader().Load(o.name, o.local, o.overrides)
	if err != nil {
		return err
	}

	if !o.quiet && len(p.Deprecations) > 0 {
		showDeprecations(cmd.ErrOrStderr(), nil, p.Deprecations, false)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), tmux.Script(e.renderer().Start(p)))
	return err
}

// showDeprecations prints deprecation warnings. When interactive is set it
// waits for ENTER on in so the user sees them before tmux takes over the
// terminal.
func showDeprecations(w io.Writer, in io.Reader, deprecations []string, interactive bool) {
	for _, d := range deprecations {
		fmt.Fprintln(w, style.Warn(d))
	}
	if !interactive || in == nil {
		return
	}
	fmt.Fprint(w, style.Muted.Render("Press ENTER to continue."))
	_, _ = bufio.NewReader(in).ReadString('\n')
}
