package cmd

import (
	"fmt"

	"github.com/Iron-Ham/muxer/internal/tmux"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop [project] [args...]",
	Short: "Kill a project's tmux session",
	Long: `Kill the tmux session of a project.

The session name and tmux socket are resolved the same way start
resolves them, so pass the same --name you started the session with.`,
	Args:              projectArgs,
	ValidArgsFunction: completeProjectNames,
	RunE:              runStop,
}

// Wrapper for running the kill command to allow testing
var runScript = tmux.Run

func init() {
	stopCmd.Flags().BoolP("local", "l", false, "use the project file in the current directory")
	stopCmd.Flags().StringP("name", "n", "", "session name used when the project was started")
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	e, err := newEnv("stop")
	if err != nil {
		return err
	}
	defer e.close()

	o := parseStartOptions(cmd, args)
	p, err := e.loader().Load(o.name, o.local, o.overrides)
	if err != nil {
		return err
	}

	line := e.renderer().Stop(p)
	e.logger.Info("stopping session", "session", p.SessionName())

	if err := runScript(cmd.Context(), line); err != nil {
		return fmt.Errorf("failed to stop session %s: %w", p.SessionName(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stopped session %s\n", p.SessionName())
	return nil
}
