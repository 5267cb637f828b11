package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Iron-Ham/muxer/internal/cmd/style"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:               "delete <project...>",
	Aliases:           []string{"rm"},
	Short:             "Delete project files",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeProjectNames,
	RunE:              runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "delete without asking for confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	e, err := newEnv("delete")
	if err != nil {
		return err
	}
	defer e.close()

	if !deleteYes && !isTerminal() {
		return fmt.Errorf("refusing to delete without confirmation; pass --yes")
	}

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(os.Stdin)

	for _, name := range args {
		if !e.source.Exists(name) {
			fmt.Fprintln(out, style.Warn(fmt.Sprintf("%s does not exist", name)))
			continue
		}
		path, err := e.source.Path(name)
		if err != nil {
			return err
		}

		if !deleteYes {
			fmt.Fprintf(out, "Delete %s? [y/N] ", path)
			answer, _ := reader.ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				continue
			}
		}

		if err := e.source.Fs.Remove(path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
		e.logger.Info("deleted project", "path", path)
		fmt.Fprintf(out, "Deleted %s\n", name)
	}
	return nil
}
