package cmd

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/muxer/internal/cmd/style"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all projects",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var completionsCmd = &cobra.Command{
	Use:    "completions",
	Short:  "Print project names for shell completion scripts",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runCompletions,
}

var listNewline bool

func init() {
	listCmd.Flags().BoolVarP(&listNewline, "newline", "n", false, "print one project per line")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(completionsCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := newEnv("list")
	if err != nil {
		return err
	}
	defer e.close()

	names, err := e.source.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listNewline {
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	fmt.Fprintln(out, style.Title.Render("muxer projects:"))
	if len(names) == 0 {
		fmt.Fprintln(out, style.Muted.Render("  (none) create one with 'muxer new <project>'"))
		return nil
	}
	fmt.Fprintln(out, strings.Join(names, "  "))
	return nil
}

func runCompletions(cmd *cobra.Command, args []string) error {
	e, err := newEnv("completions")
	if err != nil {
		return err
	}
	defer e.close()

	names, err := e.source.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

// completeProjectNames offers project names for the first argument.
func completeProjectNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	e, err := newEnv("completions")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer e.close()

	names, err := e.source.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	matches := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, toComplete) {
			matches = append(matches, name)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
