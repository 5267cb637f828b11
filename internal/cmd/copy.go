package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/Iron-Ham/muxer/internal/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var copyCmd = &cobra.Command{
	Use:     "copy <existing> <new>",
	Aliases: []string{"cp"},
	Short:   "Copy a project file to a new project",
	Long: `Copy an existing project file to a new name and open the copy in your
editor. The copy keeps the original's contents, including its name key.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeProjectNames,
	RunE:              runCopy,
}

var (
	copyForce  bool
	copyNoEdit bool
)

func init() {
	copyCmd.Flags().BoolVarP(&copyForce, "force", "f", false, "overwrite the destination if it exists")
	copyCmd.Flags().BoolVar(&copyNoEdit, "no-edit", false, "don't open the copy in an editor")
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	e, err := newEnv("copy")
	if err != nil {
		return err
	}
	defer e.close()

	src, err := e.source.Read(args[0], false)
	if err != nil {
		return err
	}

	dst, err := e.source.Path(args[1])
	if err != nil {
		return err
	}
	if e.source.Exists(args[1]) && !copyForce {
		return errors.NewAlreadyExistsError("project", args[1])
	}

	if err := e.source.Fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := afero.WriteFile(e.source.Fs, dst, src.Data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	e.logger.Info("copied project", "from", src.Path, "to", dst)
	fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to %s\n", args[0], dst)

	if copyNoEdit {
		return nil
	}
	editor, err := findEditor(e.cfg.Editor)
	if err != nil {
		return err
	}
	return openEditor(editor, dst)
}
