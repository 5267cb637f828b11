package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/Iron-Ham/muxer/internal/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var newCmd = &cobra.Command{
	Use:     "new <project>",
	Aliases: []string{"edit", "open"},
	Short:   "Create a project file, or edit an existing one",
	Long: `Create a new project file from a template and open it in your editor.
If the project already exists it is opened as-is.

The editor is taken from the 'editor' config key, then $EDITOR, then
$VISUAL, falling back to vim, nano or vi.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if local, _ := cmd.Flags().GetBool("local"); local {
			return cobra.MaximumNArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	ValidArgsFunction: completeProjectNames,
	RunE:              runNew,
}

func init() {
	newCmd.Flags().BoolP("local", "l", false, "create the project file in the current directory")
	rootCmd.AddCommand(newCmd)
}

// projectTemplate is the skeleton written for new projects.
type projectTemplate struct {
	Name    string           `yaml:"name"`
	Root    string           `yaml:"root"`
	Windows []map[string]any `yaml:"windows"`
}

func newProjectYAML(name, path string) ([]byte, error) {
	tpl := projectTemplate{
		Name: name,
		Root: "~/",
		Windows: []map[string]any{
			{"editor": map[string]any{
				"layout": "main-vertical",
				"panes":  []string{"vim", "git status"},
			}},
			{"server": "make run"},
			{"logs": "tail -f log/development.log"},
		},
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", path)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tpl); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func runNew(cmd *cobra.Command, args []string) error {
	e, err := newEnv("new")
	if err != nil {
		return err
	}
	defer e.close()

	local, _ := cmd.Flags().GetBool("local")

	var name, path string
	if local {
		path = filepath.Join(e.source.WorkDir, e.source.LocalFile)
		name = filepath.Base(e.source.WorkDir)
		if len(args) > 0 {
			name = args[0]
		}
	} else {
		name = args[0]
		if path, err = e.source.Path(name); err != nil {
			return err
		}
	}

	exists, err := afero.Exists(e.source.Fs, path)
	if err != nil {
		return errors.Wrapf(err, "checking %s", path)
	}
	if !exists {
		data, err := newProjectYAML(name, path)
		if err != nil {
			return errors.Wrap(err, "rendering project template")
		}
		if err := e.source.Fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
		if err := afero.WriteFile(e.source.Fs, path, data, 0644); err != nil {
			return fmt.Errorf("failed to write project file: %w", err)
		}
		e.logger.Info("created project file", "path", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	}

	editor, err := findEditor(e.cfg.Editor)
	if err != nil {
		return err
	}
	return openEditor(editor, path)
}
