// Package config provides CLI commands for managing muxer configuration.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	appconfig "github.com/Iron-Ham/muxer/internal/config"
	"github.com/Iron-Ham/muxer/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommand = exec.Command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify muxer configuration",
	Long: `View or modify muxer configuration.

Without arguments, shows the effective configuration.
Use subcommands to modify settings or create a config file.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  muxer config set start.attach false
  muxer config set tmux.base_index 1
  muxer config set projects.dir ~/dotfiles/muxer

Valid keys:
  projects.dir            - Directory holding <name>.yml project files
  projects.local_file     - File name of the project-local config
  start.attach            - Attach after starting a session (true/false)
  tmux.command            - tmux binary used when a project sets none
  tmux.base_index         - Must match base-index in tmux.conf
  tmux.pane_base_index    - Must match pane-base-index in tmux.conf
  args.variadic_marker    - Replaced by arguments no {{N}} consumed
  editor                  - Editor used by 'muxer new' and 'muxer copy'
  logging.enabled         - Write a debug log (true/false)
  logging.level           - Log level: debug, info, warn, error
  logging.max_size_mb     - Log size in MB before rotation
  logging.max_backups     - Rotated log files to keep`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/muxer/config.yaml with all available options.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in your editor",
	Long: `Open the config file in your preferred editor.

Uses the 'editor' key, then $EDITOR or $VISUAL, or falls back to common
editors (vim, nano, vi). If no config file exists, creates one with
default values first.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var configResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Reset configuration to defaults",
	Long: `Reset configuration values to their defaults.

Without arguments, resets all configuration to defaults.
With a key argument, resets only that specific key.

Examples:
  muxer config reset                 # Reset all to defaults
  muxer config reset tmux.base_index # Reset only tmux.base_index`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigReset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configResetCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

// keyKind describes how a value given to 'config set' is parsed.
type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindInt
	kindLevel
)

var validKeys = map[string]keyKind{
	"projects.dir":         kindString,
	"projects.local_file":  kindString,
	"start.attach":         kindBool,
	"tmux.command":         kindString,
	"tmux.base_index":      kindInt,
	"tmux.pane_base_index": kindInt,
	"args.variadic_marker": kindString,
	"editor":               kindString,
	"logging.enabled":      kindBool,
	"logging.level":        kindLevel,
	"logging.max_size_mb":  kindInt,
	"logging.max_backups":  kindInt,
}

// defaultValues maps every settable key to its default.
func defaultValues() map[string]any {
	d := appconfig.Default()
	return map[string]any{
		"projects.dir":         d.Projects.Dir,
		"projects.local_file":  d.Projects.LocalFile,
		"start.attach":         d.Start.Attach,
		"tmux.command":         d.Tmux.Command,
		"tmux.base_index":      d.Tmux.BaseIndex,
		"tmux.pane_base_index": d.Tmux.PaneBaseIndex,
		"args.variadic_marker": d.Args.VariadicMarker,
		"editor":               d.Editor,
		"logging.enabled":      d.Logging.Enabled,
		"logging.level":        d.Logging.Level,
		"logging.max_size_mb":  d.Logging.MaxSizeMB,
		"logging.max_backups":  d.Logging.MaxBackups,
	}
}

// parseValue converts the command-line value for key into its typed form.
func parseValue(key, value string) (any, error) {
	kind, ok := validKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'muxer config set --help' to see valid keys", key)
	}

	switch kind {
	case kindBool:
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return n, nil
	case kindLevel:
		v := strings.ToLower(value)
		if !slices.Contains(appconfig.ValidLogLevels(), v) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(appconfig.ValidLogLevels(), ", "))
		}
		return v, nil
	default:
		return value, nil
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := appconfig.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "projects:")
	fmt.Fprintf(out, "  dir: %s\n", cfg.Projects.ResolveDir())
	fmt.Fprintf(out, "  local_file: %s\n", cfg.Projects.LocalFile)

	fmt.Fprintln(out, "start:")
	fmt.Fprintf(out, "  attach: %v\n", cfg.Start.Attach)

	fmt.Fprintln(out, "tmux:")
	fmt.Fprintf(out, "  command: %s\n", cfg.Tmux.Command)
	fmt.Fprintf(out, "  base_index: %d\n", cfg.Tmux.BaseIndex)
	fmt.Fprintf(out, "  pane_base_index: %d\n", cfg.Tmux.PaneBaseIndex)

	fmt.Fprintln(out, "args:")
	fmt.Fprintf(out, "  variadic_marker: %q\n", cfg.Args.VariadicMarker)

	fmt.Fprintf(out, "editor: %s\n", cfg.Editor)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	viper.Set(key, typed)
	if _, err := appconfig.Load(); err != nil {
		return err
	}

	configFile, err := writeConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typed)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)
	return nil
}

// writeConfig persists viper's current settings to the user config file.
func writeConfig() (string, error) {
	if err := os.MkdirAll(appconfig.ConfigDir(), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	configFile := appconfig.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}

const defaultConfigContent = `# muxer configuration

projects:
  # Directory holding <name>.yml project files.
  # Empty means ~/.config/muxer/projects
  dir: ""
  # Project file looked up in the current directory by 'muxer start --local'
  local_file: .muxer.yml

start:
  # Attach to the session after creating it unless the project file or
  # --attach/--no-attach say otherwise
  attach: true

tmux:
  # tmux binary used when a project doesn't set tmux_command
  command: tmux
  # Keep these in sync with base-index and pane-base-index in tmux.conf
  base_index: 0
  pane_base_index: 0

args:
  # Replaced by every extra argument not consumed by a {{N}} placeholder.
  # Empty disables it.
  variadic_marker: "{{@}}"

# Editor for 'muxer new' and 'muxer copy'. Empty means $EDITOR.
editor: ""

logging:
  # Write a JSON debug log to ~/.local/state/muxer/muxer.log
  enabled: false
  # debug, info, warn or error
  level: info
  max_size_mb: 5
  max_backups: 2
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'muxer config set' to modify values", configFile)
	}

	if err := os.MkdirAll(appconfig.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", appconfig.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(appconfig.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. $HOME/.config/muxer/config.yaml\n")
	fmt.Fprintf(out, "\nLog file: %s\n", filepath.Join(appconfig.StateDir(), logging.FileName))
	fmt.Fprintln(out, "\nEnvironment variables: MUXER_* (e.g., MUXER_TMUX_BASE_INDEX)")

	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file doesn't exist, creating with defaults...\n")
		if err := runConfigInit(cmd, args); err != nil {
			return err
		}
	}

	editor := appconfig.Get().Editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"vim", "nano", "vi"} {
			if _, err := execLookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set $EDITOR environment variable")
	}

	fields := strings.Fields(editor)
	editorCmd := execCommand(fields[0], append(fields[1:], configFile)...)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file saved: %s\n", configFile)
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	defaults := defaultValues()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for key, value := range defaults {
			viper.Set(key, value)
		}
		fmt.Fprintln(out, "Reset all configuration to defaults.")
	} else {
		key := args[0]
		value, ok := defaults[key]
		if !ok {
			return fmt.Errorf("unknown configuration key: %s\nRun 'muxer config set --help' to see valid keys", key)
		}
		viper.Set(key, value)
		fmt.Fprintf(out, "Reset %s to default: %v\n", key, value)
	}

	configFile, err := writeConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}
