package cmd

import (
	"fmt"
	"io"
	"strings"

	cmdconfig "github.com/Iron-Ham/muxer/internal/cmd/config"
	"github.com/Iron-Ham/muxer/internal/cmd/style"
	"github.com/Iron-Ham/muxer/internal/config"
	"github.com/Iron-Ham/muxer/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "muxer",
	Short: "Create and manage tmux sessions from project files",
	Long: `muxer builds tmux sessions from YAML project files.

A project file names the session and describes its windows, panes,
layouts and startup commands. 'muxer start <project>' renders it into
tmux commands and runs them; 'muxer stop <project>' kills the session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// reportError prints err styled by its severity. Errors that aren't meant
// for end users keep cobra's plain "Error:" form.
func reportError(w io.Writer, err error) {
	msg := err.Error()
	switch {
	case errors.GetSeverity(err) == errors.SeverityWarning:
		fmt.Fprintln(w, style.Warn(msg))
	case errors.IsUserFacing(err):
		fmt.Fprintln(w, style.Fail(msg))
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(w, style.Muted.Render(hint))
		}
	default:
		fmt.Fprintln(w, "Error: "+msg)
	}
}

func errorHint(err error) string {
	if !errors.IsPipelineError(err) {
		return ""
	}
	if errors.Is(err, errors.ErrProjectNotFound) {
		return "Run 'muxer list' to see available projects."
	}
	return "Run 'muxer edit <project>' to fix the project file."
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/muxer/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	cmdconfig.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/muxer")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MUXER")
	// Replace dots with underscores for nested keys in env vars
	// e.g., MUXER_TMUX_BASE_INDEX for tmux.base_index
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
