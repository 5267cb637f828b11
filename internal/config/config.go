package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete muxer configuration
type Config struct {
	Projects ProjectsConfig `mapstructure:"projects"`
	Start    StartConfig    `mapstructure:"start"`
	Tmux     TmuxConfig     `mapstructure:"tmux"`
	Args     ArgsConfig     `mapstructure:"args"`
	Editor   string         `mapstructure:"editor"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProjectsConfig controls where project files are looked up
type ProjectsConfig struct {
	// Dir is the directory holding named project files (<name>.yml).
	// If empty, defaults to "projects" inside the config directory.
	// Supports ~ for home directory expansion.
	Dir string `mapstructure:"dir"`
	// LocalFile is the file name used for project-local configuration
	// in the current directory (default: ".muxer.yml")
	LocalFile string `mapstructure:"local_file"`
}

// StartConfig controls the behavior of `muxer start`
type StartConfig struct {
	// Attach attaches to the session after creating it when neither the
	// project file nor the command line says otherwise (default: true)
	Attach bool `mapstructure:"attach"`
}

// TmuxConfig controls how tmux commands are rendered
type TmuxConfig struct {
	// Command is the tmux binary used when a project doesn't set tmux_command
	Command string `mapstructure:"command"`
	// BaseIndex must match the base-index option in your tmux.conf (default: 0)
	BaseIndex int `mapstructure:"base_index"`
	// PaneBaseIndex must match the pane-base-index option in your tmux.conf (default: 0)
	PaneBaseIndex int `mapstructure:"pane_base_index"`
}

// ArgsConfig controls substitution of extra command-line arguments
type ArgsConfig struct {
	// VariadicMarker is replaced by every argument not consumed by a
	// positional {{N}} placeholder (default: "{{@}}")
	VariadicMarker string `mapstructure:"variadic_marker"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is written to disk (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 5)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 2)
	MaxBackups int `mapstructure:"max_backups"`
}

// ResolveDir returns the projects directory.
// If Dir is empty, it returns ConfigDir()/projects.
// If Dir starts with ~, it expands to the user's home directory.
func (p *ProjectsConfig) ResolveDir() string {
	if p.Dir == "" {
		return filepath.Join(ConfigDir(), "projects")
	}
	return ExpandHome(p.Dir)
}

// ExpandHome expands a leading ~ to the user's home directory.
// Paths without a leading ~ are returned unchanged.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Projects: ProjectsConfig{
			Dir:       "", // Empty means ConfigDir()/projects
			LocalFile: ".muxer.yml",
		},
		Start: StartConfig{
			Attach: true,
		},
		Tmux: TmuxConfig{
			Command:       "tmux",
			BaseIndex:     0,
			PaneBaseIndex: 0,
		},
		Args: ArgsConfig{
			VariadicMarker: "{{@}}",
		},
		Editor: "", // Empty means $EDITOR, then vim/nano/vi
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Projects defaults
	viper.SetDefault("projects.dir", defaults.Projects.Dir)
	viper.SetDefault("projects.local_file", defaults.Projects.LocalFile)

	// Start defaults
	viper.SetDefault("start.attach", defaults.Start.Attach)

	// Tmux defaults
	viper.SetDefault("tmux.command", defaults.Tmux.Command)
	viper.SetDefault("tmux.base_index", defaults.Tmux.BaseIndex)
	viper.SetDefault("tmux.pane_base_index", defaults.Tmux.PaneBaseIndex)

	// Args defaults
	viper.SetDefault("args.variadic_marker", defaults.Args.VariadicMarker)

	viper.SetDefault("editor", defaults.Editor)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded values are invalid
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "muxer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".muxer"
	}
	return filepath.Join(home, ".config", "muxer")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns the directory where the debug log is written
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "muxer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".muxer"
	}
	return filepath.Join(home, ".local", "state", "muxer")
}
