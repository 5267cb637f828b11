package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/muxer/internal/config"
	"github.com/Iron-Ham/muxer/internal/logging"
	"github.com/Iron-Ham/muxer/internal/project"
	"github.com/Iron-Ham/muxer/internal/render"
	"github.com/Iron-Ham/muxer/internal/tmux"
)

// env bundles the configuration and collaborators a command runs with.
type env struct {
	cfg    *config.Config
	source *project.Source
	logger *logging.Logger
}

// newEnv builds the env for a command. Tests replace it to point the
// commands at an in-memory filesystem.
var newEnv = func(command string) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return &env{
		cfg:    cfg,
		source: project.NewSource(cfg.Projects.ResolveDir(), cfg.Projects.LocalFile, wd),
		logger: newLogger(cfg).WithCommand(command),
	}, nil
}

// newLogger returns a file logger when logging is enabled, otherwise a
// logger that discards everything.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	logger, err := logging.NewLogger(config.StateDir(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug logging disabled: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}

func (e *env) loader() *project.Loader {
	return &project.Loader{
		Source:   e.source,
		Defaults: project.Defaults{Attach: e.cfg.Start.Attach},
		BuildOptions: project.BuildOptions{
			WorkDir:        e.source.WorkDir,
			TmuxCommand:    e.cfg.Tmux.Command,
			VariadicMarker: e.cfg.Args.VariadicMarker,
		},
		Logger: e.logger,
	}
}

func (e *env) renderer() *render.Renderer {
	return render.New(render.Options{
		BaseIndex:     e.cfg.Tmux.BaseIndex,
		PaneBaseIndex: e.cfg.Tmux.PaneBaseIndex,
		InsideTmux:    tmux.InsideTmux(),
	})
}

func (e *env) close() {
	_ = e.logger.Close()
}
