// Package project resolves a named project file into a validated Project.
//
// Resolution runs in four stages, each usable on its own:
//
//	Source.Read -> Parse -> Merge -> Build
//
// Loader chains them for callers that want the whole pipeline.
package project

import (
	"strings"

	"github.com/Iron-Ham/muxer/internal/tmux"
)

// Spec is the raw attribute tree of a project file after parsing.
// It is unvalidated and may contain deprecated keys.
type Spec map[string]any

// SyncMode controls when synchronize-panes is enabled for a window.
type SyncMode string

// Synchronize modes. SyncOff is the zero value.
const (
	SyncOff    SyncMode = ""
	SyncBefore SyncMode = "before"
	SyncAfter  SyncMode = "after"
)

// Project is the validated, fully resolved model of a project file.
type Project struct {
	// Name is the lookup name of the project.
	Name string
	// CustomName overrides Name as the session identifier when set.
	CustomName string
	// Root is the absolute working directory of the project.
	Root string
	// SocketName selects a tmux server with -L. Empty means the default server.
	SocketName string
	// TmuxCommand is the tmux binary.
	TmuxCommand string
	// TmuxOptions are raw flags placed after the binary, e.g. "-f ~/.tmux.alt.conf".
	TmuxOptions string

	PreCommands  []string
	PostCommands []string
	// PreWindow runs in every pane before the pane's own commands.
	PreWindow []string

	Windows []Window

	Attach    bool
	ExtraArgs []string

	// StartupWindow and StartupPane name the window and pane focused after
	// the session is built. Either may be empty.
	StartupWindow string
	StartupPane   string

	Deprecations []string
}

// Window is one tmux window. It always has at least one pane.
type Window struct {
	Name        string
	Root        string
	Layout      string
	Panes       []Pane
	Synchronize SyncMode
	PreCommands []string
}

// Pane is one tmux pane.
type Pane struct {
	Title    string
	Commands []string
	Root     string
}

var sessionNameReplacer = strings.NewReplacer(".", "_", ":", "_")

// SessionName returns the tmux session identifier: CustomName when set,
// otherwise Name. Characters tmux treats as target separators are replaced.
func (p *Project) SessionName() string {
	name := p.Name
	if p.CustomName != "" {
		name = p.CustomName
	}
	return sessionNameReplacer.Replace(name)
}

// Binary returns the tmux invocation the project's commands run with.
func (p *Project) Binary() tmux.Binary {
	return tmux.Binary{
		Command: p.TmuxCommand,
		Socket:  p.SocketName,
		Options: p.TmuxOptions,
	}
}
