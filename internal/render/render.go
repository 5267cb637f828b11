// Package render turns a project into the tmux commands that create or
// destroy its session.
//
// Rendering is pure: the same Project and Options always produce the same
// lines, and nothing is executed.
package render

import (
	"strconv"

	"github.com/Iron-Ham/muxer/internal/project"
	"github.com/Iron-Ham/muxer/internal/tmux"
)

// Options are the tmux environment settings that affect rendering.
type Options struct {
	// BaseIndex and PaneBaseIndex must match base-index and pane-base-index
	// in the user's tmux.conf.
	BaseIndex     int
	PaneBaseIndex int
	// InsideTmux switches the final attach-session to switch-client.
	InsideTmux bool
}

// Renderer renders projects with fixed Options.
type Renderer struct {
	opts Options
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Start returns the commands that build the project's session, in order.
func (r *Renderer) Start(p *project.Project) []string {
	bin := p.Binary()
	session := p.SessionName()

	var lines []string
	lines = append(lines, p.PreCommands...)

	for i, w := range p.Windows {
		idx := r.windowIndex(i)
		target := tmux.Target(session, idx)

		args := []string{"new-window", "-t", target}
		if i == 0 {
			args = []string{"new-session", "-d", "-s", session}
		}
		if w.Name != "" {
			args = append(args, "-n", w.Name)
		}
		lines = append(lines, bin.Line(withDir(args, w.Root)...))

		if w.Synchronize == project.SyncBefore {
			lines = append(lines, bin.Line("set-window-option", "-t", target, "synchronize-panes", "on"))
		}

		lines = append(lines, r.panes(bin, p, session, idx, w)...)

		if w.Layout != "" {
			lines = append(lines, bin.Line("select-layout", "-t", target, w.Layout))
		}

		if w.Synchronize == project.SyncAfter {
			lines = append(lines, bin.Line("set-window-option", "-t", target, "synchronize-panes", "on"))
		}
	}

	lines = append(lines, r.focus(bin, p, session)...)
	lines = append(lines, p.PostCommands...)

	if p.Attach {
		if r.opts.InsideTmux {
			lines = append(lines, bin.Line("switch-client", "-t", session))
		} else {
			lines = append(lines, bin.Line("attach-session", "-t", session))
		}
	}

	return lines
}

func (r *Renderer) panes(bin tmux.Binary, p *project.Project, session, window string, w project.Window) []string {
	var lines []string
	target := tmux.Target(session, window)

	for j, pane := range w.Panes {
		paneTarget := tmux.PaneTarget(session, window, r.paneIndex(j))

		if j > 0 {
			lines = append(lines,
				bin.Line(withDir([]string{"split-window", "-t", target}, pane.Root)...),
				bin.Line("select-layout", "-t", target, "tiled"),
			)
		} else if pane.Root != "" && pane.Root != w.Root {
			// The first pane is created with the window's directory.
			lines = append(lines, sendKeys(bin, paneTarget, "cd "+tmux.Quote(pane.Root)))
		}

		if pane.Title != "" {
			lines = append(lines, bin.Line("select-pane", "-t", paneTarget, "-T", pane.Title))
		}

		for _, cmd := range p.PreWindow {
			lines = append(lines, sendKeys(bin, paneTarget, cmd))
		}
		for _, cmd := range w.PreCommands {
			lines = append(lines, sendKeys(bin, paneTarget, cmd))
		}
		for _, cmd := range pane.Commands {
			lines = append(lines, sendKeys(bin, paneTarget, cmd))
		}
	}

	return lines
}

// focus selects the startup window and pane, if any.
func (r *Renderer) focus(bin tmux.Binary, p *project.Project, session string) []string {
	if p.StartupWindow == "" && p.StartupPane == "" {
		return nil
	}

	window := p.StartupWindow
	if window == "" {
		window = r.windowIndex(0)
	}

	var lines []string
	if p.StartupWindow != "" {
		lines = append(lines, bin.Line("select-window", "-t", tmux.Target(session, window)))
	}
	if p.StartupPane != "" {
		lines = append(lines, bin.Line("select-pane", "-t", tmux.PaneTarget(session, window, p.StartupPane)))
	}
	return lines
}

// Stop returns the single command that kills the project's session.
func (r *Renderer) Stop(p *project.Project) string {
	return p.Binary().Line("kill-session", "-t", p.SessionName())
}

func (r *Renderer) windowIndex(i int) string {
	return strconv.Itoa(r.opts.BaseIndex + i)
}

func (r *Renderer) paneIndex(j int) string {
	return strconv.Itoa(r.opts.PaneBaseIndex + j)
}

// withDir appends -c dir when dir is set.
func withDir(args []string, dir string) []string {
	if dir == "" {
		return args
	}
	return append(args, "-c", dir)
}

func sendKeys(bin tmux.Binary, target, keys string) string {
	return bin.Line("send-keys", "-t", target, keys, "C-m")
}
