// Package tmux builds and runs tmux command lines.
//
// Every project may target its own tmux server with a socket name (-L), use a
// different tmux binary, and pass extra global flags. Binary captures those
// three settings so callers only supply the subcommand and its arguments.
package tmux

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// DefaultCommand is the tmux binary used when none is configured.
const DefaultCommand = "tmux"

// Binary describes how tmux is invoked for one project.
type Binary struct {
	// Command is the tmux executable. Empty means DefaultCommand.
	Command string
	// Socket selects a tmux server with -L. Empty means the default server.
	Socket string
	// Options are raw global flags inserted after the socket, e.g.
	// "-f ~/.tmux.alt.conf". They are emitted unquoted.
	Options string
}

// BaseArgs returns the global arguments that precede every subcommand.
// Options are split into words the way the shell splits them in Line,
// including quotes, ~ and $VAR expansion.
func (b Binary) BaseArgs() []string {
	var args []string
	if b.Socket != "" {
		args = append(args, "-L", b.Socket)
	}
	if opts := strings.TrimSpace(b.Options); opts != "" {
		fields, err := shell.Fields(opts, nil)
		if err != nil {
			fields = strings.Fields(opts)
		}
		args = append(args, fields...)
	}
	return args
}

// CommandArgs returns the full argument list (without the binary) for a
// tmux subcommand.
func (b Binary) CommandArgs(args ...string) []string {
	return append(b.BaseArgs(), args...)
}

// Line returns a shell command line running the tmux subcommand args.
// The binary, socket and subcommand arguments are quoted; Options are
// inserted verbatim so they may contain shell expansions such as ~.
func (b Binary) Line(args ...string) string {
	parts := make([]string, 0, len(args)+4)
	parts = append(parts, Quote(b.command()))
	if b.Socket != "" {
		parts = append(parts, "-L", Quote(b.Socket))
	}
	if opts := strings.TrimSpace(b.Options); opts != "" {
		parts = append(parts, opts)
	}
	for _, a := range args {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}

// CommandContext creates a context-aware exec.Cmd for a tmux subcommand.
func (b Binary) CommandContext(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, b.command(), b.CommandArgs(args...)...)
}

func (b Binary) command() string {
	if b.Command == "" {
		return DefaultCommand
	}
	return b.Command
}

// Version returns the output of `tmux -V`, e.g. "tmux 3.4".
func (b Binary) Version(ctx context.Context) (string, error) {
	out, err := b.CommandContext(ctx, "-V").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// safeWord matches arguments the shell passes through unchanged.
var safeWord = regexp.MustCompile(`^[A-Za-z0-9_@%+:,./-]+$`)

// Quote returns s quoted for bash. Strings that need no quoting are
// returned unchanged.
func Quote(s string) string {
	if safeWord.MatchString(s) {
		return s
	}
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only strings with NUL bytes get here; the shell could not pass
		// them as arguments anyway.
		return "'" + strings.ReplaceAll(strings.ReplaceAll(s, "\x00", ""), "'", `'\''`) + "'"
	}
	return q
}

// Target formats a session:window target. window may be an index or a name.
func Target(session, window string) string {
	return session + ":" + window
}

// PaneTarget formats a session:window.pane target.
func PaneTarget(session, window, pane string) string {
	return Target(session, window) + "." + pane
}

// Script joins command lines into a single shell script.
func Script(lines []string) string {
	return strings.Join(lines, "\n")
}

// InsideTmux reports whether the current process runs inside a tmux client.
func InsideTmux() bool {
	return os.Getenv("TMUX") != ""
}
