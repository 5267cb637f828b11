package tmux

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestBinary_BaseArgs(t *testing.T) {
	tests := []struct {
		name string
		bin  Binary
		want []string
	}{
		{"default server", Binary{}, nil},
		{"socket", Binary{Socket: "work"}, []string{"-L", "work"}},
		{"socket and options", Binary{Socket: "work", Options: " -f  alt.conf "}, []string{"-L", "work", "-f", "alt.conf"}},
		{"quoted options", Binary{Options: `-f "my tmux.conf"`}, []string{"-f", "my tmux.conf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.bin.BaseArgs()
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("BaseArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBinary_CommandArgs(t *testing.T) {
	args := Binary{Socket: "work"}.CommandArgs("kill-session", "-t", "dev")
	expected := []string{"-L", "work", "kill-session", "-t", "dev"}

	if len(args) != len(expected) {
		t.Fatalf("CommandArgs() = %v, want %v", args, expected)
	}
	for i, arg := range expected {
		if args[i] != arg {
			t.Errorf("args[%d] = %q, want %q", i, args[i], arg)
		}
	}
}

func TestBinary_Line(t *testing.T) {
	tests := []struct {
		name string
		bin  Binary
		args []string
		want string
	}{
		{
			name: "plain",
			bin:  Binary{},
			args: []string{"kill-session", "-t", "dev"},
			want: "tmux kill-session -t dev",
		},
		{
			name: "socket and options",
			bin:  Binary{Command: "/opt/bin/tmux", Socket: "work", Options: "-f ~/.tmux.alt.conf"},
			args: []string{"new-session", "-d", "-s", "dev"},
			want: "/opt/bin/tmux -L work -f ~/.tmux.alt.conf new-session -d -s dev",
		},
		{
			name: "arguments with spaces are quoted",
			bin:  Binary{},
			args: []string{"send-keys", "-t", "dev:0.0", "npm start", "C-m"},
			want: "tmux send-keys -t dev:0.0 'npm start' C-m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bin.Line(tt.args...); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"vim", "vim"},
		{"dev:1.2", "dev:1.2"},
		{"/home/u/code", "/home/u/code"},
		{"main-vertical", "main-vertical"},
		{"tail -f log", "'tail -f log'"},
		{"", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Quote(tt.in); got != tt.want {
				t.Errorf("Quote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuote_SpecialCharacters(t *testing.T) {
	// The exact quoting style is up to the shell quoter; what matters is
	// that metacharacters never appear bare.
	for _, in := range []string{"echo $HOME", "a;b", "it's", "x|y"} {
		got := Quote(in)
		if got == in {
			t.Errorf("Quote(%q) returned the input unquoted", in)
		}
	}
}

func TestQuote_NullByte(t *testing.T) {
	if got := Quote("a\x00b"); got != "'ab'" {
		t.Errorf("Quote() = %q, want %q", got, "'ab'")
	}
}

func TestTargets(t *testing.T) {
	if got := Target("dev", "1"); got != "dev:1" {
		t.Errorf("Target() = %q, want %q", got, "dev:1")
	}
	if got := PaneTarget("dev", "1", "2"); got != "dev:1.2" {
		t.Errorf("PaneTarget() = %q, want %q", got, "dev:1.2")
	}
}

func TestScript(t *testing.T) {
	if got := Script([]string{"a", "b", "c"}); got != "a\nb\nc" {
		t.Errorf("Script() = %q", got)
	}
	if got := Script(nil); got != "" {
		t.Errorf("Script(nil) = %q, want empty", got)
	}
}

func TestInsideTmux(t *testing.T) {
	t.Setenv("TMUX", "")
	if InsideTmux() {
		t.Error("InsideTmux() = true with empty TMUX")
	}
	t.Setenv("TMUX", "/tmp/tmux-1000/default,123,0")
	if !InsideTmux() {
		t.Error("InsideTmux() = false with TMUX set")
	}
}

func TestBinary_CommandContext(t *testing.T) {
	ctx := context.Background()
	cmd := Binary{Socket: "work"}.CommandContext(ctx, "list-sessions")

	args := cmd.Args
	if len(args) != 4 {
		t.Fatalf("Expected 4 args, got %d: %v", len(args), args)
	}
	if args[0] != "tmux" || args[1] != "-L" || args[2] != "work" || args[3] != "list-sessions" {
		t.Errorf("Args = %v", args)
	}
}

func TestBinary_Version(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not found in PATH")
	}

	// echo prints its arguments, showing the socket reaches the command.
	got, err := Binary{Command: "echo", Socket: "work"}.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if got != "-L work -V" {
		t.Errorf("Version() = %q, want %q", got, "-L work -V")
	}
}

func TestExec(t *testing.T) {
	origLook, origExec := execLookPath, syscallExec
	defer func() { execLookPath, syscallExec = origLook, origExec }()

	var gotArgv []string
	execLookPath = func(string) (string, error) { return "/bin/sh", nil }
	syscallExec = func(argv0 string, argv []string, envv []string) error {
		if argv0 != "/bin/sh" {
			t.Errorf("argv0 = %q, want /bin/sh", argv0)
		}
		gotArgv = argv
		return errors.New("stub")
	}

	err := Exec("tmux attach-session -t dev")
	if err == nil || err.Error() != "stub" {
		t.Fatalf("Exec() error = %v, want stub", err)
	}
	if strings.Join(gotArgv, "|") != "sh|-c|tmux attach-session -t dev" {
		t.Errorf("argv = %q", gotArgv)
	}
}

func TestExec_NoShell(t *testing.T) {
	origLook := execLookPath
	defer func() { execLookPath = origLook }()

	execLookPath = func(string) (string, error) { return "", errors.New("not found") }
	if err := Exec("true"); err == nil {
		t.Error("Exec() should fail when the shell cannot be found")
	}
}

func TestRun(t *testing.T) {
	if err := Run(context.Background(), "true"); err != nil {
		t.Errorf("Run(true) error = %v", err)
	}

	err := Run(context.Background(), "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("Run() should fail for a non-zero exit")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Run() error = %q, want output included", err.Error())
	}
}
