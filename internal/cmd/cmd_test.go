package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/muxer/internal/config"
	"github.com/Iron-Ham/muxer/internal/errors"
	"github.com/Iron-Ham/muxer/internal/logging"
	"github.com/Iron-Ham/muxer/internal/project"
	"github.com/Iron-Ham/muxer/internal/tmux"
)

const fooProject = `
name: foo
root: /work
windows:
  - editor: vim
  - server: npm start
`

// resetFlags restores every flag in the command tree to its default so
// that flag values don't leak between tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and returns captured output
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TMUX", "")
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// stubEnv points every command at an in-memory filesystem seeded with files.
func stubEnv(t *testing.T, files map[string]string) (afero.Fs, *config.Config) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	cfg := config.Default()

	orig := newEnv
	newEnv = func(command string) (*env, error) {
		return &env{
			cfg: cfg,
			source: &project.Source{
				Fs:        fs,
				Dir:       "/projects",
				LocalFile: cfg.Projects.LocalFile,
				WorkDir:   "/work",
			},
			logger: logging.NopLogger(),
		}, nil
	}
	t.Cleanup(func() { newEnv = orig })
	return fs, cfg
}

func stubInteractive(t *testing.T, interactive bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return interactive }
	t.Cleanup(func() { isTerminal = orig })
}

// stubEditor records editor invocations instead of launching one.
func stubEditor(t *testing.T) *[][]string {
	t.Helper()
	var calls [][]string
	orig := execCommand
	execCommand = func(name string, args ...string) *exec.Cmd {
		calls = append(calls, append([]string{name}, args...))
		return exec.Command("true")
	}
	t.Cleanup(func() { execCommand = orig })
	return &calls
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "muxer", rootCmd.Use)

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"start", "debug", "stop", "list", "completions", "new", "copy", "delete", "doctor", "logs", "config"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestDebugCommand(t *testing.T) {
	stubEnv(t, map[string]string{"/projects/foo.yml": fooProject})

	out, err := executeCommand(t, "debug", "foo")
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"tmux new-session -d -s foo -n editor -c /work",
		"tmux send-keys -t foo:0.0 vim C-m",
		"tmux new-window -t foo:1 -n server -c /work",
		"tmux send-keys -t foo:1.0 'npm start' C-m",
		"tmux attach-session -t foo",
	}, "\n")+"\n", out)
}

func TestDebugCommand_Overrides(t *testing.T) {
	stubEnv(t, map[string]string{"/projects/foo.yml": fooProject})

	out, err := executeCommand(t, "debug", "foo", "--name", "bar", "--no-attach")
	require.NoError(t, err)

	assert.Contains(t, out, "new-session -d -s bar")
	assert.NotContains(t, out, "attach-session")
}

func TestDebugCommand_Local(t *testing.T) {
	stubEnv(t, map[string]string{"/work/.muxer.yml": "name: here\nwindows:\n  - shell: top\n"})

	out, err := executeCommand(t, "debug", "--local")
	require.NoError(t, err)
	assert.Contains(t, out, "tmux new-session -d -s here -n shell -c /work")
}

func TestStartCommand(t *testing.T) {
	stubEnv(t, map[string]string{"/projects/foo.yml": fooProject})

	var script string
	orig := execScript
	execScript = func(s string) error {
		script = s
		return nil
	}
	t.Cleanup(func() { execScript = orig })

	_, err := executeCommand(t, "start", "foo", "--no-attach")
	require.NoError(t, err)

	lines := strings.Split(script, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "tmux new-session -d -s foo -n editor -c /work", lines[0])
	assert.Equal(t, "tmux send-keys -t foo:1.0 'npm start' C-m", lines[3])
}

func TestStartCommand_ClosesLogBeforeExec(t *testing.T) {
	stubEnv(t, map[string]string{"/projects/foo.yml": fooProject})

	dir := t.TempDir()
	logger, err := logging.NewLogger(dir, logging.LevelInfo, logging.DefaultRotationConfig())
	require.NoError(t, err)
	stubbed := newEnv
	newEnv = func(command string) (*env, error) {
		e, err := stubbed(command)
		if err != nil {
			return nil, err
		}
		e.logger = logger.WithCommand(command)
		return e, nil
	}

	orig := execScript
	execScript = func(string) error {
		logger.Info("written after close")
		return nil
	}
	t.Cleanup(func() { execScript = orig })

	_, err = executeCommand(t, "start", "foo", "--no-attach")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, logging.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "starting session")
	assert.NotContains(t, string(data), "written after close")
}

func TestStartCommand_Errors(t *testing.T) {
	stubEnv(t, map[string]string{"/projects/foo.yml": fooProject})
	orig := execScript
	execScript = func(string) error {
		t.Fatal("nothing should be executed")
		return nil
	}
	t.Cleanup(func() { execScript = orig })

	_, err := executeCommand(t, "start")
	assert.Error(t, err, "a project name is required without --local")

	_, err = executeCommand(t, "start", "foo", "--attach", "--no-attach")
	assert.Error(t, err)

	_, err = executeCommand(t, "start", "missing")
	assert.True(t, errors.Is(err, errors.ErrProjectNotFound))
}

func TestStartCommand_Deprecations(t *testing.T) {
	stubEnv(t, map[string]string{"/projects/old.yml": "project_name: old\ntabs:\n  - shell:\n"})
	stubInteractive(t, false)

	out, err := executeCommand(t, "debug", "old")
	require.NoError(t, err)
	assert.Contains(t, out, "project_name option is deprecated")

	out, err = executeCommand(t, "debug", "old", "--suppress-warnings")
	require.NoError(t, err)
	assert.NotContains(t, out, "deprecated")
}

func TestShowDeprecations(t *testing.T) {
	var buf bytes.Buffer
	showDeprecations(&buf, strings.NewReader("\n"), []string{"first", "second"}, true)

	out := buf.String()
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "Press ENTER to continue.")

	buf.Reset()
	showDeprecations(&buf, nil, []string{"only"}, false)
	assert.NotContains(t, buf.String(), "Press ENTER")
}

func TestStopCommand(t *testing.T) {
	stubEnv(t, map[string]string{"/projects/foo.yml": fooProject})

	var ran string
	orig := runScript
	runScript = func(ctx context.Context, script string) error {
		ran = script
		return nil
	}
	t.Cleanup(func() { runScript = orig })

	out, err := executeCommand(t, "stop", "foo", "-n", "foo2")
	require.NoError(t, err)
	assert.Equal(t, "tmux kill-session -t foo2", ran)
	assert.Contains(t, out, "Stopped session foo2")
}

func TestListCommand(t *testing.T) {
	stubEnv(t, map[string]string{
		"/projects/foo.yml":      fooProject,
		"/projects/bar.yaml":     "name: bar\n",
		"/projects/work/api.yml": "name: api\n",
		"/projects/notes.txt":    "not a project",
	})

	out, err := executeCommand(t, "list", "-n")
	require.NoError(t, err)
	assert.Equal(t, "bar\nfoo\nwork/api\n", out)

	out, err = executeCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "muxer projects:")
	assert.Contains(t, out, "bar  foo  work/api")
}

func TestListCommand_Empty(t *testing.T) {
	stubEnv(t, nil)

	out, err := executeCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "(none)")
}

func TestCompleteProjectNames(t *testing.T) {
	stubEnv(t, map[string]string{
		"/projects/foo.yml":    fooProject,
		"/projects/foobar.yml": fooProject,
		"/projects/bar.yml":    fooProject,
	})

	got, directive := completeProjectNames(startCmd, nil, "foo")
	assert.Equal(t, []string{"foo", "foobar"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	got, _ = completeProjectNames(startCmd, []string{"foo"}, "")
	assert.Empty(t, got)
}

func TestNewCommand(t *testing.T) {
	fs, cfg := stubEnv(t, nil)
	cfg.Editor = "myeditor --wait"
	calls := stubEditor(t)

	out, err := executeCommand(t, "new", "blog")
	require.NoError(t, err)
	assert.Contains(t, out, "Created /projects/blog.yml")

	data, err := afero.ReadFile(fs, "/projects/blog.yml")
	require.NoError(t, err)
	spec, _, err := project.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "blog", spec["name"])

	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"myeditor", "--wait", "/projects/blog.yml"}, (*calls)[0])

	// An existing project is opened untouched.
	require.NoError(t, afero.WriteFile(fs, "/projects/blog.yml", []byte("name: edited\n"), 0644))
	out, err = executeCommand(t, "edit", "blog")
	require.NoError(t, err)
	assert.NotContains(t, out, "Created")
	data, _ = afero.ReadFile(fs, "/projects/blog.yml")
	assert.Equal(t, "name: edited\n", string(data))
}

func TestNewCommand_Local(t *testing.T) {
	fs, cfg := stubEnv(t, nil)
	cfg.Editor = "ed"
	stubEditor(t)

	_, err := executeCommand(t, "new", "--local")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/work/.muxer.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: work")
}

func TestNewProjectYAML_Builds(t *testing.T) {
	data, err := newProjectYAML("blog", "/projects/blog.yml")
	require.NoError(t, err)

	spec, deps, err := project.Parse(data)
	require.NoError(t, err)
	assert.Empty(t, deps)

	p, err := project.Build(spec, project.BuildOptions{WorkDir: "/work", HomeDir: "/home/u"})
	require.NoError(t, err)
	assert.Equal(t, "/home/u", p.Root)
	require.Len(t, p.Windows, 3)
	assert.Equal(t, "editor", p.Windows[0].Name)
	assert.Equal(t, "main-vertical", p.Windows[0].Layout)
	assert.Len(t, p.Windows[0].Panes, 2)
}

func TestCopyCommand(t *testing.T) {
	fs, _ := stubEnv(t, map[string]string{
		"/projects/foo.yml": fooProject,
		"/projects/bar.yml": "name: bar\n",
	})

	_, err := executeCommand(t, "copy", "foo", "baz", "--no-edit")
	require.NoError(t, err)
	data, err := afero.ReadFile(fs, "/projects/baz.yml")
	require.NoError(t, err)
	assert.Equal(t, fooProject, string(data))

	_, err = executeCommand(t, "copy", "foo", "bar", "--no-edit")
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))

	_, err = executeCommand(t, "copy", "foo", "bar", "--no-edit", "--force")
	require.NoError(t, err)
	data, _ = afero.ReadFile(fs, "/projects/bar.yml")
	assert.Equal(t, fooProject, string(data))

	_, err = executeCommand(t, "copy", "missing", "other", "--no-edit")
	assert.True(t, errors.Is(err, errors.ErrProjectNotFound))
}

func TestDeleteCommand(t *testing.T) {
	fs, _ := stubEnv(t, map[string]string{"/projects/foo.yml": fooProject})
	stubInteractive(t, false)

	_, err := executeCommand(t, "delete", "foo")
	require.Error(t, err, "non-interactive delete needs --yes")
	exists, _ := afero.Exists(fs, "/projects/foo.yml")
	assert.True(t, exists)

	out, err := executeCommand(t, "delete", "foo", "ghost", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted foo")
	assert.Contains(t, out, "ghost does not exist")
	exists, _ = afero.Exists(fs, "/projects/foo.yml")
	assert.False(t, exists)
}

func TestDoctorCommand(t *testing.T) {
	stubEnv(t, nil)
	t.Setenv("EDITOR", "vim")
	t.Setenv("SHELL", "")

	origLook, origVersion := execLookPath, tmuxVersion
	t.Cleanup(func() { execLookPath, tmuxVersion = origLook, origVersion })
	execLookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	var gotBin tmux.Binary
	tmuxVersion = func(ctx context.Context, bin tmux.Binary) (string, error) {
		gotBin = bin
		return "tmux 3.4", nil
	}

	out, err := executeCommand(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "tmux 3.4")
	assert.Contains(t, out, "$EDITOR: vim")
	assert.Contains(t, out, "$SHELL is not set")
	assert.Contains(t, out, "debug logging disabled")
	assert.Equal(t, tmux.Binary{Command: "tmux"}, gotBin)

	execLookPath = func(file string) (string, error) { return "", exec.ErrNotFound }
	out, err = executeCommand(t, "doctor")
	assert.Error(t, err)
	assert.Contains(t, out, "tmux not found on PATH")
}

func TestDoctorCommand_Project(t *testing.T) {
	stubEnv(t, map[string]string{
		"/projects/alt.yml": `
name: alt
tmux_command: tmux-next
socket_name: work
tmux_options: -f "my tmux.conf"
windows:
  - shell:
`,
	})

	origLook, origVersion := execLookPath, tmuxVersion
	t.Cleanup(func() { execLookPath, tmuxVersion = origLook, origVersion })
	var looked string
	execLookPath = func(file string) (string, error) {
		looked = file
		return "/usr/bin/" + file, nil
	}
	var gotBin tmux.Binary
	tmuxVersion = func(ctx context.Context, bin tmux.Binary) (string, error) {
		gotBin = bin
		return "tmux next-3.5", nil
	}

	out, err := executeCommand(t, "doctor", "alt")
	require.NoError(t, err)
	assert.Contains(t, out, "tmux next-3.5")
	assert.Equal(t, "tmux-next", looked)
	assert.Equal(t, tmux.Binary{Command: "tmux-next", Socket: "work", Options: `-f "my tmux.conf"`}, gotBin)

	_, err = executeCommand(t, "doctor", "missing")
	assert.True(t, errors.Is(err, errors.ErrProjectNotFound))
}

func TestCheckLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.NewLogger(dir, logging.LevelInfo, logging.DefaultRotationConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })

	var buf bytes.Buffer
	checkLogFile(&buf, logger)
	assert.Contains(t, buf.String(), filepath.Join(dir, logging.FileName))
	assert.Contains(t, buf.String(), "(0 bytes)")
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    []string
		notWant string
	}{
		{
			name: "missing project gets a hint",
			err:  fmt.Errorf("start: %w", errors.NewNotFoundError("project", "blog")),
			want: []string{"✗ start: project 'blog' not found", "muxer list"},
		},
		{
			name: "validation error points at the file",
			err:  errors.NewValidationError("missing name").WithField("name"),
			want: []string{"✗", "field=name", "muxer edit"},
		},
		{
			name:    "existing project is a warning",
			err:     errors.NewAlreadyExistsError("project", "/projects/b.yml"),
			want:    []string{"! project '/projects/b.yml' already exists"},
			notWant: "✗",
		},
		{
			name:    "plain errors keep the Error prefix",
			err:     fmt.Errorf("boom"),
			want:    []string{"Error: boom"},
			notWant: "muxer list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, tt.err)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			if tt.notWant != "" {
				assert.NotContains(t, buf.String(), tt.notWant)
			}
		})
	}
}

func TestFindEditor(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	orig := execLookPath
	t.Cleanup(func() { execLookPath = orig })

	execLookPath = func(file string) (string, error) {
		if file == "nano" {
			return "/usr/bin/nano", nil
		}
		return "", exec.ErrNotFound
	}

	got, err := findEditor("")
	require.NoError(t, err)
	assert.Equal(t, "nano", got)

	t.Setenv("VISUAL", "emacs")
	got, _ = findEditor("")
	assert.Equal(t, "emacs", got)

	t.Setenv("EDITOR", "hx")
	got, _ = findEditor("")
	assert.Equal(t, "hx", got)

	got, _ = findEditor("code --wait")
	assert.Equal(t, "code --wait", got)

	execLookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	_, err = findEditor("")
	assert.Error(t, err)
}

func TestDisplayLogs(t *testing.T) {
	log := strings.Join([]string{
		`{"time":"2026-01-02T10:00:00Z","level":"DEBUG","msg":"read project file","command":"start","project":"foo","path":"/p/foo.yml"}`,
		`{"time":"2026-01-02T10:00:01Z","level":"INFO","msg":"starting session","command":"start","project":"foo"}`,
		`{"time":"2026-01-02T10:00:02Z","level":"WARN","msg":"odd","command":"start","project":"bar"}`,
		``,
		`not json`,
	}, "\n")

	var buf bytes.Buffer
	require.NoError(t, displayLogs(strings.NewReader(log), &buf, 0, logFilter{minLevel: -1}))
	out := buf.String()
	assert.Contains(t, out, "read project file")
	assert.Contains(t, out, "path=")
	assert.Contains(t, out, "not json")

	buf.Reset()
	require.NoError(t, displayLogs(strings.NewReader(log), &buf, 0, logFilter{minLevel: levelPriority("INFO"), project: "foo"}))
	out = buf.String()
	assert.Contains(t, out, "starting session")
	assert.NotContains(t, out, "read project file")
	assert.NotContains(t, out, "odd")

	buf.Reset()
	require.NoError(t, displayLogs(strings.NewReader(log), &buf, 1, logFilter{minLevel: -1}))
	assert.Equal(t, "not json\n", buf.String())

	buf.Reset()
	require.NoError(t, displayLogs(strings.NewReader(log), &buf, 0, logFilter{minLevel: -1, since: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}))
	assert.Equal(t, "not json\n", buf.String())
}

func TestFollowLogs_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := strings.NewReader(`{"time":"2026-01-02T10:00:00Z","level":"INFO","msg":"hello"}` + "\n")

	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- followLogs(ctx, r, &buf, logFilter{minLevel: -1}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("followLogs did not return after cancel")
	}
	assert.Contains(t, buf.String(), "hello")
}
