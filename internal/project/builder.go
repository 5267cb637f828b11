package project

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/Iron-Ham/muxer/internal/errors"
)

// BuildOptions carry the environment a Project is resolved against.
type BuildOptions struct {
	// WorkDir is the root used when the project declares none, and the base
	// for a relative project root. Defaults to the process working directory.
	WorkDir string
	// HomeDir replaces a leading ~ in roots. Defaults to the user's home.
	HomeDir string
	// TmuxCommand is used when the project does not set tmux_command.
	TmuxCommand string
	// VariadicMarker is used when the project does not set args_marker.
	// Empty disables variadic substitution.
	VariadicMarker string
	// Deprecations are copied into the Project unchanged.
	Deprecations []string
}

// topLevel holds the scalar and list keys of a project file. Windows are
// normalized separately because their shape varies.
type topLevel struct {
	Name        string `mapstructure:"name"`
	ProjectName string `mapstructure:"project_name"`
	CustomName  string `mapstructure:"custom_name"`

	Root        string `mapstructure:"root"`
	ProjectRoot string `mapstructure:"project_root"`

	SocketName  string `mapstructure:"socket_name"`
	TmuxCommand string `mapstructure:"tmux_command"`
	TmuxOptions string `mapstructure:"tmux_options"`
	CLIArgs     string `mapstructure:"cli_args"`

	Pre       []string `mapstructure:"pre"`
	Post      []string `mapstructure:"post"`
	PreWindow []string `mapstructure:"pre_window"`
	PreTab    []string `mapstructure:"pre_tab"`
	Rbenv     string   `mapstructure:"rbenv"`
	Rvm       string   `mapstructure:"rvm"`

	StartupWindow string `mapstructure:"startup_window"`
	StartupPane   string `mapstructure:"startup_pane"`

	Attach     bool     `mapstructure:"attach"`
	Args       []string `mapstructure:"args"`
	ArgsMarker *string  `mapstructure:"args_marker"`
}

var decodeFieldRegex = regexp.MustCompile(`'([a-z_]+)(?:\[[0-9]+\])*'`)

// rejectBoolString refuses YAML booleans for string keys. Weak typing
// would otherwise turn `name: true` into the session name "1". Numbers
// are still accepted, e.g. `startup_window: 1`.
func rejectBoolString(from, to reflect.Kind, data any) (any, error) {
	if from == reflect.Bool && to == reflect.String {
		return nil, fmt.Errorf("expected a string, got %v", data)
	}
	return data, nil
}

// Build validates a merged Spec and resolves it into a Project. Window and
// pane shorthands are normalized, roots are resolved, and positional
// arguments are substituted into every command.
func Build(spec Spec, opts BuildOptions) (*Project, error) {
	var top topLevel
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       rejectBoolString,
		Result:           &top,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating decoder")
	}
	if err := dec.Decode(map[string]any(spec)); err != nil {
		field := "project"
		if m := decodeFieldRegex.FindStringSubmatch(err.Error()); m != nil {
			field = m[1]
		}
		return nil, errors.NewValidationError("invalid value").WithField(field).WithValue(spec[field]).WithCause(err)
	}

	name := strings.TrimSpace(firstNonEmpty(top.Name, top.ProjectName))
	if name == "" {
		return nil, errors.NewValidationError("project name is required").WithField("name")
	}

	workDir := opts.WorkDir
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		} else {
			workDir = "."
		}
	}
	home := opts.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	r := rootResolver{home: home}

	p := &Project{
		Name:          name,
		CustomName:    top.CustomName,
		Root:          r.resolve(firstNonEmpty(top.Root, top.ProjectRoot), workDir),
		SocketName:    top.SocketName,
		TmuxCommand:   firstNonEmpty(top.TmuxCommand, opts.TmuxCommand, "tmux"),
		TmuxOptions:   firstNonEmpty(top.TmuxOptions, top.CLIArgs),
		PreCommands:   nonEmpty(top.Pre),
		PostCommands:  nonEmpty(top.Post),
		PreWindow:     preWindow(top),
		Attach:        top.Attach,
		ExtraArgs:     top.Args,
		StartupWindow: top.StartupWindow,
		StartupPane:   top.StartupPane,
		Deprecations:  opts.Deprecations,
	}
	if p.ExtraArgs == nil {
		p.ExtraArgs = []string{}
	}
	if p.Deprecations == nil {
		p.Deprecations = []string{}
	}

	raw, ok := spec["windows"]
	if !ok {
		raw = spec["tabs"]
	}
	windows, err := buildWindows(raw, p.Root, r)
	if err != nil {
		return nil, err
	}
	p.Windows = windows

	marker := opts.VariadicMarker
	if top.ArgsMarker != nil {
		marker = *top.ArgsMarker
	}
	SubstituteArgs(p, p.ExtraArgs, marker)

	return p, nil
}

// preWindow picks the per-pane setup commands, honoring the legacy keys
// when pre_window is absent.
func preWindow(top topLevel) []string {
	switch {
	case len(top.PreWindow) > 0:
		return nonEmpty(top.PreWindow)
	case top.Rbenv != "":
		return []string{"rbenv shell " + top.Rbenv}
	case top.Rvm != "":
		return []string{"rvm use " + top.Rvm}
	default:
		return nonEmpty(top.PreTab)
	}
}

func buildWindows(raw any, projectRoot string, r rootResolver) ([]Window, error) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, errors.NewValidationError("at least one window is required").
			WithField("windows").WithValue(raw)
	}

	windows := make([]Window, 0, len(list))
	for i, entry := range list {
		w, err := buildWindow(i, entry, projectRoot, r)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func buildWindow(i int, entry any, projectRoot string, r rootResolver) (Window, error) {
	field := fmt.Sprintf("windows[%d]", i)

	switch e := entry.(type) {
	case string:
		// "- htop" is a window named after the command it runs.
		return Window{
			Name:  e,
			Root:  projectRoot,
			Panes: []Pane{{Commands: []string{e}, Root: projectRoot}},
		}, nil
	case map[string]any:
		if len(e) != 1 {
			return Window{}, errors.NewValidationError("window must be a single name mapped to its definition").
				WithField(field).WithValue(entry)
		}
		for name, def := range e {
			return buildWindowDef(field, name, def, projectRoot, r)
		}
	}

	return Window{}, errors.NewValidationError("window must be a command or a name mapped to its definition").
		WithField(field).WithValue(entry)
}

func buildWindowDef(field, name string, def any, projectRoot string, r rootResolver) (Window, error) {
	w := Window{Name: name, Root: projectRoot}

	opts, isMap := def.(map[string]any)
	if !isMap {
		cmds, ok := toCommands(def)
		if !ok {
			return Window{}, errors.NewValidationError("window definition must be a command, a list of commands or a mapping").
				WithField(field).WithValue(def)
		}
		w.Panes = []Pane{{Commands: cmds, Root: w.Root}}
		return w, nil
	}

	if v, ok := opts["root"]; ok && v != nil {
		root, ok := scalarString(v)
		if !ok {
			return Window{}, errors.NewValidationError("root must be a path").
				WithField(field + ".root").WithValue(v)
		}
		w.Root = r.resolve(root, projectRoot)
	}

	if v, ok := opts["layout"]; ok && v != nil {
		layout, ok := v.(string)
		if !ok {
			return Window{}, errors.NewValidationError("layout must be a string").
				WithField(field + ".layout").WithValue(v)
		}
		w.Layout = layout
	}

	if v, ok := opts["synchronize"]; ok {
		mode, err := parseSync(v)
		if err != nil {
			return Window{}, err.WithField(field + ".synchronize")
		}
		w.Synchronize = mode
	}

	if v, ok := opts["pre"]; ok {
		cmds, ok := toCommands(v)
		if !ok {
			return Window{}, errors.NewValidationError("pre must be a command or a list of commands").
				WithField(field + ".pre").WithValue(v)
		}
		w.PreCommands = cmds
	}

	panes, err := buildPanes(field, opts["panes"], w.Root, r)
	if err != nil {
		return Window{}, err
	}
	w.Panes = panes
	return w, nil
}

func buildPanes(field string, raw any, windowRoot string, r rootResolver) ([]Pane, error) {
	var list []any
	switch v := raw.(type) {
	case nil:
	case []any:
		list = v
	case string:
		list = []any{v}
	default:
		return nil, errors.NewValidationError("panes must be a list").
			WithField(field + ".panes").WithValue(raw)
	}

	if len(list) == 0 {
		return []Pane{{Root: windowRoot}}, nil
	}

	panes := make([]Pane, 0, len(list))
	for j, entry := range list {
		pf := fmt.Sprintf("%s.panes[%d]", field, j)
		pane, err := buildPane(pf, entry, windowRoot, r)
		if err != nil {
			return nil, err
		}
		panes = append(panes, pane)
	}
	return panes, nil
}

func buildPane(field string, entry any, windowRoot string, r rootResolver) (Pane, error) {
	if cmds, ok := toCommands(entry); ok {
		return Pane{Commands: cmds, Root: windowRoot}, nil
	}

	m, ok := entry.(map[string]any)
	if !ok || len(m) != 1 {
		return Pane{}, errors.NewValidationError("pane must be a command, a list of commands or a single title mapped to its commands").
			WithField(field).WithValue(entry)
	}

	for title, def := range m {
		pane := Pane{Title: title, Root: windowRoot}

		if cmds, ok := toCommands(def); ok {
			pane.Commands = cmds
			return pane, nil
		}

		// {title: {root: dir, commands: [...]}}
		opts, ok := def.(map[string]any)
		if !ok {
			break
		}
		if v, ok := opts["root"]; ok && v != nil {
			root, ok := scalarString(v)
			if !ok {
				return Pane{}, errors.NewValidationError("root must be a path").
					WithField(field + ".root").WithValue(v)
			}
			pane.Root = r.resolve(root, windowRoot)
		}
		cmds, ok := toCommands(opts["commands"])
		if !ok {
			return Pane{}, errors.NewValidationError("commands must be a command or a list of commands").
				WithField(field + ".commands").WithValue(opts["commands"])
		}
		pane.Commands = cmds
		return pane, nil
	}

	return Pane{}, errors.NewValidationError("pane must be a command, a list of commands or a single title mapped to its commands").
		WithField(field).WithValue(entry)
}

func parseSync(v any) (SyncMode, *errors.ValidationError) {
	switch t := v.(type) {
	case nil:
		return SyncOff, nil
	case bool:
		if t {
			return SyncAfter, nil
		}
		return SyncOff, nil
	case string:
		switch SyncMode(strings.ToLower(t)) {
		case SyncBefore:
			return SyncBefore, nil
		case SyncAfter:
			return SyncAfter, nil
		}
	}
	return SyncOff, errors.NewValidationError("synchronize must be before, after, true or false").WithValue(v)
}

// toCommands converts nil, a scalar or a list of scalars to a command list.
func toCommands(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case []any:
		cmds := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			s, ok := scalarString(item)
			if !ok {
				return nil, false
			}
			cmds = append(cmds, s)
		}
		return cmds, true
	default:
		s, ok := scalarString(v)
		if !ok {
			return nil, false
		}
		return []string{s}, true
	}
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

type rootResolver struct {
	home string
}

// resolve returns root made absolute against parent, with ~ expanded.
// An empty root inherits parent.
func (r rootResolver) resolve(root, parent string) string {
	root = strings.TrimSpace(root)
	if root == "" {
		return parent
	}
	if root == "~" {
		root = r.home
	} else if strings.HasPrefix(root, "~/") {
		root = filepath.Join(r.home, root[2:])
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(parent, root)
	}
	return filepath.Clean(root)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(cmds []string) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
