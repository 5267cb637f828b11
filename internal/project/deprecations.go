package project

// legacyKeys maps obsolete top-level keys to the message reported when a
// project file uses them. Order matters: findings are reported in this order.
var legacyKeys = []struct {
	key     string
	message string
}{
	{"project_name", "The project_name option is deprecated; use name instead."},
	{"project_root", "The project_root option is deprecated; use root instead."},
	{"tabs", "The tabs option is deprecated; use windows instead."},
	{"cli_args", "The cli_args option is deprecated; use tmux_options instead."},
	{"pre_tab", "The pre_tab option is deprecated; use pre_window instead."},
	{"rbenv", "The rbenv option is deprecated; use pre_window: rbenv shell <version> instead."},
	{"rvm", "The rvm option is deprecated; use pre_window: rvm use <version> instead."},
}

const syncTrueMessage = "The synchronize: true window option is deprecated; use synchronize: after or synchronize: before instead."

// Deprecations scans spec for obsolete keys and shapes. It never fails and
// never modifies spec. The result is empty, not nil, when nothing is found.
func Deprecations(spec Spec) []string {
	found := []string{}

	for _, lk := range legacyKeys {
		if _, ok := spec[lk.key]; ok {
			found = append(found, lk.message)
		}
	}

	if usesSynchronizeTrue(spec) {
		found = append(found, syncTrueMessage)
	}

	return found
}

func usesSynchronizeTrue(spec Spec) bool {
	for _, key := range []string{"windows", "tabs"} {
		list, ok := spec[key].([]any)
		if !ok {
			continue
		}
		for _, entry := range list {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			for _, def := range m {
				opts, ok := def.(map[string]any)
				if !ok {
					continue
				}
				if sync, ok := opts["synchronize"].(bool); ok && sync {
					return true
				}
			}
		}
	}
	return false
}
