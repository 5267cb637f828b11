package project

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultVariadicMarker is replaced by the arguments that no positional
// placeholder consumed.
const DefaultVariadicMarker = "{{@}}"

// placeholderRegex matches 1-based positional placeholders such as {{1}}.
var placeholderRegex = regexp.MustCompile(`\{\{([1-9][0-9]*)\}\}`)

// SubstituteArgs rewrites every command in p, replacing {{N}} with the Nth
// argument (empty when there are fewer arguments) and marker with the
// arguments beyond the highest placeholder used anywhere in the project,
// joined by spaces. With an empty marker, surplus arguments are dropped.
func SubstituteArgs(p *Project, args []string, marker string) {
	cmds := p.commandRefs()

	highest := 0
	for _, c := range cmds {
		highest = max(highest, HighestPlaceholder(*c))
	}

	var surplus string
	if highest < len(args) {
		surplus = strings.Join(args[highest:], " ")
	}

	for _, c := range cmds {
		*c = Expand(*c, args, marker, surplus)
	}
}

// HighestPlaceholder returns the largest N of the {{N}} placeholders in s,
// or 0 when there are none.
func HighestPlaceholder(s string) int {
	highest := 0
	for _, m := range placeholderRegex.FindAllStringSubmatch(s, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return highest
}

// Expand substitutes positional placeholders in s from args and replaces
// marker with surplus. Both are replaced in a single pass so argument text
// is inserted verbatim and never expanded again.
func Expand(s string, args []string, marker, surplus string) string {
	re := placeholderRegex
	if marker != "" {
		re = regexp.MustCompile(placeholderRegex.String() + "|" + regexp.QuoteMeta(marker))
	}
	return re.ReplaceAllStringFunc(s, func(m string) string {
		if m == marker {
			return surplus
		}
		n, err := strconv.Atoi(m[2 : len(m)-2])
		if err != nil || n > len(args) {
			return ""
		}
		return args[n-1]
	})
}

// commandRefs returns pointers to every command string of the project in
// render order.
func (p *Project) commandRefs() []*string {
	var refs []*string
	add := func(cmds []string) {
		for i := range cmds {
			refs = append(refs, &cmds[i])
		}
	}

	add(p.PreCommands)
	add(p.PreWindow)
	for wi := range p.Windows {
		w := &p.Windows[wi]
		add(w.PreCommands)
		for pi := range w.Panes {
			add(w.Panes[pi].Commands)
		}
	}
	add(p.PostCommands)
	return refs
}
