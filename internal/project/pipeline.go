package project

import (
	"github.com/Iron-Ham/muxer/internal/errors"
	"github.com/Iron-Ham/muxer/internal/logging"
)

// Loader runs the full resolution pipeline for one project.
type Loader struct {
	Source       *Source
	Defaults     Defaults
	BuildOptions BuildOptions
	// Logger is optional. A nil Logger disables logging.
	Logger *logging.Logger
}

// Load reads, parses, merges and builds the named project (or the local
// project file when local is set). Errors from each stage are returned
// unchanged apart from the file path being attached to parse errors.
func (l *Loader) Load(name string, local bool, o Overrides) (*Project, error) {
	log := l.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	log = log.WithProject(name)

	def, err := l.Source.Read(name, local)
	if err != nil {
		log.Debug("project file not found", "local", local, "error", err)
		return nil, err
	}
	log.Debug("read project file", "path", def.Path, "bytes", len(def.Data))

	spec, deprecations, err := Parse(def.Data)
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) {
			perr.WithPath(def.Path)
		}
		log.Debug("failed to parse project file", "path", def.Path, "error", err)
		return nil, err
	}
	if len(deprecations) > 0 {
		log.Info("project file uses deprecated options", "path", def.Path, "count", len(deprecations))
	}

	merged := Merge(spec, o, l.Defaults)
	log.Debug("merged overrides",
		"custom_name", o.CustomName,
		"attach", o.Attach.String(),
		"args", len(o.Args),
	)

	opts := l.BuildOptions
	opts.Deprecations = deprecations
	p, err := Build(merged, opts)
	if err != nil {
		log.Debug("failed to build project", "path", def.Path, "error", err)
		return nil, err
	}

	log.Debug("built project",
		"session", p.SessionName(),
		"windows", len(p.Windows),
		"attach", p.Attach,
	)
	return p, nil
}
