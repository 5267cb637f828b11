package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Iron-Ham/muxer/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "tmux.base_index")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels, in the lowercase
// form used in the config file
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, l := range levels {
		levels[i] = strings.ToLower(l)
	}
	return levels
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateProjects()...)
	errors = append(errors, c.validateTmux()...)
	errors = append(errors, c.validateArgs()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateProjects validates the ProjectsConfig
func (c *Config) validateProjects() []ValidationError {
	var errors []ValidationError

	if strings.ContainsRune(c.Projects.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "projects.dir",
			Value:   c.Projects.Dir,
			Message: "path contains invalid null character",
		})
	}

	// The local file is looked up in the working directory, so it must be a
	// bare file name.
	local := c.Projects.LocalFile
	switch {
	case strings.TrimSpace(local) == "":
		errors = append(errors, ValidationError{
			Field:   "projects.local_file",
			Value:   local,
			Message: "cannot be empty",
		})
	case filepath.Base(local) != local || local == "." || local == "..":
		errors = append(errors, ValidationError{
			Field:   "projects.local_file",
			Value:   local,
			Message: "must be a file name without directory components",
		})
	}

	return errors
}

// validateTmux validates the TmuxConfig
func (c *Config) validateTmux() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Tmux.Command) == "" {
		errors = append(errors, ValidationError{
			Field:   "tmux.command",
			Value:   c.Tmux.Command,
			Message: "cannot be empty",
		})
	}

	if c.Tmux.BaseIndex < 0 {
		errors = append(errors, ValidationError{
			Field:   "tmux.base_index",
			Value:   c.Tmux.BaseIndex,
			Message: "must be non-negative",
		})
	}
	if c.Tmux.PaneBaseIndex < 0 {
		errors = append(errors, ValidationError{
			Field:   "tmux.pane_base_index",
			Value:   c.Tmux.PaneBaseIndex,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateArgs validates the ArgsConfig
func (c *Config) validateArgs() []ValidationError {
	var errors []ValidationError

	// An empty marker disables variadic substitution, which is valid. A
	// marker that looks like a positional placeholder would be ambiguous.
	if m := c.Args.VariadicMarker; m != "" && positionalLike(m) {
		errors = append(errors, ValidationError{
			Field:   "args.variadic_marker",
			Value:   m,
			Message: "must not look like a positional placeholder such as {{1}}",
		})
	}

	return errors
}

// positionalLike reports whether s has the {{N}} shape used for positional
// arguments.
func positionalLike(s string) bool {
	if !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") || len(s) <= 4 {
		return false
	}
	for _, r := range s[2 : len(s)-2] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
