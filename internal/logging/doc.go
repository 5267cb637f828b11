// Package logging provides structured logging for muxer.
//
// This package wraps Go's log/slog to write JSON-formatted logs to a single
// file under the user's state directory. muxer is a one-shot CLI, so the log
// is mostly useful for post-hoc debugging of how a project file was
// resolved, which deprecated keys it used, and what script was rendered.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(logDir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithCommand("start").WithProject("dotfiles").Debug("rendered script", "lines", 12)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"rendered script","command":"start","project":"dotfiles","lines":12}
//
// # Log Rotation
//
// The log file is rotated by size. When it would grow past MaxSizeMB it is
// renamed to muxer.log.1, older backups shift up, and at most MaxBackups
// are kept.
//
// # Testing
//
// Use [NopLogger] to discard all output.
//
// # Configuration
//
//	logging:
//	  enabled: true
//	  level: debug
//	  max_size_mb: 5
//	  max_backups: 2
package logging
