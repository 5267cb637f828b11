package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommand = exec.Command

// findEditor picks the editor from the configured value, then $EDITOR and
// $VISUAL, then the first of vim, nano and vi found on PATH.
func findEditor(configured string) (string, error) {
	for _, e := range []string{configured, os.Getenv("EDITOR"), os.Getenv("VISUAL")} {
		if strings.TrimSpace(e) != "" {
			return e, nil
		}
	}
	for _, e := range []string{"vim", "nano", "vi"} {
		if _, err := execLookPath(e); err == nil {
			return e, nil
		}
	}
	return "", fmt.Errorf("no editor found. Set $EDITOR environment variable")
}

// openEditor opens path in editor, which may carry its own arguments
// ("code --wait").
func openEditor(editor, path string) error {
	fields := strings.Fields(editor)
	editorCmd := execCommand(fields[0], append(fields[1:], path)...)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}
