package main

import (
	"fmt"
	"os"

	"github.com/steveyegge/appmgr/internal/ui"
)

// FatalError writes an error message to stderr and exits with code 1.
// Use this for fatal errors that prevent the command from completing.
//
// Example:
//
//	if _, err := mgr.Execute(ctx, id, cmd); err != nil {
//	    FatalError("%v", err)
//	}
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderFail(ui.IconFail+" Error:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}

// FatalErrorWithHint writes an error message with a hint to stderr and exits.
// Use this when you can provide an actionable suggestion to fix the error.
//
// Example:
//
//	FatalErrorWithHint("data file not found", "Run 'appmgr init' to create one")
func FatalErrorWithHint(message, hint string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderFail(ui.IconFail+" Error:"), message)
	fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	os.Exit(1)
}

// FatalErrorRespectJSON reports a fatal error as JSON on stderr when --json
// is set, and as plain text otherwise.
func FatalErrorRespectJSON(format string, args ...interface{}) {
	if jsonOutput {
		outputJSONError(fmt.Errorf(format, args...), "")
	}
	FatalError(format, args...)
}

// WarnError writes a warning message to stderr and returns.
// Use this for optional operations that enhance functionality but aren't required.
func WarnError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s Warning: %s\n", ui.RenderWarnIcon(), fmt.Sprintf(format, args...))
}
