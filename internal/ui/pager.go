package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// PagerOptions controls how long listings are shown.
type PagerOptions struct {
	// NoPager prints directly (--no-pager).
	NoPager bool
	// Out receives the content when no pager runs. Defaults to stdout.
	Out io.Writer
}

func (o PagerOptions) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

// pagerEnabled is false for --no-pager, APPMGR_NO_PAGER, a custom writer,
// or a stdout that is not a terminal.
func pagerEnabled(opts PagerOptions) bool {
	if opts.NoPager || opts.Out != nil {
		return false
	}
	if os.Getenv("APPMGR_NO_PAGER") != "" {
		return false
	}
	return IsTerminal()
}

// pagerArgv splits APPMGR_PAGER, then PAGER, into argv. Defaults to less.
func pagerArgv() []string {
	for _, env := range []string{"APPMGR_PAGER", "PAGER"} {
		if argv := strings.Fields(os.Getenv(env)); len(argv) > 0 {
			return argv
		}
	}
	return []string{"less"}
}

// fitsScreen reports whether content fits the terminal, leaving a line for
// the prompt. Unknown heights never fit.
func fitsScreen(content string) bool {
	_, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || rows <= 0 {
		return false
	}
	return lineCount(content) < rows
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(content, "\n"), "\n") + 1
}

// ToPager shows content through the user's pager when stdout is a terminal
// and the content is taller than the screen. Otherwise it writes it out.
func ToPager(content string, opts PagerOptions) error {
	if !pagerEnabled(opts) || fitsScreen(content) {
		_, err := fmt.Fprint(opts.out(), content)
		return err
	}

	argv := pagerArgv()
	cmd := exec.Command(argv[0], argv[1:]...) // #nosec G204 - user-configured pager
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}
	return cmd.Run()
}
