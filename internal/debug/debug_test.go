package debug

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// capture redirects *stream while fn runs and returns what was written.
func capture(t *testing.T, stream **os.File, fn func()) string {
	t.Helper()
	old := *stream
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	*stream = w
	defer func() { *stream = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func withState(t *testing.T, en, verbose, quiet bool) {
	t.Helper()
	oldEnabled, oldVerbose, oldQuiet := enabled, verboseMode, quietMode
	enabled, verboseMode, quietMode = en, verbose, quiet
	t.Cleanup(func() {
		enabled, verboseMode, quietMode = oldEnabled, oldVerbose, oldQuiet
	})
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		env     bool
		verbose bool
		want    bool
	}{
		{"env only", true, false, true},
		{"verbose only", false, true, true},
		{"neither", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withState(t, tt.env, tt.verbose, false)
			if got := Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogf(t *testing.T) {
	withState(t, false, false, false)
	if got := capture(t, &os.Stderr, func() { Logf("x=%d\n", 1) }); got != "" {
		t.Errorf("Logf() disabled wrote %q", got)
	}

	SetVerbose(true)
	if got := capture(t, &os.Stderr, func() { Logf("x=%d\n", 1) }); got != "x=1\n" {
		t.Errorf("Logf() = %q, want %q", got, "x=1\n")
	}
}

func TestLogger(t *testing.T) {
	withState(t, false, false, false)
	if got := capture(t, &os.Stderr, func() { Logger().Debug("quiet", "id", 1) }); got != "" {
		t.Errorf("disabled Logger wrote %q", got)
	}

	SetVerbose(true)
	got := capture(t, &os.Stderr, func() { Logger().Debug("loaded", "count", 3) })
	if !strings.Contains(got, "msg=loaded") || !strings.Contains(got, "count=3") {
		t.Errorf("Logger output = %q", got)
	}
}

func TestQuietSuppressesNormalOutput(t *testing.T) {
	withState(t, false, false, false)
	if IsQuiet() {
		t.Fatal("IsQuiet() should be false initially")
	}
	if got := capture(t, &os.Stdout, func() { PrintNormal("a %s\n", "b") }); got != "a b\n" {
		t.Errorf("PrintNormal() = %q", got)
	}
	if got := capture(t, &os.Stdout, func() { PrintlnNormal("hello", "world") }); got != "hello world\n" {
		t.Errorf("PrintlnNormal() = %q", got)
	}

	SetQuiet(true)
	if !IsQuiet() {
		t.Fatal("IsQuiet() should be true after SetQuiet(true)")
	}
	if got := capture(t, &os.Stdout, func() {
		PrintNormal("a %s\n", "b")
		PrintlnNormal("hello")
	}); got != "" {
		t.Errorf("quiet mode wrote %q", got)
	}
}

func TestLogEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.log")
	SetEventLog(path)
	t.Cleanup(func() { SetEventLog("") })

	LogEvent("transition", 7, "kim", "accept Review->Interview")
	LogEvent("init", 0, "kim", "")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read event log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), data)
	}
	parts := strings.Split(lines[0], "|")
	if len(parts) != 5 {
		t.Fatalf("got %d fields in %q", len(parts), lines[0])
	}
	if parts[1] != "transition" || parts[2] != "7" || parts[3] != "kim" || parts[4] != "accept Review->Interview" {
		t.Errorf("unexpected entry %q", lines[0])
	}
	if !strings.Contains(lines[1], "|init|none|kim|") {
		t.Errorf("unexpected entry %q", lines[1])
	}
}

func TestLogEventOutsideProjectIsSilent(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	SetEventLog("")

	LogEvent("noop", 1, "kim", "")

	if _, err := os.Stat(filepath.Join(dir, ProjectDirName)); !os.IsNotExist(err) {
		t.Errorf("event log directory created outside a project: %v", err)
	}
}
