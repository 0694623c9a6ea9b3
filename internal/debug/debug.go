package debug

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ProjectDirName is the per-project directory holding config, data and the event log.
const ProjectDirName = ".appmgr"

var (
	enabled      = os.Getenv("APPMGR_DEBUG") != ""
	verboseMode  = false
	quietMode    = false
	eventLogPath = ""
	logMutex     sync.Mutex
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

func Logf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Logger returns a structured logger for debug records. It discards
// everything unless debug output is enabled.
func Logger() *slog.Logger {
	if !Enabled() {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// PrintNormal prints output unless quiet mode is enabled
// Use this for normal informational output that should be suppressed in quiet mode
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		fmt.Println(args...)
	}
}

// SetEventLog overrides where LogEvent appends. An empty path restores the
// default of .appmgr/events.log under the nearest project root.
func SetEventLog(path string) {
	logMutex.Lock()
	defer logMutex.Unlock()
	eventLogPath = path
}

// LogEvent appends an event to the event log.
// Format: TIMESTAMP|EVENT_CODE|APP_ID|ACTOR|DETAILS
func LogEvent(eventCode string, appID int, actor, details string) {
	logMutex.Lock()
	defer logMutex.Unlock()

	logPath := eventLogPath
	if logPath == "" {
		projectRoot, err := findProjectRoot()
		if err != nil {
			// Silent fail if not in a project
			return
		}
		logPath = filepath.Join(projectRoot, ProjectDirName, "events.log")
	}

	id := "none"
	if appID > 0 {
		id = fmt.Sprintf("%d", appID)
	}
	if actor == "" {
		actor = os.Getenv("USER")
		if actor == "" {
			actor = "unknown"
		}
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	entry := fmt.Sprintf("%s|%s|%s|%s|%s\n", timestamp, eventCode, id, actor, details)

	_ = os.MkdirAll(filepath.Dir(logPath), 0o750)

	// #nosec G304 -- log path is derived from the project directory
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		// Don't interrupt operations if logging fails
		return
	}
	defer file.Close()

	_, _ = file.WriteString(entry)
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		projectDir := filepath.Join(dir, ProjectDirName)
		if info, err := os.Stat(projectDir); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in an appmgr project")
		}
		dir = parent
	}
}
