package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/config"
	"github.com/steveyegge/appmgr/internal/manager"
)

var (
	dbPath      string
	backendName string
	actor       string
	jsonOutput  bool
	noColor     bool
	verboseFlag bool // Enable verbose/debug output
	quietFlag   bool // Suppress non-essential output
	lockTimeout = config.DefaultLockTimeout

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc

	// mgr is opened by PersistentPreRun for every command that needs data.
	mgr *manager.Manager
)

// noDataCommands never open the data file.
var noDataCommands = map[string]bool{
	"init":       true,
	"version":    true,
	"help":       true,
	"completion": true,
	"config":     true,
	"get":        true,
	"set":        true,
	"list-keys":  true,
}

func isNoDataCommand(cmd *cobra.Command) bool {
	return noDataCommands[cmd.Name()]
}

func init() {
	// Initialize viper configuration
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Data file path (default: .appmgr/applications.txt)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Storage backend: text or sqlite (default: text)")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "Actor name for the event log (default: $APPMGR_ACTOR, $USER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().DurationVar(&lockTimeout, "lock-timeout", config.DefaultLockTimeout, "How long to wait for the data file lock")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	// Add --version flag to root command (same behavior as version subcommand)
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "apps", Title: "Working With Applications:"})
	rootCmd.AddGroup(&cobra.Group{ID: "workflow", Title: "Hiring Workflow:"})
	rootCmd.AddGroup(&cobra.Group{ID: "data", Title: "Import & Export:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Configuration:"})
}

var rootCmd = &cobra.Command{
	Use:   "appmgr",
	Short: "appmgr - Job application tracker",
	Long: `Track job applications through review, interview, waitlist, reference
check, offer and close. Applications live in a plain text file (or SQLite)
under .appmgr in the current project.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Handle --version flag on root command
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("appmgr version %s (%s)\n", Version, Build)
			return
		}
		// No subcommand - show help
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
		applyVerbosityFlags()
		applyConfigOverrides(cmd)
		applyColor()

		if isNoDataCommand(cmd) {
			return
		}

		initTelemetry()
		openManager()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		saveIfDirty()
		closeManager()
		shutdownTelemetry()

		// Cancel the signal context to clean up resources
		if rootCancel != nil {
			rootCancel()
		}
	},
}

func getRootContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

// getActor returns the actor for the event log.
// Priority: --actor flag > actor config/APPMGR_ACTOR > $USER > "unknown"
func getActor() string {
	if actor != "" {
		return actor
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "unknown"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
