package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/config"
	"github.com/steveyegge/appmgr/internal/debug"
	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "setup",
	Short:   "Initialize appmgr in the current directory",
	Long: `Initialize appmgr in the current directory by creating .appmgr/ with a
default config.yaml and an empty data file. Existing files are left alone.

Examples:
  appmgr init
  appmgr init --backend sqlite`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		result, err := runInit(".")
		if err != nil {
			FatalErrorRespectJSON("%v", err)
		}

		if jsonOutput {
			outputJSON(result)
			return
		}
		if result.ConfigWritten {
			fmt.Printf("%s Wrote %s\n", ui.RenderPassIcon(), result.ConfigPath)
		} else {
			debug.PrintNormal("%s Kept existing %s\n", ui.RenderInfoIcon(), result.ConfigPath)
		}
		if result.DataCreated {
			fmt.Printf("%s Created %s (%s backend)\n", ui.RenderPassIcon(), result.DataPath, result.Backend)
		}
	},
}

// initResult describes what init did.
type initResult struct {
	ProjectDir    string `json:"project_dir"`
	ConfigPath    string `json:"config_path"`
	ConfigWritten bool   `json:"config_written"`
	DataPath      string `json:"data_path"`
	DataCreated   bool   `json:"data_created"`
	Backend       string `json:"backend"`
}

// runInit creates the project directory under root, its config file and an
// empty data store.
func runInit(root string) (*initResult, error) {
	projectDir := filepath.Join(root, config.ProjectDirName)
	backend := backendName
	if backend == "" {
		backend = storage.BackendText
	}

	configPath, written, err := config.WriteDefault(projectDir, backend)
	if err != nil {
		return nil, err
	}

	dataPath := dbPath
	if dataPath == "" {
		dataPath = filepath.Join(projectDir, config.DefaultDataFile)
	}
	result := &initResult{
		ProjectDir:    projectDir,
		ConfigPath:    configPath,
		ConfigWritten: written,
		DataPath:      dataPath,
		Backend:       backend,
	}
	if _, err := os.Stat(dataPath); err == nil {
		return result, nil
	}

	ctx := getRootContext()
	prevBackend, prevDB := backendName, dbPath
	backendName, dbPath = backend, dataPath
	defer func() { backendName, dbPath = prevBackend, prevDB }()

	store, err := openStorage(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	if err := store.Save(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dataPath, err)
	}
	result.DataCreated = true
	return result, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
