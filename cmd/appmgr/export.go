package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/appfile"
	"github.com/steveyegge/appmgr/internal/debug"
	"github.com/steveyegge/appmgr/internal/types"
	"github.com/steveyegge/appmgr/internal/ui"
)

// Export formats.
const (
	formatText = "text"
	formatJSON = "json"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "data",
	Short:   "Export applications to the text format or JSON",
	Long: `Export every application. The text format is the same one the text
backend stores, so an export can be loaded with 'appmgr import' or used as a
--db file directly.

Examples:
  appmgr export -o backup.txt
  appmgr export --format json > apps.json
  appmgr --backend sqlite export -o applications.txt`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")

		apps := requireManager().Applications()
		if output == "" {
			if err := exportTo(os.Stdout, format, apps); err != nil {
				FatalError("%v", err)
			}
			return
		}
		if err := exportFile(output, format, apps); err != nil {
			FatalError("%v", err)
		}
		debug.PrintNormal("%s Exported %d applications to %s\n", ui.RenderPassIcon(), len(apps), output)
	},
}

// exportTo writes apps to w in format.
func exportTo(w io.Writer, format string, apps []*types.Application) error {
	switch format {
	case formatText, "":
		return appfile.Write(w, apps)
	case formatJSON:
		views := make([]types.ApplicationView, 0, len(apps))
		for _, app := range apps {
			views = append(views, app.View())
		}
		return writeJSON(w, views)
	default:
		return fmt.Errorf("unknown export format %q (supported: %s, %s)", format, formatText, formatJSON)
	}
}

// exportFile writes apps to path. Text exports are atomic.
func exportFile(path, format string, apps []*types.Application) error {
	if format == formatText || format == "" {
		return appfile.WriteFile(path, apps)
	}
	// #nosec G304 -- path is the user-supplied export target
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := exportTo(f, format, apps); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var importCmd = &cobra.Command{
	Use:     "import",
	GroupID: "data",
	Short:   "Merge applications from a text file",
	Long: `Merge applications from a file in the text format. Applications whose id
already exists are skipped. A malformed record aborts the import and nothing
is added.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		added, err := requireManager().Import(getRootContext(), input)
		if err != nil {
			FatalErrorRespectJSON("%v", err)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{"imported": added, "source": input})
			return
		}
		fmt.Printf("%s Imported %d applications from %s\n", ui.RenderPassIcon(), added, input)
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().String("format", formatText, "Export format (text|json)")
	importCmd.Flags().StringP("input", "i", "", "Input file (required)")
	_ = importCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(exportCmd, importCmd)
}
