package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/types"
	"github.com/steveyegge/appmgr/internal/ui"
)

var createCmd = &cobra.Command{
	Use:     "create <summary>",
	GroupID: "apps",
	Short:   "Create a new application in the Review state",
	Long: `Create a new application. It starts in Review with the note prefixed
"[Review]". The applicant type defaults to New.

Examples:
  appmgr create "Backend engineer" --note "Referred by kim"
  appmgr create "Support, tier 2" --type old --note "Reapplied"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		note, _ := cmd.Flags().GetString("note")

		appType, err := types.ParseAppType(typeName)
		if err != nil {
			FatalErrorRespectJSON("%v", err)
		}

		app, err := requireManager().Create(appType, args[0], note)
		if err != nil {
			FatalErrorRespectJSON("%v", err)
		}

		if jsonOutput {
			outputJSON(app.View())
			return
		}
		fmt.Printf("%s Created application %s: %s\n", ui.RenderPassIcon(), ui.RenderID(app.ID()), app.Summary())
	},
}

func init() {
	createCmd.Flags().StringP("type", "t", string(types.AppTypeNew), "Applicant type (New|Old|Hired)")
	createCmd.Flags().StringP("note", "n", "", "Initial note (required)")
	_ = createCmd.MarkFlagRequired("note")
	rootCmd.AddCommand(createCmd)
}
