package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	GroupID: "apps",
	Short:   "Delete an application",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		if err := requireManager().Delete(id); err != nil {
			FatalErrorRespectJSON("%v", err)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{"deleted": id})
			return
		}
		fmt.Printf("%s Deleted application %s\n", ui.RenderPassIcon(), ui.RenderID(id))
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
