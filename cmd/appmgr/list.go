package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/manager"
	"github.com/steveyegge/appmgr/internal/types"
	"github.com/steveyegge/appmgr/internal/ui"
)

const summaryWidth = 60

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "apps",
	Short:   "List applications",
	Long: `List applications in ascending id order.

Examples:
  appmgr list
  appmgr list --type hired
  appmgr list --json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		noPager, _ := cmd.Flags().GetBool("no-pager")

		m := requireManager()
		rows := m.Rows()
		if typeName != "" {
			var err error
			rows, err = m.RowsByType(typeName)
			if err != nil {
				FatalErrorRespectJSON("%v", err)
			}
		}

		if jsonOutput {
			outputJSON(rows)
			return
		}
		if len(rows) == 0 {
			fmt.Println(ui.RenderMuted("No applications found."))
			return
		}
		if err := ui.ToPager(formatRows(rows), ui.PagerOptions{NoPager: noPager}); err != nil {
			FatalError("pager: %v", err)
		}
	},
}

// formatRows renders one aligned line per row.
func formatRows(rows []manager.Row) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(formatRow(r))
		b.WriteString("\n")
	}
	return b.String()
}

func formatRow(r manager.Row) string {
	// Pad outside the styles so escape codes don't skew the columns.
	id := ui.RenderID(r.ID) + pad(fmt.Sprintf("#%d", r.ID), 6)
	state := ui.RenderState(types.State(r.State)) + pad(r.State, 10)
	kind := ui.PadRight(string(r.Type), 6)
	return id + " " + state + " " + kind + " " + ui.TruncateSimple(r.Summary, summaryWidth)
}

func pad(plain string, width int) string {
	return strings.Repeat(" ", max(0, width-len(plain)))
}

func init() {
	listCmd.Flags().StringP("type", "t", "", "Only show applications of this type (New|Old|Hired)")
	listCmd.Flags().Bool("no-pager", false, "Disable pager output")
	rootCmd.AddCommand(listCmd)
}
