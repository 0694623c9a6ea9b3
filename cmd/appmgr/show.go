package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/types"
	"github.com/steveyegge/appmgr/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	GroupID: "apps",
	Short:   "Show application details",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		app, err := requireManager().Get(id)
		if err != nil {
			FatalErrorRespectJSON("%v", err)
		}

		if jsonOutput {
			outputJSON(app.View())
			return
		}
		fmt.Print(ui.RenderMarkdown(applicationMarkdown(app)))
	},
}

// parseID converts a command-line id ("12" or "#12") or exits.
func parseID(arg string) int {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
	if err != nil || id < 1 {
		FatalErrorRespectJSON("invalid application id %q", arg)
	}
	return id
}

// applicationMarkdown renders the detail view of app as markdown.
func applicationMarkdown(app *types.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# #%d %s\n\n", app.ID(), app.Summary())
	fmt.Fprintf(&b, "- **State:** %s\n", app.StateName())
	fmt.Fprintf(&b, "- **Type:** %s\n", app.Type())
	reviewer := app.Reviewer()
	if reviewer == "" {
		reviewer = "_none_"
	}
	fmt.Fprintf(&b, "- **Reviewer:** %s\n", reviewer)
	fmt.Fprintf(&b, "- **Paperwork processed:** %t\n", app.PaperworkProcessed())
	fmt.Fprintf(&b, "- **Resolution:** %s\n", app.Resolution())
	allowed := types.Allowed(app.State())
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		names = append(names, string(a))
	}
	next := strings.Join(names, ", ")
	if next == "" {
		next = "_none_"
	}
	fmt.Fprintf(&b, "- **Next actions:** %s\n", next)

	b.WriteString("\n## Notes\n\n")
	for _, n := range app.Notes() {
		fmt.Fprintf(&b, "1. %s\n", n)
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(showCmd)
}
