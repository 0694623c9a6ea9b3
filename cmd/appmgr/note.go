package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/ui"
)

var noteCmd = &cobra.Command{
	Use:     "note <id> <text...>",
	GroupID: "apps",
	Short:   "Append a note to an application",
	Long: `Append a note. The note is prefixed with the application's current state,
e.g. "[Interview] called back".`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		text := strings.Join(args[1:], " ")
		m := requireManager()
		if err := m.AddNote(id, text); err != nil {
			FatalErrorRespectJSON("%v", err)
		}
		app, err := m.Get(id)
		if err != nil {
			FatalErrorRespectJSON("%v", err)
		}

		if jsonOutput {
			outputJSON(app.View())
			return
		}
		notes := app.Notes()
		fmt.Printf("%s Added note to %s: %s\n", ui.RenderPassIcon(), ui.RenderID(id), notes[len(notes)-1])
	},
}

func init() {
	rootCmd.AddCommand(noteCmd)
}
