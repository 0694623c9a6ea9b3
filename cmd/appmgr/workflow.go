package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/types"
	"github.com/steveyegge/appmgr/internal/ui"
)

// newTransitionCmd builds the command that applies action to one application.
func newTransitionCmd(action types.Action, short, long string) *cobra.Command {
	c := &cobra.Command{
		Use:     string(action) + " <id>",
		GroupID: "workflow",
		Short:   short,
		Long:    long,
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			command, err := commandFromFlags(cmd, action)
			if err != nil {
				FatalErrorRespectJSON("%v", err)
			}

			app, err := requireManager().Execute(getRootContext(), id, command)
			if err != nil {
				var unsupported *types.UnsupportedTransitionError
				if errors.As(err, &unsupported) && !jsonOutput {
					FatalErrorWithHint(err.Error(), allowedHint(id))
				}
				FatalErrorRespectJSON("%v", err)
			}

			if jsonOutput {
				outputJSON(app.View())
				return
			}
			fmt.Printf("%s %s %s is now %s\n", ui.RenderPassIcon(), ui.RenderID(app.ID()),
				app.Summary(), ui.RenderState(app.State()))
		},
	}
	c.Flags().StringP("note", "n", "", "Note recorded with the transition (required)")
	_ = c.MarkFlagRequired("note")
	switch action {
	case types.ActionAccept:
		c.Flags().StringP("reviewer", "r", "", "Reviewer id (required)")
		_ = c.MarkFlagRequired("reviewer")
	case types.ActionReject, types.ActionStandby:
		c.Flags().String("resolution", "", "Resolution: review, interview, refchk or offer (required)")
		_ = c.MarkFlagRequired("resolution")
	case types.ActionReopen:
		c.Flags().String("resolution", "", "Resolution; a closed application reopens only with 'review'")
	}
	return c
}

// commandFromFlags validates the flags of a transition command.
func commandFromFlags(cmd *cobra.Command, action types.Action) (types.Command, error) {
	note, _ := cmd.Flags().GetString("note")
	var reviewer, resolutionArg string
	if f := cmd.Flags().Lookup("reviewer"); f != nil {
		reviewer = f.Value.String()
	}
	if f := cmd.Flags().Lookup("resolution"); f != nil {
		resolutionArg = f.Value.String()
	}
	resolution, err := types.ParseResolution(resolutionArg)
	if err != nil {
		return types.Command{}, err
	}
	return types.NewCommand(action, reviewer, resolution, note)
}

// allowedHint lists what the application's current state accepts.
func allowedHint(id int) string {
	app, err := requireManager().Get(id)
	if err != nil {
		return "Run 'appmgr list' to see applications"
	}
	return fmt.Sprintf("%s accepts: %v", app.StateName(), types.Allowed(app.State()))
}

var (
	acceptCmd = newTransitionCmd(types.ActionAccept, "Advance an application to its next stage",
		`Accept moves Review to Interview, Interview to RefCheck, RefCheck to Offer,
and Offer to Closed (hired, paperwork processed). A reviewer id is required.`)
	rejectCmd = newTransitionCmd(types.ActionReject, "Close an application",
		`Reject closes an application from Review, Interview, RefCheck or Offer.`)
	standbyCmd = newTransitionCmd(types.ActionStandby, "Move an interviewed application to the waitlist",
		`Standby moves an application from Interview to Waitlist.`)
	reopenCmd = newTransitionCmd(types.ActionReopen, "Return an application to Review",
		`Reopen moves a waitlisted application back to Review. A closed application
reopens only with --resolution review, and becomes an Old applicant.`)
)

func init() {
	rootCmd.AddCommand(acceptCmd, rejectCmd, standbyCmd, reopenCmd)
}
