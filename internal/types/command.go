package types

import (
	"fmt"
	"strings"
)

// Action is the verb carried by a Command
type Action string

// Action constants
const (
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionStandby Action = "standby"
	ActionReopen  Action = "reopen"
)

// Actions lists every action in a stable order.
var Actions = []Action{ActionAccept, ActionReject, ActionStandby, ActionReopen}

// IsValid checks if the action value is valid
func (a Action) IsValid() bool {
	switch a {
	case ActionAccept, ActionReject, ActionStandby, ActionReopen:
		return true
	}
	return false
}

// ParseAction converts user input to an Action (case-insensitive).
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", invalidf("action", "unknown action %q", s)
	}
	return a, nil
}

// Resolution labels why an application left a stage. It is both a command
// payload and the guard for reopening a closed application.
type Resolution string

// Resolution constants. ResolutionNone is the absent value.
const (
	ResolutionNone               Resolution = ""
	ResolutionReviewCompleted    Resolution = "ReviewCompleted"
	ResolutionInterviewCompleted Resolution = "InterviewCompleted"
	ResolutionRefChkCompleted    Resolution = "ReferenceCheckCompleted"
	ResolutionOfferCompleted     Resolution = "OfferCompleted"
)

// NoResolutionLabel is what Application.Resolution reports for states
// that do not project onto a resolution.
const NoResolutionLabel = "No Resolution"

// Resolutions lists the four known resolutions.
var Resolutions = []Resolution{
	ResolutionReviewCompleted,
	ResolutionInterviewCompleted,
	ResolutionRefChkCompleted,
	ResolutionOfferCompleted,
}

// IsValid reports whether r is one of the four known resolutions.
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionReviewCompleted, ResolutionInterviewCompleted, ResolutionRefChkCompleted, ResolutionOfferCompleted:
		return true
	}
	return false
}

var resolutionAliases = map[string]Resolution{
	"reviewcompleted":         ResolutionReviewCompleted,
	"review":                  ResolutionReviewCompleted,
	"interviewcompleted":      ResolutionInterviewCompleted,
	"interview":               ResolutionInterviewCompleted,
	"referencecheckcompleted": ResolutionRefChkCompleted,
	"refchkcompleted":         ResolutionRefChkCompleted,
	"refchk":                  ResolutionRefChkCompleted,
	"offercompleted":          ResolutionOfferCompleted,
	"offer":                   ResolutionOfferCompleted,
}

// ParseResolution accepts a full label or a short alias (review, interview,
// refchk, offer). An empty string yields ResolutionNone.
func ParseResolution(s string) (Resolution, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return ResolutionNone, nil
	}
	key = strings.NewReplacer("_", "", "-", "").Replace(key)
	if r, ok := resolutionAliases[key]; ok {
		return r, nil
	}
	return ResolutionNone, &InvalidResolutionError{Label: s}
}

// Command is an immutable, validated instruction for an Application.
// Build one per invocation with NewCommand.
type Command struct {
	action     Action
	reviewerID string
	resolution Resolution
	note       string
}

// NewCommand validates its arguments and returns a Command.
//
// Rules: accept needs a reviewer id, standby and reject need a resolution,
// every command needs a note. Reviewer and note fit on one line.
func NewCommand(action Action, reviewerID string, resolution Resolution, note string) (Command, error) {
	if !action.IsValid() {
		return Command{}, invalidf("action", "unknown action %q", action)
	}
	if action == ActionAccept && reviewerID == "" {
		return Command{}, invalidf("reviewer", "required for %s", action)
	}
	if (action == ActionStandby || action == ActionReject) && resolution == ResolutionNone {
		return Command{}, invalidf("resolution", "required for %s", action)
	}
	if resolution != ResolutionNone && !resolution.IsValid() {
		return Command{}, invalidf("resolution", "unknown resolution %q", resolution)
	}
	if err := checkOneLine("reviewer", reviewerID); err != nil {
		return Command{}, err
	}
	if err := checkNote(note); err != nil {
		return Command{}, err
	}
	return Command{
		action:     action,
		reviewerID: reviewerID,
		resolution: resolution,
		note:       note,
	}, nil
}

// Action returns the command verb.
func (c Command) Action() Action { return c.action }

// ReviewerID returns the reviewer id, empty when absent.
func (c Command) ReviewerID() string { return c.reviewerID }

// Resolution returns the resolution, ResolutionNone when absent.
func (c Command) Resolution() Resolution { return c.resolution }

// Note returns the command note.
func (c Command) Note() string { return c.note }

func (c Command) String() string {
	var b strings.Builder
	b.WriteString(string(c.action))
	if c.reviewerID != "" {
		fmt.Fprintf(&b, " reviewer=%s", c.reviewerID)
	}
	if c.resolution != ResolutionNone {
		fmt.Fprintf(&b, " resolution=%s", c.resolution)
	}
	fmt.Fprintf(&b, " note=%q", c.note)
	return b.String()
}
