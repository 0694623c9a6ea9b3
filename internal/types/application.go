// Package types defines the core data structures for the appmgr hiring workflow.
package types

import (
	"fmt"
	"strings"
)

// Application is a job application moving through the hiring workflow.
//
// Fields are only changed through Update and AddNote; the registry owns
// deletion. An Application is not safe for concurrent mutation; callers
// serialize access (the registry does this for its members).
type Application struct {
	id                 int
	appType            AppType
	summary            string
	reviewer           string
	paperworkProcessed bool
	notes              []string
	state              State
}

// NewApplication creates an application in Review, seeded with note.
func NewApplication(id int, appType AppType, summary, note string) (*Application, error) {
	if id < 1 {
		return nil, invalidf("id", "must be positive (got %d)", id)
	}
	if err := checkSummary(summary); err != nil {
		return nil, err
	}
	if err := checkNote(note); err != nil {
		return nil, err
	}
	if appType == "" {
		appType = AppTypeNew
	}
	if !appType.IsValid() {
		return nil, invalidf("type", "unknown applicant type %q", appType)
	}
	app := &Application{
		id:      id,
		appType: appType,
		summary: summary,
		state:   StateReview,
	}
	app.notes = []string{notePrefix(StateReview) + note}
	return app, nil
}

// Rehydrate rebuilds an application from persisted fields, placing it
// directly in the named state. The notes are taken verbatim and may be
// empty, since a stored record can carry no note lines.
//
// The resolution label is checked against the known labels but does not
// move the state: stateName is authoritative.
func Rehydrate(id int, stateName, appTypeName, summary, reviewer string,
	paperworkProcessed bool, resolutionLabel string, notes []string) (*Application, error) {
	if id < 1 {
		return nil, invalidf("id", "must be positive (got %d)", id)
	}
	if err := checkSummary(summary); err != nil {
		return nil, err
	}
	if err := checkOneLine("reviewer", reviewer); err != nil {
		return nil, err
	}
	for _, n := range notes {
		if err := checkOneLine("note", n); err != nil {
			return nil, err
		}
	}
	state, err := ParseState(stateName)
	if err != nil {
		return nil, err
	}
	appType, err := ParseAppType(appTypeName)
	if err != nil {
		return nil, err
	}
	if resolutionLabel != "" && resolutionLabel != NoResolutionLabel {
		if _, err := ParseResolution(resolutionLabel); err != nil {
			return nil, invalidf("resolution", "unknown resolution %q", resolutionLabel)
		}
	}
	return &Application{
		id:                 id,
		appType:            appType,
		summary:            summary,
		reviewer:           reviewer,
		paperworkProcessed: paperworkProcessed,
		notes:              append([]string(nil), notes...),
		state:              state,
	}, nil
}

// Update applies cmd through the workflow table. On error the application
// is unchanged.
func (a *Application) Update(cmd Command) error {
	eff, err := Transition(a.state, cmd)
	if err != nil {
		return err
	}
	a.apply(eff)
	return nil
}

func (a *Application) apply(eff Effect) {
	if eff.SetReviewer {
		a.reviewer = eff.Reviewer
	}
	if eff.Paperwork {
		a.paperworkProcessed = true
	}
	if eff.AppType != "" {
		a.appType = eff.AppType
	}
	a.notes = append(a.notes, notePrefix(eff.NoteState)+eff.Note)
	a.state = eff.Next
}

// AddNote appends note prefixed with the current state name.
func (a *Application) AddNote(note string) error {
	if err := checkNote(note); err != nil {
		return err
	}
	a.notes = append(a.notes, notePrefix(a.state)+note)
	return nil
}

// ForceResolution moves the application to the state implied by a
// resolution label, bypassing the transition table. Only used when
// restoring persisted data.
func (a *Application) ForceResolution(label string) error {
	next, ok := stateForResolution[Resolution(label)]
	if !ok {
		return &InvalidResolutionError{Label: label}
	}
	a.state = next
	return nil
}

// checkOneLine rejects text that would span more than one stored line.
func checkOneLine(field, s string) error {
	if strings.ContainsAny(s, "\r\n") {
		return invalidf(field, "must not contain line breaks")
	}
	return nil
}

func checkSummary(summary string) error {
	if strings.TrimSpace(summary) == "" {
		return invalidf("summary", "required")
	}
	return checkOneLine("summary", summary)
}

func checkNote(note string) error {
	if note == "" {
		return invalidf("note", "required")
	}
	return checkOneLine("note", note)
}

func notePrefix(s State) string {
	return "[" + string(s) + "] "
}

// ID returns the application id.
func (a *Application) ID() int { return a.id }

// Type returns the applicant type.
func (a *Application) Type() AppType { return a.appType }

// Summary returns the application summary.
func (a *Application) Summary() string { return a.summary }

// Reviewer returns the assigned reviewer, empty when none.
func (a *Application) Reviewer() string { return a.reviewer }

// PaperworkProcessed reports whether hiring paperwork has been processed.
func (a *Application) PaperworkProcessed() bool { return a.paperworkProcessed }

// State returns the current state.
func (a *Application) State() State { return a.state }

// StateName returns the persisted name of the current state.
func (a *Application) StateName() string { return string(a.state) }

// Resolution is the resolution label projected from the current state.
func (a *Application) Resolution() string { return a.state.Resolution() }

// Notes returns a copy of the note log.
func (a *Application) Notes() []string {
	return append([]string(nil), a.notes...)
}

// NotesString renders the note log, one "- note" line per entry.
func (a *Application) NotesString() string {
	var b strings.Builder
	for _, n := range a.notes {
		b.WriteString("- ")
		b.WriteString(n)
		b.WriteString("\n")
	}
	return b.String()
}

func (a *Application) String() string {
	return fmt.Sprintf("* %d\n%s\n%s", a.id, a.summary, a.NotesString())
}

// ApplicationView is the JSON shape of an application.
type ApplicationView struct {
	ID                 int      `json:"id"`
	State              State    `json:"state"`
	Type               AppType  `json:"type"`
	Summary            string   `json:"summary"`
	Reviewer           string   `json:"reviewer,omitempty"`
	PaperworkProcessed bool     `json:"paperwork_processed"`
	Resolution         string   `json:"resolution"`
	Notes              []string `json:"notes"`
}

// View snapshots the application for output.
func (a *Application) View() ApplicationView {
	return ApplicationView{
		ID:                 a.id,
		State:              a.state,
		Type:               a.appType,
		Summary:            a.summary,
		Reviewer:           a.reviewer,
		PaperworkProcessed: a.paperworkProcessed,
		Resolution:         a.Resolution(),
		Notes:              a.Notes(),
	}
}
