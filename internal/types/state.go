package types

import "strings"

// State is the lifecycle stage of an application. The string value is the
// name written to persisted data.
type State string

// State constants
const (
	StateReview    State = "Review"
	StateInterview State = "Interview"
	StateWaitlist  State = "Waitlist"
	StateRefCheck  State = "RefCheck"
	StateOffer     State = "Offer"
	StateClosed    State = "Closed"
)

// States lists every state in workflow order.
var States = []State{StateReview, StateInterview, StateWaitlist, StateRefCheck, StateOffer, StateClosed}

// IsValid checks if the state value is valid
func (s State) IsValid() bool {
	switch s {
	case StateReview, StateInterview, StateWaitlist, StateRefCheck, StateOffer, StateClosed:
		return true
	}
	return false
}

// ParseState resolves a persisted state name. Exact names match first,
// then a case-insensitive comparison.
func ParseState(name string) (State, error) {
	s := State(name)
	if s.IsValid() {
		return s, nil
	}
	for _, known := range States {
		if strings.EqualFold(string(known), strings.TrimSpace(name)) {
			return known, nil
		}
	}
	return "", invalidf("state", "unknown state %q", name)
}

// Resolution projects the state onto a resolution label. States without a
// projection report NoResolutionLabel.
func (s State) Resolution() string {
	switch s {
	case StateReview:
		return string(ResolutionReviewCompleted)
	case StateOffer:
		return string(ResolutionInterviewCompleted)
	case StateRefCheck:
		return string(ResolutionRefChkCompleted)
	case StateClosed:
		return string(ResolutionOfferCompleted)
	}
	return NoResolutionLabel
}

// stateForResolution is the rehydration mapping used by ForceResolution.
// It differs from State.Resolution: ReviewCompleted lands in RefCheck here.
var stateForResolution = map[Resolution]State{
	ResolutionReviewCompleted:    StateRefCheck,
	ResolutionInterviewCompleted: StateOffer,
	ResolutionRefChkCompleted:    StateClosed,
	ResolutionOfferCompleted:     StateClosed,
}

// AppType classifies the applicant
type AppType string

// AppType constants
const (
	AppTypeNew   AppType = "New"
	AppTypeOld   AppType = "Old"
	AppTypeHired AppType = "Hired"
)

// AppTypes lists every applicant type.
var AppTypes = []AppType{AppTypeNew, AppTypeOld, AppTypeHired}

// IsValid checks if the applicant type is valid
func (t AppType) IsValid() bool {
	switch t {
	case AppTypeNew, AppTypeOld, AppTypeHired:
		return true
	}
	return false
}

// ParseAppType resolves an applicant type name (case-insensitive).
func ParseAppType(name string) (AppType, error) {
	for _, t := range AppTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return "", invalidf("type", "unknown applicant type %q", name)
}

// Effect is the outcome of a legal transition. Applying it is the caller's job.
type Effect struct {
	Next State

	// Reviewer is assigned when SetReviewer is true.
	SetReviewer bool
	Reviewer    string

	// Paperwork marks paperwork as processed.
	Paperwork bool

	// AppType is the new applicant type; empty leaves it unchanged.
	AppType AppType

	// Note is the text appended to the log, already carrying its action tag.
	// NoteState names the state whose name prefixes it.
	Note      string
	NoteState State
}

// Note tags
const (
	tagAccepted = "[Accepted] "
	tagRejected = "[Rejected] "
	tagStandby  = "[Standby] "
	tagReopened = "[Reopened] "
)

// Transition is the workflow decision table. It returns the effect of
// applying cmd in state from, or an *UnsupportedTransitionError when from
// has no transition for the command. It never mutates anything.
//
//	Review    accept  -> Interview   reject -> Closed
//	Interview accept  -> RefCheck    reject -> Closed   standby -> Waitlist
//	Waitlist  reopen  -> Review
//	RefCheck  accept  -> Offer       reject -> Closed
//	Offer     accept  -> Closed (hired)  reject -> Closed
//	Closed    reopen  -> Review (resolution ReviewCompleted only)
func Transition(from State, cmd Command) (Effect, error) {
	unsupported := &UnsupportedTransitionError{Action: cmd.Action(), State: from}
	note := cmd.Note()

	switch from {
	case StateReview:
		switch cmd.Action() {
		case ActionAccept:
			return Effect{Next: StateInterview, SetReviewer: true, Reviewer: cmd.ReviewerID(),
				Note: tagAccepted + note, NoteState: StateInterview}, nil
		case ActionReject:
			return Effect{Next: StateClosed, Note: tagRejected + note, NoteState: StateClosed}, nil
		}

	case StateInterview:
		switch cmd.Action() {
		case ActionAccept:
			return Effect{Next: StateRefCheck, SetReviewer: true, Reviewer: cmd.ReviewerID(),
				Note: tagAccepted + note, NoteState: StateRefCheck}, nil
		case ActionReject:
			return Effect{Next: StateClosed, Note: tagRejected + note, NoteState: StateClosed}, nil
		case ActionStandby:
			return Effect{Next: StateWaitlist, Note: tagStandby + note, NoteState: StateWaitlist}, nil
		}

	case StateWaitlist:
		if cmd.Action() == ActionReopen {
			return Effect{Next: StateReview, Note: note, NoteState: StateReview}, nil
		}

	case StateRefCheck:
		switch cmd.Action() {
		case ActionAccept:
			return Effect{Next: StateOffer, Note: tagAccepted + note, NoteState: StateOffer}, nil
		case ActionReject:
			return Effect{Next: StateClosed, Note: tagRejected + note, NoteState: StateClosed}, nil
		}

	case StateOffer:
		switch cmd.Action() {
		case ActionAccept:
			return Effect{Next: StateClosed, SetReviewer: true, Reviewer: cmd.ReviewerID(),
				Paperwork: true, AppType: AppTypeHired, Note: note, NoteState: StateOffer}, nil
		case ActionReject:
			return Effect{Next: StateClosed, Note: note, NoteState: StateOffer}, nil
		}

	case StateClosed:
		if cmd.Action() == ActionReopen {
			if cmd.Resolution() != ResolutionReviewCompleted {
				unsupported.Resolution = cmd.Resolution()
				return Effect{}, unsupported
			}
			return Effect{Next: StateReview, AppType: AppTypeOld,
				Note: tagReopened + note, NoteState: StateClosed}, nil
		}
	}

	return Effect{}, unsupported
}

// Allowed reports the actions state s accepts, in Actions order.
// Closed accepts reopen only with ResolutionReviewCompleted.
func Allowed(s State) []Action {
	var out []Action
	for _, a := range Actions {
		cmd := Command{action: a, reviewerID: "-", resolution: ResolutionReviewCompleted, note: "-"}
		if _, err := Transition(s, cmd); err == nil {
			out = append(out, a)
		}
	}
	return out
}
