package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// legal is the full workflow table: state -> action -> next state.
var legal = map[State]map[Action]State{
	StateReview:    {ActionAccept: StateInterview, ActionReject: StateClosed},
	StateInterview: {ActionAccept: StateRefCheck, ActionReject: StateClosed, ActionStandby: StateWaitlist},
	StateWaitlist:  {ActionReopen: StateReview},
	StateRefCheck:  {ActionAccept: StateOffer, ActionReject: StateClosed},
	StateOffer:     {ActionAccept: StateClosed, ActionReject: StateClosed},
	StateClosed:    {ActionReopen: StateReview},
}

func mustCommand(t testing.TB, action Action, reviewer string, res Resolution, note string) Command {
	t.Helper()
	cmd, err := NewCommand(action, reviewer, res, note)
	require.NoError(t, err)
	return cmd
}

// fullCommand builds a command that passes validation for any action.
func fullCommand(t testing.TB, action Action) Command {
	return mustCommand(t, action, "rev", ResolutionReviewCompleted, "note")
}

func TestTransitionTable(t *testing.T) {
	for _, from := range States {
		for _, action := range Actions {
			t.Run(string(from)+"/"+string(action), func(t *testing.T) {
				eff, err := Transition(from, fullCommand(t, action))
				next, ok := legal[from][action]
				if !ok {
					require.Error(t, err)
					assert.ErrorIs(t, err, ErrUnsupportedTransition)
					var terr *UnsupportedTransitionError
					require.ErrorAs(t, err, &terr)
					assert.Equal(t, action, terr.Action)
					assert.Equal(t, from, terr.State)
					assert.Contains(t, terr.Error(), string(from))
					assert.Equal(t, Effect{}, eff)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, next, eff.Next)
			})
		}
	}
}

func TestTransitionNotes(t *testing.T) {
	tests := []struct {
		from     State
		action   Action
		wantNote string
	}{
		{StateReview, ActionAccept, "[Interview] [Accepted] n"},
		{StateReview, ActionReject, "[Closed] [Rejected] n"},
		{StateInterview, ActionAccept, "[RefCheck] [Accepted] n"},
		{StateInterview, ActionReject, "[Closed] [Rejected] n"},
		{StateInterview, ActionStandby, "[Waitlist] [Standby] n"},
		{StateWaitlist, ActionReopen, "[Review] n"},
		{StateRefCheck, ActionAccept, "[Offer] [Accepted] n"},
		{StateRefCheck, ActionReject, "[Closed] [Rejected] n"},
		{StateOffer, ActionAccept, "[Offer] n"},
		{StateOffer, ActionReject, "[Offer] n"},
		{StateClosed, ActionReopen, "[Closed] [Reopened] n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			eff, err := Transition(tt.from, mustCommand(t, tt.action, "r", ResolutionReviewCompleted, "n"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantNote, notePrefix(eff.NoteState)+eff.Note)
		})
	}
}

func TestClosedReopenResolutionGuard(t *testing.T) {
	for _, res := range []Resolution{ResolutionNone, ResolutionInterviewCompleted, ResolutionRefChkCompleted, ResolutionOfferCompleted} {
		t.Run("resolution="+string(res), func(t *testing.T) {
			_, err := Transition(StateClosed, mustCommand(t, ActionReopen, "", res, "n"))
			require.ErrorIs(t, err, ErrUnsupportedTransition)
			var terr *UnsupportedTransitionError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, res, terr.Resolution)
			assert.Contains(t, terr.Error(), "resolution")
		})
	}

	eff, err := Transition(StateClosed, mustCommand(t, ActionReopen, "", ResolutionReviewCompleted, "n"))
	require.NoError(t, err)
	assert.Equal(t, StateReview, eff.Next)
	assert.Equal(t, AppTypeOld, eff.AppType)
}

func TestAllowed(t *testing.T) {
	assert.Equal(t, []Action{ActionAccept, ActionReject}, Allowed(StateReview))
	assert.Equal(t, []Action{ActionAccept, ActionReject, ActionStandby}, Allowed(StateInterview))
	assert.Equal(t, []Action{ActionReopen}, Allowed(StateWaitlist))
	assert.Equal(t, []Action{ActionReopen}, Allowed(StateClosed))
}

func TestParseState(t *testing.T) {
	for _, s := range States {
		got, err := ParseState(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseState("refcheck")
	require.NoError(t, err)
	assert.Equal(t, StateRefCheck, got)

	_, err = ParseState("Hired")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStateResolution(t *testing.T) {
	assert.Equal(t, "ReviewCompleted", StateReview.Resolution())
	assert.Equal(t, "InterviewCompleted", StateOffer.Resolution())
	assert.Equal(t, "ReferenceCheckCompleted", StateRefCheck.Resolution())
	assert.Equal(t, "OfferCompleted", StateClosed.Resolution())
	assert.Equal(t, NoResolutionLabel, StateInterview.Resolution())
	assert.Equal(t, NoResolutionLabel, StateWaitlist.Resolution())
}

func TestTransitionIsPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := rapid.SampledFrom(States).Draw(t, "from")
		action := rapid.SampledFrom(Actions).Draw(t, "action")
		res := rapid.SampledFrom(Resolutions).Draw(t, "resolution")
		note := rapid.StringMatching(`[a-z ]{1,12}`).Draw(t, "note")
		cmd, err := NewCommand(action, "r", res, note)
		if err != nil {
			t.Fatalf("NewCommand: %v", err)
		}

		eff1, err1 := Transition(from, cmd)
		eff2, err2 := Transition(from, cmd)
		if (err1 == nil) != (err2 == nil) || eff1 != eff2 {
			t.Fatalf("Transition not deterministic for %s/%s", from, action)
		}
		if err1 == nil && !eff1.Next.IsValid() {
			t.Fatalf("invalid next state %q", eff1.Next)
		}
	})
}
