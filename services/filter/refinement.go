package filter

import (
	"fmt"
	"strings"

	"medibook/models"
)

// Outcome is the result of advancing the refinement state machine by one turn.
type Outcome struct {
	Criteria models.FilterCriteria
	State    models.SearchState

	// NeedsSearch is true when the transition landed in "ready": criteria are
	// specific enough and no result set exists for them yet.
	NeedsSearch bool

	// Clarify carries a clarifying question when the turn added no usable
	// information; the caller should respond with it instead of searching.
	Clarify string
}

// Advance merges a turn's delta into the session criteria and moves the
// refinement state machine. Transitions:
//
//	collecting -> collecting   delta merged, still not specific enough
//	collecting -> ready        merge made criteria specific enough
//	searched   -> ready        a delta changed criteria that already produced
//	                           a result set, forcing a re-search
//	ready      -> ready        more refinement before the search ran
//
// An empty delta keeps the current state and yields a clarifying question.
func Advance(criteria models.FilterCriteria, state models.SearchState, delta models.FilterDelta) (Outcome, error) {
	if state == "" {
		state = models.StateCollecting
	}

	if delta.IsEmpty() {
		return Outcome{
			Criteria: criteria,
			State:    state,
			Clarify:  clarifyingQuestion(criteria),
		}, nil
	}

	merged := Merge(criteria, delta)
	if err := Validate(merged); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Criteria: merged}
	switch {
	case !IsSpecificEnough(merged):
		// An explicit unset may have cleared the deciding dimension.
		out.State = models.StateCollecting
		out.Clarify = clarifyingQuestion(merged)
	case state == models.StateSearched, state == models.StateCollecting, state == models.StateReady:
		out.State = models.StateReady
		out.NeedsSearch = true
	}
	return out, nil
}

// MarkSearched records that Search & Ranking ran for the current criteria.
func MarkSearched(state models.SearchState) models.SearchState {
	if state == models.StateReady {
		return models.StateSearched
	}
	return state
}

func clarifyingQuestion(c models.FilterCriteria) string {
	missing := MissingStrongDimensions(c)
	if len(missing) == 0 {
		return "Could you tell me a bit more about what you're looking for?"
	}
	names := make([]string, 0, len(missing))
	for _, dim := range missing {
		switch dim {
		case models.DimSpecialty:
			names = append(names, "a specialty (e.g. dermatologist)")
		case models.DimKeywords:
			names = append(names, "your symptoms or what you need help with")
		default:
			names = append(names, string(dim))
		}
	}
	return fmt.Sprintf("To find the right doctor I still need %s.", strings.Join(names, " or "))
}
