package models

import "time"

// SearchState is the refinement engine's position for a session's criteria.
type SearchState string

const (
	StateCollecting SearchState = "collecting" // not yet specific enough
	StateReady      SearchState = "ready"      // specific enough, not searched this round
	StateSearched   SearchState = "searched"   // a result set exists for current criteria
)

// Turn is one message of the dialogue history.
type Turn struct {
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ResultRef is the minimal record kept per ranked result so that follow-ups
// ("book the second one", "show more") can resolve against the last page.
type ResultRef struct {
	DoctorID string  `json:"doctorId"`
	Name     string  `json:"name"`
	Rank     int     `json:"rank"`
	Score    float64 `json:"score"`
}

// ConversationSession owns all per-user dialogue state. One session is
// processed strictly sequentially; sessions never share state.
type ConversationSession struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`

	Turns    []Turn         `json:"turns"`
	Criteria FilterCriteria `json:"criteria"`
	State    SearchState    `json:"state"`

	// Last search round, kept for pagination and rank-based follow-ups.
	LastResults []ResultRef `json:"lastResults,omitempty"`
	LastCount   int         `json:"lastCount,omitempty"`
	Cursor      string      `json:"cursor,omitempty"`

	SelectedDoctorID string          `json:"selectedDoctorId,omitempty"`
	Booking          *BookingRequest `json:"booking,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecentTurns returns up to n of the latest turns, oldest first.
func (s *ConversationSession) RecentTurns(n int) []Turn {
	if len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// ResultByRank resolves a 1-based rank in the last result page.
func (s *ConversationSession) ResultByRank(rank int) (ResultRef, bool) {
	for _, r := range s.LastResults {
		if r.Rank == rank {
			return r, true
		}
	}
	return ResultRef{}, false
}
