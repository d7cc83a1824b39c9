package models

// Intent is the classified purpose of a single user turn.
type Intent string

const (
	IntentSearch         Intent = "search"
	IntentRefine         Intent = "refine"
	IntentViewSchedule   Intent = "view_schedule"
	IntentBook           Intent = "book"
	IntentConfirmBooking Intent = "confirm_booking"
	IntentCancel         Intent = "cancel"
	IntentChitchat       Intent = "chitchat"
	IntentUnknown        Intent = "unknown"
)

// Classification is the per-turn output of the intent classifier. It lives for
// one turn only and is never persisted.
type Classification struct {
	Intent     Intent      `json:"intent"`
	Delta      FilterDelta `json:"delta"`
	Confidence float64     `json:"confidence"`

	// DoctorRef carries a doctor mention extracted from the utterance, either
	// an id, a name fragment, or a 1-based rank into the last result page.
	DoctorRef string `json:"doctorRef,omitempty"`
	// SlotRef carries a slot mention ("slot_2_1", "10:00", ...).
	SlotRef string `json:"slotRef,omitempty"`
	// NextPage is set for "show more" follow-ups over the last result set.
	NextPage bool `json:"nextPage,omitempty"`
	// Reply is a ready-made answer for chitchat turns.
	Reply string `json:"reply,omitempty"`
}
