package models

import "time"

// SlotStatus is the booking state of a schedule slot.
type SlotStatus string

const (
	SlotOpen   SlotStatus = "open"
	SlotHeld   SlotStatus = "held"
	SlotBooked SlotStatus = "booked"
)

// ScheduleSlot is one bookable window on a doctor's calendar. The repository
// owns the document; status moves only through its compare-and-set operation.
type ScheduleSlot struct {
	ID       string     `bson:"id" json:"id"`
	DoctorID string     `bson:"doctorId" json:"doctorId"`
	Start    time.Time  `bson:"start" json:"start"`
	End      time.Time  `bson:"end" json:"end"`
	Status   SlotStatus `bson:"status" json:"status"`

	// HeldBy and HoldExpiresAt are populated only while Status is "held".
	HeldBy        string     `bson:"heldBy,omitempty" json:"heldBy,omitempty"`
	HoldExpiresAt *time.Time `bson:"holdExpiresAt,omitempty" json:"holdExpiresAt,omitempty"`
}

// TimeWindow bounds a schedule query.
type TimeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SlotSummary is the wire view of a slot inside a schedule response.
type SlotSummary struct {
	ID    string `json:"id"`
	Start string `json:"start"` // RFC 3339
	End   string `json:"end"`
}
