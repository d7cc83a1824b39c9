package models

import "time"

// BookingStage is the state of an in-flight booking request.
type BookingStage string

const (
	StageSelecting           BookingStage = "selecting"
	StagePendingConfirmation BookingStage = "pending_confirmation"
	StageCommitted           BookingStage = "committed"
	StageRejected            BookingStage = "rejected"
)

// Terminal reports whether no further mutation of the request is permitted.
func (s BookingStage) Terminal() bool {
	return s == StageCommitted || s == StageRejected
}

// BookingRequest drives the slot-selection/confirmation/commit sequence for one
// session. Created when the user first expresses a booking intent, archived on
// commit or cancellation.
type BookingRequest struct {
	ID            string       `json:"id"`
	DoctorID      string       `json:"doctorId"`
	SlotID        string       `json:"slotId,omitempty"`
	UserID        string       `json:"userId"`
	Stage         BookingStage `json:"stage"`
	HoldExpiresAt *time.Time   `json:"holdExpiresAt,omitempty"`
	AppointmentID string       `json:"appointmentId,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// Appointment is the committed booking record archived by the repository.
type Appointment struct {
	ID        string    `bson:"id" json:"id"`
	DoctorID  string    `bson:"doctorId" json:"doctorId"`
	UserID    string    `bson:"userId" json:"userId"`
	SlotID    string    `bson:"slotId" json:"slotId"`
	Start     time.Time `bson:"start" json:"start"`
	End       time.Time `bson:"end" json:"end"`
	Status    string    `bson:"status" json:"status"` // confirmed, cancelled, completed
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
