package scheduleRepo

import (
	"context"
	"time"

	"medibook/models"
)

// CasOptions qualifies a compare-and-set on a slot's status.
type CasOptions struct {
	// HeldBy and HoldExpiresAt are written on the open -> held transition.
	HeldBy        string
	HoldExpiresAt *time.Time
	// ExpectHeldBy, when non-empty, additionally guards held -> * transitions
	// so that a stale expiry sweep can never release someone else's hold.
	ExpectHeldBy string
}

// ScheduleRepository mediates all slot state. Status changes go exclusively
// through CasSlotStatus, whose atomicity serializes concurrent bookings.
type ScheduleRepository interface {
	GetSlots(ctx context.Context, doctorID string, window models.TimeWindow) ([]models.ScheduleSlot, error)
	GetSlot(ctx context.Context, slotID string) (*models.ScheduleSlot, error)
	// CasSlotStatus atomically moves slotID from expected to next. It returns
	// false (and no error) when the slot's current status did not match.
	CasSlotStatus(ctx context.Context, slotID string, expected, next models.SlotStatus, opts CasOptions) (bool, error)
	InsertAppointment(ctx context.Context, appt models.Appointment) error
}
