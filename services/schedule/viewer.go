// Package schedule exposes the read side of a doctor's calendar.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	doctorRepo "medibook/database/repository/doctor"
	scheduleRepo "medibook/database/repository/schedule"
	"medibook/models"
)

// DefaultWindowDays is how far ahead a schedule view looks when the user
// gives no explicit window.
const DefaultWindowDays = 3

// View is one doctor's open availability inside a window.
type View struct {
	Doctor models.DoctorRecord
	Window models.TimeWindow
	Slots  []models.ScheduleSlot
}

// Viewer answers "when is this doctor free".
type Viewer interface {
	// OpenSlots returns the doctor's open slots inside window, ordered by
	// start time. A zero window defaults to the next DefaultWindowDays days.
	OpenSlots(ctx context.Context, doctorID string, window models.TimeWindow) (*View, error)
}

// DefaultViewer implements Viewer over the schedule repository.
type DefaultViewer struct {
	DoctorRepo   doctorRepo.DoctorRepository
	ScheduleRepo scheduleRepo.ScheduleRepository

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (v *DefaultViewer) OpenSlots(ctx context.Context, doctorID string, window models.TimeWindow) (*View, error) {
	doctor, err := v.DoctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctor %s: %w", doctorID, err)
	}

	if window.From.IsZero() {
		now := v.now()
		window = models.TimeWindow{From: now, To: now.AddDate(0, 0, DefaultWindowDays)}
	}

	slots, err := v.ScheduleRepo.GetSlots(ctx, doctorID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots for %s: %w", doctorID, err)
	}

	now := v.now()
	open := make([]models.ScheduleSlot, 0, len(slots))
	for _, slot := range slots {
		// A held slot whose hold lapsed reads as open even before the sweep
		// flips it back.
		if slot.Status == models.SlotHeld && slot.HoldExpiresAt != nil && !slot.HoldExpiresAt.After(now) {
			slot.Status = models.SlotOpen
			slot.HeldBy = ""
			slot.HoldExpiresAt = nil
		}
		if slot.Status != models.SlotOpen {
			continue
		}
		if slot.Start.Before(now) {
			continue
		}
		open = append(open, slot)
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Start.Before(open[j].Start) })

	return &View{Doctor: *doctor, Window: window, Slots: open}, nil
}

func (v *DefaultViewer) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Summaries converts slots into their wire view.
func Summaries(slots []models.ScheduleSlot) []models.SlotSummary {
	out := make([]models.SlotSummary, 0, len(slots))
	for _, s := range slots {
		out = append(out, models.SlotSummary{
			ID:    s.ID,
			Start: s.Start.Format(time.RFC3339),
			End:   s.End.Format(time.RFC3339),
		})
	}
	return out
}

// NextAvailableLabel renders the doctor's soonest open slot relative to now,
// for the search summary card.
func NextAvailableLabel(slots []models.ScheduleSlot, now time.Time) string {
	if len(slots) == 0 {
		return ""
	}
	first := slots[0].Start
	switch {
	case first.YearDay() == now.YearDay() && first.Year() == now.Year():
		return "Today"
	case first.YearDay() == now.AddDate(0, 0, 1).YearDay():
		return "Tomorrow"
	default:
		return first.Format("Mon, Jan 2")
	}
}
