package scheduleRepo

import (
	"context"
	"sort"
	"sync"

	"medibook/database/repository"
	"medibook/models"
)

// MemoryScheduleRepo is an in-memory ScheduleRepository for demo mode and
// tests. A single mutex gives CasSlotStatus the same atomicity the Mongo
// implementation gets from per-document updates.
type MemoryScheduleRepo struct {
	mu           sync.Mutex
	slots        map[string]models.ScheduleSlot
	appointments []models.Appointment
}

// NewMemoryScheduleRepo builds a repository over the given slots.
func NewMemoryScheduleRepo(slots []models.ScheduleSlot) *MemoryScheduleRepo {
	m := make(map[string]models.ScheduleSlot, len(slots))
	for _, s := range slots {
		m[s.ID] = s
	}
	return &MemoryScheduleRepo{slots: m}
}

func (r *MemoryScheduleRepo) GetSlots(_ context.Context, doctorID string, window models.TimeWindow) ([]models.ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.ScheduleSlot
	for _, s := range r.slots {
		if s.DoctorID != doctorID {
			continue
		}
		if s.Start.Before(window.From) || !s.Start.Before(window.To) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryScheduleRepo) GetSlot(_ context.Context, slotID string) (*models.ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *MemoryScheduleRepo) CasSlotStatus(_ context.Context, slotID string, expected, next models.SlotStatus, opts CasOptions) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if s.Status != expected {
		return false, nil
	}
	if opts.ExpectHeldBy != "" && s.HeldBy != opts.ExpectHeldBy {
		return false, nil
	}

	s.Status = next
	if next == models.SlotHeld {
		s.HeldBy = opts.HeldBy
		s.HoldExpiresAt = opts.HoldExpiresAt
	} else {
		s.HeldBy = ""
		s.HoldExpiresAt = nil
	}
	r.slots[slotID] = s
	return true, nil
}

func (r *MemoryScheduleRepo) InsertAppointment(_ context.Context, appt models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments = append(r.appointments, appt)
	return nil
}

// Appointments returns a copy of the archived appointments, for tests.
func (r *MemoryScheduleRepo) Appointments() []models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Appointment, len(r.appointments))
	copy(out, r.appointments)
	return out
}
