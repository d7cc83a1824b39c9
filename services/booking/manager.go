// Package booking drives the slot hold / confirm / commit sequence. All slot
// state changes go through the repository's compare-and-set so two users
// racing for the same slot resolve to exactly one winner.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"medibook/database/repository"
	scheduleRepo "medibook/database/repository/schedule"
	"medibook/models"
	"medibook/services/tasks"
	"medibook/utils"
)

// Enqueuer is the slice of asynq.Client the manager needs, extracted so tests
// can run without a Redis-backed queue.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Manager owns the booking lifecycle for one selected slot.
type Manager interface {
	// NewRequest starts a booking flow against a chosen doctor.
	NewRequest(userID, doctorID string) *models.BookingRequest
	// SelectSlot places a hold on slotID and moves the request to
	// pending_confirmation. Returns a slotConflict BookingError when the slot
	// is no longer open.
	SelectSlot(ctx context.Context, req *models.BookingRequest, slotID string) error
	// Confirm commits the held slot into an appointment. Returns a
	// holdExpired BookingError (and resets the request to selecting) when the
	// hold lapsed before confirmation.
	Confirm(ctx context.Context, req *models.BookingRequest) (*models.Appointment, error)
	// Cancel abandons the request, releasing any live hold.
	Cancel(ctx context.Context, req *models.BookingRequest) error
	// ReleaseExpiredHold flips a lapsed hold back to open. Safe to call on
	// slots that were already confirmed or re-held by someone else.
	ReleaseExpiredHold(ctx context.Context, slotID, userID string) error
}

// DefaultManager implements Manager.
type DefaultManager struct {
	ScheduleRepo scheduleRepo.ScheduleRepository
	// Queue schedules the hold-expiry sweep; optional (lazy expiry on access
	// still applies without it).
	Queue   Enqueuer
	HoldTTL time.Duration

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (m *DefaultManager) NewRequest(userID, doctorID string) *models.BookingRequest {
	return &models.BookingRequest{
		ID:        uuid.New().String(),
		DoctorID:  doctorID,
		UserID:    userID,
		Stage:     models.StageSelecting,
		CreatedAt: m.now(),
	}
}

func (m *DefaultManager) SelectSlot(ctx context.Context, req *models.BookingRequest, slotID string) error {
	logger := utils.GetLogger()

	if req.Stage.Terminal() {
		return NewInvalidStageError("booking request is already closed")
	}
	// Re-selecting while a hold is live releases the previous slot first.
	if req.Stage == models.StagePendingConfirmation && req.SlotID != "" && req.SlotID != slotID {
		if err := m.releaseHold(ctx, req.SlotID, req.UserID); err != nil {
			logger.Warn("Failed to release previous hold", zap.String("slotID", req.SlotID), zap.Error(err))
		}
	}

	expiresAt := m.now().Add(m.HoldTTL)
	ok, err := m.ScheduleRepo.CasSlotStatus(ctx, slotID, models.SlotOpen, models.SlotHeld, scheduleRepo.CasOptions{
		HeldBy:        req.UserID,
		HoldExpiresAt: &expiresAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewSlotConflictError(slotID)
		}
		return fmt.Errorf("failed to hold slot %s: %w", slotID, err)
	}
	if !ok {
		return NewSlotConflictError(slotID)
	}

	req.SlotID = slotID
	req.Stage = models.StagePendingConfirmation
	req.HoldExpiresAt = &expiresAt

	m.enqueueExpiry(slotID, req.UserID, expiresAt)
	return nil
}

func (m *DefaultManager) Confirm(ctx context.Context, req *models.BookingRequest) (*models.Appointment, error) {
	if req.Stage != models.StagePendingConfirmation || req.SlotID == "" {
		return nil, NewInvalidStageError("nothing is pending confirmation")
	}

	// Lazy expiry: a lapsed hold is released here even if the sweep has not
	// fired yet.
	if req.HoldExpiresAt != nil && !req.HoldExpiresAt.After(m.now()) {
		if err := m.releaseHold(ctx, req.SlotID, req.UserID); err != nil {
			utils.GetLogger().Warn("Failed to release lapsed hold", zap.String("slotID", req.SlotID), zap.Error(err))
		}
		slotID := req.SlotID
		req.SlotID = ""
		req.Stage = models.StageSelecting
		req.HoldExpiresAt = nil
		return nil, NewHoldExpiredError(slotID)
	}

	ok, err := m.ScheduleRepo.CasSlotStatus(ctx, req.SlotID, models.SlotHeld, models.SlotBooked, scheduleRepo.CasOptions{
		ExpectHeldBy: req.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to book slot %s: %w", req.SlotID, err)
	}
	if !ok {
		req.Stage = models.StageSelecting
		slotID := req.SlotID
		req.SlotID = ""
		req.HoldExpiresAt = nil
		return nil, NewHoldExpiredError(slotID)
	}

	slot, err := m.ScheduleRepo.GetSlot(ctx, req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked slot %s: %w", req.SlotID, err)
	}

	appt := models.Appointment{
		ID:        uuid.New().String(),
		DoctorID:  req.DoctorID,
		UserID:    req.UserID,
		SlotID:    req.SlotID,
		Start:     slot.Start,
		End:       slot.End,
		Status:    "confirmed",
		CreatedAt: m.now(),
	}
	if err := m.ScheduleRepo.InsertAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to archive appointment: %w", err)
	}

	req.Stage = models.StageCommitted
	req.AppointmentID = appt.ID
	req.HoldExpiresAt = nil
	return &appt, nil
}

func (m *DefaultManager) Cancel(ctx context.Context, req *models.BookingRequest) error {
	if req.Stage.Terminal() {
		return NewInvalidStageError("booking request is already closed")
	}
	if req.Stage == models.StagePendingConfirmation && req.SlotID != "" {
		if err := m.releaseHold(ctx, req.SlotID, req.UserID); err != nil {
			return fmt.Errorf("failed to release hold on cancel: %w", err)
		}
	}
	req.Stage = models.StageRejected
	req.SlotID = ""
	req.HoldExpiresAt = nil
	return nil
}

func (m *DefaultManager) ReleaseExpiredHold(ctx context.Context, slotID, userID string) error {
	slot, err := m.ScheduleRepo.GetSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if slot.Status != models.SlotHeld || slot.HeldBy != userID {
		return nil
	}
	if slot.HoldExpiresAt != nil && slot.HoldExpiresAt.After(m.now()) {
		return nil
	}
	return m.releaseHold(ctx, slotID, userID)
}

// releaseHold flips held back to open. The ExpectHeldBy guard makes the call
// a no-op when the slot has since been booked or re-held by another user.
func (m *DefaultManager) releaseHold(ctx context.Context, slotID, userID string) error {
	_, err := m.ScheduleRepo.CasSlotStatus(ctx, slotID, models.SlotHeld, models.SlotOpen, scheduleRepo.CasOptions{
		ExpectHeldBy: userID,
	})
	return err
}

func (m *DefaultManager) enqueueExpiry(slotID, userID string, fireAt time.Time) {
	if m.Queue == nil {
		return
	}
	task, opts, err := tasks.NewHoldExpireTask(tasks.HoldExpirePayload{SlotID: slotID, UserID: userID}, fireAt)
	if err != nil {
		utils.GetLogger().Warn("Failed to build hold expiry task", zap.Error(err))
		return
	}
	if _, err := m.Queue.Enqueue(task, opts...); err != nil {
		utils.GetLogger().Warn("Failed to enqueue hold expiry task", zap.String("slotID", slotID), zap.Error(err))
	}
}

func (m *DefaultManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
