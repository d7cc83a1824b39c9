package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scheduleRepo "medibook/database/repository/schedule"
	"medibook/models"
)

var bookNow = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

func fixtureManager(t *testing.T) (*DefaultManager, *scheduleRepo.MemoryScheduleRepo) {
	t.Helper()
	slots := []models.ScheduleSlot{
		{ID: "slot_1", DoctorID: "doc_1", Start: bookNow.Add(time.Hour), End: bookNow.Add(90 * time.Minute), Status: models.SlotOpen},
		{ID: "slot_2", DoctorID: "doc_1", Start: bookNow.Add(2 * time.Hour), End: bookNow.Add(150 * time.Minute), Status: models.SlotOpen},
	}
	repo := scheduleRepo.NewMemoryScheduleRepo(slots)
	return &DefaultManager{
		ScheduleRepo: repo,
		HoldTTL:      5 * time.Minute,
		Now:          func() time.Time { return bookNow },
	}, repo
}

func TestSelectConfirmCommits(t *testing.T) {
	mgr, repo := fixtureManager(t)
	ctx := context.Background()

	req := mgr.NewRequest("user_1", "doc_1")
	assert.Equal(t, models.StageSelecting, req.Stage)

	require.NoError(t, mgr.SelectSlot(ctx, req, "slot_1"))
	assert.Equal(t, models.StagePendingConfirmation, req.Stage)
	require.NotNil(t, req.HoldExpiresAt)

	slot, err := repo.GetSlot(ctx, "slot_1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotHeld, slot.Status)
	assert.Equal(t, "user_1", slot.HeldBy)

	appt, err := mgr.Confirm(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.StageCommitted, req.Stage)
	assert.Equal(t, appt.ID, req.AppointmentID)
	assert.Equal(t, "confirmed", appt.Status)
	assert.Equal(t, slot.Start, appt.Start)

	slot, err = repo.GetSlot(ctx, "slot_1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotBooked, slot.Status)
	require.Len(t, repo.Appointments(), 1)
}

func TestConcurrentSelectHasOneWinner(t *testing.T) {
	mgr, _ := fixtureManager(t)
	ctx := context.Background()

	reqA := mgr.NewRequest("user_a", "doc_1")
	reqB := mgr.NewRequest("user_b", "doc_1")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = mgr.SelectSlot(ctx, reqA, "slot_1")
	}()
	go func() {
		defer wg.Done()
		errs[1] = mgr.SelectSlot(ctx, reqB, "slot_1")
	}()
	wg.Wait()

	winners, conflicts := 0, 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var bookErr *BookingError
		require.ErrorAs(t, err, &bookErr)
		assert.Equal(t, "slotConflict", bookErr.Code)
		conflicts++
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, conflicts)
}

func TestSelectBookedSlotConflicts(t *testing.T) {
	mgr, _ := fixtureManager(t)
	ctx := context.Background()

	first := mgr.NewRequest("user_1", "doc_1")
	require.NoError(t, mgr.SelectSlot(ctx, first, "slot_1"))
	_, err := mgr.Confirm(ctx, first)
	require.NoError(t, err)

	second := mgr.NewRequest("user_2", "doc_1")
	err = mgr.SelectSlot(ctx, second, "slot_1")
	var bookErr *BookingError
	require.ErrorAs(t, err, &bookErr)
	assert.Equal(t, "slotConflict", bookErr.Code)
	assert.Equal(t, models.StageSelecting, second.Stage)
}

func TestConfirmAfterHoldExpiryReopensSlot(t *testing.T) {
	mgr, repo := fixtureManager(t)
	ctx := context.Background()

	req := mgr.NewRequest("user_1", "doc_1")
	require.NoError(t, mgr.SelectSlot(ctx, req, "slot_1"))

	// Advance past the hold TTL before confirming.
	mgr.Now = func() time.Time { return bookNow.Add(6 * time.Minute) }

	_, err := mgr.Confirm(ctx, req)
	var bookErr *BookingError
	require.ErrorAs(t, err, &bookErr)
	assert.Equal(t, "holdExpired", bookErr.Code)
	assert.Equal(t, models.StageSelecting, req.Stage)
	assert.Empty(t, req.SlotID)

	slot, err := repo.GetSlot(ctx, "slot_1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotOpen, slot.Status)
}

func TestCancelReleasesHold(t *testing.T) {
	mgr, repo := fixtureManager(t)
	ctx := context.Background()

	req := mgr.NewRequest("user_1", "doc_1")
	require.NoError(t, mgr.SelectSlot(ctx, req, "slot_1"))
	require.NoError(t, mgr.Cancel(ctx, req))

	assert.Equal(t, models.StageRejected, req.Stage)
	slot, err := repo.GetSlot(ctx, "slot_1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotOpen, slot.Status)
}

func TestReselectReleasesPreviousHold(t *testing.T) {
	mgr, repo := fixtureManager(t)
	ctx := context.Background()

	req := mgr.NewRequest("user_1", "doc_1")
	require.NoError(t, mgr.SelectSlot(ctx, req, "slot_1"))
	require.NoError(t, mgr.SelectSlot(ctx, req, "slot_2"))

	first, err := repo.GetSlot(ctx, "slot_1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotOpen, first.Status)

	second, err := repo.GetSlot(ctx, "slot_2")
	require.NoError(t, err)
	assert.Equal(t, models.SlotHeld, second.Status)
	assert.Equal(t, "slot_2", req.SlotID)
}

func TestReleaseExpiredHoldGuardsOtherUsers(t *testing.T) {
	mgr, repo := fixtureManager(t)
	ctx := context.Background()

	// user_1's hold lapses; user_2 picks the slot up before the sweep runs.
	reqA := mgr.NewRequest("user_1", "doc_1")
	require.NoError(t, mgr.SelectSlot(ctx, reqA, "slot_1"))

	mgr.Now = func() time.Time { return bookNow.Add(6 * time.Minute) }
	require.NoError(t, mgr.ReleaseExpiredHold(ctx, "slot_1", "user_1"))

	reqB := mgr.NewRequest("user_2", "doc_1")
	require.NoError(t, mgr.SelectSlot(ctx, reqB, "slot_1"))

	// A replay of user_1's sweep must not touch user_2's live hold.
	require.NoError(t, mgr.ReleaseExpiredHold(ctx, "slot_1", "user_1"))
	slot, err := repo.GetSlot(ctx, "slot_1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotHeld, slot.Status)
	assert.Equal(t, "user_2", slot.HeldBy)
}

func TestConfirmWithoutSelection(t *testing.T) {
	mgr, _ := fixtureManager(t)
	req := mgr.NewRequest("user_1", "doc_1")

	_, err := mgr.Confirm(context.Background(), req)
	var bookErr *BookingError
	require.ErrorAs(t, err, &bookErr)
	assert.Equal(t, "invalidStage", bookErr.Code)
}
