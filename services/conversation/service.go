package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medibook/database/repository"
	doctorRepo "medibook/database/repository/doctor"
	"medibook/models"
	"medibook/services/booking"
	"medibook/services/filter"
	"medibook/services/intent"
	"medibook/services/schedule"
	"medibook/services/search"
	"medibook/utils"
)

const turnContextWindow = 10

// Service processes one chat turn end to end.
type Service interface {
	ProcessTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	// Reset discards the user's session.
	Reset(ctx context.Context, userID string) error
}

// DefaultService wires the classifier, search, schedule and booking services
// behind per-user sequential sessions.
type DefaultService struct {
	Store      SessionStore
	Classifier intent.Classifier
	Search     search.RankingService
	Viewer     schedule.Viewer
	Booking    booking.Manager
	DoctorRepo doctorRepo.DoctorRepository

	// RetryAttempts bounds retries against a flapping repository.
	RetryAttempts int
	RetryBackoff  time.Duration

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time

	locks *sessionLocks
}

func NewDefaultService(store SessionStore, classifier intent.Classifier, searchSvc search.RankingService, viewer schedule.Viewer, bookingMgr booking.Manager, doctors doctorRepo.DoctorRepository, retryAttempts int) *DefaultService {
	return &DefaultService{
		Store:         store,
		Classifier:    classifier,
		Search:        searchSvc,
		Viewer:        viewer,
		Booking:       bookingMgr,
		DoctorRepo:    doctors,
		RetryAttempts: retryAttempts,
		RetryBackoff:  200 * time.Millisecond,
		locks:         newSessionLocks(),
	}
}

func (s *DefaultService) ProcessTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	lock := s.locks.lock(req.UserID)
	defer lock.Unlock()

	session, err := s.loadOrCreate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session.Turns = append(session.Turns, models.Turn{Role: "user", Content: req.Message, At: now})

	cls, err := s.Classifier.Classify(ctx, req.Message, intent.TurnContext{
		Turns:          session.RecentTurns(turnContextWindow),
		Criteria:       session.Criteria,
		HasResults:     len(session.LastResults) > 0,
		SelectedDoctor: session.SelectedDoctorID,
		UserLocation:   req.UserLocation,
	})
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	resp := s.route(ctx, session, cls)

	session.Turns = append(session.Turns, models.Turn{Role: "assistant", Content: resp.Message, At: s.now()})
	session.UpdatedAt = s.now()
	if err := s.Store.Set(ctx, session); err != nil {
		utils.GetLogger().Error("Failed to persist session", zap.String("userID", req.UserID), zap.Error(err))
	}
	return resp, nil
}

func (s *DefaultService) Reset(ctx context.Context, userID string) error {
	lock := s.locks.lock(userID)
	defer lock.Unlock()
	return s.Store.Clear(ctx, userID)
}

func (s *DefaultService) loadOrCreate(ctx context.Context, req models.ChatRequest) (*models.ConversationSession, error) {
	session, err := s.Store.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		now := s.now()
		session = &models.ConversationSession{
			SessionID: uuid.New().String(),
			UserID:    req.UserID,
			State:     models.StateCollecting,
			CreatedAt: now,
			UpdatedAt: now,
		}
		// Seed history handed over by the client, capped to the context window.
		for _, m := range req.History {
			session.Turns = append(session.Turns, models.Turn{Role: m.Role, Content: m.Content, At: now})
		}
		if len(session.Turns) > turnContextWindow {
			session.Turns = session.Turns[len(session.Turns)-turnContextWindow:]
		}
	}
	// The caller's position is ambient context, not something the user has to
	// say out loud.
	if req.UserLocation != nil && session.Criteria.Location == nil {
		p := models.NewGeoPoint(req.UserLocation.Lat, req.UserLocation.Lng)
		session.Criteria.Location = &p
	}
	return session, nil
}

func (s *DefaultService) route(ctx context.Context, session *models.ConversationSession, cls models.Classification) *models.ChatResponse {
	switch cls.Intent {
	case models.IntentChitchat:
		reply := cls.Reply
		if reply == "" {
			reply = "Hi! Tell me what kind of doctor you're looking for and I'll help you find one."
		}
		return &models.ChatResponse{Type: models.ResponseChat, Message: reply}

	case models.IntentSearch, models.IntentRefine:
		return s.handleSearch(ctx, session, cls)

	case models.IntentViewSchedule:
		return s.handleSchedule(ctx, session, cls)

	case models.IntentBook:
		return s.handleBook(ctx, session, cls)

	case models.IntentConfirmBooking:
		return s.handleConfirm(ctx, session)

	case models.IntentCancel:
		return s.handleCancel(ctx, session)

	default:
		out, err := filter.Advance(session.Criteria, session.State, models.FilterDelta{})
		if err == nil && out.Clarify != "" {
			return &models.ChatResponse{Type: models.ResponseChat, Message: out.Clarify}
		}
		return &models.ChatResponse{Type: models.ResponseChat, Message: "Sorry, I didn't catch that. You can search for doctors, check their schedule, or book an appointment."}
	}
}

func (s *DefaultService) handleSearch(ctx context.Context, session *models.ConversationSession, cls models.Classification) *models.ChatResponse {
	cursor := ""
	if cls.NextPage {
		if session.Cursor == "" {
			return &models.ChatResponse{Type: models.ResponseChat, Message: "That's everyone I found. Try relaxing a filter to see more options."}
		}
		cursor = session.Cursor
	} else {
		out, err := filter.Advance(session.Criteria, session.State, cls.Delta)
		if err != nil {
			var invalid *filter.InvalidFilterValueError
			if errors.As(err, &invalid) {
				return &models.ChatResponse{Type: models.ResponseChat, Message: invalid.Message}
			}
			return &models.ChatResponse{Type: models.ResponseError, Message: "Something went wrong applying that filter."}
		}
		session.Criteria = out.Criteria
		session.State = out.State
		if !out.NeedsSearch {
			return &models.ChatResponse{Type: models.ResponseChat, Message: out.Clarify}
		}
	}

	page, err := s.runSearch(ctx, session.Criteria, cursor)
	if err != nil {
		utils.GetLogger().Error("Search failed", zap.Error(err))
		return &models.ChatResponse{Type: models.ResponseError, Message: "I couldn't reach the doctor directory just now. Please try again in a moment."}
	}
	session.State = filter.MarkSearched(models.StateReady)

	if page.Total == 0 {
		session.LastResults = nil
		session.LastCount = 0
		session.Cursor = ""
		return &models.ChatResponse{
			Type:    models.ResponseSearch,
			Message: emptyResultMessage(page.Relaxation),
			Search:  &models.SearchData{Doctors: []models.DoctorSummary{}, Count: 0},
		}
	}

	session.LastResults = toResultRefs(page.Results)
	session.LastCount = page.Total
	session.Cursor = page.NextCursor
	session.SelectedDoctorID = ""

	summaries := search.Summarize(page.Results, session.Criteria)
	return &models.ChatResponse{
		Type:    models.ResponseSearch,
		Message: searchMessage(page, session.Criteria),
		Search: &models.SearchData{
			Doctors:    summaries,
			Count:      page.Total,
			NextCursor: page.NextCursor,
		},
	}
}

func (s *DefaultService) handleSchedule(ctx context.Context, session *models.ConversationSession, cls models.Classification) *models.ChatResponse {
	doctorID, reply := s.resolveDoctor(ctx, session, cls.DoctorRef)
	if doctorID == "" {
		return &models.ChatResponse{Type: models.ResponseChat, Message: reply}
	}

	view, err := s.Viewer.OpenSlots(ctx, doctorID, models.TimeWindow{})
	if err != nil {
		utils.GetLogger().Error("Schedule lookup failed", zap.String("doctorID", doctorID), zap.Error(err))
		return &models.ChatResponse{Type: models.ResponseError, Message: "I couldn't load that doctor's schedule just now."}
	}
	session.SelectedDoctorID = doctorID

	if len(view.Slots) == 0 {
		return &models.ChatResponse{
			Type:     models.ResponseSchedule,
			Message:  fmt.Sprintf("%s has no open slots in the next %d days.", view.Doctor.Name, schedule.DefaultWindowDays),
			Schedule: &models.ScheduleData{DoctorID: doctorID, Slots: []models.SlotSummary{}},
		}
	}
	return &models.ChatResponse{
		Type:     models.ResponseSchedule,
		Message:  fmt.Sprintf("Here's %s's availability. Say a time to book it.", view.Doctor.Name),
		Schedule: &models.ScheduleData{DoctorID: doctorID, Slots: schedule.Summaries(view.Slots)},
	}
}

func (s *DefaultService) handleBook(ctx context.Context, session *models.ConversationSession, cls models.Classification) *models.ChatResponse {
	doctorID, reply := s.resolveDoctor(ctx, session, cls.DoctorRef)
	if doctorID == "" {
		return &models.ChatResponse{Type: models.ResponseChat, Message: reply}
	}
	session.SelectedDoctorID = doctorID

	if session.Booking == nil || session.Booking.Stage.Terminal() || session.Booking.DoctorID != doctorID {
		session.Booking = s.Booking.NewRequest(session.UserID, doctorID)
	}

	slotID, slotReply := s.resolveSlot(ctx, doctorID, cls.SlotRef)
	if slotID == "" {
		if slotReply != "" {
			return &models.ChatResponse{Type: models.ResponseChat, Message: slotReply}
		}
		// No slot named yet: show the schedule so the user can pick.
		return s.handleSchedule(ctx, session, cls)
	}

	if err := s.Booking.SelectSlot(ctx, session.Booking, slotID); err != nil {
		var bookErr *booking.BookingError
		if errors.As(err, &bookErr) && bookErr.Code == "slotConflict" {
			return &models.ChatResponse{
				Type:    models.ResponseBooking,
				Message: "That time was just taken by someone else. Want to pick a different slot?",
				Booking: &models.BookingData{Status: models.StageSelecting},
			}
		}
		utils.GetLogger().Error("Slot hold failed", zap.String("slotID", slotID), zap.Error(err))
		return &models.ChatResponse{Type: models.ResponseError, Message: "I couldn't reserve that slot just now. Please try again."}
	}

	return &models.ChatResponse{
		Type:    models.ResponseBooking,
		Message: "I'm holding that slot for you. Shall I confirm the appointment?",
		Booking: &models.BookingData{Status: models.StagePendingConfirmation},
	}
}

func (s *DefaultService) handleConfirm(ctx context.Context, session *models.ConversationSession) *models.ChatResponse {
	if session.Booking == nil || session.Booking.Stage != models.StagePendingConfirmation {
		return &models.ChatResponse{Type: models.ResponseChat, Message: "There's no booking waiting for confirmation. Pick a doctor and a time first."}
	}

	appt, err := s.Booking.Confirm(ctx, session.Booking)
	if err != nil {
		var bookErr *booking.BookingError
		if errors.As(err, &bookErr) {
			switch bookErr.Code {
			case "holdExpired":
				return &models.ChatResponse{
					Type:    models.ResponseBooking,
					Message: "Sorry, the hold on that slot expired. Want to pick a time again?",
					Booking: &models.BookingData{Status: models.StageSelecting},
				}
			default:
				return &models.ChatResponse{
					Type:    models.ResponseBooking,
					Message: "That slot is no longer available. Want to pick a different time?",
					Booking: &models.BookingData{Status: models.StageSelecting},
				}
			}
		}
		utils.GetLogger().Error("Booking confirmation failed", zap.Error(err))
		return &models.ChatResponse{Type: models.ResponseError, Message: "I couldn't confirm the booking just now. Please try again."}
	}

	return &models.ChatResponse{
		Type:    models.ResponseBooking,
		Message: fmt.Sprintf("Done! Your appointment is confirmed for %s.", appt.Start.Format("Mon, Jan 2 at 15:04")),
		Booking: &models.BookingData{Status: models.StageCommitted, Appointment: appt},
	}
}

func (s *DefaultService) handleCancel(ctx context.Context, session *models.ConversationSession) *models.ChatResponse {
	if session.Booking != nil && !session.Booking.Stage.Terminal() {
		if err := s.Booking.Cancel(ctx, session.Booking); err != nil {
			utils.GetLogger().Error("Booking cancel failed", zap.Error(err))
			return &models.ChatResponse{Type: models.ResponseError, Message: "I couldn't cancel that just now. Please try again."}
		}
		session.Booking = nil
		return &models.ChatResponse{
			Type:    models.ResponseBooking,
			Message: "No problem, I've cancelled that booking. Anything else?",
			Booking: &models.BookingData{Status: models.StageRejected},
		}
	}
	return &models.ChatResponse{Type: models.ResponseChat, Message: "There's nothing in progress to cancel. What would you like to do?"}
}

// resolveDoctor turns a classifier doctor reference (rank, id, or name
// fragment) into a doctor id, falling back to the session's selected doctor.
// When resolution fails the second return value is the reply to send.
func (s *DefaultService) resolveDoctor(ctx context.Context, session *models.ConversationSession, ref string) (string, string) {
	if ref == "" {
		if session.SelectedDoctorID != "" {
			return session.SelectedDoctorID, ""
		}
		if len(session.LastResults) == 1 {
			return session.LastResults[0].DoctorID, ""
		}
		if len(session.LastResults) > 1 {
			return "", "Which doctor do you mean? You can say their name or a number from the list."
		}
		return "", "Let's find a doctor first. What kind of specialist do you need?"
	}

	if rank, err := strconv.Atoi(ref); err == nil {
		if r, ok := session.ResultByRank(rank); ok {
			return r.DoctorID, ""
		}
		return "", fmt.Sprintf("I only have %d doctors in the current list.", len(session.LastResults))
	}

	lowered := strings.ToLower(ref)
	for _, r := range session.LastResults {
		if r.DoctorID == ref || strings.Contains(strings.ToLower(r.Name), lowered) {
			return r.DoctorID, ""
		}
	}

	// Not on the last page: accept a direct id if it exists at all.
	if doctor, err := s.DoctorRepo.GetByID(ctx, ref); err == nil {
		return doctor.ID, ""
	}
	return "", fmt.Sprintf("I couldn't find %q in the current results. Say a name or a number from the list.", ref)
}

// resolveSlot maps a slot reference (slot id or "HH:MM") onto the doctor's
// open slots.
func (s *DefaultService) resolveSlot(ctx context.Context, doctorID, ref string) (string, string) {
	if ref == "" {
		return "", ""
	}
	if strings.HasPrefix(ref, "slot_") {
		return ref, ""
	}

	view, err := s.Viewer.OpenSlots(ctx, doctorID, models.TimeWindow{})
	if err != nil {
		return "", "I couldn't load the schedule to match that time."
	}
	for _, slot := range view.Slots {
		if slot.Start.Format("15:04") == ref {
			return slot.ID, ""
		}
	}
	return "", fmt.Sprintf("There's no open slot at %s. Want to see the available times?", ref)
}

// runSearch retries transient repository outages with a linear backoff.
func (s *DefaultService) runSearch(ctx context.Context, criteria models.FilterCriteria, cursor string) (search.Page, error) {
	attempts := s.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	var page search.Page
	var err error
	for i := 0; i < attempts; i++ {
		page, err = s.Search.Search(ctx, criteria, cursor)
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, repository.ErrUnavailable) {
			return page, err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return page, ctx.Err()
			case <-time.After(s.RetryBackoff * time.Duration(i+1)):
			}
		}
	}
	return page, err
}

func (s *DefaultService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func toResultRefs(results []models.RankedResult) []models.ResultRef {
	refs := make([]models.ResultRef, 0, len(results))
	for _, r := range results {
		refs = append(refs, models.ResultRef{
			DoctorID: r.Doctor.ID,
			Name:     r.Doctor.Name,
			Rank:     r.Rank,
			Score:    r.Score,
		})
	}
	return refs
}

func searchMessage(page search.Page, criteria models.FilterCriteria) string {
	what := "doctors"
	if criteria.Specialty != nil {
		what = strings.ToLower(*criteria.Specialty) + "s"
	}
	msg := fmt.Sprintf("I found %d %s matching your filters.", page.Total, what)
	if page.NextCursor != "" {
		msg += " Say \"show more\" to see the next page."
	}
	return msg
}

func emptyResultMessage(relax *search.Relaxation) string {
	if relax == nil {
		return "I couldn't find any doctors matching all your filters. Try a different specialty or area."
	}
	return fmt.Sprintf(
		"No doctors matched all your filters, but dropping the %s filter would give you %d options. Want me to relax it?",
		strings.ReplaceAll(string(relax.Dimension), "_", " "), relax.Candidates,
	)
}
