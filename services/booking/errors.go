package booking

import "fmt"

// BookingError carries a machine-readable code alongside the user-facing
// message so the conversation layer can phrase the reply.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewSlotConflictError(slotID string) error {
	return &BookingError{
		Code:    "slotConflict",
		Message: fmt.Sprintf("slot %s was taken by someone else", slotID),
	}
}

func NewHoldExpiredError(slotID string) error {
	return &BookingError{
		Code:    "holdExpired",
		Message: fmt.Sprintf("the hold on slot %s has expired", slotID),
	}
}

func NewInvalidStageError(msg string) error {
	return &BookingError{
		Code:    "invalidStage",
		Message: msg,
	}
}
