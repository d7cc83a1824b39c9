// Package intent turns a raw utterance plus conversation context into a
// Classification. The language-model service does the text understanding; the
// policy layer around it guarantees the system degrades to deterministic
// keyword rules rather than failing a turn.
package intent

import (
	"context"
	"errors"

	"medibook/models"
)

var (
	// ErrUnavailable means the classifier service could not be reached in time.
	ErrUnavailable = errors.New("classifier: unavailable")
	// ErrMalformed means the service answered with something unparseable.
	ErrMalformed = errors.New("classifier: malformed response")
)

// TurnContext is the snapshot of session state a classifier may consult.
type TurnContext struct {
	Turns          []models.Turn
	Criteria       models.FilterCriteria
	HasResults     bool
	SelectedDoctor string
	UserLocation   *models.LatLng
}

// Classifier maps an utterance and its context to an intent plus a
// provisional filter delta.
type Classifier interface {
	Classify(ctx context.Context, text string, turn TurnContext) (models.Classification, error)
}
