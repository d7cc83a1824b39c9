package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibook/models"
)

// fakePrimary stands in for the language-model service.
type fakePrimary struct {
	result models.Classification
	err    error
}

func (f *fakePrimary) Classify(_ context.Context, _ string, _ TurnContext) (models.Classification, error) {
	return f.result, f.err
}

func TestPolicyUsesPrimaryWhenConfident(t *testing.T) {
	primary := &fakePrimary{result: models.Classification{Intent: models.IntentViewSchedule, Confidence: 0.95, DoctorRef: "doc_1"}}
	p := NewPolicyClassifier(primary, 0.6)

	cl, err := p.Classify(context.Background(), "whatever", TurnContext{})
	require.NoError(t, err)
	assert.Equal(t, models.IntentViewSchedule, cl.Intent)
	assert.Equal(t, "doc_1", cl.DoctorRef)
}

func TestPolicyFallsBackOnError(t *testing.T) {
	primary := &fakePrimary{err: ErrUnavailable}
	p := NewPolicyClassifier(primary, 0.6)

	cl, err := p.Classify(context.Background(), "I need a dermatologist", TurnContext{})
	require.NoError(t, err)
	assert.Equal(t, models.IntentSearch, cl.Intent)
	require.NotNil(t, cl.Delta.Set.Specialty)
	assert.Equal(t, "Dermatologist", *cl.Delta.Set.Specialty)
}

func TestPolicyFallsBackOnLowConfidence(t *testing.T) {
	primary := &fakePrimary{result: models.Classification{Intent: models.IntentBook, Confidence: 0.2}}
	p := NewPolicyClassifier(primary, 0.6)

	cl, err := p.Classify(context.Background(), "I have a fever", TurnContext{})
	require.NoError(t, err)
	assert.Equal(t, models.IntentSearch, cl.Intent)
	require.NotNil(t, cl.Delta.Set.Specialty)
	assert.Equal(t, "General Physician", *cl.Delta.Set.Specialty)
}

func TestPolicyWorksWithoutPrimary(t *testing.T) {
	p := NewPolicyClassifier(nil, 0.6)

	cl, err := p.Classify(context.Background(), "hello", TurnContext{})
	require.NoError(t, err)
	assert.Equal(t, models.IntentChitchat, cl.Intent)
}

func TestPolicyDemotesBookingWithoutDoctor(t *testing.T) {
	primary := &fakePrimary{result: models.Classification{Intent: models.IntentBook, Confidence: 0.9}}
	p := NewPolicyClassifier(primary, 0.6)

	cl, err := p.Classify(context.Background(), "book it", TurnContext{})
	require.NoError(t, err)
	assert.Equal(t, models.IntentSearch, cl.Intent)
}

func TestPolicyKeepsBookingWithSelectedDoctor(t *testing.T) {
	primary := &fakePrimary{result: models.Classification{Intent: models.IntentBook, Confidence: 0.9}}
	p := NewPolicyClassifier(primary, 0.6)

	cl, err := p.Classify(context.Background(), "book it", TurnContext{SelectedDoctor: "doc_1"})
	require.NoError(t, err)
	assert.Equal(t, models.IntentBook, cl.Intent)
}

func TestPolicyKeepsBookingWithDoctorRef(t *testing.T) {
	primary := &fakePrimary{result: models.Classification{Intent: models.IntentBook, Confidence: 0.9, DoctorRef: "2"}}
	p := NewPolicyClassifier(primary, 0.6)

	cl, err := p.Classify(context.Background(), "book the second one", TurnContext{HasResults: true})
	require.NoError(t, err)
	assert.Equal(t, models.IntentBook, cl.Intent)
}
