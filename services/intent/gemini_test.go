package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibook/models"
)

func TestParseGeminiResult(t *testing.T) {
	raw := `{
		"intent": "refine",
		"filters": {"minRating": 4.5},
		"unset": ["max_fees"],
		"confidence": 0.92
	}`

	cl, err := parseGeminiResult(raw)
	require.NoError(t, err)
	assert.Equal(t, models.IntentRefine, cl.Intent)
	require.NotNil(t, cl.Delta.Set.MinRating)
	assert.Equal(t, 4.5, *cl.Delta.Set.MinRating)
	assert.Equal(t, []models.Dimension{models.DimMaxFees}, cl.Delta.Unset)
	assert.Equal(t, 0.92, cl.Confidence)
}

func TestParseGeminiResultStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"intent\": \"search\", \"filters\": {\"specialty\": \"Dentist\"}, \"confidence\": 0.8}\n```"

	cl, err := parseGeminiResult(raw)
	require.NoError(t, err)
	assert.Equal(t, models.IntentSearch, cl.Intent)
	require.NotNil(t, cl.Delta.Set.Specialty)
	assert.Equal(t, "Dentist", *cl.Delta.Set.Specialty)
}

func TestParseGeminiResultRejectsNonJSON(t *testing.T) {
	_, err := parseGeminiResult("I think the user wants a dentist")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseGeminiResultUnknownIntentString(t *testing.T) {
	cl, err := parseGeminiResult(`{"intent": "teleport", "confidence": 0.9}`)
	require.NoError(t, err)
	assert.Equal(t, models.IntentUnknown, cl.Intent)
	assert.Zero(t, cl.Confidence)
}
