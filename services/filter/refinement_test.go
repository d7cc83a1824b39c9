package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibook/models"
)

func TestAdvanceCollectingToReady(t *testing.T) {
	out, err := Advance(models.FilterCriteria{}, models.StateCollecting, models.FilterDelta{
		Set: models.FilterCriteria{Specialty: strPtr("Dermatologist")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StateReady, out.State)
	assert.True(t, out.NeedsSearch)
	assert.Empty(t, out.Clarify)
}

func TestAdvanceStaysCollectingWhenVague(t *testing.T) {
	out, err := Advance(models.FilterCriteria{}, models.StateCollecting, models.FilterDelta{
		Set: models.FilterCriteria{MinRating: f64Ptr(4.0)},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StateCollecting, out.State)
	assert.False(t, out.NeedsSearch)
	assert.NotEmpty(t, out.Clarify)
}

func TestAdvanceSearchedToReadyOnNewDelta(t *testing.T) {
	criteria := models.FilterCriteria{Specialty: strPtr("Dermatologist")}
	out, err := Advance(criteria, models.StateSearched, models.FilterDelta{
		Set: models.FilterCriteria{Gender: strPtr("female")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StateReady, out.State)
	assert.True(t, out.NeedsSearch)
}

func TestAdvanceEmptyDeltaKeepsStateAndClarifies(t *testing.T) {
	criteria := models.FilterCriteria{Specialty: strPtr("Dermatologist")}
	out, err := Advance(criteria, models.StateSearched, models.FilterDelta{})
	require.NoError(t, err)
	assert.Equal(t, models.StateSearched, out.State)
	assert.False(t, out.NeedsSearch)
	assert.NotEmpty(t, out.Clarify)
}

func TestAdvanceUnsetCanRegressToCollecting(t *testing.T) {
	criteria := models.FilterCriteria{Specialty: strPtr("Dermatologist")}
	out, err := Advance(criteria, models.StateSearched, models.FilterDelta{
		Unset: []models.Dimension{models.DimSpecialty},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StateCollecting, out.State)
	assert.False(t, out.NeedsSearch)
	assert.Nil(t, out.Criteria.Specialty)
}

func TestAdvanceRejectsInvalidValues(t *testing.T) {
	_, err := Advance(models.FilterCriteria{}, models.StateCollecting, models.FilterDelta{
		Set: models.FilterCriteria{Specialty: strPtr("Dentist"), MinRating: f64Ptr(9)},
	})
	var invalid *InvalidFilterValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.DimMinRating, invalid.Dimension)
}

func TestMarkSearched(t *testing.T) {
	assert.Equal(t, models.StateSearched, MarkSearched(models.StateReady))
	assert.Equal(t, models.StateCollecting, MarkSearched(models.StateCollecting))
	assert.Equal(t, models.StateSearched, MarkSearched(models.StateSearched))
}
