package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibook/models"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(i int) *int         { return &i }

func TestMergeIsRightBiased(t *testing.T) {
	base := models.FilterCriteria{
		Specialty: strPtr("Dermatologist"),
		MinRating: f64Ptr(4.0),
	}
	delta := models.FilterDelta{Set: models.FilterCriteria{MinRating: f64Ptr(4.5)}}

	merged := Merge(base, delta)
	assert.Equal(t, "Dermatologist", *merged.Specialty)
	assert.Equal(t, 4.5, *merged.MinRating)
}

func TestMergeIsIdempotent(t *testing.T) {
	base := models.FilterCriteria{Specialty: strPtr("Dentist")}
	delta := models.FilterDelta{Set: models.FilterCriteria{MaxFees: intPtr(800)}}

	once := Merge(base, delta)
	twice := Merge(once, delta)
	assert.Equal(t, once, twice)
}

func TestMergeUnsetClearsDimension(t *testing.T) {
	base := models.FilterCriteria{
		Specialty: strPtr("Dermatologist"),
		MinRating: f64Ptr(4.0),
	}
	delta := models.FilterDelta{Unset: []models.Dimension{models.DimMinRating}}

	merged := Merge(base, delta)
	assert.Nil(t, merged.MinRating)
	assert.NotNil(t, merged.Specialty)
}

func TestMergeUnsetThenSetSameDimension(t *testing.T) {
	// "not a dermatologist, a dentist": unset applies before set.
	base := models.FilterCriteria{Specialty: strPtr("Dermatologist")}
	delta := models.FilterDelta{
		Set:   models.FilterCriteria{Specialty: strPtr("Dentist")},
		Unset: []models.Dimension{models.DimSpecialty},
	}

	merged := Merge(base, delta)
	require.NotNil(t, merged.Specialty)
	assert.Equal(t, "Dentist", *merged.Specialty)
}

func TestMergeAbsentDimensionIsNotUnset(t *testing.T) {
	base := models.FilterCriteria{
		Specialty: strPtr("Dermatologist"),
		Gender:    strPtr("female"),
	}
	merged := Merge(base, models.FilterDelta{})
	assert.Equal(t, base, merged)
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	cases := []struct {
		name     string
		criteria models.FilterCriteria
		dim      models.Dimension
	}{
		{"rating above five", models.FilterCriteria{MinRating: f64Ptr(5.5)}, models.DimMinRating},
		{"negative rating", models.FilterCriteria{MinRating: f64Ptr(-1)}, models.DimMinRating},
		{"zero radius", models.FilterCriteria{RadiusKm: f64Ptr(0)}, models.DimRadiusKm},
		{"zero fees", models.FilterCriteria{MaxFees: intPtr(0)}, models.DimMaxFees},
		{"unknown gender", models.FilterCriteria{Gender: strPtr("other")}, models.DimGender},
		{"bad clock", models.FilterCriteria{AvailableAfter: strPtr("25:00")}, models.DimAvailableAfter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.criteria)
			var invalid *InvalidFilterValueError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.dim, invalid.Dimension)
		})
	}
}

func TestValidateAcceptsReasonableCriteria(t *testing.T) {
	loc := models.NewGeoPoint(18.5204, 73.8567)
	c := models.FilterCriteria{
		Specialty:      strPtr("Dermatologist"),
		MinRating:      f64Ptr(4.5),
		RadiusKm:       f64Ptr(5),
		MaxFees:        intPtr(800),
		Gender:         strPtr("female"),
		Location:       &loc,
		AvailableAfter: strPtr("17:00"),
	}
	assert.NoError(t, Validate(c))
}

func TestIsSpecificEnough(t *testing.T) {
	assert.False(t, IsSpecificEnough(models.FilterCriteria{}))
	assert.False(t, IsSpecificEnough(models.FilterCriteria{MinRating: f64Ptr(4.0)}))
	assert.True(t, IsSpecificEnough(models.FilterCriteria{Specialty: strPtr("Dentist")}))
	assert.True(t, IsSpecificEnough(models.FilterCriteria{Keywords: []string{"skin"}}))
}

func TestSpecificEnoughIsMonotoneUnderSets(t *testing.T) {
	// Adding information never makes specific criteria unspecific.
	c := models.FilterCriteria{Specialty: strPtr("Dentist")}
	require.True(t, IsSpecificEnough(c))

	merged := Merge(c, models.FilterDelta{Set: models.FilterCriteria{
		MinRating: f64Ptr(4.0),
		Gender:    strPtr("male"),
	}})
	assert.True(t, IsSpecificEnough(merged))
}
