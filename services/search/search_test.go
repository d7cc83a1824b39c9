package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	doctorRepo "medibook/database/repository/doctor"
	"medibook/models"
)

func newDoctor(id, name, specialty, gender string, rating float64, fee int, lat, lng float64, insurances ...string) models.DoctorRecord {
	return models.DoctorRecord{
		ID:        id,
		Name:      name,
		Specialty: specialty,
		Gender:    gender,
		Rating:    rating,
		Fees:      models.Fees{Online: fee - 100, InClinic: fee},
		Location: models.ClinicLocation{
			City: "Pune",
			Geo:  models.NewGeoPoint(lat, lng),
		},
		Insurances: insurances,
	}
}

func fixtureService(t *testing.T) *DefaultRankingService {
	t.Helper()
	docs := []models.DoctorRecord{
		newDoctor("doc_1", "Dr. Asha Rao", "Dermatologist", "female", 4.8, 800, 18.5210, 73.8570, "Acme Health"),
		newDoctor("doc_2", "Dr. Vikram Shah", "Dermatologist", "male", 4.2, 600, 18.5300, 73.8700),
		newDoctor("doc_3", "Dr. Meera Iyer", "Dermatologist", "female", 4.8, 1200, 18.5600, 73.9100, "MediShield"),
		newDoctor("doc_4", "Dr. Nikhil Joshi", "Cardiologist", "male", 4.9, 1500, 18.5220, 73.8560, "Acme Health"),
		newDoctor("doc_5", "Dr. Priya Nair", "Dermatologist", "female", 3.5, 400, 18.5250, 73.8600),
	}
	return &DefaultRankingService{
		DoctorRepo: doctorRepo.NewMemoryDoctorRepo(docs),
		PageSize:   2,
	}
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(i int) *int         { return &i }
func geoPtr(lat, lng float64) *models.GeoPoint {
	p := models.NewGeoPoint(lat, lng)
	return &p
}

func TestSearchIsDeterministic(t *testing.T) {
	svc := fixtureService(t)
	criteria := models.FilterCriteria{
		Specialty: strPtr("Dermatologist"),
		Location:  geoPtr(18.5204, 73.8567),
	}

	first, err := svc.Search(context.Background(), criteria, "")
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), criteria, "")
	require.NoError(t, err)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Doctor.ID, second.Results[i].Doctor.ID)
		assert.Equal(t, first.Results[i].Score, second.Results[i].Score)
	}
}

func TestSearchTieBreaksByRatingThenID(t *testing.T) {
	// Two doctors at the same coordinates with the same rating must order
	// by id; no location means distance contributes nothing.
	docs := []models.DoctorRecord{
		newDoctor("doc_b", "Dr. B", "Dentist", "male", 4.0, 500, 18.52, 73.85),
		newDoctor("doc_a", "Dr. A", "Dentist", "female", 4.0, 500, 18.52, 73.85),
		newDoctor("doc_c", "Dr. C", "Dentist", "male", 4.5, 500, 18.52, 73.85),
	}
	svc := &DefaultRankingService{DoctorRepo: doctorRepo.NewMemoryDoctorRepo(docs), PageSize: 5}

	page, err := svc.Search(context.Background(), models.FilterCriteria{Specialty: strPtr("Dentist")}, "")
	require.NoError(t, err)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "doc_c", page.Results[0].Doctor.ID)
	assert.Equal(t, "doc_a", page.Results[1].Doctor.ID)
	assert.Equal(t, "doc_b", page.Results[2].Doctor.ID)
	assert.Equal(t, 1, page.Results[0].Rank)
	assert.Equal(t, 3, page.Results[2].Rank)
}

func TestSearchNarrowsWithAddedCriteria(t *testing.T) {
	svc := fixtureService(t)
	ctx := context.Background()

	broad, err := svc.Search(ctx, models.FilterCriteria{Specialty: strPtr("Dermatologist")}, "")
	require.NoError(t, err)

	narrowed, err := svc.Search(ctx, models.FilterCriteria{
		Specialty: strPtr("Dermatologist"),
		MinRating: f64Ptr(4.5),
	}, "")
	require.NoError(t, err)

	assert.Less(t, narrowed.Total, broad.Total)
	for _, r := range narrowed.Results {
		assert.GreaterOrEqual(t, r.Doctor.Rating, 4.5)
	}
}

func TestSearchSoftFilters(t *testing.T) {
	svc := fixtureService(t)
	ctx := context.Background()

	page, err := svc.Search(ctx, models.FilterCriteria{
		Specialty: strPtr("Dermatologist"),
		MaxFees:   intPtr(700),
	}, "")
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	for _, r := range page.Results {
		assert.LessOrEqual(t, r.Doctor.Fees.InClinic, 700)
	}
}

func TestSearchPagination(t *testing.T) {
	svc := fixtureService(t)
	ctx := context.Background()
	criteria := models.FilterCriteria{Specialty: strPtr("Dermatologist")}

	first, err := svc.Search(ctx, criteria, "")
	require.NoError(t, err)
	require.Len(t, first.Results, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, 4, first.Total)

	second, err := svc.Search(ctx, criteria, first.NextCursor)
	require.NoError(t, err)
	require.Len(t, second.Results, 2)
	assert.Empty(t, second.NextCursor)

	// No overlap across pages.
	seen := map[string]bool{}
	for _, r := range first.Results {
		seen[r.Doctor.ID] = true
	}
	for _, r := range second.Results {
		assert.False(t, seen[r.Doctor.ID])
	}
}

func TestSearchCursorInvalidatedByCriteriaChange(t *testing.T) {
	svc := fixtureService(t)
	ctx := context.Background()

	first, err := svc.Search(ctx, models.FilterCriteria{Specialty: strPtr("Dermatologist")}, "")
	require.NoError(t, err)
	require.NotEmpty(t, first.NextCursor)

	// Same cursor against changed criteria restarts at the first page.
	changed, err := svc.Search(ctx, models.FilterCriteria{
		Specialty: strPtr("Dermatologist"),
		MinRating: f64Ptr(4.0),
	}, first.NextCursor)
	require.NoError(t, err)
	require.NotEmpty(t, changed.Results)
	assert.Equal(t, 1, changed.Results[0].Rank)
}

func TestSearchEmptySuggestsRelaxation(t *testing.T) {
	svc := fixtureService(t)
	ctx := context.Background()

	page, err := svc.Search(ctx, models.FilterCriteria{
		Specialty: strPtr("Dermatologist"),
		MinRating: f64Ptr(4.9),
	}, "")
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	require.NotNil(t, page.Relaxation)
	assert.Equal(t, models.DimMinRating, page.Relaxation.Dimension)
	assert.Equal(t, 4, page.Relaxation.Candidates)
}

func TestSearchEmptyWithNothingToRelax(t *testing.T) {
	svc := fixtureService(t)
	page, err := svc.Search(context.Background(), models.FilterCriteria{
		Specialty: strPtr("Neurologist"),
	}, "")
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Nil(t, page.Relaxation)
}

func TestProximityRanksCloserDoctorsHigher(t *testing.T) {
	docs := []models.DoctorRecord{
		newDoctor("near", "Dr. Near", "Dentist", "male", 4.0, 500, 18.5210, 73.8570),
		newDoctor("far", "Dr. Far", "Dentist", "male", 4.0, 500, 18.5900, 73.9500),
	}
	svc := &DefaultRankingService{DoctorRepo: doctorRepo.NewMemoryDoctorRepo(docs), PageSize: 5}

	page, err := svc.Search(context.Background(), models.FilterCriteria{
		Specialty: strPtr("Dentist"),
		Location:  geoPtr(18.5204, 73.8567),
	}, "")
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "near", page.Results[0].Doctor.ID)
	assert.Greater(t, page.Results[1].DistanceKm, page.Results[0].DistanceKm)
}

func TestKeywordFraction(t *testing.T) {
	d := newDoctor("doc", "Dr. Skin Expert", "Dermatologist", "female", 4.0, 500, 0, 0)
	d.Qualifications = []string{"MD Dermatology"}

	assert.Equal(t, 1.0, keywordFraction(d, []string{"skin"}))
	assert.Equal(t, 0.5, keywordFraction(d, []string{"skin", "laser"}))
	assert.Equal(t, 0.0, keywordFraction(d, []string{"laser"}))
	assert.Equal(t, 0.0, keywordFraction(d, nil))
}

func TestSummarizeIncludesMatchReason(t *testing.T) {
	svc := fixtureService(t)
	criteria := models.FilterCriteria{
		Specialty: strPtr("Dermatologist"),
		Location:  geoPtr(18.5204, 73.8567),
		Insurance: strPtr("Acme Health"),
	}
	page, err := svc.Search(context.Background(), criteria, "")
	require.NoError(t, err)
	require.NotEmpty(t, page.Results)

	summaries := Summarize(page.Results, criteria)
	require.Len(t, summaries, len(page.Results))
	assert.Contains(t, summaries[0].MatchReason, "Dermatologist")
	assert.Contains(t, summaries[0].MatchReason, "accepts Acme Health")
}
