// Package search executes session criteria against the doctor index and
// produces a deterministic, paginated ranking.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	doctorRepo "medibook/database/repository/doctor"
	scheduleRepo "medibook/database/repository/schedule"
	"medibook/models"
)

// Score weights: rating, proximity and keyword relevance.
const (
	ratingWeight   = 0.3
	distanceWeight = 0.4
	keywordWeight  = 0.3

	// Distances at or beyond this contribute nothing to the score.
	farDistanceKm = 10.0
)

// Relaxation suggests which dimension to drop when a search comes back empty.
type Relaxation struct {
	Dimension models.Dimension `json:"dimension"`
	// Candidates is how many results dropping the dimension would yield.
	Candidates int `json:"candidates"`
}

// Page is one ranked result page.
type Page struct {
	Results    []models.RankedResult
	Total      int
	NextCursor string
	// Relaxation is set only when Total is zero and something can be relaxed.
	Relaxation *Relaxation
}

// RankingService runs criteria against the repository and ranks candidates.
type RankingService interface {
	// Search returns the page addressed by cursor. An empty cursor (or one
	// minted for different criteria) restarts from offset 0.
	Search(ctx context.Context, criteria models.FilterCriteria, cursor string) (Page, error)
}

// DefaultRankingService implements RankingService.
type DefaultRankingService struct {
	DoctorRepo doctorRepo.DoctorRepository
	// ScheduleRepo is optional; when present, available_after/before criteria
	// narrow candidates to doctors with a matching open slot.
	ScheduleRepo scheduleRepo.ScheduleRepository
	PageSize     int
}

func (s *DefaultRankingService) Search(ctx context.Context, criteria models.FilterCriteria, cursor string) (Page, error) {
	candidates, err := s.candidates(ctx, criteria)
	if err != nil {
		return Page{}, err
	}

	ranked := rank(candidates, criteria)

	if len(ranked) == 0 {
		relax, rerr := s.relaxationCandidate(ctx, criteria)
		if rerr != nil {
			relax = nil
		}
		return Page{Total: 0, Relaxation: relax}, nil
	}

	offset := resolveOffset(cursor, criteria)
	if offset >= len(ranked) {
		offset = 0
	}
	end := offset + s.pageSize()
	if end > len(ranked) {
		end = len(ranked)
	}

	page := Page{
		Results: ranked[offset:end],
		Total:   len(ranked),
	}
	if end < len(ranked) {
		page.NextCursor = encodeCursor(criteria, end)
	}
	return page, nil
}

// candidates narrows by hard filters at the repository, then applies the soft
// per-record filters locally.
func (s *DefaultRankingService) candidates(ctx context.Context, criteria models.FilterCriteria) ([]models.DoctorRecord, error) {
	repoCriteria := doctorRepo.SearchCriteria{}
	if criteria.Specialty != nil {
		repoCriteria.Specialty = *criteria.Specialty
	}
	if criteria.Insurance != nil {
		repoCriteria.Insurance = *criteria.Insurance
	}
	if criteria.Gender != nil {
		repoCriteria.Gender = *criteria.Gender
	}
	if criteria.Location != nil {
		repoCriteria.LocationGeo = *criteria.Location
		repoCriteria.MaxDistanceKm = farDistanceKm
		if criteria.RadiusKm != nil {
			repoCriteria.MaxDistanceKm = *criteria.RadiusKm
		}
	}

	docs, err := s.DoctorRepo.Search(ctx, repoCriteria)
	if err != nil {
		return nil, fmt.Errorf("doctor query failed: %w", err)
	}

	var out []models.DoctorRecord
	for _, d := range docs {
		if criteria.MinRating != nil && d.Rating < *criteria.MinRating {
			continue
		}
		if criteria.MaxFees != nil && d.Fees.InClinic > *criteria.MaxFees {
			continue
		}
		if !s.matchesAvailability(ctx, d.ID, criteria) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// rank scores and orders candidates. Ties break by rating descending then
// doctor id ascending so the same snapshot always yields the same sequence —
// stable pagination depends on it.
func rank(docs []models.DoctorRecord, criteria models.FilterCriteria) []models.RankedResult {
	results := make([]models.RankedResult, 0, len(docs))
	for _, d := range docs {
		var distKm, distScore float64
		if criteria.Location != nil {
			distKm = haversine(
				criteria.Location.Lat(), criteria.Location.Lng(),
				d.Location.Geo.Lat(), d.Location.Geo.Lng(),
			)
			normalized := math.Min(distKm, farDistanceKm) / farDistanceKm
			distScore = distanceWeight * (1 - normalized)
		}
		score := ratingWeight*(d.Rating/5) + distScore + keywordWeight*keywordFraction(d, criteria.Keywords)
		results = append(results, models.RankedResult{
			Doctor:     d,
			Score:      math.Round(score*1000) / 1000,
			DistanceKm: math.Round(distKm*100) / 100,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Doctor.Rating != results[j].Doctor.Rating {
			return results[i].Doctor.Rating > results[j].Doctor.Rating
		}
		return results[i].Doctor.ID < results[j].Doctor.ID
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// keywordFraction is the share of criteria keywords found in the doctor's
// name, specialty or qualifications.
func keywordFraction(d models.DoctorRecord, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(d.Name + " " + d.Specialty + " " + strings.Join(d.Qualifications, " "))
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

func (s *DefaultRankingService) matchesAvailability(ctx context.Context, doctorID string, criteria models.FilterCriteria) bool {
	if s.ScheduleRepo == nil || (criteria.AvailableAfter == nil && criteria.AvailableBefore == nil) {
		return true
	}
	slots, err := s.ScheduleRepo.GetSlots(ctx, doctorID, upcomingWeek())
	if err != nil {
		// Availability narrowing is best-effort; a slow schedule store must
		// not fail the whole search.
		return true
	}
	for _, slot := range slots {
		if slot.Status != models.SlotOpen {
			continue
		}
		clock := slot.Start.Format("15:04")
		if criteria.AvailableAfter != nil && clock < *criteria.AvailableAfter {
			continue
		}
		if criteria.AvailableBefore != nil && clock > *criteria.AvailableBefore {
			continue
		}
		return true
	}
	return false
}

func (s *DefaultRankingService) pageSize() int {
	if s.PageSize <= 0 {
		return 5
	}
	return s.PageSize
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
