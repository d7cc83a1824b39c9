package search

import (
	"fmt"
	"strings"

	"medibook/models"
)

// Summarize converts ranked results into the trimmed client-facing view.
func Summarize(results []models.RankedResult, criteria models.FilterCriteria) []models.DoctorSummary {
	summaries := make([]models.DoctorSummary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, models.DoctorSummary{
			ID:          r.Doctor.ID,
			Name:        r.Doctor.Name,
			Specialty:   r.Doctor.Specialty,
			Rating:      r.Doctor.Rating,
			DistanceKm:  r.DistanceKm,
			Fees:        r.Doctor.Fees.InClinic,
			MatchReason: matchReason(r, criteria),
		})
	}
	return summaries
}

// matchReason is a one-liner explaining why this doctor ranked where it did.
func matchReason(r models.RankedResult, criteria models.FilterCriteria) string {
	var parts []string
	if criteria.Specialty != nil {
		parts = append(parts, r.Doctor.Specialty)
	}
	if r.Doctor.Rating >= 4.5 {
		parts = append(parts, fmt.Sprintf("rated %.1f", r.Doctor.Rating))
	}
	if criteria.Location != nil && r.DistanceKm > 0 {
		parts = append(parts, fmt.Sprintf("%.1f km away", r.DistanceKm))
	}
	if criteria.Insurance != nil && r.Doctor.AcceptsInsurance(*criteria.Insurance) {
		parts = append(parts, "accepts "+*criteria.Insurance)
	}
	return strings.Join(parts, ", ")
}
