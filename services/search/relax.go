package search

import (
	"context"

	"medibook/models"
)

// relaxable lists the dimensions worth dropping when a search comes back
// empty, from most to least commonly over-restrictive.
var relaxable = []models.Dimension{
	models.DimMinRating,
	models.DimMaxFees,
	models.DimRadiusKm,
	models.DimAvailableAfter,
	models.DimAvailableBefore,
	models.DimGender,
	models.DimInsurance,
}

// relaxationCandidate re-runs the candidate pipeline once per set relaxable
// dimension with that dimension cleared, and suggests the removal that frees
// up the most doctors. Returns nil when nothing is set or nothing helps.
func (s *DefaultRankingService) relaxationCandidate(ctx context.Context, criteria models.FilterCriteria) (*Relaxation, error) {
	var best *Relaxation
	for _, dim := range relaxable {
		if !dimensionSet(criteria, dim) {
			continue
		}
		trial := criteria
		trial.Clear(dim)
		docs, err := s.candidates(ctx, trial)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			continue
		}
		if best == nil || len(docs) > best.Candidates {
			best = &Relaxation{Dimension: dim, Candidates: len(docs)}
		}
	}
	return best, nil
}

func dimensionSet(criteria models.FilterCriteria, dim models.Dimension) bool {
	for _, set := range criteria.SetDimensions() {
		if set == dim {
			return true
		}
	}
	return false
}
