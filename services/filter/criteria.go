// Package filter owns the typed search criteria: merging turn deltas into a
// session's cumulative criteria, validating dimension values, and deciding
// when criteria are specific enough to search.
package filter

import (
	"fmt"
	"regexp"

	"medibook/models"
)

// InvalidFilterValueError names the offending dimension of a rejected value.
type InvalidFilterValueError struct {
	Dimension models.Dimension
	Message   string
}

func (e *InvalidFilterValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Dimension, e.Message)
}

func invalidValue(dim models.Dimension, format string, args ...any) error {
	return &InvalidFilterValueError{Dimension: dim, Message: fmt.Sprintf(format, args...)}
}

// Merge folds a turn delta into the base criteria. The merge is right-biased:
// a dimension present in the delta always wins, because it models what the
// user just said. Dimensions absent from the delta leave the base untouched;
// dimensions in Unset are cleared. Merge(c, d) is idempotent in d.
func Merge(base models.FilterCriteria, delta models.FilterDelta) models.FilterCriteria {
	out := base
	for _, dim := range delta.Unset {
		out.Clear(dim)
	}

	set := delta.Set
	if set.Specialty != nil {
		out.Specialty = set.Specialty
	}
	if len(set.Keywords) > 0 {
		out.Keywords = set.Keywords
	}
	if set.Location != nil {
		out.Location = set.Location
	}
	if set.RadiusKm != nil {
		out.RadiusKm = set.RadiusKm
	}
	if set.MinRating != nil {
		out.MinRating = set.MinRating
	}
	if set.MaxFees != nil {
		out.MaxFees = set.MaxFees
	}
	if set.Gender != nil {
		out.Gender = set.Gender
	}
	if set.Insurance != nil {
		out.Insurance = set.Insurance
	}
	if set.AvailableAfter != nil {
		out.AvailableAfter = set.AvailableAfter
	}
	if set.AvailableBefore != nil {
		out.AvailableBefore = set.AvailableBefore
	}
	return out
}

var clockRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Validate rejects out-of-range values, failing with an
// InvalidFilterValueError that names the offending dimension.
func Validate(c models.FilterCriteria) error {
	if c.MinRating != nil && (*c.MinRating < 0 || *c.MinRating > 5) {
		return invalidValue(models.DimMinRating, "rating %.1f must be between 0 and 5", *c.MinRating)
	}
	if c.RadiusKm != nil && *c.RadiusKm <= 0 {
		return invalidValue(models.DimRadiusKm, "radius %.1f km must be positive", *c.RadiusKm)
	}
	if c.MaxFees != nil && *c.MaxFees <= 0 {
		return invalidValue(models.DimMaxFees, "fee cap %d must be positive", *c.MaxFees)
	}
	if c.Gender != nil && *c.Gender != "male" && *c.Gender != "female" {
		return invalidValue(models.DimGender, "gender %q is not recognised", *c.Gender)
	}
	if c.Location != nil {
		lat, lng := c.Location.Lat(), c.Location.Lng()
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return invalidValue(models.DimLocation, "coordinates (%.4f, %.4f) out of range", lat, lng)
		}
	}
	if c.AvailableAfter != nil && !clockRe.MatchString(*c.AvailableAfter) {
		return invalidValue(models.DimAvailableAfter, "time %q must be HH:MM", *c.AvailableAfter)
	}
	if c.AvailableBefore != nil && !clockRe.MatchString(*c.AvailableBefore) {
		return invalidValue(models.DimAvailableBefore, "time %q must be HH:MM", *c.AvailableBefore)
	}
	return nil
}

// StrongDimensions are the dimensions whose presence alone justifies running a
// search.
var StrongDimensions = []models.Dimension{models.DimSpecialty, models.DimKeywords}

// IsSpecificEnough gates Search & Ranking: true iff at least one strong
// dimension is set.
func IsSpecificEnough(c models.FilterCriteria) bool {
	return c.Specialty != nil || len(c.Keywords) > 0
}

// MissingStrongDimensions lists the strong dimensions still unset, for
// clarification prompts.
func MissingStrongDimensions(c models.FilterCriteria) []models.Dimension {
	var missing []models.Dimension
	if c.Specialty == nil {
		missing = append(missing, models.DimSpecialty)
	}
	if len(c.Keywords) == 0 {
		missing = append(missing, models.DimKeywords)
	}
	return missing
}
