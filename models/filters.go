package models

// Dimension names one independently settable axis of search criteria.
type Dimension string

const (
	DimSpecialty       Dimension = "specialty"
	DimKeywords        Dimension = "keywords"
	DimLocation        Dimension = "location"
	DimRadiusKm        Dimension = "radius_km"
	DimMinRating       Dimension = "min_rating"
	DimMaxFees         Dimension = "max_fees"
	DimGender          Dimension = "gender"
	DimInsurance       Dimension = "insurance"
	DimAvailableAfter  Dimension = "available_after"
	DimAvailableBefore Dimension = "available_before"
)

// FilterCriteria is the cumulative, typed search criteria for a session.
// A nil pointer (or empty slice) means the dimension is unset; once set, a
// dimension persists across turns until explicitly overridden or cleared.
type FilterCriteria struct {
	Specialty       *string   `json:"specialty,omitempty"`
	Keywords        []string  `json:"keywords,omitempty"`
	Location        *GeoPoint `json:"location,omitempty"`
	RadiusKm        *float64  `json:"radiusKm,omitempty"`
	MinRating       *float64  `json:"minRating,omitempty"`
	MaxFees         *int      `json:"maxFees,omitempty"`
	Gender          *string   `json:"gender,omitempty"`
	Insurance       *string   `json:"insurance,omitempty"`
	AvailableAfter  *string   `json:"availableAfter,omitempty"`  // "HH:MM", 24h
	AvailableBefore *string   `json:"availableBefore,omitempty"` // "HH:MM", 24h
}

// FilterDelta carries the newly stated information of one turn. Dimensions
// absent from Set mean "no new information"; dimensions listed in Unset are an
// explicit request to clear ("no, not that specialty") and are distinct from
// absence.
type FilterDelta struct {
	Set   FilterCriteria `json:"set"`
	Unset []Dimension    `json:"unset,omitempty"`
}

// IsEmpty reports whether the delta carries no change at all.
func (d FilterDelta) IsEmpty() bool {
	return len(d.Unset) == 0 && d.Set.SetDimensions() == nil
}

// SetDimensions lists every dimension that holds a value.
func (c FilterCriteria) SetDimensions() []Dimension {
	var dims []Dimension
	if c.Specialty != nil {
		dims = append(dims, DimSpecialty)
	}
	if len(c.Keywords) > 0 {
		dims = append(dims, DimKeywords)
	}
	if c.Location != nil {
		dims = append(dims, DimLocation)
	}
	if c.RadiusKm != nil {
		dims = append(dims, DimRadiusKm)
	}
	if c.MinRating != nil {
		dims = append(dims, DimMinRating)
	}
	if c.MaxFees != nil {
		dims = append(dims, DimMaxFees)
	}
	if c.Gender != nil {
		dims = append(dims, DimGender)
	}
	if c.Insurance != nil {
		dims = append(dims, DimInsurance)
	}
	if c.AvailableAfter != nil {
		dims = append(dims, DimAvailableAfter)
	}
	if c.AvailableBefore != nil {
		dims = append(dims, DimAvailableBefore)
	}
	return dims
}

// Clear resets the named dimension back to unset.
func (c *FilterCriteria) Clear(dim Dimension) {
	switch dim {
	case DimSpecialty:
		c.Specialty = nil
	case DimKeywords:
		c.Keywords = nil
	case DimLocation:
		c.Location = nil
	case DimRadiusKm:
		c.RadiusKm = nil
	case DimMinRating:
		c.MinRating = nil
	case DimMaxFees:
		c.MaxFees = nil
	case DimGender:
		c.Gender = nil
	case DimInsurance:
		c.Insurance = nil
	case DimAvailableAfter:
		c.AvailableAfter = nil
	case DimAvailableBefore:
		c.AvailableBefore = nil
	}
}
