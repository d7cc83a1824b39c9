package doctorRepo

import (
	"context"

	"medibook/models"
)

// SearchCriteria narrows the repository query by hard filters only. Soft
// criteria (rating, fees, availability windows) are applied by the search
// service on the candidates this returns.
type SearchCriteria struct {
	Specialty     string          // exact match, case-insensitive
	Insurance     string          // membership in accepted networks
	Gender        string          // exact match
	LocationGeo   models.GeoPoint // search center, optional
	MaxDistanceKm float64         // only applied when LocationGeo is set
}

// DoctorRepository exposes read-only access to the doctor index.
type DoctorRepository interface {
	Search(ctx context.Context, criteria SearchCriteria) ([]models.DoctorRecord, error)
	GetByID(ctx context.Context, id string) (*models.DoctorRecord, error)
}
