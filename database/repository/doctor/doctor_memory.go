package doctorRepo

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"medibook/database/repository"
	"medibook/models"
)

// MemoryDoctorRepo is an in-memory DoctorRepository used for demo mode and
// tests. It applies the same hard filters as the Mongo implementation.
type MemoryDoctorRepo struct {
	mu      sync.RWMutex
	doctors map[string]models.DoctorRecord
}

// NewMemoryDoctorRepo builds a repository over the given records.
func NewMemoryDoctorRepo(doctors []models.DoctorRecord) *MemoryDoctorRepo {
	m := make(map[string]models.DoctorRecord, len(doctors))
	for _, d := range doctors {
		m[d.ID] = d
	}
	return &MemoryDoctorRepo{doctors: m}
}

func (r *MemoryDoctorRepo) GetByID(_ context.Context, id string) (*models.DoctorRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *MemoryDoctorRepo) Search(_ context.Context, criteria SearchCriteria) ([]models.DoctorRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.DoctorRecord
	for _, d := range r.doctors {
		if criteria.Specialty != "" && !strings.EqualFold(d.Specialty, criteria.Specialty) {
			continue
		}
		if criteria.Insurance != "" && !d.AcceptsInsurance(criteria.Insurance) {
			continue
		}
		if criteria.Gender != "" && d.Gender != criteria.Gender {
			continue
		}
		if criteria.MaxDistanceKm > 0 && !criteria.LocationGeo.IsZero() {
			dist := haversineKm(
				criteria.LocationGeo.Lat(), criteria.LocationGeo.Lng(),
				d.Location.Geo.Lat(), d.Location.Geo.Lng(),
			)
			if dist > criteria.MaxDistanceKm {
				continue
			}
		}
		out = append(out, d)
	}

	// Same stable base order as the Mongo pipeline.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
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
