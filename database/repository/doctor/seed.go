package doctorRepo

import (
	"fmt"
	"math/rand"

	"medibook/models"
)

// Specialties supported by the demo dataset and the /api/specialties endpoint.
var Specialties = []string{
	"General Physician", "Dermatologist", "Pediatrician",
	"Orthopedist", "Cardiologist", "Dentist",
	"Psychiatrist", "Gynaecologist", "Ear, Nose, Throat",
}

var seedNames = []string{"Sharma", "Patel", "Gupta", "Singh", "Deshmukh", "Kulkarni"}
var seedInsurances = []string{"Acme Health", "MediShield", "CarePlus"}

// SeedDoctors generates a deterministic demo dataset of n doctors around the
// given center. The fixed source keeps ordering and attributes reproducible
// across runs, which the ranking tests rely on.
func SeedDoctors(n int, centerLat, centerLng float64) []models.DoctorRecord {
	rng := rand.New(rand.NewSource(42))

	doctors := make([]models.DoctorRecord, 0, n)
	for i := 1; i <= n; i++ {
		latOffset := (rng.Float64() - 0.5) * 0.18
		lngOffset := (rng.Float64() - 0.5) * 0.18

		gender := "male"
		if rng.Intn(2) == 0 {
			gender = "female"
		}

		doctors = append(doctors, models.DoctorRecord{
			ID:              fmt.Sprintf("doc_%03d", i),
			Name:            fmt.Sprintf("Dr. %s (%d)", seedNames[rng.Intn(len(seedNames))], i),
			Specialty:       Specialties[rng.Intn(len(Specialties))],
			Qualifications:  []string{"MBBS", "MD"},
			ExperienceYears: 3 + rng.Intn(23),
			Languages:       []string{"English", "Hindi", "Marathi"},
			Gender:          gender,
			Location: models.ClinicLocation{
				City:       "Pune",
				ClinicName: fmt.Sprintf("Clinic %d", i),
				Address:    fmt.Sprintf("Sector %d, Pune", 1+rng.Intn(50)),
				Geo:        models.NewGeoPoint(centerLat+latOffset, centerLng+lngOffset),
			},
			Fees: models.Fees{
				Online:   []int{400, 500, 800}[rng.Intn(3)],
				InClinic: []int{800, 1000, 1500}[rng.Intn(3)],
			},
			Rating:       float64(35+rng.Intn(16)) / 10, // 3.5 .. 5.0
			ReviewsCount: 50 + rng.Intn(450),
			Insurances:   []string{seedInsurances[rng.Intn(len(seedInsurances))]},
		})
	}
	return doctors
}
