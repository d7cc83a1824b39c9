package models

// GeoPoint follows the GeoJSON convention used by the Mongo 2dsphere index.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Lat returns the latitude, or 0 when the point is malformed.
func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Lng returns the longitude, or 0 when the point is malformed.
func (p GeoPoint) Lng() float64 {
	if len(p.Coordinates) < 1 {
		return 0
	}
	return p.Coordinates[0]
}

// IsZero reports whether the point carries no coordinates.
func (p GeoPoint) IsZero() bool {
	return len(p.Coordinates) < 2
}

// ClinicLocation describes where a doctor practices.
type ClinicLocation struct {
	City       string   `bson:"city" json:"city"`
	ClinicName string   `bson:"clinicName" json:"clinicName"`
	Address    string   `bson:"address" json:"address"`
	Geo        GeoPoint `bson:"geo" json:"geo"`
}

// Fees holds consultation pricing per mode.
type Fees struct {
	Online   int `bson:"online" json:"online"`
	InClinic int `bson:"inClinic" json:"inClinic"`
}

// DoctorRecord is the read-only doctor document owned by the repository.
type DoctorRecord struct {
	ID              string         `bson:"id" json:"id"`
	Name            string         `bson:"name" json:"name"`
	Specialty       string         `bson:"specialty" json:"specialty"`
	Qualifications  []string       `bson:"qualifications" json:"qualifications"`
	ExperienceYears int            `bson:"experienceYears" json:"experienceYears"`
	Languages       []string       `bson:"languages" json:"languages"`
	Gender          string         `bson:"gender" json:"gender"` // "male" or "female"
	Location        ClinicLocation `bson:"location" json:"location"`
	Fees            Fees           `bson:"fees" json:"fees"`
	Rating          float64        `bson:"rating" json:"rating"`
	ReviewsCount    int            `bson:"reviewsCount" json:"reviewsCount"`
	Insurances      []string       `bson:"insurances" json:"insurances"` // accepted insurance networks
}

// AcceptsInsurance reports whether the doctor accepts the given network.
func (d DoctorRecord) AcceptsInsurance(network string) bool {
	for _, ins := range d.Insurances {
		if ins == network {
			return true
		}
	}
	return false
}

// DoctorSummary is the trimmed per-result view returned inside a search response.
type DoctorSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Specialty     string  `json:"specialty"`
	Rating        float64 `json:"rating"`
	DistanceKm    float64 `json:"distanceKm,omitempty"`
	Fees          int     `json:"fees"`
	NextAvailable string  `json:"nextAvailable,omitempty"` // "Today" or "Tomorrow"
	MatchReason   string  `json:"matchReason,omitempty"`
}

// RankedResult pairs a doctor with its computed score and position.
// Derived per search, never stored.
type RankedResult struct {
	Doctor     DoctorRecord `json:"doctor"`
	Score      float64      `json:"score"`
	Rank       int          `json:"rank"`
	DistanceKm float64      `json:"distanceKm"`
}
