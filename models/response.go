package models

// ChatMessage is one prior turn supplied by the caller.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LatLng is the caller-supplied user position.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ChatRequest is the inbound turn payload on /api/chat.
type ChatRequest struct {
	UserID       string        `json:"userId" binding:"required"`
	Message      string        `json:"message" binding:"required"`
	History      []ChatMessage `json:"history,omitempty"`
	UserLocation *LatLng       `json:"userLocation,omitempty"`
}

// ResponseType tags the outbound payload shape.
type ResponseType string

const (
	ResponseChat     ResponseType = "chat"
	ResponseSearch   ResponseType = "search"
	ResponseSchedule ResponseType = "schedule"
	ResponseBooking  ResponseType = "booking"
	ResponseError    ResponseType = "error"
)

// SearchData is the payload for type "search".
type SearchData struct {
	Doctors    []DoctorSummary `json:"doctors"`
	Count      int             `json:"count"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

// ScheduleData is the payload for type "schedule".
type ScheduleData struct {
	DoctorID string        `json:"doctorId"`
	Slots    []SlotSummary `json:"slots"`
}

// BookingData is the payload for type "booking".
type BookingData struct {
	Status      BookingStage `json:"status"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

// ChatResponse is the outbound turn payload. Exactly one of the data fields is
// populated, matching Type.
type ChatResponse struct {
	Type    ResponseType `json:"type"`
	Message string       `json:"message"`

	Search   *SearchData   `json:"search,omitempty"`
	Schedule *ScheduleData `json:"schedule,omitempty"`
	Booking  *BookingData  `json:"booking,omitempty"`
}
