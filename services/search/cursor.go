package search

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"medibook/models"
)

// cursorPayload pins a page offset to the criteria it was minted for.
type cursorPayload struct {
	Fingerprint uint64 `json:"fp"`
	Offset      int    `json:"off"`
}

func encodeCursor(criteria models.FilterCriteria, offset int) string {
	raw, _ := json.Marshal(cursorPayload{
		Fingerprint: fingerprint(criteria),
		Offset:      offset,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// resolveOffset decodes cursor and returns its offset. A blank, malformed or
// stale cursor (criteria changed since it was minted) resolves to 0.
func resolveOffset(cursor string, criteria models.FilterCriteria) int {
	if cursor == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0
	}
	if payload.Fingerprint != fingerprint(criteria) || payload.Offset < 0 {
		return 0
	}
	return payload.Offset
}

func fingerprint(criteria models.FilterCriteria) uint64 {
	h := fnv.New64a()
	write := func(label string, v any) {
		fmt.Fprintf(h, "%s=%v;", label, v)
	}
	if criteria.Specialty != nil {
		write("sp", *criteria.Specialty)
	}
	if len(criteria.Keywords) > 0 {
		write("kw", criteria.Keywords)
	}
	if criteria.Location != nil {
		write("loc", fmt.Sprintf("%.4f,%.4f", criteria.Location.Lat(), criteria.Location.Lng()))
	}
	if criteria.RadiusKm != nil {
		write("rad", *criteria.RadiusKm)
	}
	if criteria.MinRating != nil {
		write("rat", *criteria.MinRating)
	}
	if criteria.MaxFees != nil {
		write("fee", *criteria.MaxFees)
	}
	if criteria.Gender != nil {
		write("gen", *criteria.Gender)
	}
	if criteria.Insurance != nil {
		write("ins", *criteria.Insurance)
	}
	if criteria.AvailableAfter != nil {
		write("aft", *criteria.AvailableAfter)
	}
	if criteria.AvailableBefore != nil {
		write("bef", *criteria.AvailableBefore)
	}
	return h.Sum64()
}

func upcomingWeek() models.TimeWindow {
	now := time.Now()
	return models.TimeWindow{From: now, To: now.AddDate(0, 0, 7)}
}
