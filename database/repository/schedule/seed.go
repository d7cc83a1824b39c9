package scheduleRepo

import (
	"fmt"
	"time"

	"medibook/models"
)

// Four half-hour windows per day, minutes from midnight.
var seedWindows = [][2]int{{600, 630}, {660, 690}, {1020, 1050}, {1080, 1110}}

// SeedSlots generates an open 7-day schedule for each doctor id, starting at
// the midnight of from. Slot ids are stable so demo conversations can book
// across restarts.
func SeedSlots(doctorIDs []string, from time.Time) []models.ScheduleSlot {
	dayZero := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	var slots []models.ScheduleSlot
	for _, docID := range doctorIDs {
		for day := 0; day < 7; day++ {
			base := dayZero.AddDate(0, 0, day)
			for idx, w := range seedWindows {
				slots = append(slots, models.ScheduleSlot{
					ID:       fmt.Sprintf("slot_%s_%d_%d", docID, day, idx),
					DoctorID: docID,
					Start:    base.Add(time.Duration(w[0]) * time.Minute),
					End:      base.Add(time.Duration(w[1]) * time.Minute),
					Status:   models.SlotOpen,
				})
			}
		}
	}
	return slots
}
