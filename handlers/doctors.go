package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medibook/database/repository"
	doctorRepo "medibook/database/repository/doctor"
	"medibook/models"
	"medibook/services/schedule"
	"medibook/utils"
)

// SpecialtiesHandler lists the specialties the directory knows about, for
// client-side suggestion chips.
func SpecialtiesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"specialties": doctorRepo.Specialties})
	}
}

// GetDoctorHandler returns one doctor's full record on GET /api/doctors/:id.
func GetDoctorHandler(repo doctorRepo.DoctorRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		doctor, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "doctor not found"})
				return
			}
			utils.GetLogger().Error("Doctor lookup failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load doctor"})
			return
		}
		c.JSON(http.StatusOK, doctor)
	}
}

// DoctorScheduleHandler returns a doctor's open slots on GET
// /api/doctors/:id/schedule, outside the conversational flow.
func DoctorScheduleHandler(viewer schedule.Viewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		view, err := viewer.OpenSlots(c.Request.Context(), id, models.TimeWindow{})
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "doctor not found"})
				return
			}
			utils.GetLogger().Error("Schedule lookup failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load schedule"})
			return
		}
		c.JSON(http.StatusOK, models.ScheduleData{
			DoctorID: id,
			Slots:    schedule.Summaries(view.Slots),
		})
	}
}
