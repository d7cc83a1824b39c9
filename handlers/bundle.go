// File: medibook/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Conversation endpoints
	ChatHandler         gin.HandlerFunc
	ResetSessionHandler gin.HandlerFunc

	// Directory endpoints
	SpecialtiesHandler    gin.HandlerFunc
	GetDoctorHandler      gin.HandlerFunc
	DoctorScheduleHandler gin.HandlerFunc
}
