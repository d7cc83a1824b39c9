package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medibook/middleware"
	"medibook/models"
	"medibook/services/conversation"
	"medibook/utils"
)

// ChatHandler processes one conversational turn on POST /api/chat.
func ChatHandler(svc conversation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", err.Error())
			return
		}

		// IP-derived position fills in when the client sends none.
		if req.UserLocation == nil {
			if v, ok := c.Get(middleware.GeoLocationKey); ok {
				if geo, ok := v.(*middleware.GeoLocation); ok {
					req.UserLocation = &models.LatLng{Lat: geo.Latitude, Lng: geo.Longitude}
				}
			}
		}

		resp, err := svc.ProcessTurn(c.Request.Context(), req)
		if err != nil {
			logger.Error("Chat turn failed", zap.String("userID", req.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, models.ChatResponse{
				Type:    models.ResponseError,
				Message: "Something went wrong processing your message. Please try again.",
			})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ResetSessionHandler discards the caller's conversation on DELETE
// /api/chat/session/:userID.
func ResetSessionHandler(svc conversation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userID")
		if userID == "" {
			utils.JSONError(c, http.StatusBadRequest, "Missing user ID", "userID path parameter is required")
			return
		}
		if err := svc.Reset(c.Request.Context(), userID); err != nil {
			utils.GetLogger().Error("Session reset failed", zap.String("userID", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "reset"})
	}
}
