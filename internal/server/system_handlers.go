package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/patel-jhanvi/amrap-gym/internal/api"
	"github.com/patel-jhanvi/amrap-gym/internal/email"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

type testEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// @Summary      Queue a test notification
// @Tags         system
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      202 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /notifications/test [post]
func TestEmail(mailer *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req testEmailRequest
		if !api.BindJSON(c, &req) {
			return
		}

		err := mailer.Send(c.Request.Context(), req.Email, "Operator", "test", "Test notification", "Membership notifications are working.")
		if err != nil {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to queue notification"})
			return
		}

		c.JSON(http.StatusAccepted, api.MessageResponse{Message: "Notification queued"})
	}
}

// @Summary      Prometheus metrics
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
