package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patel-jhanvi/amrap-gym/internal/api"
	"github.com/patel-jhanvi/amrap-gym/internal/logger"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Handler authenticates the single configured operator account.
type Handler struct {
	email        string
	passwordHash string
	secret       string
	ttl          time.Duration
}

func NewHandler(email, passwordHash, secret string, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Handler{
		email:        email,
		passwordHash: passwordHash,
		secret:       secret,
		ttl:          ttl,
	}
}

// @Summary      Operator login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body auth.LoginRequest true "Operator credentials"
// @Success      200 {object} auth.LoginResponse
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if !strings.EqualFold(strings.TrimSpace(req.Email), h.email) || !CheckPassword(h.passwordHash, req.Password) {
		logger.Warn("operator login rejected", "email", req.Email)
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	token, expiresAt, err := GenerateToken(h.email, RoleOperator, h.secret, h.ttl)
	if err != nil {
		logger.WithError(err).Error("failed to issue operator token")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to issue token"})
		return
	}

	logger.Info("operator logged in", "email", h.email)
	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt})
}
