package membership

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patel-jhanvi/amrap-gym/internal/api"
	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/logger"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Add a membership
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body membership.MembershipRequest true "Edge to create"
// @Success      201 {object} membership.Membership
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /memberships [post]
func (h *Handler) AddMembership(c *gin.Context) {
	var req MembershipRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.service.AddMembership(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to add membership")
		return
	}

	c.JSON(http.StatusCreated, m)
}

// @Summary      Remove a membership
// @Tags         memberships
// @Accept       json
// @Security     BearerAuth
// @Param        request body membership.MembershipRequest true "Edge to remove"
// @Success      204
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /memberships [delete]
func (h *Handler) RemoveMembership(c *gin.Context) {
	var req MembershipRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.RemoveMembership(c.Request.Context(), req); err != nil {
		h.respondError(c, err, "Failed to remove membership")
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary      List a user's gyms
// @Tags         memberships
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {array} membership.GymMembership
// @Failure      404 {object} api.ErrorResponse
// @Router       /users/{id}/gyms [get]
func (h *Handler) GymsOfUser(c *gin.Context) {
	gyms, err := h.service.GymsOfUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch user gyms")
		return
	}

	c.JSON(http.StatusOK, gyms)
}

// @Summary      List a gym's members
// @Tags         memberships
// @Produce      json
// @Param        id path string true "Gym ID"
// @Success      200 {array} membership.UserMembership
// @Failure      404 {object} api.ErrorResponse
// @Router       /gyms/{id}/users [get]
func (h *Handler) MembersOfGym(c *gin.Context) {
	members, err := h.service.MembersOfGym(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch gym members")
		return
	}

	c.JSON(http.StatusOK, members)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidMembership):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, gym.ErrGymNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
	case errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
	case errors.Is(err, ErrMembershipNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
	case errors.Is(err, ErrAlreadyMember):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "User is already a member of this gym"})
	case errors.Is(err, ErrGymFull):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Gym is at full capacity"})
	default:
		logger.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
