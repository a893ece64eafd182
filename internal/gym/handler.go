package gym

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patel-jhanvi/amrap-gym/internal/api"
	"github.com/patel-jhanvi/amrap-gym/internal/logger"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Create a gym
// @Tags         gyms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body gym.GymRequest true "Gym payload"
// @Success      201 {object} gym.Gym
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms [post]
func (h *Handler) CreateGym(c *gin.Context) {
	var req GymRequest
	if !api.BindJSON(c, &req) {
		return
	}

	gym, err := h.service.CreateGym(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to create gym")
		return
	}

	logger.Info("gym created", "gym_id", gym.ID)
	c.JSON(http.StatusCreated, gym)
}

// @Summary      List gyms
// @Tags         gyms
// @Produce      json
// @Param        search query string false "Case-insensitive name filter"
// @Success      200 {array} gym.Gym
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms [get]
func (h *Handler) ListGyms(c *gin.Context) {
	gyms, err := h.service.GetAllGyms(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch gyms")
		return
	}

	c.JSON(http.StatusOK, gyms)
}

// @Summary      Get a gym
// @Tags         gyms
// @Produce      json
// @Param        id path string true "Gym ID"
// @Success      200 {object} gym.Gym
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms/{id} [get]
func (h *Handler) GetGym(c *gin.Context) {
	gym, err := h.service.GetGymByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch gym")
		return
	}

	c.JSON(http.StatusOK, gym)
}

// @Summary      Update a gym
// @Tags         gyms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Gym ID"
// @Param        request body gym.GymRequest true "Gym payload"
// @Success      200 {object} gym.Gym
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms/{id} [put]
func (h *Handler) UpdateGym(c *gin.Context) {
	var req GymRequest
	if !api.BindJSON(c, &req) {
		return
	}

	gym, err := h.service.UpdateGym(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "Failed to update gym")
		return
	}

	c.JSON(http.StatusOK, gym)
}

// @Summary      Delete a gym
// @Description  Rejected with 409 while the gym still has members.
// @Tags         gyms
// @Security     BearerAuth
// @Param        id path string true "Gym ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms/{id} [delete]
func (h *Handler) DeleteGym(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteGym(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete gym")
		return
	}

	logger.Info("gym deleted", "gym_id", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrGymNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
	case errors.Is(err, ErrInvalidGym):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrGymHasMembers):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Cannot delete gym: it still has active memberships"})
	default:
		logger.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
