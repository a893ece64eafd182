package user

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
	return &Handler{service: service}
}

// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body user.UserRequest true "User payload"
// @Success      201 {object} user.User
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var req UserRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to create user")
		return
	}

	logger.Info("user created", "user_id", user.ID)
	c.JSON(http.StatusCreated, user)
}

// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        search query string false "Case-insensitive name or email filter"
// @Success      200 {array} user.User
// @Failure      500 {object} api.ErrorResponse
// @Router       /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.GetAllUsers(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, users)
}

// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} user.User
// @Failure      404 {object} api.ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.service.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body user.UserRequest true "User payload"
// @Success      200 {object} user.User
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	var req UserRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary      Delete a user
// @Description  Rejected with 409 while the user still holds memberships.
// @Tags         users
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete user")
		return
	}

	logger.Info("user deleted", "user_id", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
	case errors.Is(err, ErrInvalidUser):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrEmailExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Email already exists"})
	case errors.Is(err, ErrUserHasMemberships):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Cannot delete user: remove their memberships first"})
	default:
		logger.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
