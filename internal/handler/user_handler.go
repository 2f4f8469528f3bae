package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pthv11/-pension-fund/internal/middleware"
	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/logger"
	"github.com/pthv11/-pension-fund/prometheus"
)

// UserHandler serves admin-only user management. Account creation happens
// through the public registration path, not here.
type UserHandler struct {
	store *store.Store
}

// NewUserHandler creates the user management handler
func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// UpdateUserRequest is the partial update payload. The admin flag can only
// be changed here, by another admin.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName" validate:"omitempty"`
	LastName  *string `json:"lastName" validate:"omitempty"`
	IsAdmin   *bool   `json:"isAdmin"`
}

// List returns a page of users with pagination metadata
func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordUserOperation("list")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	opts := store.ListOptions{
		Search:    c.QueryParam("search"),
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	users, total, err := h.store.ListUsers(c.Request().Context(), opts)
	if err != nil {
		log.Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":      users,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// Get returns a single user by ID
func (h *UserHandler) Get(c echo.Context) error {
	prometheus.RecordUserOperation("get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user ID"})
	}

	user, err := h.store.GetUserByID(c.Request().Context(), uint(id))
	if err != nil {
		logger.FromEcho(c).Error("Failed to get user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	if user == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}

// Update applies a partial update to a user
func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordUserOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user ID"})
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	fields := map[string]interface{}{}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.IsAdmin != nil {
		fields["is_admin"] = *req.IsAdmin
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	user, err := h.store.UpdateUser(c.Request().Context(), uint(id), fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		if errors.Is(err, store.ErrDuplicateEmail) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "user with this email already exists"})
		}
		log.Error("Failed to update user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "user updated successfully",
		"user":    user,
	})
}

// Delete removes a user. Deleting the account whose token authorizes the
// request is forbidden.
func (h *UserHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordUserOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user ID"})
	}

	current := middleware.UserFromContext(c)
	if current != nil && current.ID == uint(id) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "cannot delete your own account"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	removed, err := h.store.DeleteUser(c.Request().Context(), uint(id))
	if err != nil {
		log.Error("Failed to delete user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted successfully"})
}
