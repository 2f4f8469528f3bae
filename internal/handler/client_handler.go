package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pthv11/-pension-fund/internal/middleware"
	"github.com/pthv11/-pension-fund/internal/model"
	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/logger"
	"github.com/pthv11/-pension-fund/prometheus"
)

// ClientHandler serves admin-only CRUD over client records
type ClientHandler struct {
	store *store.Store
}

// NewClientHandler creates the client record handler
func NewClientHandler(st *store.Store) *ClientHandler {
	return &ClientHandler{store: st}
}

// CreateClientRequest is the payload for direct client creation by an admin
type CreateClientRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"omitempty,oneof=active inactive pending"`
	Message   string `json:"message"`
}

// UpdateClientRequest is the partial update payload. Absent fields are left
// untouched; the registration date can never be updated.
type UpdateClientRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty"`
	LastName  *string `json:"lastName" validate:"omitempty"`
	Email     *string `json:"email" validate:"omitempty,email"`
	BirthDate *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Status    *string `json:"status" validate:"omitempty,oneof=active inactive pending"`
	Message   *string `json:"message"`
}

// List returns a page of clients with pagination metadata
func (h *ClientHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordClientOperation("list")

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
		Status:    c.QueryParam("status"),
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	clients, total, err := h.store.ListClients(c.Request().Context(), opts)
	if err != nil {
		log.Error("Failed to list clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"clients":    clients,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// Get returns a single client by ID
func (h *ClientHandler) Get(c echo.Context) error {
	prometheus.RecordClientOperation("get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid client ID"})
	}

	client, err := h.store.GetClientByID(c.Request().Context(), uint(id))
	if err != nil {
		logger.FromEcho(c).Error("Failed to get client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	if client == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "client not found"})
	}

	return c.JSON(http.StatusOK, client)
}

// Create inserts a new client record attributed to the acting admin
func (h *ClientHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordClientOperation("create")

	var req CreateClientRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse client creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	status := req.Status
	if status == "" {
		status = model.ClientStatusPending
	}

	var createdBy *uint
	if user := middleware.UserFromContext(c); user != nil {
		createdBy = &user.ID
	}

	client := model.Client{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		BirthDate: req.BirthDate,
		Status:    status,
		CreatedBy: createdBy,
		Message:   req.Message,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateClient(c.Request().Context(), &client); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "client with this email already exists"})
		}
		log.Error("Failed to create client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	log.Info("Client created", zap.Uint("client_id", client.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "client created successfully",
		"client":  client,
	})
}

// Update applies a partial update to a client record
func (h *ClientHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordClientOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid client ID"})
	}

	var req UpdateClientRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse client update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.BirthDate != nil {
		fields["birth_date"] = *req.BirthDate
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Message != nil {
		fields["message"] = *req.Message
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	client, err := h.store.UpdateClient(c.Request().Context(), uint(id), fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "client not found"})
		}
		if errors.Is(err, store.ErrDuplicateEmail) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "client with this email already exists"})
		}
		log.Error("Failed to update client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "client updated successfully",
		"client":  client,
	})
}

// Delete removes a client record
func (h *ClientHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordClientOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid client ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	removed, err := h.store.DeleteClient(c.Request().Context(), uint(id))
	if err != nil {
		log.Error("Failed to delete client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "client not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "client deleted successfully"})
}

// Clear removes every client record
func (h *ClientHandler) Clear(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordClientOperation("clear")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.ClearClients(c.Request().Context()); err != nil {
		log.Error("Failed to clear clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	log.Info("Clients table cleared")
	return c.JSON(http.StatusOK, echo.Map{"message": "clients table cleared successfully"})
}
