package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pthv11/-pension-fund/internal/model"
	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/config"
	"github.com/pthv11/-pension-fund/pkg/logger"
	"github.com/pthv11/-pension-fund/prometheus"
)

// The contact form does not collect a birth date; an admin fills in the real
// one when processing the request.
const contactPlaceholderBirthDate = "1980-01-01"

// ContactHandler serves the public contact form. A valid submission creates
// a pending client record as a side effect.
type ContactHandler struct {
	store *store.Store
	admin config.AdminConfig
}

// NewContactHandler creates the contact form handler
func NewContactHandler(st *store.Store, admin config.AdminConfig) *ContactHandler {
	return &ContactHandler{store: st, admin: admin}
}

// ContactRequest is the public contact form payload
type ContactRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Message   string `json:"message" validate:"required"`
}

// Submit validates the form and creates a pending client attributed to the
// bootstrap admin account. Failure to create the client record is logged but
// does not fail the submission.
func (h *ContactHandler) Submit(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.ContactCounter.Inc()

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse contact request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	ctx := c.Request().Context()

	createdBy := h.resolveCreator(c)

	client := model.Client{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		BirthDate: contactPlaceholderBirthDate,
		Status:    model.ClientStatusPending,
		CreatedBy: createdBy,
		Message:   req.Message,
	}

	if err := h.store.CreateClient(ctx, &client); err != nil {
		log.Error("Failed to create client from contact form", zap.Error(err))
	} else {
		log.Info("Client created from contact form", zap.Uint("client_id", client.ID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "message sent successfully, your request has been accepted for processing",
	})
}

// resolveCreator looks up the configured admin account for attribution,
// falling back to the configured fallback user ID. When neither resolves the
// client is created unattributed rather than failing the submission.
func (h *ContactHandler) resolveCreator(c echo.Context) *uint {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	admin, err := h.store.GetUserByEmail(ctx, h.admin.Email)
	if err == nil && admin != nil {
		return &admin.ID
	}

	fallback, err := h.store.GetUserByID(ctx, h.admin.ContactFallbackUID)
	if err == nil && fallback != nil {
		return &fallback.ID
	}

	log.Warn("No attribution account found for contact form submission",
		zap.String("admin_email", h.admin.Email),
		zap.Uint("fallback_user_id", h.admin.ContactFallbackUID))
	return nil
}
