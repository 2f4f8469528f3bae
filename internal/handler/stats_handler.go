package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/logger"
	"github.com/pthv11/-pension-fund/prometheus"
)

// StatsHandler serves the admin dashboard aggregates
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler creates the statistics handler
func NewStatsHandler(st *store.Store) *StatsHandler {
	return &StatsHandler{store: st}
}

// Stats returns point-in-time aggregate counts, recomputed on every call
func (h *StatsHandler) Stats(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	stats, err := h.store.GetAdminStats(c.Request().Context())
	if err != nil {
		logger.FromEcho(c).Error("Failed to compute admin stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, stats)
}
