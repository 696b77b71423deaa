package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/devhire/project-marketplace-api/internal/errors"
	"github.com/devhire/project-marketplace-api/internal/services"
)

// StatsHandler exposes the read-only admin report.
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetAdminStats returns aggregate counts and sums over users, projects,
// tasks and the payment ledger.
func (h *StatsHandler) GetAdminStats(c *gin.Context) {
	stats, err := h.statsService.GetAdminStats()
	if err != nil {
		apierrors.InternalError(c, "Failed to compute statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}
