package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"machine-loan-backend/internal/refresh"
	"machine-loan-backend/internal/service"
)

const defaultActivityLimit = 10

// GetDashboard handles GET /api/dashboard. It serves the snapshot published
// by the background refresher when one exists and rebuilds on demand
// otherwise, so the endpoint works with refresh disabled too.
func (h *Handler) GetDashboard(c *gin.Context) {
	if cached, ok := h.cache.Get(refresh.DashboardKey); ok {
		if dashboard, ok := cached.(service.Dashboard); ok {
			c.JSON(http.StatusOK, dashboard)
			return
		}
	}
	c.JSON(http.StatusOK, h.reports.BuildDashboard())
}

// RecentActivity handles GET /api/reports/activity?limit=.
func (h *Handler) RecentActivity(c *gin.Context) {
	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, gin.H{"activity": h.reports.RecentActivity(limit)})
}
