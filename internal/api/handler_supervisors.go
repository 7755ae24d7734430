package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"machine-loan-backend/internal/service"
)

// ListSupervisors handles GET /api/supervisors?department=.
func (h *Handler) ListSupervisors(c *gin.Context) {
	supervisors := h.supervisors.List(c.Query("department"))
	c.JSON(http.StatusOK, gin.H{"supervisors": supervisors})
}

// RegisterSupervisor handles POST /api/supervisors.
func (h *Handler) RegisterSupervisor(c *gin.Context) {
	var in service.SupervisorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sv, err := h.supervisors.Register(in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sv)
}

// SupervisorsWithActiveLoans handles GET /api/supervisors/active. It returns
// just the names, for populating the return form.
func (h *Handler) SupervisorsWithActiveLoans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"supervisors": h.supervisors.WithActiveLoans()})
}
