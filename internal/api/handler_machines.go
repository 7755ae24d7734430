package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"machine-loan-backend/internal/service"
)

// ListMachines handles GET /api/machines?category=&status=. Empty or "all"
// skips a filter dimension.
func (h *Handler) ListMachines(c *gin.Context) {
	machines := h.inventory.ListByFilter(c.Query("category"), c.Query("status"))
	c.JSON(http.StatusOK, gin.H{"machines": machines})
}

// RegisterMachine handles POST /api/machines.
func (h *Handler) RegisterMachine(c *gin.Context) {
	var in service.MachineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	machine, err := h.inventory.Register(in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

type updateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// UpdateMachineField handles PATCH /api/machines/:id.
func (h *Handler) UpdateMachineField(c *gin.Context) {
	var in updateFieldRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	machine, err := h.inventory.UpdateField(c.Param("id"), in.Field, in.Value)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// DeleteMachine handles DELETE /api/machines/:id. The machine's loan
// history goes with it; there is no soft delete.
func (h *Handler) DeleteMachine(c *gin.Context) {
	if err := h.inventory.Delete(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
