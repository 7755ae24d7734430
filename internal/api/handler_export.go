package api

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// ExportMachines handles GET /api/export/machines and streams the workbook
// back as a download.
func (h *Handler) ExportMachines(c *gin.Context) {
	path, err := h.exporter.Machines(h.inventory.ListByFilter("", ""))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// ExportLoans handles GET /api/export/loans.
func (h *Handler) ExportLoans(c *gin.Context) {
	path, err := h.exporter.Loans(h.loans.All())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// ExportSupervisors handles GET /api/export/supervisors.
func (h *Handler) ExportSupervisors(c *gin.Context) {
	path, err := h.exporter.Supervisors(h.supervisors.All())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
