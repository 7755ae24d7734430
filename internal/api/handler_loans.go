package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createLoanRequest struct {
	Supervisor string `json:"supervisor"`
	Location   string `json:"location"`
	MachineIDs string `json:"machine_ids"`
}

// CreateLoan handles POST /api/loans. machine_ids is a comma-separated
// list; IDs that cannot be loaned are reported back per item while the rest
// of the batch goes through.
func (h *Handler) CreateLoan(c *gin.Context) {
	var in createLoanRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.loans.Create(in.Supervisor, in.Location, in.MachineIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type processReturnRequest struct {
	MachineID  string `json:"machine_id"`
	Supervisor string `json:"supervisor"`
}

// ProcessReturn handles POST /api/returns.
func (h *Handler) ProcessReturn(c *gin.Context) {
	var in processReturnRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	loan, err := h.loans.ProcessReturn(in.MachineID, in.Supervisor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// ListActiveLoans handles GET /api/loans/active?supervisor=.
func (h *Handler) ListActiveLoans(c *gin.Context) {
	loans := h.loans.Active(c.Query("supervisor"))
	c.JSON(http.StatusOK, gin.H{"loans": loans})
}
