package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"machine-loan-backend/internal/mw"
)

// NewRouter creates and configures the Gin router. Everything under /api
// except login requires a session token; GET endpoints sit behind the
// response cache so the periodic dashboard polling stays cheap.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestID())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	cacheTTL := time.Duration(h.cfg.Server.CacheTTLSeconds) * time.Second
	caching := mw.Cache(h.cache, cacheTTL)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(h.cfg.Server))

	api.POST("/login", h.Login)

	authed := api.Group("")
	authed.Use(mw.Auth(h.auth))
	{
		authed.GET("/dashboard", h.GetDashboard)

		authed.GET("/machines", caching, h.ListMachines)
		authed.POST("/machines", h.RegisterMachine)
		authed.PATCH("/machines/:id", h.UpdateMachineField)
		authed.DELETE("/machines/:id", h.DeleteMachine)

		authed.GET("/loans/active", h.ListActiveLoans)
		authed.POST("/loans", h.CreateLoan)
		authed.POST("/returns", h.ProcessReturn)

		authed.GET("/supervisors", caching, h.ListSupervisors)
		authed.POST("/supervisors", h.RegisterSupervisor)
		authed.GET("/supervisors/active", h.SupervisorsWithActiveLoans)

		authed.GET("/reports/activity", caching, h.RecentActivity)

		authed.GET("/export/machines", h.ExportMachines)
		authed.GET("/export/loans", h.ExportLoans)
		authed.GET("/export/supervisors", h.ExportSupervisors)
	}

	return r
}
