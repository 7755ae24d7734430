package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/apperr"
	"machine-loan-backend/internal/auth"
	"machine-loan-backend/internal/export"
	"machine-loan-backend/internal/service"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg         *config.Config
	inventory   *service.Inventory
	loans       *service.Loans
	supervisors *service.Supervisors
	reports     *service.Reports
	auth        *auth.Service
	exporter    *export.Exporter
	cache       *cache.Cache
	logger      *zap.Logger
}

// NewHandler creates the API handler set.
func NewHandler(
	cfg *config.Config,
	inventory *service.Inventory,
	loans *service.Loans,
	supervisors *service.Supervisors,
	reports *service.Reports,
	authSvc *auth.Service,
	exporter *export.Exporter,
	cacheStore *cache.Cache,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:         cfg,
		inventory:   inventory,
		loans:       loans,
		supervisors: supervisors,
		reports:     reports,
		auth:        authSvc,
		exporter:    exporter,
		cache:       cacheStore,
		logger:      logger,
	}
}

// fail maps a service error to the wire: validation failures are the
// caller's to fix, database errors and anything unexpected stay generic and
// get logged with the request ID.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case apperr.IsDatabase(err):
		h.logError(c, "database error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "database error"})
	default:
		h.logError(c, "unexpected error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) logError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg,
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err))
}
