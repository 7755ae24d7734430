// Package refresh recomputes the dashboard aggregates on a fixed interval so
// the dashboard endpoint can serve a precomputed snapshot instead of scanning
// the tables on every poll.
package refresh

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/service"
)

// DashboardKey is the cache key the refresher publishes the latest dashboard
// snapshot under.
const DashboardKey = "dashboard"

// Refresher periodically rebuilds the dashboard into the shared cache.
type Refresher struct {
	cfg     *config.Config
	reports *service.Reports
	cache   *cache.Cache
	logger  *zap.Logger
}

// New creates the refresher.
func New(cfg *config.Config, reports *service.Reports, cacheStore *cache.Cache, logger *zap.Logger) *Refresher {
	return &Refresher{cfg: cfg, reports: reports, cache: cacheStore, logger: logger}
}

// Run refreshes once immediately and then on every interval tick until the
// context is cancelled. It returns without starting when refresh is disabled.
func (r *Refresher) Run(ctx context.Context) {
	if !r.cfg.Refresh.Enabled {
		r.logger.Info("dashboard refresh disabled")
		return
	}
	r.logger.Info("dashboard refresh started",
		zap.Duration("interval", r.cfg.Refresh.Interval))

	r.refreshOnce()

	timer := time.NewTimer(r.cfg.Refresh.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("dashboard refresh stopped")
			return
		case <-timer.C:
			r.refreshOnce()
			timer.Reset(r.cfg.Refresh.Interval)
		}
	}
}

func (r *Refresher) refreshOnce() {
	dashboard := r.reports.BuildDashboard()
	r.cache.Set(DashboardKey, dashboard, cache.NoExpiration)
}
