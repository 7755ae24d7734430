package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/service"
	"machine-loan-backend/internal/store"
)

func newTestRefresher(t *testing.T) (*Refresher, *cache.Cache) {
	t.Helper()
	st, err := store.Open(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	cfg := config.Default()
	loans := service.NewLoans(st, cfg, zap.NewNop())
	reports := service.NewReports(st, cfg, loans)
	cacheStore := cache.New(cache.NoExpiration, 0)
	return New(cfg, reports, cacheStore, zap.NewNop()), cacheStore
}

func TestRefreshOnce_PublishesDashboard(t *testing.T) {
	r, cacheStore := newTestRefresher(t)

	r.refreshOnce()

	hit, found := cacheStore.Get(DashboardKey)
	require.True(t, found)
	dashboard, ok := hit.(service.Dashboard)
	require.True(t, ok)
	assert.False(t, dashboard.GeneratedAt.IsZero())
}

func TestRun_Disabled(t *testing.T) {
	r, cacheStore := newTestRefresher(t)
	r.cfg.Refresh.Enabled = false

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run must return immediately when refresh is disabled")
	}
	_, found := cacheStore.Get(DashboardKey)
	assert.False(t, found)
}

func TestRun_RefreshesImmediatelyAndStopsOnCancel(t *testing.T) {
	r, cacheStore := newTestRefresher(t)
	r.cfg.Refresh.Enabled = true
	r.cfg.Refresh.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, found := cacheStore.Get(DashboardKey)
		return found
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run must stop when the context is cancelled")
	}
}
