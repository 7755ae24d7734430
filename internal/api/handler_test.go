package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/auth"
	"machine-loan-backend/internal/export"
	"machine-loan-backend/internal/service"
	"machine-loan-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Storage.DataDir = t.TempDir()
	cfg.Export.OutputDir = t.TempDir()
	// Keep the limiter out of the way; it has its own tests.
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000

	st, err := store.Open(cfg.Storage.DataDir, zap.NewNop())
	require.NoError(t, err)

	authSvc := auth.New(st, cfg, zap.NewNop())
	require.NoError(t, authSvc.Bootstrap())

	inventory := service.NewInventory(st, cfg, nil, zap.NewNop())
	loans := service.NewLoans(st, cfg, zap.NewNop())
	supervisors := service.NewSupervisors(st, zap.NewNop())
	reports := service.NewReports(st, cfg, loans)
	exporter := export.New(cfg.Export, zap.NewNop())
	cacheStore := cache.New(time.Second, time.Minute)

	h := NewHandler(cfg, inventory, loans, supervisors, reports, authSvc, exporter, cacheStore, zap.NewNop())
	return NewRouter(h)
}

func doJSON(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/login", "",
		`{"username":"admin","password":"admin123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	assert.Equal(t, "admin", resp["username"])
	return resp["token"]
}

func TestHealthz_Unauthenticated(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/machines", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/machines", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/login", "",
		`{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/api/login", "", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoanWorkflow(t *testing.T) {
	router := setupTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodPost, "/api/machines", token,
		`{"id":"DRL-001","name":"Drill","location":"Storage","category":"Power tools"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPost, "/api/supervisors", token,
		`{"name":"Ana","email":"ana@example.com","department":"Assembly"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPost, "/api/loans", token,
		`{"supervisor":"Ana","location":"Floor 1","machine_ids":"DRL-001"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var batch struct {
		Created []json.RawMessage `json:"created"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.Len(t, batch.Created, 1)

	w = doJSON(router, http.MethodGet, "/api/loans/active?supervisor=Ana", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "DRL-001")

	w = doJSON(router, http.MethodGet, "/api/supervisors/active", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ana")

	w = doJSON(router, http.MethodPost, "/api/returns", token,
		`{"machine_id":"DRL-001","supervisor":"Ana"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Returned")

	w = doJSON(router, http.MethodGet, "/api/dashboard", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "statusCounts")
}

func TestRegisterMachine_Validation(t *testing.T) {
	router := setupTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodPost, "/api/machines", token, `{"id":"ab"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(router, http.MethodPost, "/api/machines", token, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMachineField_Errors(t *testing.T) {
	router := setupTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodPatch, "/api/machines/NOPE9", token,
		`{"field":"name","value":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/machines/NOPE9", token, `{"value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "field is required")
}

func TestRecentActivity_LimitValidation(t *testing.T) {
	router := setupTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodGet, "/api/reports/activity?limit=0", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/reports/activity?limit=5", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExportMachines(t *testing.T) {
	router := setupTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodGet, "/api/export/machines", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inventory_")
	assert.NotZero(t, w.Body.Len())
}
