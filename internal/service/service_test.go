package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/model"
	"machine-loan-backend/internal/store"
)

// env wires the services against a real store in a temp directory, with a
// controllable clock shared by every service.
type env struct {
	store       *store.Store
	cfg         *config.Config
	inventory   *Inventory
	loans       *Loans
	supervisors *Supervisors
	reports     *Reports
	clock       time.Time
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	st, err := store.Open(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	e := &env{
		store: st,
		cfg:   config.Default(),
		clock: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return e.clock }

	e.inventory = NewInventory(st, e.cfg, nil, zap.NewNop())
	e.inventory.now = now
	e.loans = NewLoans(st, e.cfg, zap.NewNop())
	e.loans.now = now
	e.supervisors = NewSupervisors(st, zap.NewNop())
	e.supervisors.now = now
	e.reports = NewReports(st, e.cfg, e.loans)
	e.reports.now = now
	return e
}

func (e *env) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func (e *env) mustRegister(t *testing.T, id string) model.Machine {
	t.Helper()
	m, err := e.inventory.Register(MachineInput{
		ID: id, Name: "Machine " + id, Location: "Storage", Category: "Power tools",
	})
	require.NoError(t, err)
	return m
}

func (e *env) mustLoan(t *testing.T, supervisor, location, ids string) BatchResult {
	t.Helper()
	result, err := e.loans.Create(supervisor, location, ids)
	require.NoError(t, err)
	return result
}
