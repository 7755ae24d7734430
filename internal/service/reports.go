package service

import (
	"sort"
	"time"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/model"
	"machine-loan-backend/internal/store"
)

// Reports derives the dashboard aggregates. All queries are read-only.
type Reports struct {
	store *store.Store
	cfg   *config.Config
	loans *Loans
	now   func() time.Time
}

// NewReports creates the reporting service.
func NewReports(st *store.Store, cfg *config.Config, loans *Loans) *Reports {
	return &Reports{store: st, cfg: cfg, loans: loans, now: time.Now}
}

// Dashboard is the aggregate payload the dashboard refreshes against.
type Dashboard struct {
	StatusCounts       map[model.MachineStatus]int `json:"statusCounts"`
	LoansPerSupervisor map[string]int              `json:"loansPerSupervisor"`
	RecentActivity     []model.Activity            `json:"recentActivity"`
	Overdue            []LoanView                  `json:"overdue"`
	ActiveLoans        int                         `json:"activeLoans"`
	LoansToday         int                         `json:"loansToday"`
	GeneratedAt        time.Time                   `json:"generatedAt"`
}

// StatusCounts counts machines per status. Statuses with no rows report
// zero rather than being absent.
func (s *Reports) StatusCounts() map[model.MachineStatus]int {
	counts := map[model.MachineStatus]int{
		model.StatusAvailable:   0,
		model.StatusLoaned:      0,
		model.StatusMaintenance: 0,
	}
	for _, m := range s.store.Machines() {
		counts[m.Status]++
	}
	return counts
}

// LoansPerSupervisor counts active loans grouped by supervisor, for
// charting and cap enforcement.
func (s *Reports) LoansPerSupervisor() map[string]int {
	counts := make(map[string]int)
	for _, l := range s.store.Loans() {
		if l.Status == model.LoanActive {
			counts[l.Supervisor]++
		}
	}
	return counts
}

// RecentActivity merges machine last-update events, loan-start events and
// loan-return events into one feed, newest first, truncated to limit. Rows
// without a date are dropped; ties keep encounter order (machine updates,
// then loan starts, then loan returns).
func (s *Reports) RecentActivity(limit int) []model.Activity {
	sn := s.store.View()

	var feed []model.Activity
	for _, m := range sn.Machines {
		feed = append(feed, model.Activity{
			Date: m.LastUpdated, MachineID: m.ID, Action: string(m.Status),
		})
	}
	for _, l := range sn.Loans {
		feed = append(feed, model.Activity{
			Date: l.LoanDate, MachineID: l.MachineID, Action: string(l.Status),
		})
	}
	for _, l := range sn.Loans {
		feed = append(feed, model.Activity{
			Date: l.ReturnDate, MachineID: l.MachineID, Action: string(l.Status),
		})
	}

	dated := feed[:0]
	for _, a := range feed {
		if !a.Date.IsZero() {
			dated = append(dated, a)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.After(dated[j].Date)
	})

	if limit > 0 && len(dated) > limit {
		dated = dated[:limit]
	}
	return dated
}

// BuildDashboard assembles the full dashboard payload.
func (s *Reports) BuildDashboard() Dashboard {
	active := s.loans.Active("")
	return Dashboard{
		StatusCounts:       s.StatusCounts(),
		LoansPerSupervisor: s.LoansPerSupervisor(),
		RecentActivity:     s.RecentActivity(10),
		Overdue:            s.loans.Overdue(),
		ActiveLoans:        len(active),
		LoansToday:         s.loans.StartedToday(),
		GeneratedAt:        s.now(),
	}
}
