package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/apperr"
	"machine-loan-backend/internal/model"
	"machine-loan-backend/internal/store"
	"machine-loan-backend/internal/validate"
)

// Loans creates loans, reconciles returns, and derives overdue state.
type Loans struct {
	store  *store.Store
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
}

// NewLoans creates the loan service.
func NewLoans(st *store.Store, cfg *config.Config, logger *zap.Logger) *Loans {
	return &Loans{store: st, cfg: cfg, logger: logger, now: time.Now}
}

// SkippedID reports one machine ID that was left out of a loan batch.
type SkippedID struct {
	MachineID string `json:"machineId"`
	Reason    string `json:"reason"`
}

// BatchResult is the outcome of one Create call: partial success within the
// batch is expected and reported per ID.
type BatchResult struct {
	Created []model.Loan `json:"created"`
	Skipped []SkippedID  `json:"skipped,omitempty"`
}

// LoanView is a loan with its derived fields, for listings and reports.
type LoanView struct {
	model.Loan
	DaysOnLoan int  `json:"daysOnLoan"`
	Overdue    bool `json:"overdue"`
}

// Create loans the listed machines to one supervisor at one location.
// idList is comma separated; blanks are ignored, unknown or unavailable IDs
// are skipped with a per-ID warning. The whole operation fails before any
// write when the supervisor is at the loan cap, or when the batch itself
// would push them past it. All machine and loan changes persist as a single
// batch after the full list is processed.
func (s *Loans) Create(supervisor, location, idList string) (BatchResult, error) {
	supervisor = strings.TrimSpace(supervisor)
	location = strings.TrimSpace(location)

	ids := splitIDs(idList)
	if err := validate.Required(map[string]string{
		"supervisor":  supervisor,
		"location":    location,
		"machine_ids": strings.Join(ids, ","),
	}); err != nil {
		return BatchResult{}, err
	}

	limit := s.cfg.Loans.MaxPerSupervisor
	now := s.now()
	var result BatchResult

	err := s.store.Update(func(sn *store.Snapshot) (store.Table, error) {
		active := countActive(sn.Loans, supervisor)
		if active >= limit {
			return 0, apperr.NewValidation(
				"supervisor %q has reached the loan cap (%d)", supervisor, limit)
		}

		for _, id := range ids {
			idx := machineIndex(sn.Machines, id)
			if idx < 0 {
				result.Skipped = append(result.Skipped, SkippedID{
					MachineID: id, Reason: "not found in inventory",
				})
				continue
			}
			if sn.Machines[idx].Status != model.StatusAvailable {
				result.Skipped = append(result.Skipped, SkippedID{
					MachineID: id,
					Reason:    "not available (" + string(sn.Machines[idx].Status) + ")",
				})
				continue
			}
			if active+len(result.Created)+1 > limit {
				return 0, apperr.NewValidation(
					"loaning %d machines would push supervisor %q past the cap (%d)",
					len(result.Created)+1, supervisor, limit)
			}

			sn.Machines[idx].Status = model.StatusLoaned
			sn.Machines[idx].Location = location
			sn.Machines[idx].LastUpdated = now

			loan := model.Loan{
				MachineID:  id,
				Supervisor: supervisor,
				LoanDate:   now,
				Status:     model.LoanActive,
				Location:   location,
			}
			sn.Loans = append(sn.Loans, loan)
			result.Created = append(result.Created, loan)
		}

		if len(result.Created) == 0 {
			return 0, nil
		}
		return store.TableMachines | store.TableLoans, nil
	})
	if err != nil {
		return BatchResult{}, err
	}

	s.logger.Info("loan batch processed",
		zap.String("supervisor", supervisor),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// ProcessReturn reconciles a return: the machine goes back to Available at
// the default return location and the matching active loan is closed. A
// machine that is not on loan is a validation failure; a loaned machine with
// no matching loan row is an inconsistency and surfaces as a database error.
func (s *Loans) ProcessReturn(machineID, supervisor string) (model.Loan, error) {
	machineID = strings.TrimSpace(machineID)
	supervisor = strings.TrimSpace(supervisor)
	if err := validate.Required(map[string]string{
		"id": machineID, "supervisor": supervisor,
	}); err != nil {
		return model.Loan{}, err
	}

	now := s.now()
	var closed model.Loan

	err := s.store.Update(func(sn *store.Snapshot) (store.Table, error) {
		idx := machineIndex(sn.Machines, machineID)
		if idx < 0 {
			return 0, apperr.NewValidation("machine %q not found", machineID)
		}
		if sn.Machines[idx].Status != model.StatusLoaned {
			return 0, apperr.NewValidation("machine %q is not on loan", machineID)
		}

		loanIdx := -1
		for i, l := range sn.Loans {
			if l.MachineID == machineID && l.Supervisor == supervisor && l.Status == model.LoanActive {
				loanIdx = i
				break
			}
		}
		if loanIdx < 0 {
			return 0, apperr.NewDatabase("process return",
				apperr.NewValidation("no active loan for machine %q held by %q", machineID, supervisor))
		}

		sn.Machines[idx].Status = model.StatusAvailable
		sn.Machines[idx].Location = s.cfg.Loans.ReturnLocation
		sn.Machines[idx].LastUpdated = now

		sn.Loans[loanIdx].Status = model.LoanReturned
		sn.Loans[loanIdx].ReturnDate = now
		closed = sn.Loans[loanIdx]

		return store.TableMachines | store.TableLoans, nil
	})
	if err != nil {
		return model.Loan{}, err
	}

	s.logger.Info("return processed",
		zap.String("machine", machineID), zap.String("supervisor", supervisor))
	return closed, nil
}

// Active lists active loans with their derived fields, optionally narrowed
// to one supervisor (empty means all).
func (s *Loans) Active(supervisor string) []LoanView {
	now := s.now()
	threshold := s.cfg.Loans.AlertDays
	loans := s.store.Loans()
	out := make([]LoanView, 0, len(loans))
	for _, l := range loans {
		if l.Status != model.LoanActive {
			continue
		}
		if supervisor != "" && l.Supervisor != supervisor {
			continue
		}
		out = append(out, LoanView{
			Loan:       l,
			DaysOnLoan: l.DaysOnLoan(now),
			Overdue:    l.Overdue(now, threshold),
		})
	}
	return out
}

// Overdue lists active loans past the alert threshold.
func (s *Loans) Overdue() []LoanView {
	var out []LoanView
	for _, lv := range s.Active("") {
		if lv.Overdue {
			out = append(out, lv)
		}
	}
	return out
}

// All returns every loan row, active and historical, for exports.
func (s *Loans) All() []model.Loan {
	return s.store.Loans()
}

// StartedToday counts loans whose loan date falls on the current day.
func (s *Loans) StartedToday() int {
	today := s.now()
	y, m, d := today.Date()
	n := 0
	for _, l := range s.store.Loans() {
		if l.Status != model.LoanActive {
			continue
		}
		ly, lm, ld := l.LoanDate.Date()
		if ly == y && lm == m && ld == d {
			n++
		}
	}
	return n
}

func splitIDs(idList string) []string {
	var out []string
	for _, id := range strings.Split(idList, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func countActive(loans []model.Loan, supervisor string) int {
	n := 0
	for _, l := range loans {
		if l.Supervisor == supervisor && l.Status == model.LoanActive {
			n++
		}
	}
	return n
}
