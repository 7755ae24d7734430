// Package service applies the domain operations to the record store. It is
// the only layer with invariant-preserving logic: every write path validates
// first and performs no write on validation failure.
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

// FilterAll is the sentinel meaning "no filter on this dimension".
const FilterAll = "all"

// QRDispatcher hands a machine ID to the QR generation pool. Generation is
// fire-and-forget: a failure is reported by the pool but never rolls back
// the registration that triggered it.
type QRDispatcher interface {
	Dispatch(machineID string)
}

// Inventory manages machine records and their status transitions.
type Inventory struct {
	store  *store.Store
	cfg    *config.Config
	qr     QRDispatcher
	logger *zap.Logger
	now    func() time.Time
}

// NewInventory creates the inventory service. qr may be nil when QR
// generation is disabled.
func NewInventory(st *store.Store, cfg *config.Config, qr QRDispatcher, logger *zap.Logger) *Inventory {
	return &Inventory{store: st, cfg: cfg, qr: qr, logger: logger, now: time.Now}
}

// MachineInput carries the operator-entered fields for a registration.
type MachineInput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Location string `json:"location"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

// Register validates and appends a new machine record, then dispatches its
// ID for QR generation.
func (s *Inventory) Register(in MachineInput) (model.Machine, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)

	if err := validate.Required(map[string]string{
		"id": in.ID, "name": in.Name, "location": in.Location,
	}); err != nil {
		return model.Machine{}, err
	}
	if err := validate.MachineID(in.ID); err != nil {
		return model.Machine{}, err
	}

	status := model.MachineStatus(in.Status)
	if in.Status == "" {
		status = model.StatusAvailable
	}
	if !model.ValidMachineStatus(status) {
		return model.Machine{}, apperr.NewValidation("unknown machine status %q", in.Status)
	}

	machine := model.Machine{
		ID:          in.ID,
		Name:        in.Name,
		Status:      status,
		Location:    in.Location,
		LastUpdated: s.now(),
		Category:    in.Category,
		Notes:       in.Notes,
	}

	err := s.store.Update(func(sn *store.Snapshot) (store.Table, error) {
		if err := validate.UniqueMachineID(in.ID, sn.Machines); err != nil {
			return 0, err
		}
		sn.Machines = append(sn.Machines, machine)
		return store.TableMachines, nil
	})
	if err != nil {
		return model.Machine{}, err
	}

	if s.qr != nil {
		s.qr.Dispatch(machine.ID)
	}
	s.logger.Info("machine registered",
		zap.String("id", machine.ID), zap.String("status", string(machine.Status)))
	return machine, nil
}

// editableFields maps the accepted field names for UpdateField.
var editableFields = map[string]bool{
	"name": true, "status": true, "location": true, "category": true, "notes": true,
}

// UpdateField edits a single machine field. Location changes propagate to
// the machine's active loan so Loan.Location stays in sync; Status edits go
// through transition validation so a direct edit can never fake a loan or
// silently diverge from the loans table. LastUpdated is always refreshed.
func (s *Inventory) UpdateField(id, field, value string) (model.Machine, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if !editableFields[field] {
		return model.Machine{}, apperr.NewValidation("field %q cannot be edited", field)
	}

	var updated model.Machine
	err := s.store.Update(func(sn *store.Snapshot) (store.Table, error) {
		idx := machineIndex(sn.Machines, id)
		if idx < 0 {
			return 0, apperr.NewValidation("machine %q not found", id)
		}
		m := &sn.Machines[idx]
		changed := store.TableMachines

		switch field {
		case "name":
			m.Name = value
		case "category":
			m.Category = value
		case "notes":
			m.Notes = value
		case "status":
			next := model.MachineStatus(value)
			if !model.ValidMachineStatus(next) {
				return 0, apperr.NewValidation("unknown machine status %q", value)
			}
			if err := checkStatusEdit(m.Status, next, sn.Loans, m.ID); err != nil {
				return 0, err
			}
			m.Status = next
		case "location":
			m.Location = value
			if syncActiveLoanLocation(sn.Loans, m.ID, value) {
				changed |= store.TableLoans
			}
		}

		m.LastUpdated = s.now()
		updated = *m
		return changed, nil
	})
	if err != nil {
		return model.Machine{}, err
	}
	return updated, nil
}

// checkStatusEdit enforces the manual transition rules: machines enter and
// leave Loaned only through the loan service.
func checkStatusEdit(current, next model.MachineStatus, loans []model.Loan, machineID string) error {
	if next == current {
		return nil
	}
	if next == model.StatusLoaned {
		return apperr.NewValidation("status %q can only be set by creating a loan", model.StatusLoaned)
	}
	if current == model.StatusLoaned && hasActiveLoan(loans, machineID) {
		return apperr.NewValidation("machine %q has an active loan; process the return first", machineID)
	}
	return nil
}

// Delete removes the machine and every loan row referencing it, active or
// historical. Irreversible.
func (s *Inventory) Delete(id string) error {
	err := s.store.Update(func(sn *store.Snapshot) (store.Table, error) {
		idx := machineIndex(sn.Machines, id)
		if idx < 0 {
			return 0, apperr.NewValidation("machine %q not found", id)
		}
		sn.Machines = append(sn.Machines[:idx], sn.Machines[idx+1:]...)

		kept := sn.Loans[:0]
		for _, l := range sn.Loans {
			if l.MachineID != id {
				kept = append(kept, l)
			}
		}
		sn.Loans = kept
		return store.TableMachines | store.TableLoans, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("machine deleted with its loan history", zap.String("id", id))
	return nil
}

// ListByFilter returns machines matching the category and status filters.
// An empty value or FilterAll skips that dimension.
func (s *Inventory) ListByFilter(category, status string) []model.Machine {
	machines := s.store.Machines()
	out := make([]model.Machine, 0, len(machines))
	for _, m := range machines {
		if !matchFilter(category, m.Category) {
			continue
		}
		if !matchFilter(status, string(m.Status)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Get returns one machine by ID.
func (s *Inventory) Get(id string) (model.Machine, error) {
	for _, m := range s.store.Machines() {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Machine{}, apperr.NewValidation("machine %q not found", id)
}

func matchFilter(filter, value string) bool {
	return filter == "" || strings.EqualFold(filter, FilterAll) || filter == value
}

func machineIndex(machines []model.Machine, id string) int {
	for i, m := range machines {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func hasActiveLoan(loans []model.Loan, machineID string) bool {
	for _, l := range loans {
		if l.MachineID == machineID && l.Status == model.LoanActive {
			return true
		}
	}
	return false
}

// syncActiveLoanLocation rewrites the location of any active loan for the
// machine and reports whether a row changed.
func syncActiveLoanLocation(loans []model.Loan, machineID, location string) bool {
	changed := false
	for i := range loans {
		if loans[i].MachineID == machineID && loans[i].Status == model.LoanActive {
			loans[i].Location = location
			changed = true
		}
	}
	return changed
}
