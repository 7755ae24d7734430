package service

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"machine-loan-backend/internal/apperr"
	"machine-loan-backend/internal/model"
	"machine-loan-backend/internal/store"
	"machine-loan-backend/internal/validate"
)

// Supervisors registers supervisors and derives their loan load.
type Supervisors struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewSupervisors creates the supervisor service.
func NewSupervisors(st *store.Store, logger *zap.Logger) *Supervisors {
	return &Supervisors{store: st, logger: logger, now: time.Now}
}

// SupervisorInput carries the registration form fields.
type SupervisorInput struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Notes      string `json:"notes"`
}

// SupervisorView is a supervisor with their current active-loan count.
type SupervisorView struct {
	model.Supervisor
	ActiveLoans int `json:"activeLoans"`
}

// Register validates and appends a supervisor record. Name must be unique
// and non-empty; email is optional but must be well formed when present.
func (s *Supervisors) Register(in SupervisorInput) (model.Supervisor, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := validate.Required(map[string]string{"name": in.Name}); err != nil {
		return model.Supervisor{}, err
	}
	if err := validate.Email(in.Email); err != nil {
		return model.Supervisor{}, err
	}

	sv := model.Supervisor{
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		Department:   in.Department,
		RegisteredAt: s.now(),
		Status:       model.SupervisorActive,
		Notes:        in.Notes,
	}

	err := s.store.Update(func(sn *store.Snapshot) (store.Table, error) {
		for _, existing := range sn.Supervisors {
			if existing.Name == in.Name {
				return 0, apperr.NewValidation("supervisor %q is already registered", in.Name)
			}
		}
		sn.Supervisors = append(sn.Supervisors, sv)
		return store.TableSupervisors, nil
	})
	if err != nil {
		return model.Supervisor{}, err
	}

	s.logger.Info("supervisor registered", zap.String("name", sv.Name))
	return sv, nil
}

// ActiveLoanCount counts loans with Status=Loaned held by name.
func (s *Supervisors) ActiveLoanCount(name string) int {
	return countActive(s.store.Loans(), name)
}

// WithActiveLoans returns the distinct supervisors holding at least one
// active loan, sorted by name. Scopes the return workflow's choices.
func (s *Supervisors) WithActiveLoans() []string {
	seen := make(map[string]bool)
	for _, l := range s.store.Loans() {
		if l.Status == model.LoanActive {
			seen[l.Supervisor] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns every supervisor row, for exports.
func (s *Supervisors) All() []model.Supervisor {
	return s.store.Supervisors()
}

// List returns supervisors with their active-loan counts, optionally
// filtered by department (empty or "all" means every department).
func (s *Supervisors) List(department string) []SupervisorView {
	loans := s.store.Loans()
	supervisors := s.store.Supervisors()
	out := make([]SupervisorView, 0, len(supervisors))
	for _, sv := range supervisors {
		if !matchFilter(department, sv.Department) {
			continue
		}
		out = append(out, SupervisorView{
			Supervisor:  sv,
			ActiveLoans: countActive(loans, sv.Name),
		})
	}
	return out
}
