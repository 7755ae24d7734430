// Package validate holds the input rules shared by the services. Rules fail
// with apperr.ValidationError and never touch stored state.
package validate

import (
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"

	"machine-loan-backend/internal/apperr"
	"machine-loan-backend/internal/model"
)

// Machine IDs: uppercase letters, digits and hyphens, at least 5 characters.
var machineIDPattern = regexp.MustCompile(`^[A-Z0-9-]{5,}$`)

var v = validator.New()

// MachineID checks the ID format.
func MachineID(id string) error {
	if !machineIDPattern.MatchString(id) {
		return apperr.NewValidation(
			"invalid machine ID %q: use uppercase letters, digits and hyphens, minimum 5 characters", id)
	}
	return nil
}

// UniqueMachineID checks that id is not already present.
func UniqueMachineID(id string, machines []model.Machine) error {
	for _, m := range machines {
		if m.ID == id {
			return apperr.NewValidation("machine ID %q is already registered", id)
		}
	}
	return nil
}

// Email accepts an empty value; a non-empty one must look like
// local@domain.tld.
func Email(s string) error {
	if err := v.Var(s, "omitempty,email"); err != nil {
		return apperr.NewValidation("invalid email %q", s)
	}
	return nil
}

// Required collects every field whose value is empty and reports them all in
// one error, so the operator sees the full list at once.
func Required(fields map[string]string) error {
	var missing []string
	for _, name := range requiredOrder(fields) {
		if fields[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperr.NewMissingFields(missing...)
	}
	return nil
}

// requiredOrder keeps the reported field order deterministic.
func requiredOrder(fields map[string]string) []string {
	order := []string{"id", "name", "status", "location", "category", "supervisor", "machine_ids", "department"}
	var out []string
	for _, name := range order {
		if _, ok := fields[name]; ok {
			out = append(out, name)
		}
	}
	var rest []string
	for name := range fields {
		if !contains(out, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
