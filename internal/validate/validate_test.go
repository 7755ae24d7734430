package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machine-loan-backend/internal/apperr"
	"machine-loan-backend/internal/model"
)

func TestMachineID(t *testing.T) {
	testCases := []struct {
		name string
		id   string
		ok   bool
	}{
		{"minimum length", "ABC12", true},
		{"with hyphens", "DRL-2025-01", true},
		{"digits only", "12345", true},
		{"one short of minimum", "ABC1", false},
		{"lowercase rejected", "abc12", false},
		{"spaces rejected", "AB C12", false},
		{"underscore rejected", "ABC_12", false},
		{"empty", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := MachineID(tc.id)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.IsValidation(err), "want validation error, got %v", err)
			}
		})
	}
}

func TestUniqueMachineID(t *testing.T) {
	machines := []model.Machine{{ID: "DRL-001"}, {ID: "SAW-002"}}

	assert.NoError(t, UniqueMachineID("GRN-003", machines))
	assert.True(t, apperr.IsValidation(UniqueMachineID("DRL-001", machines)))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email(""), "email is optional")
	assert.NoError(t, Email("ana@example.com"))
	assert.True(t, apperr.IsValidation(Email("not-an-email")))
	assert.True(t, apperr.IsValidation(Email("@example.com")))
}

func TestRequired_ReportsAllMissingFields(t *testing.T) {
	err := Required(map[string]string{
		"id":       "",
		"name":     "Drill",
		"location": "",
	})
	require.Error(t, err)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"id", "location"}, verr.Fields)
}

func TestRequired_AllPresent(t *testing.T) {
	assert.NoError(t, Required(map[string]string{"id": "DRL-001", "name": "Drill"}))
}
