package model

import "time"

// Supervisor is a person authorized to hold loaned machines. Records are
// read-only after registration except for Status.
type Supervisor struct {
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Department   string    `json:"department"`
	RegisteredAt time.Time `json:"registeredAt"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
}

// SupervisorActive is the status assigned at registration.
const SupervisorActive = "Active"
