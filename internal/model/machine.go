package model

import "time"

// TimeLayout is the timestamp format used in every table file.
const TimeLayout = "2006-01-02 15:04:05"

// MachineStatus enumerates the recognized states of a machine.
type MachineStatus string

const (
	StatusAvailable   MachineStatus = "Available"
	StatusLoaned      MachineStatus = "Loaned"
	StatusMaintenance MachineStatus = "Maintenance"
)

// ValidMachineStatus reports whether s is one of the recognized states.
func ValidMachineStatus(s MachineStatus) bool {
	switch s {
	case StatusAvailable, StatusLoaned, StatusMaintenance:
		return true
	}
	return false
}

// Machine is a trackable inventory asset with a unique ID.
type Machine struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Status      MachineStatus `json:"status"`
	Location    string        `json:"location"`
	LastUpdated time.Time     `json:"lastUpdated"`
	Category    string        `json:"category"`
	Notes       string        `json:"notes,omitempty"`
}
