package model

import "time"

// Activity is one row of the dashboard activity feed: a machine update, a
// loan start, or a loan return reduced to a common shape.
type Activity struct {
	Date      time.Time `json:"date"`
	MachineID string    `json:"machineId"`
	Action    string    `json:"action"`
}
