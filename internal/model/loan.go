package model

import "time"

// LoanStatus enumerates the lifecycle states of a loan record.
type LoanStatus string

const (
	LoanActive   LoanStatus = "Loaned"
	LoanReturned LoanStatus = "Returned"
)

// Loan records one machine being held by one supervisor for a time span.
// ReturnDate stays zero until the machine comes back.
type Loan struct {
	MachineID  string     `json:"machineId"`
	Supervisor string     `json:"supervisor"`
	LoanDate   time.Time  `json:"loanDate"`
	ReturnDate time.Time  `json:"returnDate,omitzero"`
	Status     LoanStatus `json:"status"`
	Location   string     `json:"location"`
	Notes      string     `json:"notes,omitempty"`
}

// DaysOnLoan returns the whole number of days between the loan date and now.
func (l Loan) DaysOnLoan(now time.Time) int {
	if l.LoanDate.IsZero() || now.Before(l.LoanDate) {
		return 0
	}
	return int(now.Sub(l.LoanDate).Hours() / 24)
}

// Overdue reports whether the loan has been open longer than thresholdDays.
func (l Loan) Overdue(now time.Time, thresholdDays int) bool {
	return l.Status == LoanActive && l.DaysOnLoan(now) > thresholdDays
}
