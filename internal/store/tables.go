package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"machine-loan-backend/internal/apperr"
	"machine-loan-backend/internal/model"
)

var allTables = []Table{TableMachines, TableLoans, TableSupervisors, TableAccounts}

var fileNames = map[Table]string{
	TableMachines:    "machines.csv",
	TableLoans:       "loans.csv",
	TableSupervisors: "supervisors.csv",
	TableAccounts:    "accounts.csv",
}

var headers = map[Table][]string{
	TableMachines:    {"ID", "Name", "Status", "Location", "LastUpdated", "Category", "Notes"},
	TableLoans:       {"MachineID", "Supervisor", "LoanDate", "ReturnDate", "Status", "Location", "Notes"},
	TableSupervisors: {"Name", "Phone", "Email", "Department", "RegisteredAt", "Status", "Notes"},
	TableAccounts:    {"username", "password_hash", "role", "last_access"},
}

// encodeTable writes the header row and every record of table t to w.
func encodeTable(w io.Writer, t Table, sn Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers[t]); err != nil {
		return err
	}

	var rows [][]string
	switch t {
	case TableMachines:
		for _, m := range sn.Machines {
			rows = append(rows, []string{
				m.ID, m.Name, string(m.Status), m.Location,
				formatTime(m.LastUpdated), m.Category, m.Notes,
			})
		}
	case TableLoans:
		for _, l := range sn.Loans {
			rows = append(rows, []string{
				l.MachineID, l.Supervisor, formatTime(l.LoanDate),
				formatTime(l.ReturnDate), string(l.Status), l.Location, l.Notes,
			})
		}
	case TableSupervisors:
		for _, sv := range sn.Supervisors {
			rows = append(rows, []string{
				sv.Name, sv.Phone, sv.Email, sv.Department,
				formatTime(sv.RegisteredAt), sv.Status, sv.Notes,
			})
		}
	case TableAccounts:
		for _, a := range sn.Accounts {
			rows = append(rows, []string{
				a.Username, a.PasswordHash, a.Role, formatTime(a.LastAccess),
			})
		}
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readTable loads one table file into sn, verifying the header row.
func readTable(path string, t Table, sn *Snapshot) error {
	f, err := os.Open(path)
	if err != nil {
		return apperr.NewDatabase("open table "+fileNames[t], err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(headers[t])

	rows, err := cr.ReadAll()
	if err != nil {
		return apperr.NewDatabase("read table "+fileNames[t], err)
	}
	if len(rows) == 0 {
		return apperr.NewDatabase("read table "+fileNames[t], fmt.Errorf("missing header row"))
	}
	for i, col := range headers[t] {
		if rows[0][i] != col {
			return apperr.NewDatabase("read table "+fileNames[t],
				fmt.Errorf("unexpected header %q, want %q", rows[0][i], col))
		}
	}

	for _, row := range rows[1:] {
		switch t {
		case TableMachines:
			sn.Machines = append(sn.Machines, model.Machine{
				ID:          row[0],
				Name:        row[1],
				Status:      model.MachineStatus(row[2]),
				Location:    row[3],
				LastUpdated: parseTime(row[4]),
				Category:    row[5],
				Notes:       row[6],
			})
		case TableLoans:
			sn.Loans = append(sn.Loans, model.Loan{
				MachineID:  row[0],
				Supervisor: row[1],
				LoanDate:   parseTime(row[2]),
				ReturnDate: parseTime(row[3]),
				Status:     model.LoanStatus(row[4]),
				Location:   row[5],
				Notes:      row[6],
			})
		case TableSupervisors:
			sn.Supervisors = append(sn.Supervisors, model.Supervisor{
				Name:         row[0],
				Phone:        row[1],
				Email:        row[2],
				Department:   row[3],
				RegisteredAt: parseTime(row[4]),
				Status:       row[5],
				Notes:        row[6],
			})
		case TableAccounts:
			sn.Accounts = append(sn.Accounts, model.Account{
				Username:     row[0],
				PasswordHash: row[1],
				Role:         row[2],
				LastAccess:   parseTime(row[3]),
			})
		}
	}
	return nil
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(model.TimeLayout)
}

// parseTime reads a stored timestamp; an empty or unparseable cell comes
// back as the zero time, matching "unset" semantics for ReturnDate.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(model.TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
