// Package export writes table snapshots as timestamped XLSX workbooks.
// Exports read a snapshot and never mutate domain state.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/model"
)

const fileStamp = "20060102_150405"

// Exporter writes workbooks under the configured output directory.
type Exporter struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// New creates the exporter.
func New(cfg config.ExportConfig, logger *zap.Logger) *Exporter {
	return &Exporter{dir: cfg.OutputDir, logger: logger, now: time.Now}
}

var machineHeaders = []any{"ID", "Name", "Status", "Location", "LastUpdated", "Category", "Notes"}

// Machines writes the inventory workbook with a statistics sheet and
// returns the file path.
func (e *Exporter) Machines(machines []model.Machine) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inventory"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &machineHeaders)
	boldHeader(f, sheet, "A1", "G1")

	for i, m := range machines {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			m.ID, m.Name, string(m.Status), m.Location,
			stamp(m.LastUpdated), m.Category, m.Notes,
		}
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "A", "B", 20)
	f.SetColWidth(sheet, "E", "E", 22)

	counts := map[model.MachineStatus]int{}
	for _, m := range machines {
		counts[m.Status]++
	}
	if _, err := f.NewSheet("Statistics"); err != nil {
		return "", err
	}
	f.SetCellValue("Statistics", "A1", "Inventory statistics")
	f.SetCellValue("Statistics", "A2", fmt.Sprintf("Total machines: %d", len(machines)))
	f.SetCellValue("Statistics", "A3", fmt.Sprintf("Available: %d", counts[model.StatusAvailable]))
	f.SetCellValue("Statistics", "A4", fmt.Sprintf("Loaned: %d", counts[model.StatusLoaned]))
	f.SetCellValue("Statistics", "A5", fmt.Sprintf("Maintenance: %d", counts[model.StatusMaintenance]))

	return e.save(f, "inventory")
}

var loanHeaders = []any{"MachineID", "Supervisor", "LoanDate", "ReturnDate", "Status", "Location", "Notes"}

// Loans writes the loans workbook with a per-supervisor analysis sheet.
func (e *Exporter) Loans(loans []model.Loan) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Loans"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &loanHeaders)
	boldHeader(f, sheet, "A1", "G1")

	for i, l := range loans {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			l.MachineID, l.Supervisor, stamp(l.LoanDate),
			stamp(l.ReturnDate), string(l.Status), l.Location, l.Notes,
		}
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "A", "B", 20)
	f.SetColWidth(sheet, "C", "D", 22)

	perSupervisor := map[string]int{}
	for _, l := range loans {
		if l.Status == model.LoanActive {
			perSupervisor[l.Supervisor]++
		}
	}
	names := make([]string, 0, len(perSupervisor))
	for name := range perSupervisor {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := f.NewSheet("Analysis"); err != nil {
		return "", err
	}
	analysisHeader := []any{"Supervisor", "ActiveLoans"}
	f.SetSheetRow("Analysis", "A1", &analysisHeader)
	boldHeader(f, "Analysis", "A1", "B1")
	for i, name := range names {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{name, perSupervisor[name]}
		f.SetSheetRow("Analysis", cell, &row)
	}

	return e.save(f, "loans")
}

var supervisorHeaders = []any{"Name", "Phone", "Email", "Department", "RegisteredAt", "Status", "Notes"}

// Supervisors writes the supervisor list workbook.
func (e *Exporter) Supervisors(supervisors []model.Supervisor) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Supervisors"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &supervisorHeaders)
	boldHeader(f, sheet, "A1", "G1")

	for i, sv := range supervisors {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			sv.Name, sv.Phone, sv.Email, sv.Department,
			stamp(sv.RegisteredAt), sv.Status, sv.Notes,
		}
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "A", "D", 20)

	return e.save(f, "supervisors")
}

func (e *Exporter) save(f *excelize.File, kind string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s.xlsx", kind, e.now().Format(fileStamp))
	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	e.logger.Info("export written", zap.String("file", path))
	return path, nil
}

func boldHeader(f *excelize.File, sheet, from, to string) {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return
	}
	f.SetCellStyle(sheet, from, to, style)
}

func stamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(model.TimeLayout)
}
