package infra

// pdf.go renders the printable contract sheet with go-pdf/fpdf: a header with
// the contract number, the parties block, term/dates/value, and the most
// recent history entries.

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/go-pdf/fpdf"
)

// sheetHistoryLimit caps how many history entries are printed.
const sheetHistoryLimit = 15

// ContractSheetPDF renders c and its history (newest first) to an A4 PDF.
func ContractSheetPDF(c *model.Contract, history []model.ContractHistory, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30
	labelW := contentW * 0.35

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(labelW, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW-labelW, 6, tr(value), "", "L", false)
	}
	section := func(title string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 7, tr(title), "B", 1, "L", false, 0, "")
		pdf.Ln(1)
	}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("Contract "+c.ContractNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Generated "+generatedAt.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")

	// ── Parties ──────────────────────────────────────────────────────────────
	section("Parties")
	row("Company", c.Company)
	row("Fiscal name", c.FiscalName)
	row("Fiscal registration", c.FiscalRegistration)
	if c.AlternateFiscalName != nil {
		row("Alternate fiscal name", *c.AlternateFiscalName)
	}
	if c.AlternateFiscalRegistration != nil {
		row("Alternate registration", *c.AlternateFiscalRegistration)
	}

	// ── Terms ────────────────────────────────────────────────────────────────
	section("Terms")
	row("Term", c.ContractTerm)
	if c.Status != nil {
		row("Status", c.Status.Name)
	}
	if c.ContractType != nil {
		row("Type", c.ContractType.Name)
	}
	if c.Responsible != nil {
		row("Responsible", c.Responsible.Name)
	}
	row("Period", fmt.Sprintf("%s to %s", c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02")))
	row("Value", fmt.Sprintf("%s %s", c.Currency, c.Value.StringFixed(2)))
	active := "yes"
	if !c.IsActive {
		active = "no"
	}
	row("Active", active)
	if c.Notes != nil && *c.Notes != "" {
		row("Notes", *c.Notes)
	}

	// ── History ──────────────────────────────────────────────────────────────
	section("History")
	entries := append([]model.ContractHistory(nil), history...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ChangeDate.After(entries[j].ChangeDate) })
	if len(entries) > sheetHistoryLimit {
		entries = entries[:sheetHistoryLimit]
	}
	if len(entries) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 6, "No recorded changes.", "", 1, "L", false, 0, "")
	}
	for _, h := range entries {
		who := "system"
		if h.ChangedBy != nil {
			who = h.ChangedBy.Username
		}
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("%s  %s  (%s)",
			h.ChangeDate.Format("2006-01-02 15:04"), h.ChangeDescription, who)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, name := range sortedKeys(h.Changes()) {
			fc := h.Changes()[name]
			pdf.CellFormat(contentW, 4, tr(fmt.Sprintf("    %s: %s -> %s", name, orDash(fc.Old), orDash(fc.New))), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render contract sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedKeys(m model.FieldChanges) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
