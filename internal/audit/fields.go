// Package audit computes field-level diffs of contracts and appends them to
// the contract history.
package audit

import (
	"strconv"
	"strings"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
)

// Snapshot maps each tracked field to its canonical string value, nil when empty.
type Snapshot map[string]*string

// TrackedField pairs a history key with an accessor returning its canonical value.
type TrackedField struct {
	Name  string
	Value func(c *model.Contract) *string
}

// ContractFields is the fixed set of audited contract fields, in report order.
// Document keys, timestamps and the contract number are not diffed.
var ContractFields = []TrackedField{
	{"company", func(c *model.Contract) *string { return text(c.Company) }},
	{"title", func(c *model.Contract) *string { return optText(c.Title) }},
	{"fiscal_name", func(c *model.Contract) *string { return text(c.FiscalName) }},
	{"fiscal_registration", func(c *model.Contract) *string { return text(c.FiscalRegistration) }},
	{"alternate_fiscal_name", func(c *model.Contract) *string { return optText(c.AlternateFiscalName) }},
	{"alternate_fiscal_registration", func(c *model.Contract) *string { return optText(c.AlternateFiscalRegistration) }},
	{"contract_term", func(c *model.Contract) *string { return text(c.ContractTerm) }},
	{"notes", func(c *model.Contract) *string { return optText(c.Notes) }},
	{"start_date", func(c *model.Contract) *string { return date(c.StartDate) }},
	{"end_date", func(c *model.Contract) *string { return date(c.EndDate) }},
	{"value", func(c *model.Contract) *string { v := c.Value.StringFixed(2); return &v }},
	{"currency", func(c *model.Contract) *string { return text(c.Currency) }},
	{"status", statusRef},
	{"contract_type", typeRef},
	{"responsible", responsibleRef},
	{"is_active", func(c *model.Contract) *string { v := strconv.FormatBool(c.IsActive); return &v }},
}

// Capture takes a snapshot of c's tracked fields.
func Capture(c *model.Contract) Snapshot {
	s := make(Snapshot, len(ContractFields))
	for _, f := range ContractFields {
		s[f.Name] = f.Value(c)
	}
	return s
}

// EmptySnapshot is the "before" state of a contract being created.
func EmptySnapshot() Snapshot {
	s := make(Snapshot, len(ContractFields))
	for _, f := range ContractFields {
		s[f.Name] = nil
	}
	return s
}

// ── Normalization ────────────────────────────────────────────────────────────

func text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optText(s *string) *string {
	if s == nil {
		return nil
	}
	return text(*s)
}

func date(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	v := t.Format("2006-01-02")
	return &v
}

// References render as the referenced row's name when the association is
// loaded for the same ID, else as the raw ID.
func ref(id uuid.UUID, name string, loaded bool) *string {
	if id == uuid.Nil {
		return nil
	}
	if loaded && name != "" {
		return &name
	}
	v := id.String()
	return &v
}

func statusRef(c *model.Contract) *string {
	return ref(c.StatusID, nameOf(c.Status), c.Status != nil && c.Status.ID == c.StatusID)
}

func typeRef(c *model.Contract) *string {
	if c.ContractTypeID == nil {
		return nil
	}
	loaded := c.ContractType != nil && c.ContractType.ID == *c.ContractTypeID
	name := ""
	if loaded {
		name = c.ContractType.Name
	}
	return ref(*c.ContractTypeID, name, loaded)
}

func responsibleRef(c *model.Contract) *string {
	if c.ResponsibleID == nil {
		return nil
	}
	loaded := c.Responsible != nil && c.Responsible.ID == *c.ResponsibleID
	name := ""
	if loaded {
		name = c.Responsible.Username
	}
	return ref(*c.ResponsibleID, name, loaded)
}

func nameOf(s *model.ContractStatus) string {
	if s == nil {
		return ""
	}
	return s.Name
}
