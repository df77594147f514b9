package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// DefaultCurrency applies when a contract is created without one.
const DefaultCurrency = "BRL"

var (
	fiscalRegistrationRe = regexp.MustCompile(`^\d{7}$`)
	currencyRe           = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ── Request → model ──────────────────────────────────────────────────────────

func contractFromCreate(req dto.CreateContractRequest, errs fieldErrors) *model.Contract {
	c := &model.Contract{
		Title:                       blankToNil(req.Title),
		Company:                     strings.TrimSpace(req.Company),
		FiscalName:                  strings.TrimSpace(req.FiscalName),
		FiscalRegistration:          strings.TrimSpace(req.FiscalRegistration),
		AlternateFiscalName:         blankToNil(req.AlternateFiscalName),
		AlternateFiscalRegistration: blankToNil(req.AlternateFiscalRegistration),
		ContractTerm:                strings.TrimSpace(req.ContractTerm),
		Notes:                       blankToNil(req.Notes),
		Value:                       req.Value,
		Currency:                    strings.ToUpper(strings.TrimSpace(req.Currency)),
		IsActive:                    true,
	}
	if c.ContractTerm == "" {
		c.ContractTerm = model.TermInitial
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if id, err := uuid.Parse(req.StatusID); err == nil {
		c.StatusID = id
	} else {
		errs.add("status_id", "must be a valid id")
	}
	c.ContractTypeID = parseOptionalID(req.ContractTypeID, "contract_type_id", errs)
	c.ResponsibleID = parseOptionalID(req.ResponsibleID, "responsible_id", errs)
	c.StartDate = parseDate(req.StartDate, "start_date", errs)
	c.EndDate = parseDate(req.EndDate, "end_date", errs)
	return c
}

// applyUpdate copies the non-nil fields of req onto c. An empty string clears
// an optional field.
func applyUpdate(c *model.Contract, req dto.UpdateContractRequest, errs fieldErrors) {
	if req.Title != nil {
		c.Title = blankToNil(req.Title)
	}
	if req.Company != nil {
		c.Company = strings.TrimSpace(*req.Company)
	}
	if req.FiscalName != nil {
		c.FiscalName = strings.TrimSpace(*req.FiscalName)
	}
	if req.FiscalRegistration != nil {
		c.FiscalRegistration = strings.TrimSpace(*req.FiscalRegistration)
	}
	if req.AlternateFiscalName != nil {
		c.AlternateFiscalName = blankToNil(req.AlternateFiscalName)
	}
	if req.AlternateFiscalRegistration != nil {
		c.AlternateFiscalRegistration = blankToNil(req.AlternateFiscalRegistration)
	}
	if req.ContractTerm != nil {
		c.ContractTerm = strings.TrimSpace(*req.ContractTerm)
	}
	if req.Notes != nil {
		c.Notes = blankToNil(req.Notes)
	}
	if req.StatusID != nil {
		if id, err := uuid.Parse(*req.StatusID); err == nil {
			c.StatusID = id
		} else {
			errs.add("status_id", "must be a valid id")
		}
	}
	if req.ContractTypeID != nil {
		c.ContractTypeID = parseOptionalID(req.ContractTypeID, "contract_type_id", errs)
	}
	if req.ResponsibleID != nil {
		c.ResponsibleID = parseOptionalID(req.ResponsibleID, "responsible_id", errs)
	}
	if req.StartDate != nil {
		c.StartDate = parseDate(*req.StartDate, "start_date", errs)
	}
	if req.EndDate != nil {
		c.EndDate = parseDate(*req.EndDate, "end_date", errs)
	}
	if req.Value != nil {
		c.Value = *req.Value
	}
	if req.Currency != nil {
		c.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

// ── Rules ────────────────────────────────────────────────────────────────────

// validateContract checks the field rules that do not need the database.
func validateContract(c *model.Contract, errs fieldErrors) {
	if c.Company == "" {
		errs.add("company", "is required")
	}
	if c.FiscalName == "" {
		errs.add("fiscal_name", "is required")
	}
	if !fiscalRegistrationRe.MatchString(c.FiscalRegistration) {
		errs.add("fiscal_registration", "must be exactly 7 digits")
	}
	if c.AlternateFiscalRegistration != nil && !fiscalRegistrationRe.MatchString(*c.AlternateFiscalRegistration) {
		errs.add("alternate_fiscal_registration", "must be exactly 7 digits")
	}
	if !validTerm(c.ContractTerm) {
		errs.add("contract_term", "is not a valid term")
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		errs.add("end_date", "must not be before start_date")
	}
	if c.Value.LessThan(decimal.Zero) {
		errs.add("value", "must not be negative")
	}
	if !currencyRe.MatchString(c.Currency) {
		errs.add("currency", "must be a 3-letter ISO code")
	}
}

// resolveReferences loads the status, type and responsible user so that the
// history snapshot records names, and reports references that do not exist.
func (s *contractService) resolveReferences(ctx context.Context, c *model.Contract, errs fieldErrors) error {
	c.Status, c.ContractType, c.Responsible = nil, nil, nil

	if c.StatusID != uuid.Nil {
		st, err := s.statuses.FindByID(ctx, c.StatusID)
		switch {
		case err == nil:
			c.Status = st
		case errors.Is(err, gorm.ErrRecordNotFound):
			errs.add("status_id", "does not exist")
		default:
			return err
		}
	}
	if c.ContractTypeID != nil {
		ct, err := s.types.FindByID(ctx, *c.ContractTypeID)
		switch {
		case err == nil:
			c.ContractType = ct
		case errors.Is(err, gorm.ErrRecordNotFound):
			errs.add("contract_type_id", "does not exist")
		default:
			return err
		}
	}
	if c.ResponsibleID != nil {
		u, err := s.users.FindByID(ctx, *c.ResponsibleID)
		switch {
		case err == nil:
			c.Responsible = u
		case errors.Is(err, gorm.ErrRecordNotFound):
			errs.add("responsible_id", "does not exist")
		default:
			return err
		}
	}
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func validTerm(t string) bool {
	for _, v := range model.ContractTerms {
		if v == t {
			return true
		}
	}
	return false
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func parseOptionalID(s *string, field string, errs fieldErrors) *uuid.UUID {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		errs.add(field, "must be a valid id")
		return nil
	}
	return &id
}

func parseDate(s, field string, errs fieldErrors) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		errs.add(field, "must be a date in YYYY-MM-DD format")
		return time.Time{}
	}
	return t
}
