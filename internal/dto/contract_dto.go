package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateContractRequest creates a contract. ContractNumber is optional and
// only honored when it already has the CTR-YYYY-NNN shape.
type CreateContractRequest struct {
	ContractNumber              *string         `json:"contract_number"`
	Title                       *string         `json:"title"                         validate:"omitempty,max=200"`
	Company                     string          `json:"company"                       validate:"required,max=200"`
	FiscalName                  string          `json:"fiscal_name"                   validate:"required,max=100"`
	FiscalRegistration          string          `json:"fiscal_registration"           validate:"required"`
	AlternateFiscalName         *string         `json:"alternate_fiscal_name"         validate:"omitempty,max=100"`
	AlternateFiscalRegistration *string         `json:"alternate_fiscal_registration"`
	ContractTerm                string          `json:"contract_term"                 validate:"omitempty,oneof=initial term_1 term_2 term_3 term_4 term_5"`
	Notes                       *string         `json:"notes"`
	StatusID                    string          `json:"status_id"                     validate:"required,uuid"`
	ContractTypeID              *string         `json:"contract_type_id"              validate:"omitempty,uuid"`
	ResponsibleID               *string         `json:"responsible_id"                validate:"omitempty,uuid"`
	StartDate                   string          `json:"start_date"                    validate:"required,datetime=2006-01-02"`
	EndDate                     string          `json:"end_date"                      validate:"required,datetime=2006-01-02"`
	Value                       decimal.Decimal `json:"value"`
	Currency                    string          `json:"currency"                      validate:"omitempty,len=3"`
	IsActive                    *bool           `json:"is_active"`
}

// UpdateContractRequest is a partial update: nil fields are left untouched,
// an empty string clears an optional field. The contract number cannot change.
type UpdateContractRequest struct {
	Title                       *string          `json:"title"                         validate:"omitempty,max=200"`
	Company                     *string          `json:"company"                       validate:"omitempty,max=200"`
	FiscalName                  *string          `json:"fiscal_name"                   validate:"omitempty,max=100"`
	FiscalRegistration          *string          `json:"fiscal_registration"`
	AlternateFiscalName         *string          `json:"alternate_fiscal_name"         validate:"omitempty,max=100"`
	AlternateFiscalRegistration *string          `json:"alternate_fiscal_registration"`
	ContractTerm                *string          `json:"contract_term"                 validate:"omitempty,oneof=initial term_1 term_2 term_3 term_4 term_5"`
	Notes                       *string          `json:"notes"`
	StatusID                    *string          `json:"status_id"                     validate:"omitempty,uuid"`
	ContractTypeID              *string          `json:"contract_type_id"`
	ResponsibleID               *string          `json:"responsible_id"`
	StartDate                   *string          `json:"start_date"                    validate:"omitempty,datetime=2006-01-02"`
	EndDate                     *string          `json:"end_date"                      validate:"omitempty,datetime=2006-01-02"`
	Value                       *decimal.Decimal `json:"value"`
	Currency                    *string          `json:"currency"                      validate:"omitempty,len=3"`
	IsActive                    *bool            `json:"is_active"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ContractFilter struct {
	Search         string `form:"search"`
	ContractTerm   string `form:"contract_term"`
	StatusID       string `form:"status_id"`
	ContractTypeID string `form:"contract_type_id"`
	ResponsibleID  string `form:"responsible_id"`
	Active         string `form:"active"`     // true | false | "" (all)
	ExpiresIn      string `form:"expires_in"` // week | month | expired
	StartFrom      string `form:"start_from"`
	EndTo          string `form:"end_to"`
	OrderBy        string `form:"order_by"` // column, "-" prefix for descending
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// RefResponse is a compact view of a referenced row.
type RefResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

type ContractResponse struct {
	ID                          string          `json:"id"`
	ContractNumber              string          `json:"contract_number"`
	Title                       *string         `json:"title,omitempty"`
	Company                     string          `json:"company"`
	FiscalName                  string          `json:"fiscal_name"`
	FiscalRegistration          string          `json:"fiscal_registration"`
	AlternateFiscalName         *string         `json:"alternate_fiscal_name"`
	AlternateFiscalRegistration *string         `json:"alternate_fiscal_registration"`
	ContractTerm                string          `json:"contract_term"`
	Notes                       *string         `json:"notes"`
	Status                      *RefResponse    `json:"status"`
	ContractType                *RefResponse    `json:"contract_type"`
	Responsible                 *RefResponse    `json:"responsible"`
	StartDate                   string          `json:"start_date"`
	EndDate                     string          `json:"end_date"`
	Value                       decimal.Decimal `json:"value"`
	Currency                    string          `json:"currency"`
	IsActive                    bool            `json:"is_active"`
	IsExpired                   bool            `json:"is_expired"`
	DaysUntilExpiration         int             `json:"days_until_expiration"`
	Documents                   map[string]bool `json:"documents"`
	CreatedByID                 *string         `json:"created_by_id"`
	CreatedAt                   string          `json:"created_at"`
	UpdatedAt                   string          `json:"updated_at"`
}

type ContractListResponse struct {
	Data  []ContractResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// NumberAvailabilityResponse answers GET /v1/contracts/number-availability.
type NumberAvailabilityResponse struct {
	ContractNumber string `json:"contract_number"`
	ValidFormat    bool   `json:"valid_format"`
	Available      bool   `json:"available"`
}
