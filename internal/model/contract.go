package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract terms, from the original signature to the fifth amendment.
const (
	TermInitial = "initial"
	Term1       = "term_1"
	Term2       = "term_2"
	Term3       = "term_3"
	Term4       = "term_4"
	Term5       = "term_5"
)

// ContractTerms lists every accepted value of Contract.ContractTerm.
var ContractTerms = []string{TermInitial, Term1, Term2, Term3, Term4, Term5}

// Contract is the audited entity. ContractNumber is assigned once on creation
// and never rewritten; every other business field change is diffed into
// ContractHistory.
type Contract struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractNumber string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	// Title is a legacy display field kept for old rows; Company replaced it.
	Title                       *string `gorm:"type:varchar(200)"`
	Company                     string  `gorm:"type:varchar(200);not null"`
	FiscalName                  string  `gorm:"type:varchar(100);not null"`
	FiscalRegistration          string  `gorm:"type:varchar(7);not null"`
	AlternateFiscalName         *string `gorm:"type:varchar(100)"`
	AlternateFiscalRegistration *string `gorm:"type:varchar(7)"`
	ContractTerm                string  `gorm:"type:varchar(10);not null"`

	// Object storage keys of the scanned documents.
	ContractDocument *string
	FiscalPortaria   *string
	AdditiveTerm     *string
	Document         *string

	Notes          *string         `gorm:"type:text"`
	StatusID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ContractTypeID *uuid.UUID      `gorm:"type:uuid;index"`
	ResponsibleID  *uuid.UUID      `gorm:"type:uuid;index"`
	StartDate      time.Time       `gorm:"type:date;not null"`
	EndDate        time.Time       `gorm:"type:date;not null;index"`
	Value          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	IsActive       bool            `gorm:"not null;index"`
	CreatedByID    *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Status       *ContractStatus `gorm:"foreignKey:StatusID;constraint:OnDelete:RESTRICT"`
	ContractType *ContractType   `gorm:"foreignKey:ContractTypeID;constraint:OnDelete:SET NULL"`
	Responsible  *User           `gorm:"foreignKey:ResponsibleID;constraint:OnDelete:SET NULL"`
	CreatedBy    *User           `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
}

// IsExpired reports whether the contract ended before the day of now.
func (c *Contract) IsExpired(now time.Time) bool {
	return c.EndDate.Before(truncateDay(now))
}

// DaysUntilExpiration counts whole days from the day of now to EndDate.
// Negative once the contract has expired.
func (c *Contract) DaysUntilExpiration(now time.Time) int {
	d := truncateDay(c.EndDate).Sub(truncateDay(now))
	return int(math.Round(d.Hours() / 24))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
