package model

import (
	"time"

	"github.com/google/uuid"
)

// Party roles accepted in ContractParty.Role.
const (
	PartyClient   = "client"
	PartySupplier = "supplier"
	PartyPartner  = "partner"
	PartyOther    = "other"
)

// ContractParty links a user to a contract. A user appears at most once per contract.
type ContractParty struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contract_party"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contract_party"`
	Role       string    `gorm:"type:varchar(20);not null"`
	IsPrimary  bool      `gorm:"not null"`
	Notes      *string   `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Contract *Contract `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
