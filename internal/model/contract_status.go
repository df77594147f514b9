package model

import (
	"time"

	"github.com/google/uuid"
)

// ContractStatus is the lookup table behind Contract.StatusID.
// Rows referenced by a contract cannot be deleted (FK RESTRICT).
type ContractStatus struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Description *string
	Active      bool   `gorm:"not null"`
	Color       string `gorm:"type:varchar(7);not null;default:'#007bff'"`
	SortOrder   int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContractType classifies contracts (service, supply, lease...).
type ContractType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description *string
	Active      bool `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
