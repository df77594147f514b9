package model

import (
	"time"

	"github.com/google/uuid"
)

// ContractReminder is a dated follow-up task attached to a contract.
// CompletedDate is set when IsCompleted flips to true and cleared when reopened.
type ContractReminder struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"type:varchar(200);not null"`
	Description   *string   `gorm:"type:text"`
	DueDate       time.Time `gorm:"type:date;not null;index"`
	IsCompleted   bool      `gorm:"not null"`
	CompletedDate *time.Time
	AssignedToID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedByID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Contract   *Contract `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	AssignedTo *User     `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL"`
	CreatedBy  *User     `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
}

// IsOverdue reports a pending reminder whose due date is before the day of now.
func (r *ContractReminder) IsOverdue(now time.Time) bool {
	return !r.IsCompleted && r.DueDate.Before(truncateDay(now))
}
