package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrHistoryImmutable is returned by the GORM hooks below. Corrections are
// recorded as new entries, never by rewriting old ones.
var ErrHistoryImmutable = errors.New("contract history is append-only")

// FieldChange holds the canonical string form of one field before and after a
// mutation. nil means the field was empty.
type FieldChange struct {
	Old *string `json:"old"`
	New *string `json:"new"`
}

// FieldChanges maps a tracked field name to its change.
type FieldChanges map[string]FieldChange

// ContractHistory is one append-only audit entry for a contract.
// ChangedByID is nil for system-initiated changes.
type ContractHistory struct {
	ID                uuid.UUID                        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID        uuid.UUID                        `gorm:"type:uuid;not null;index"`
	ChangedByID       *uuid.UUID                       `gorm:"type:uuid;index"`
	ChangeDate        time.Time                        `gorm:"not null;index"`
	ChangeDescription string                           `gorm:"type:text;not null"`
	ChangedFields     datatypes.JSONType[FieldChanges] `gorm:"type:jsonb;not null"`

	Contract  *Contract `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	ChangedBy *User     `gorm:"foreignKey:ChangedByID;constraint:OnDelete:SET NULL"`
}

// TableName keeps the singular name used by reports and the DB trigger.
func (ContractHistory) TableName() string { return "contract_history" }

// Changes returns the decoded field map, never nil.
func (h *ContractHistory) Changes() FieldChanges {
	fc := h.ChangedFields.Data()
	if fc == nil {
		return FieldChanges{}
	}
	return fc
}

func (h *ContractHistory) BeforeUpdate(*gorm.DB) error { return ErrHistoryImmutable }

func (h *ContractHistory) BeforeDelete(*gorm.DB) error { return ErrHistoryImmutable }
