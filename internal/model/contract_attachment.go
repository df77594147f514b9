package model

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentExtensions are the lower-case file extensions accepted for upload.
var AttachmentExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true,
	"xls": true, "xlsx": true,
	"jpg": true, "jpeg": true, "png": true,
}

// ContractAttachment is a file stored in the object store under ObjectKey.
type ContractAttachment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ObjectKey    string    `gorm:"not null;uniqueIndex"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Description  *string   `gorm:"type:text"`
	UploadedByID *uuid.UUID `gorm:"type:uuid"`
	UploadedAt   time.Time  `gorm:"not null"`
	FileSize     int64      `gorm:"not null"`
	FileType     string     `gorm:"type:varchar(10);not null"`
	IsPublic     bool       `gorm:"not null"`

	Contract   *Contract `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	UploadedBy *User     `gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL"`
}
