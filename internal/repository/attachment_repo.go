package repository

import (
	"context"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttachmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, a *model.ContractAttachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ContractAttachment, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.ContractAttachment, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type attachmentRepo struct{ db *gorm.DB }

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository { return &attachmentRepo{db: db} }

func (r *attachmentRepo) DB() *gorm.DB { return r.db }

func (r *attachmentRepo) Create(ctx context.Context, tx *gorm.DB, a *model.ContractAttachment) error {
	return conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

func (r *attachmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ContractAttachment, error) {
	var a model.ContractAttachment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attachmentRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.ContractAttachment, error) {
	var list []model.ContractAttachment
	err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).Order("uploaded_at DESC").Find(&list).Error
	return list, err
}

func (r *attachmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return conn(r.db, tx).WithContext(ctx).Delete(&model.ContractAttachment{}, "id = ?", id).Error
}
