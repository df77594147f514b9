package repository

import (
	"context"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.ContractParty) error
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.ContractParty, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ContractParty, error)
	Update(ctx context.Context, p *model.ContractParty) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type partyRepo struct{ db *gorm.DB }

func NewPartyRepository(db *gorm.DB) PartyRepository { return &partyRepo{db: db} }

func (r *partyRepo) DB() *gorm.DB { return r.db }

func (r *partyRepo) Create(ctx context.Context, tx *gorm.DB, p *model.ContractParty) error {
	return conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *partyRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.ContractParty, error) {
	var list []model.ContractParty
	err := r.db.WithContext(ctx).Preload("User").
		Where("contract_id = ?", contractID).
		Order("is_primary DESC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *partyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ContractParty, error) {
	var p model.ContractParty
	if err := r.db.WithContext(ctx).Preload("User").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partyRepo) Update(ctx context.Context, p *model.ContractParty) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *partyRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return conn(r.db, tx).WithContext(ctx).Delete(&model.ContractParty{}, "id = ?", id).Error
}
