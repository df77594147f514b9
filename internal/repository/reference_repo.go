package repository

import (
	"context"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusRepository defines CRUD operations for ContractStatus.
type StatusRepository interface {
	Create(ctx context.Context, s *model.ContractStatus) error
	List(ctx context.Context, onlyActive bool) ([]model.ContractStatus, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ContractStatus, error)
	FindByName(ctx context.Context, name string) (*model.ContractStatus, error)
	Update(ctx context.Context, s *model.ContractStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	InUse(ctx context.Context, id uuid.UUID) (bool, error)
}

type statusRepo struct{ db *gorm.DB }

func NewStatusRepository(db *gorm.DB) StatusRepository { return &statusRepo{db: db} }

func (r *statusRepo) Create(ctx context.Context, s *model.ContractStatus) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *statusRepo) List(ctx context.Context, onlyActive bool) ([]model.ContractStatus, error) {
	var list []model.ContractStatus
	q := r.db.WithContext(ctx)
	if onlyActive {
		q = q.Where("active = true")
	}
	err := q.Order("sort_order asc, name asc").Find(&list).Error
	return list, err
}

func (r *statusRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ContractStatus, error) {
	var s model.ContractStatus
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *statusRepo) FindByName(ctx context.Context, name string) (*model.ContractStatus, error) {
	var s model.ContractStatus
	if err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *statusRepo) Update(ctx context.Context, s *model.ContractStatus) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *statusRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ContractStatus{}, "id = ?", id).Error
}

func (r *statusRepo) InUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Contract{}).Where("status_id = ?", id).Count(&count).Error
	return count > 0, err
}

// TypeRepository defines CRUD operations for ContractType.
type TypeRepository interface {
	Create(ctx context.Context, t *model.ContractType) error
	List(ctx context.Context, onlyActive bool) ([]model.ContractType, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ContractType, error)
	FindByName(ctx context.Context, name string) (*model.ContractType, error)
	Update(ctx context.Context, t *model.ContractType) error
	Delete(ctx context.Context, id uuid.UUID) error
	InUse(ctx context.Context, id uuid.UUID) (bool, error)
}

type typeRepo struct{ db *gorm.DB }

func NewTypeRepository(db *gorm.DB) TypeRepository { return &typeRepo{db: db} }

func (r *typeRepo) Create(ctx context.Context, t *model.ContractType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *typeRepo) List(ctx context.Context, onlyActive bool) ([]model.ContractType, error) {
	var list []model.ContractType
	q := r.db.WithContext(ctx)
	if onlyActive {
		q = q.Where("active = true")
	}
	err := q.Order("name asc").Find(&list).Error
	return list, err
}

func (r *typeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ContractType, error) {
	var t model.ContractType
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *typeRepo) FindByName(ctx context.Context, name string) (*model.ContractType, error) {
	var t model.ContractType
	if err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *typeRepo) Update(ctx context.Context, t *model.ContractType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *typeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ContractType{}, "id = ?", id).Error
}

func (r *typeRepo) InUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Contract{}).Where("contract_type_id = ?", id).Count(&count).Error
	return count > 0, err
}
