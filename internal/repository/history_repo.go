package repository

import (
	"context"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryQuery narrows a history listing. Zero values are ignored.
type HistoryQuery struct {
	ContractID *uuid.UUID
	UserID     *uuid.UUID
	From       *time.Time
	To         *time.Time // exclusive
	Page       int
	Limit      int
}

// HistoryRepository is append-only: there is no Update or Delete.
type HistoryRepository interface {
	Append(ctx context.Context, tx *gorm.DB, h *model.ContractHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ContractHistory, error)
	List(ctx context.Context, q HistoryQuery) ([]model.ContractHistory, int64, error)
	Recent(ctx context.Context, limit int) ([]model.ContractHistory, error)
}

type historyRepo struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) HistoryRepository { return &historyRepo{db: db} }

func (r *historyRepo) Append(ctx context.Context, tx *gorm.DB, h *model.ContractHistory) error {
	return conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(h).Error
}

func (r *historyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ContractHistory, error) {
	var h model.ContractHistory
	err := r.db.WithContext(ctx).Preload("Contract").Preload("ChangedBy").First(&h, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// List returns entries newest-first (append-only table, so this reflects
// natural insert order).
func (r *historyRepo) List(ctx context.Context, hq HistoryQuery) ([]model.ContractHistory, int64, error) {
	limit, offset := paginate(hq.Page, hq.Limit, 50, 200)

	q := r.db.WithContext(ctx).Model(&model.ContractHistory{})
	if hq.ContractID != nil {
		q = q.Where("contract_id = ?", *hq.ContractID)
	}
	if hq.UserID != nil {
		q = q.Where("changed_by_id = ?", *hq.UserID)
	}
	if hq.From != nil {
		q = q.Where("change_date >= ?", *hq.From)
	}
	if hq.To != nil {
		q = q.Where("change_date < ?", *hq.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.ContractHistory
	err := q.Preload("Contract").Preload("ChangedBy").
		Order("change_date DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *historyRepo) Recent(ctx context.Context, limit int) ([]model.ContractHistory, error) {
	var rows []model.ContractHistory
	err := r.db.WithContext(ctx).Preload("Contract").Preload("ChangedBy").
		Order("change_date DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
