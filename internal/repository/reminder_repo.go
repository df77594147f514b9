package repository

import (
	"context"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReminderRepository interface {
	Create(ctx context.Context, r *model.ContractReminder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ContractReminder, error)
	List(ctx context.Context, filter dto.ReminderFilter, today time.Time) ([]model.ContractReminder, int64, error)
	// PendingDueBetween returns open reminders due in [from, to], with the
	// contract and assignee loaded.
	PendingDueBetween(ctx context.Context, from, to time.Time, limit int) ([]model.ContractReminder, error)
	Update(ctx context.Context, r *model.ContractReminder) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type reminderRepo struct{ db *gorm.DB }

func NewReminderRepository(db *gorm.DB) ReminderRepository { return &reminderRepo{db: db} }

func (r *reminderRepo) Create(ctx context.Context, rem *model.ContractReminder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rem).Error
}

func (r *reminderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ContractReminder, error) {
	var rem model.ContractReminder
	err := r.db.WithContext(ctx).Preload("Contract").Preload("AssignedTo").First(&rem, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *reminderRepo) List(ctx context.Context, filter dto.ReminderFilter, today time.Time) ([]model.ContractReminder, int64, error) {
	var list []model.ContractReminder
	var total int64
	limit, offset := paginate(filter.Page, filter.Limit, 20, 100)
	day := today.Format("2006-01-02")

	q := r.db.WithContext(ctx).Model(&model.ContractReminder{})
	if id, err := uuid.Parse(filter.ContractID); err == nil {
		q = q.Where("contract_id = ?", id)
	}
	if id, err := uuid.Parse(filter.AssignedTo); err == nil {
		q = q.Where("assigned_to_id = ?", id)
	}
	switch filter.State {
	case "pending":
		q = q.Where("is_completed = false")
	case "completed":
		q = q.Where("is_completed = true")
	case "overdue":
		q = q.Where("is_completed = false AND due_date < ?", day)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Contract").Preload("AssignedTo").
		Order("due_date ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *reminderRepo) PendingDueBetween(ctx context.Context, from, to time.Time, limit int) ([]model.ContractReminder, error) {
	var list []model.ContractReminder
	err := r.db.WithContext(ctx).
		Preload("Contract").Preload("AssignedTo").
		Where("is_completed = false AND due_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("due_date ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *reminderRepo) Update(ctx context.Context, rem *model.ContractReminder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rem).Error
}

func (r *reminderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ContractReminder{}, "id = ?", id).Error
}
