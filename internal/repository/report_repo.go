package repository

import (
	"context"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CountRow is one bucket of a GROUP BY count.
type CountRow struct {
	Key   string
	Count int64
}

// ValueRow is one bucket of a GROUP BY sum.
type ValueRow struct {
	Key   string
	Count int64
	Total decimal.Decimal
}

// ReportRepository runs the aggregate queries behind the dashboard and reports.
// Dates are compared at day granularity.
type ReportRepository interface {
	CountAll(ctx context.Context) (int64, error)
	CountRunning(ctx context.Context, today time.Time) (int64, error)
	CountEndingBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountExpired(ctx context.Context, today time.Time) (int64, error)
	EndingBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Contract, error)
	Expired(ctx context.Context, today time.Time, limit int) ([]model.Contract, error)
	CountByStatus(ctx context.Context) ([]CountRow, error)
	CountByType(ctx context.Context) ([]CountRow, error)
	EndingByMonth(ctx context.Context, from, to time.Time) ([]CountRow, error)
	TotalValue(ctx context.Context) (decimal.Decimal, error)
	ValueByType(ctx context.Context) ([]ValueRow, error)
	ValueByYear(ctx context.Context) ([]ValueRow, error)
	TopByValue(ctx context.Context, limit int) ([]model.Contract, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

const dayLayout = "2006-01-02"

func (r *reportRepo) contracts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Contract{})
}

func (r *reportRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.contracts(ctx).Count(&n).Error
	return n, err
}

func (r *reportRepo) CountRunning(ctx context.Context, today time.Time) (int64, error) {
	var n int64
	day := today.Format(dayLayout)
	err := r.contracts(ctx).
		Where("is_active = true AND start_date <= ? AND end_date >= ?", day, day).
		Count(&n).Error
	return n, err
}

func (r *reportRepo) CountEndingBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.contracts(ctx).
		Where("is_active = true AND end_date BETWEEN ? AND ?", from.Format(dayLayout), to.Format(dayLayout)).
		Count(&n).Error
	return n, err
}

func (r *reportRepo) CountExpired(ctx context.Context, today time.Time) (int64, error) {
	var n int64
	err := r.contracts(ctx).
		Where("is_active = true AND end_date < ?", today.Format(dayLayout)).
		Count(&n).Error
	return n, err
}

func (r *reportRepo) EndingBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Contract, error) {
	var list []model.Contract
	q := r.db.WithContext(ctx).
		Where("is_active = true AND end_date BETWEEN ? AND ?", from.Format(dayLayout), to.Format(dayLayout)).
		Order("end_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *reportRepo) Expired(ctx context.Context, today time.Time, limit int) ([]model.Contract, error) {
	var list []model.Contract
	q := r.db.WithContext(ctx).
		Where("is_active = true AND end_date < ?", today.Format(dayLayout)).
		Order("end_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *reportRepo) CountByStatus(ctx context.Context) ([]CountRow, error) {
	var rows []CountRow
	err := r.db.WithContext(ctx).
		Table("contracts c").
		Select("s.name AS key, COUNT(*) AS count").
		Joins("JOIN contract_statuses s ON s.id = c.status_id").
		Group("s.name, s.sort_order").
		Order("s.sort_order ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) CountByType(ctx context.Context) ([]CountRow, error) {
	var rows []CountRow
	err := r.db.WithContext(ctx).
		Table("contracts c").
		Select("COALESCE(t.name, 'Unclassified') AS key, COUNT(*) AS count").
		Joins("LEFT JOIN contract_types t ON t.id = c.contract_type_id").
		Group("COALESCE(t.name, 'Unclassified')").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) EndingByMonth(ctx context.Context, from, to time.Time) ([]CountRow, error) {
	var rows []CountRow
	err := r.contracts(ctx).
		Select("to_char(end_date, 'YYYY-MM') AS key, COUNT(*) AS count").
		Where("is_active = true AND end_date BETWEEN ? AND ?", from.Format(dayLayout), to.Format(dayLayout)).
		Group("to_char(end_date, 'YYYY-MM')").
		Order("key ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TotalValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.contracts(ctx).Select("COALESCE(SUM(value), 0)").Scan(&total).Error
	return total, err
}

func (r *reportRepo) ValueByType(ctx context.Context) ([]ValueRow, error) {
	var rows []ValueRow
	err := r.db.WithContext(ctx).
		Table("contracts c").
		Select("COALESCE(t.name, 'Unclassified') AS key, COUNT(*) AS count, COALESCE(SUM(c.value), 0) AS total").
		Joins("LEFT JOIN contract_types t ON t.id = c.contract_type_id").
		Group("COALESCE(t.name, 'Unclassified')").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) ValueByYear(ctx context.Context) ([]ValueRow, error) {
	var rows []ValueRow
	err := r.contracts(ctx).
		Select("to_char(start_date, 'YYYY') AS key, COUNT(*) AS count, COALESCE(SUM(value), 0) AS total").
		Group("to_char(start_date, 'YYYY')").
		Order("key DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TopByValue(ctx context.Context, limit int) ([]model.Contract, error) {
	var list []model.Contract
	err := r.db.WithContext(ctx).Order("value DESC").Limit(limit).Find(&list).Error
	return list, err
}
