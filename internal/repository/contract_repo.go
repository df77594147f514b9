package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRepository interface {
	// InsertIfUnique inserts c and classifies the outcome. A conflict on
	// contract_number is reported as InsertConflict with a nil error.
	InsertIfUnique(ctx context.Context, tx *gorm.DB, c *model.Contract) (InsertOutcome, error)
	Update(ctx context.Context, tx *gorm.DB, c *model.Contract) error
	UpdateDocument(ctx context.Context, tx *gorm.DB, id uuid.UUID, column string, key *string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	// NumbersWithPrefix returns every stored contract number starting with prefix.
	NumbersWithPrefix(ctx context.Context, tx *gorm.DB, prefix string) ([]string, error)
	NumberTaken(ctx context.Context, number string, exclude *uuid.UUID) (bool, error)
	List(ctx context.Context, filter dto.ContractFilter, today time.Time) ([]model.Contract, int64, error)
	ListAll(ctx context.Context, filter dto.ContractFilter, today time.Time) ([]model.Contract, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type contractRepo struct{ db *gorm.DB }

func NewContractRepository(db *gorm.DB) ContractRepository { return &contractRepo{db: db} }

func (r *contractRepo) DB() *gorm.DB { return r.db }

func (r *contractRepo) InsertIfUnique(ctx context.Context, tx *gorm.DB, c *model.Contract) (InsertOutcome, error) {
	err := conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(c).Error
	switch {
	case err == nil:
		return InsertOK, nil
	case IsUniqueViolation(err, "contract_number"):
		return InsertConflict, nil
	default:
		return InsertFatal, err
	}
}

func (r *contractRepo) Update(ctx context.Context, tx *gorm.DB, c *model.Contract) error {
	// contract_number is assigned once on insert
	return conn(r.db, tx).WithContext(ctx).
		Omit(clause.Associations, "contract_number", "created_by_id", "created_at").
		Save(c).Error
}

func (r *contractRepo) UpdateDocument(ctx context.Context, tx *gorm.DB, id uuid.UUID, column string, key *string) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&model.Contract{}).Where("id = ?", id).
		Updates(map[string]interface{}{column: key, "updated_at": time.Now()}).Error
}

func (r *contractRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	err := r.db.WithContext(ctx).
		Preload("Status").Preload("ContractType").Preload("Responsible").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contractRepo) NumbersWithPrefix(ctx context.Context, tx *gorm.DB, prefix string) ([]string, error) {
	var numbers []string
	err := conn(r.db, tx).WithContext(ctx).
		Model(&model.Contract{}).
		Where("contract_number LIKE ?", prefix+"%").
		Pluck("contract_number", &numbers).Error
	return numbers, err
}

func (r *contractRepo) NumberTaken(ctx context.Context, number string, exclude *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Contract{}).Where("contract_number = ?", number)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *contractRepo) List(ctx context.Context, filter dto.ContractFilter, today time.Time) ([]model.Contract, int64, error) {
	var contracts []model.Contract
	var total int64
	limit, offset := paginate(filter.Page, filter.Limit, 20, 100)

	q := applyContractFilter(r.db.WithContext(ctx).Model(&model.Contract{}), filter, today)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Status").Preload("ContractType").Preload("Responsible").
		Order(contractOrder(filter.OrderBy)).
		Offset(offset).Limit(limit).
		Find(&contracts).Error
	return contracts, total, err
}

func (r *contractRepo) ListAll(ctx context.Context, filter dto.ContractFilter, today time.Time) ([]model.Contract, error) {
	var contracts []model.Contract
	err := applyContractFilter(r.db.WithContext(ctx).Model(&model.Contract{}), filter, today).
		Preload("Status").Preload("ContractType").Preload("Responsible").
		Order("end_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Contract{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── Filtering ────────────────────────────────────────────────────────────────

func applyContractFilter(q *gorm.DB, f dto.ContractFilter, today time.Time) *gorm.DB {
	day := today.Format("2006-01-02")

	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("(contract_number ILIKE ? OR company ILIKE ? OR fiscal_name ILIKE ? OR notes ILIKE ?)",
			like, like, like, like)
	}
	if f.ContractTerm != "" {
		q = q.Where("contract_term = ?", f.ContractTerm)
	}
	if id, err := uuid.Parse(f.StatusID); err == nil {
		q = q.Where("status_id = ?", id)
	}
	if id, err := uuid.Parse(f.ContractTypeID); err == nil {
		q = q.Where("contract_type_id = ?", id)
	}
	if id, err := uuid.Parse(f.ResponsibleID); err == nil {
		q = q.Where("responsible_id = ?", id)
	}
	switch f.Active {
	case "true":
		q = q.Where("is_active = true")
	case "false":
		q = q.Where("is_active = false")
	}
	switch f.ExpiresIn {
	case "week":
		q = q.Where("end_date BETWEEN ? AND ?", day, today.AddDate(0, 0, 7).Format("2006-01-02"))
	case "month":
		q = q.Where("end_date BETWEEN ? AND ?", day, today.AddDate(0, 0, 30).Format("2006-01-02"))
	case "expired":
		q = q.Where("end_date < ?", day)
	}
	if f.StartFrom != "" {
		q = q.Where("start_date >= ?", f.StartFrom)
	}
	if f.EndTo != "" {
		q = q.Where("end_date <= ?", f.EndTo)
	}
	return q
}

var contractOrderColumns = map[string]string{
	"company":    "company",
	"start_date": "start_date",
	"end_date":   "end_date",
	"value":      "value",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// contractOrder maps a user-supplied order_by to a whitelisted ORDER BY clause.
// contract_number sorts by length first so CTR-2025-1000 follows CTR-2025-999.
func contractOrder(orderBy string) string {
	dir := "ASC"
	key := orderBy
	if strings.HasPrefix(key, "-") {
		dir = "DESC"
		key = key[1:]
	}
	if key == "contract_number" {
		return fmt.Sprintf("length(contract_number) %s, contract_number %s", dir, dir)
	}
	col, ok := contractOrderColumns[key]
	if !ok {
		return "created_at DESC"
	}
	return col + " " + dir
}
