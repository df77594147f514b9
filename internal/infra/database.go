package infra

import (
	"fmt"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (CHECK constraints, the history trigger, composite indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// TranslateError stays off: repositories inspect *pgconn.PgError
		// directly so the violated constraint name is not lost.
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates every table and re-applies schema patches.
// Safe to call on an already migrated database.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.ContractStatus{},
		&model.ContractType{},
		&model.Contract{},
		&model.ContractParty{},
		&model.ContractReminder{},
		&model.ContractAttachment{},
		&model.ContractHistory{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// handle on its own. Each statement is guarded by an existence check so
// re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"contracts date range check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_contracts_date_range') THEN
    ALTER TABLE contracts ADD CONSTRAINT chk_contracts_date_range CHECK (end_date >= start_date);
  END IF;
END $$`},
		{"contracts non-negative value check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_contracts_value') THEN
    ALTER TABLE contracts ADD CONSTRAINT chk_contracts_value CHECK (value >= 0);
  END IF;
END $$`},
		{"contracts fiscal registration check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_contracts_fiscal_registration') THEN
    ALTER TABLE contracts ADD CONSTRAINT chk_contracts_fiscal_registration
      CHECK (fiscal_registration ~ '^[0-9]{7}$') NOT VALID;
  END IF;
END $$`},
		// History rows are append-only. The only UPDATE tolerated is the FK
		// action nulling changed_by_id when a user row is removed, and the only
		// DELETE tolerated is the cascade from contracts (trigger depth > 1).
		{"contract_history append-only function", `
CREATE OR REPLACE FUNCTION contract_history_append_only() RETURNS trigger AS $$
BEGIN
  IF TG_OP = 'UPDATE'
     AND NEW.changed_by_id IS NULL AND OLD.changed_by_id IS NOT NULL
     AND NEW.contract_id = OLD.contract_id
     AND NEW.change_date = OLD.change_date
     AND NEW.change_description = OLD.change_description
     AND NEW.changed_fields = OLD.changed_fields THEN
    RETURN NEW;
  END IF;
  IF TG_OP = 'DELETE' AND pg_trigger_depth() > 1 THEN
    RETURN OLD;
  END IF;
  RAISE EXCEPTION 'contract_history is append-only' USING ERRCODE = 'restrict_violation';
END $$ LANGUAGE plpgsql`},
		{"contract_history append-only trigger", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_contract_history_append_only') THEN
    CREATE TRIGGER trg_contract_history_append_only
      BEFORE UPDATE OR DELETE ON contract_history
      FOR EACH ROW EXECUTE FUNCTION contract_history_append_only();
  END IF;
END $$`},
		{"contract_history timeline index", `
CREATE INDEX IF NOT EXISTS idx_contract_history_timeline
    ON contract_history (contract_id, change_date DESC)`},
		{"pending reminders partial index", `
CREATE INDEX IF NOT EXISTS idx_contract_reminders_pending
    ON contract_reminders (due_date)
    WHERE is_completed = false`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
