//go:build integration

package repository_test

// Runs against a real Postgres via testcontainers:
//   go test -tags integration ./internal/repository/... -v

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/audit"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/infra"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/numbering"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

var now = time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)

type env struct {
	db        *gorm.DB
	contracts repository.ContractRepository
	history   repository.HistoryRepository
	status    model.ContractStatus
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("contracts_test"),
		tcPostgres.WithUsername("contracts"),
		tcPostgres.WithPassword("contracts"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// NewDatabase migrates and installs the history trigger.
	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)

	e := &env{
		db:        db,
		contracts: repository.NewContractRepository(db),
		history:   repository.NewHistoryRepository(db),
		status:    model.ContractStatus{Name: "Active", Active: true, Color: "#28a745"},
	}
	require.NoError(t, repository.NewStatusRepository(db).Create(ctx, &e.status))
	return e
}

func (e *env) service(maxAttempts int) service.ContractService {
	clk := clock.Fixed(now)
	return service.NewContractService(
		e.contracts,
		repository.NewStatusRepository(e.db),
		repository.NewTypeRepository(e.db),
		repository.NewUserRepository(e.db),
		audit.NewRecorder(e.history, clk),
		numbering.NewAllocator(clk),
		nil, clk, maxAttempts,
	)
}

func (e *env) request() dto.CreateContractRequest {
	return dto.CreateContractRequest{
		Company:            "Acme Ltda",
		FiscalName:         "Maria Souza",
		FiscalRegistration: "1234567",
		StatusID:           e.status.ID.String(),
		StartDate:          "2025-01-01",
		EndDate:            "2025-12-31",
		Value:              decimal.RequireFromString("1000.50"),
	}
}

func TestIntegration_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	e := setup(t)
	const n = 8
	svc := e.service(n)

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.Create(context.Background(), nil, e.request())
			if err != nil {
				errs <- err
				return
			}
			numbers <- resp.ContractNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[numbering.Format(2025, i)], "missing sequence %d", i)
	}

	var historyRows int64
	require.NoError(t, e.db.Model(&model.ContractHistory{}).Count(&historyRows).Error)
	assert.Equal(t, int64(n), historyRows)
}

func TestIntegration_UniqueConstraintReportsConflict(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	mk := func() *model.Contract {
		return &model.Contract{
			ContractNumber: "CTR-2025-001", Company: "Acme", FiscalName: "Maria", FiscalRegistration: "1234567",
			ContractTerm: model.TermInitial, StatusID: e.status.ID, Currency: "BRL",
			StartDate: now, EndDate: now.AddDate(1, 0, 0), Value: decimal.NewFromInt(1), IsActive: true,
		}
	}

	out, err := e.contracts.InsertIfUnique(ctx, nil, mk())
	require.NoError(t, err)
	assert.Equal(t, repository.InsertOK, out)

	out, err = e.contracts.InsertIfUnique(ctx, nil, mk())
	require.NoError(t, err)
	assert.Equal(t, repository.InsertConflict, out)
}

func TestIntegration_HistoryJSONRoundTripAndImmutability(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	svc := e.service(3)

	created, err := svc.Create(ctx, nil, e.request())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	notes := "Renovação pendente"
	_, err = svc.Update(ctx, id, nil, dto.UpdateContractRequest{Notes: &notes})
	require.NoError(t, err)

	rows, total, err := e.history.List(ctx, repository.HistoryQuery{ContractID: &id, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	// Both entries share the fixed clock's timestamp, so pick by content.
	var change *model.FieldChange
	for _, row := range rows {
		if fc, ok := row.Changes()["notes"]; ok {
			change = &fc
		}
	}
	require.NotNil(t, change, "update entry should carry the notes diff")
	assert.Nil(t, change.Old)
	require.NotNil(t, change.New)
	assert.Equal(t, notes, *change.New)

	// The trigger rejects rewrites and direct deletes, bypassing GORM hooks.
	err = e.db.Exec(`UPDATE contract_history SET change_description = 'tampered' WHERE contract_id = ?`, id).Error
	assert.Error(t, err)
	err = e.db.Exec(`DELETE FROM contract_history WHERE contract_id = ?`, id).Error
	assert.Error(t, err)

	// Deleting the contract cascades to its history.
	require.NoError(t, e.contracts.Delete(ctx, id))
	var left int64
	require.NoError(t, e.db.Model(&model.ContractHistory{}).Where("contract_id = ?", id).Count(&left).Error)
	assert.Zero(t, left)
}

func TestIntegration_HistoryFailureRollsBackContract(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	require.NoError(t, e.db.Exec(`
CREATE FUNCTION reject_history_insert() RETURNS trigger AS $$
BEGIN
  RAISE EXCEPTION 'history store unavailable';
END $$ LANGUAGE plpgsql`).Error)
	require.NoError(t, e.db.Exec(`
CREATE TRIGGER trg_reject_history_insert BEFORE INSERT ON contract_history
FOR EACH ROW EXECUTE FUNCTION reject_history_insert()`).Error)

	_, err := e.service(3).Create(ctx, nil, e.request())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history store unavailable")

	var contracts int64
	require.NoError(t, e.db.Model(&model.Contract{}).Count(&contracts).Error)
	assert.Zero(t, contracts, "contract insert must roll back with its history entry")

	// Once the history store recovers the same request succeeds as 001,
	// so the failed attempt left no number behind.
	require.NoError(t, e.db.Exec(`DROP TRIGGER trg_reject_history_insert ON contract_history`).Error)
	resp, err := e.service(3).Create(ctx, nil, e.request())
	require.NoError(t, err)
	assert.Equal(t, "CTR-2025-001", resp.ContractNumber)
}

func TestIntegration_UniqueViolationKeepsConstraintName(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	status := model.ContractStatus{Name: "Active", Active: true, Color: "#28a745"}

	err := repository.NewStatusRepository(e.db).Create(ctx, &status)
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err, "name"))
	assert.False(t, repository.IsUniqueViolation(err, "contract_number"))
}
