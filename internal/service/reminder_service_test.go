package service

import (
	"context"
	"testing"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubReminderRepo struct {
	rows map[uuid.UUID]*model.ContractReminder
}

var _ repository.ReminderRepository = (*stubReminderRepo)(nil)

func newStubReminderRepo() *stubReminderRepo {
	return &stubReminderRepo{rows: map[uuid.UUID]*model.ContractReminder{}}
}

func (r *stubReminderRepo) Create(_ context.Context, rem *model.ContractReminder) error {
	r.rows[rem.ID] = rem
	return nil
}

func (r *stubReminderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ContractReminder, error) {
	rem, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rem
	return &cp, nil
}

func (r *stubReminderRepo) List(_ context.Context, f dto.ReminderFilter, today time.Time) ([]model.ContractReminder, int64, error) {
	var out []model.ContractReminder
	for _, rem := range r.rows {
		switch f.State {
		case "pending":
			if rem.IsCompleted {
				continue
			}
		case "completed":
			if !rem.IsCompleted {
				continue
			}
		case "overdue":
			if !rem.IsOverdue(today) {
				continue
			}
		}
		out = append(out, *rem)
	}
	return out, int64(len(out)), nil
}

func (r *stubReminderRepo) PendingDueBetween(_ context.Context, from, to time.Time, limit int) ([]model.ContractReminder, error) {
	var out []model.ContractReminder
	for _, rem := range r.rows {
		if !rem.IsCompleted && !rem.DueDate.Before(dayOf(from)) && !rem.DueDate.After(to) {
			out = append(out, *rem)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubReminderRepo) Update(_ context.Context, rem *model.ContractReminder) error {
	r.rows[rem.ID] = rem
	return nil
}

func (r *stubReminderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

func newReminderFixture(t *testing.T) (ReminderService, *stubReminderRepo, uuid.UUID, *stubUserRepo) {
	t.Helper()
	contracts := newStubContractRepo()
	contractID := contracts.seed("CTR-2025-001")
	users := newStubUserRepo()
	reminders := newStubReminderRepo()
	return NewReminderService(reminders, contracts, users, nil, clock.Fixed(fixedNow)), reminders, contractID, users
}

func TestReminder_CreateValidatesReferences(t *testing.T) {
	svc, _, contractID, users := newReminderFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, dto.CreateReminderRequest{ContractID: uuid.NewString(), Title: "Renew", DueDate: "2025-04-10"})
	requireValidation(t, err, "contract_id")

	_, err = svc.Create(ctx, nil, dto.CreateReminderRequest{
		ContractID: contractID.String(), Title: "Renew", DueDate: "2025-04-10", AssignedToID: strPtr(uuid.NewString()),
	})
	requireValidation(t, err, "assigned_to_id")

	ana := users.add("ana")
	resp, err := svc.Create(ctx, nil, dto.CreateReminderRequest{
		ContractID: contractID.String(), Title: "Renew", DueDate: "2025-04-10", AssignedToID: strPtr(ana.ID.String()),
	})
	require.NoError(t, err)
	assert.Equal(t, "CTR-2025-001", resp.ContractNumber)
	assert.Equal(t, ana.ID.String(), resp.AssignedTo.ID)
	assert.False(t, resp.IsOverdue)
}

func TestReminder_ToggleStampsAndClearsCompletedDate(t *testing.T) {
	svc, _, contractID, _ := newReminderFixture(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, nil, dto.CreateReminderRequest{ContractID: contractID.String(), Title: "Sign", DueDate: "2025-03-01"})
	require.NoError(t, err)
	assert.True(t, created.IsOverdue)
	id := uuid.MustParse(created.ID)

	done, err := svc.Toggle(ctx, id)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedDate)
	assert.Equal(t, fixedNow.Format(time.RFC3339), *done.CompletedDate)
	assert.False(t, done.IsOverdue)

	reopened, err := svc.Toggle(ctx, id)
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
	assert.Nil(t, reopened.CompletedDate)
}

func TestReminder_ListOverdue(t *testing.T) {
	svc, _, contractID, _ := newReminderFixture(t)
	ctx := context.Background()
	for _, due := range []string{"2025-03-01", "2025-04-02", "2025-05-01"} {
		_, err := svc.Create(ctx, nil, dto.CreateReminderRequest{ContractID: contractID.String(), Title: "Check", DueDate: due})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, dto.ReminderFilter{State: "overdue", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
}

func TestReminder_DeleteMissing(t *testing.T) {
	svc, _, _, _ := newReminderFixture(t)
	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New()), ErrNotFound)
}
