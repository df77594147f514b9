package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/infra"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// popJob takes the oldest job from queue the way BRPOP would.
func popJob(t *testing.T, rdb *redis.Client, queue string) string {
	t.Helper()
	raw, err := rdb.RPop(context.Background(), queue).Result()
	require.NoError(t, err)
	return raw
}

// ── Pool ──────────────────────────────────────────────────────────────────────

func TestPool_RoutesJobToHandler(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()

	var got ReminderEmailPayload
	p := NewPool(rdb)
	p.Register(QueueReminderEmail, JobReminderEmail, HandlerFunc(func(_ context.Context, raw json.RawMessage) error {
		return json.Unmarshal(raw, &got)
	}))

	require.NoError(t, NewDispatcher(rdb).EnqueueReminderEmail(ctx, ReminderEmailPayload{ReminderID: "r-1", ToEmail: "ana@example.com"}))
	p.processJob(ctx, QueueReminderEmail, popJob(t, rdb, QueueReminderEmail))

	assert.Equal(t, "r-1", got.ReminderID)
	n, err := DLQLength(ctx, rdb, QueueReminderEmail)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPool_RetriesThenDeadLetters(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()

	calls := 0
	p := NewPool(rdb)
	p.Register(QueueReminderEmail, JobReminderEmail, HandlerFunc(func(context.Context, json.RawMessage) error {
		calls++
		return errors.New("smtp down")
	}))

	require.NoError(t, NewDispatcher(rdb).EnqueueReminderEmail(ctx, ReminderEmailPayload{ReminderID: "r-2"}))
	for i := 0; i < maxJobAttempts; i++ {
		p.processJob(ctx, QueueReminderEmail, popJob(t, rdb, QueueReminderEmail))
	}

	assert.Equal(t, maxJobAttempts, calls)
	assert.Zero(t, rdb.LLen(ctx, QueueReminderEmail).Val())

	entries, err := PeekDLQ(ctx, rdb, QueueReminderEmail, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, JobReminderEmail, entries[0].JobType)
	assert.Equal(t, "smtp down", entries[0].Reason)
	assert.Equal(t, maxJobAttempts, entries[0].Attempts)
}

func TestPool_UnknownTypeAndMalformedGoToDLQ(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	p := NewPool(rdb)

	p.processJob(ctx, QueueReminderEmail, `{"type":"nope","payload":{}}`)
	p.processJob(ctx, QueueReminderEmail, `not json`)

	n, err := DLQLength(ctx, rdb, QueueReminderEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

// ── Email worker ──────────────────────────────────────────────────────────────

type fakeSender struct {
	configured bool
	err        error
	sent       []string
	subjects   []string
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(to, subject, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	f.subjects = append(f.subjects, subject)
	return nil
}

func reminderPayload(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(ReminderEmailPayload{
		ReminderID: "r-1", ContractNumber: "CTR-2025-004", Company: "Acme Ltda",
		Title: "Renew insurance", DueDate: "2025-04-05", ToEmail: "ana@example.com", ToName: "Ana",
	})
	require.NoError(t, err)
	return raw
}

func TestEmailWorker_Sends(t *testing.T) {
	s := &fakeSender{configured: true}
	w := NewEmailWorker(s, infra.NewCircuitBreaker(infra.DefaultCBConfig()))

	require.NoError(t, w.Process(context.Background(), reminderPayload(t)))
	assert.Equal(t, []string{"ana@example.com"}, s.sent)
	assert.Equal(t, "[CTR-2025-004] Reminder due 2025-04-05: Renew insurance", s.subjects[0])
}

func TestEmailWorker_SkipsWhenUnconfigured(t *testing.T) {
	s := &fakeSender{}
	w := NewEmailWorker(s, infra.NewCircuitBreaker(infra.DefaultCBConfig()))

	assert.NoError(t, w.Process(context.Background(), reminderPayload(t)))
	assert.Empty(t, s.sent)
}

func TestEmailWorker_FailuresTripBreaker(t *testing.T) {
	s := &fakeSender{configured: true, err: errors.New("dial tcp: refused")}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour})
	w := NewEmailWorker(s, cb)
	ctx := context.Background()

	assert.Error(t, w.Process(ctx, reminderPayload(t)))
	assert.Error(t, w.Process(ctx, reminderPayload(t)))
	assert.Equal(t, infra.CBOpen, cb.State())

	err := w.Process(ctx, reminderPayload(t))
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
}

// ── Reminder cron ─────────────────────────────────────────────────────────────

// stubReminderRepo implements only what the cron calls.
type stubReminderRepo struct {
	repository.ReminderRepository
	due      []model.ContractReminder
	from, to time.Time
}

func (r *stubReminderRepo) PendingDueBetween(_ context.Context, from, to time.Time, _ int) ([]model.ContractReminder, error) {
	r.from, r.to = from, to
	return r.due, nil
}

var _ repository.ReminderRepository = (*stubReminderRepo)(nil)

func cronFixture(t *testing.T, now time.Time) (*miniredis.Miniredis, *redis.Client, *stubReminderRepo, ReminderCronConfig) {
	t.Helper()
	mr, rdb := newRedis(t)
	email := "ana@example.com"
	repo := &stubReminderRepo{due: []model.ContractReminder{
		{
			ID: uuid.New(), Title: "Renew insurance", DueDate: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
			Contract:   &model.Contract{ContractNumber: "CTR-2025-004", Company: "Acme Ltda"},
			AssignedTo: &model.User{Name: "Ana", Email: &email},
		},
		{ID: uuid.New(), Title: "Unassigned", DueDate: time.Date(2025, 4, 6, 0, 0, 0, 0, time.UTC)},
	}}
	cfg := ReminderCronConfig{
		Reminders:     repo,
		Dispatcher:    NewDispatcher(rdb),
		RDB:           rdb,
		CB:            infra.NewCircuitBreaker(infra.DefaultCBConfig()),
		Clock:         clock.Fixed(now),
		Interval:      time.Minute,
		LookaheadDays: 7,
	}
	return mr, rdb, repo, cfg
}

func TestScanReminders_EnqueuesOncePerDay(t *testing.T) {
	now := time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)
	_, rdb, repo, cfg := cronFixture(t, now)
	ctx := context.Background()

	assert.Equal(t, 1, scanReminders(ctx, cfg))
	assert.Equal(t, time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC), repo.to)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(popJob(t, rdb, QueueReminderEmail)), &job))
	assert.Equal(t, JobReminderEmail, job.Type)
	var payload ReminderEmailPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, "CTR-2025-004", payload.ContractNumber)
	assert.Equal(t, "2025-04-05", payload.DueDate)

	// Same day: deduplicated.
	assert.Equal(t, 0, scanReminders(ctx, cfg))

	// Next day: notified again.
	cfg.Clock = clock.Fixed(now.Add(24 * time.Hour))
	assert.Equal(t, 1, scanReminders(ctx, cfg))
}

func TestScanReminders_SkipsWhileBreakerOpen(t *testing.T) {
	_, rdb, _, cfg := cronFixture(t, time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC))
	cfg.CB = infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Hour})
	_ = cfg.CB.Execute(func() error { return errors.New("boom") })

	assert.Equal(t, 0, scanReminders(context.Background(), cfg))
	assert.Zero(t, rdb.LLen(context.Background(), QueueReminderEmail).Val())
}
