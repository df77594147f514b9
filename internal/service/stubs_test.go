package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/audit"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/numbering"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)

// ── Contracts ─────────────────────────────────────────────────────────────────

type stubContractRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]model.Contract
	inserts   int
	listErr   error
	insertErr error
	// afterList runs after NumbersWithPrefix computed its result, simulating
	// a concurrent writer committing between our read and our insert.
	afterList func(r *stubContractRepo, numbers []string)
}

var _ repository.ContractRepository = (*stubContractRepo)(nil)

func newStubContractRepo() *stubContractRepo {
	return &stubContractRepo{byID: map[uuid.UUID]model.Contract{}}
}

func (r *stubContractRepo) DB() *gorm.DB { return nil }

// seed stores a contract with the given number directly.
func (r *stubContractRepo) seed(number string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seedLocked(number)
}

func (r *stubContractRepo) seedLocked(number string) uuid.UUID {
	id := uuid.New()
	r.byID[id] = model.Contract{ID: id, ContractNumber: number}
	return id
}

func (r *stubContractRepo) InsertIfUnique(_ context.Context, _ *gorm.DB, c *model.Contract) (repository.InsertOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.insertErr != nil {
		return repository.InsertFatal, r.insertErr
	}
	for _, existing := range r.byID {
		if existing.ContractNumber == c.ContractNumber {
			return repository.InsertConflict, nil
		}
	}
	c.CreatedAt, c.UpdatedAt = fixedNow, fixedNow
	r.byID[c.ID] = *c
	return repository.InsertOK, nil
}

func (r *stubContractRepo) Update(_ context.Context, _ *gorm.DB, c *model.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[c.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ContractNumber = old.ContractNumber
	r.byID[c.ID] = *c
	return nil
}

func (r *stubContractRepo) UpdateDocument(_ context.Context, _ *gorm.DB, id uuid.UUID, column string, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	setDocumentKey(&c, column, key)
	r.byID[id] = c
	return nil
}

func (r *stubContractRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubContractRepo) NumbersWithPrefix(_ context.Context, _ *gorm.DB, prefix string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []string
	for _, c := range r.byID {
		if strings.HasPrefix(c.ContractNumber, prefix) {
			out = append(out, c.ContractNumber)
		}
	}
	if r.afterList != nil {
		r.afterList(r, out)
	}
	return out, nil
}

func (r *stubContractRepo) NumberTaken(_ context.Context, number string, exclude *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if c.ContractNumber == number && (exclude == nil || id != *exclude) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubContractRepo) List(_ context.Context, f dto.ContractFilter, _ time.Time) ([]model.Contract, int64, error) {
	all, _ := r.ListAll(context.Background(), f, fixedNow)
	return all, int64(len(all)), nil
}

func (r *stubContractRepo) ListAll(_ context.Context, _ dto.ContractFilter, _ time.Time) ([]model.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Contract, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractNumber < out[j].ContractNumber })
	return out, nil
}

func (r *stubContractRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byID, id)
	return nil
}

// ── History ───────────────────────────────────────────────────────────────────

type stubHistoryRepo struct {
	mu        sync.Mutex
	rows      []model.ContractHistory
	appendErr error
}

var _ repository.HistoryRepository = (*stubHistoryRepo)(nil)

func (r *stubHistoryRepo) Append(_ context.Context, _ *gorm.DB, h *model.ContractHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubHistoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ContractHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			h := r.rows[i]
			return &h, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubHistoryRepo) List(_ context.Context, q repository.HistoryQuery) ([]model.ContractHistory, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ContractHistory
	for _, h := range r.rows {
		if q.ContractID != nil && h.ContractID != *q.ContractID {
			continue
		}
		if q.UserID != nil && (h.ChangedByID == nil || *h.ChangedByID != *q.UserID) {
			continue
		}
		if q.From != nil && h.ChangeDate.Before(*q.From) {
			continue
		}
		if q.To != nil && !h.ChangeDate.Before(*q.To) {
			continue
		}
		out = append(out, h)
	}
	return out, int64(len(out)), nil
}

func (r *stubHistoryRepo) Recent(_ context.Context, limit int) ([]model.ContractHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rows) < limit {
		limit = len(r.rows)
	}
	return append([]model.ContractHistory(nil), r.rows[:limit]...), nil
}

func (r *stubHistoryRepo) forContract(id uuid.UUID) []model.ContractHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ContractHistory
	for _, h := range r.rows {
		if h.ContractID == id {
			out = append(out, h)
		}
	}
	return out
}

// ── Reference data / users ────────────────────────────────────────────────────

type stubStatusRepo struct {
	rows  map[uuid.UUID]*model.ContractStatus
	inUse map[uuid.UUID]bool
}

var _ repository.StatusRepository = (*stubStatusRepo)(nil)

func newStubStatusRepo(names ...string) *stubStatusRepo {
	r := &stubStatusRepo{rows: map[uuid.UUID]*model.ContractStatus{}, inUse: map[uuid.UUID]bool{}}
	for _, n := range names {
		_ = r.Create(context.Background(), &model.ContractStatus{Name: n, Active: true, Color: defaultStatusColor})
	}
	return r
}

func (r *stubStatusRepo) byName(name string) *model.ContractStatus {
	for _, s := range r.rows {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (r *stubStatusRepo) Create(_ context.Context, s *model.ContractStatus) error {
	s.ID = uuid.New()
	r.rows[s.ID] = s
	return nil
}

func (r *stubStatusRepo) List(_ context.Context, onlyActive bool) ([]model.ContractStatus, error) {
	var out []model.ContractStatus
	for _, s := range r.rows {
		if !onlyActive || s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubStatusRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ContractStatus, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubStatusRepo) FindByName(_ context.Context, name string) (*model.ContractStatus, error) {
	if s := r.byName(name); s != nil {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStatusRepo) Update(_ context.Context, s *model.ContractStatus) error {
	r.rows[s.ID] = s
	return nil
}

func (r *stubStatusRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

func (r *stubStatusRepo) InUse(_ context.Context, id uuid.UUID) (bool, error) {
	return r.inUse[id], nil
}

type stubTypeRepo struct {
	rows  map[uuid.UUID]*model.ContractType
	inUse map[uuid.UUID]bool
}

var _ repository.TypeRepository = (*stubTypeRepo)(nil)

func newStubTypeRepo(names ...string) *stubTypeRepo {
	r := &stubTypeRepo{rows: map[uuid.UUID]*model.ContractType{}, inUse: map[uuid.UUID]bool{}}
	for _, n := range names {
		_ = r.Create(context.Background(), &model.ContractType{Name: n, Active: true})
	}
	return r
}

func (r *stubTypeRepo) byName(name string) *model.ContractType {
	for _, t := range r.rows {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (r *stubTypeRepo) Create(_ context.Context, t *model.ContractType) error {
	t.ID = uuid.New()
	r.rows[t.ID] = t
	return nil
}

func (r *stubTypeRepo) List(_ context.Context, onlyActive bool) ([]model.ContractType, error) {
	var out []model.ContractType
	for _, t := range r.rows {
		if !onlyActive || t.Active {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTypeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ContractType, error) {
	t, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubTypeRepo) FindByName(_ context.Context, name string) (*model.ContractType, error) {
	if t := r.byName(name); t != nil {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTypeRepo) Update(_ context.Context, t *model.ContractType) error {
	r.rows[t.ID] = t
	return nil
}

func (r *stubTypeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

func (r *stubTypeRepo) InUse(_ context.Context, id uuid.UUID) (bool, error) {
	return r.inUse[id], nil
}

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (r *stubUserRepo) add(username string) *model.User {
	u := &model.User{ID: uuid.New(), Username: username, Name: strings.ToUpper(username[:1]) + username[1:], Role: model.RoleManager, Active: true}
	r.users[u.ID] = u
	return u
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = uuid.New()
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if !u.Active {
			continue
		}
		if u.Username == username || (u.Email != nil && strings.EqualFold(*u.Email, username)) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = false
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = true
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── Cache ─────────────────────────────────────────────────────────────────────

type countingCache struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCache) Invalidate(context.Context) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

// ── Fixture ───────────────────────────────────────────────────────────────────

type contractFixture struct {
	contracts *stubContractRepo
	history   *stubHistoryRepo
	statuses  *stubStatusRepo
	types     *stubTypeRepo
	users     *stubUserRepo
	cache     *countingCache
	svc       ContractService
}

func newContractFixture(maxAttempts int) *contractFixture {
	f := &contractFixture{
		contracts: newStubContractRepo(),
		history:   &stubHistoryRepo{},
		statuses:  newStubStatusRepo("Active", "Suspended"),
		types:     newStubTypeRepo("Service"),
		users:     newStubUserRepo(),
		cache:     &countingCache{},
	}
	clk := clock.Fixed(fixedNow)
	f.svc = NewContractService(
		f.contracts, f.statuses, f.types, f.users,
		audit.NewRecorder(f.history, clk),
		numbering.NewAllocator(clk),
		f.cache, clk, maxAttempts,
	)
	return f
}

func (f *contractFixture) validRequest() dto.CreateContractRequest {
	return dto.CreateContractRequest{
		Company:            "Acme Ltda",
		FiscalName:         "Maria Souza",
		FiscalRegistration: "1234567",
		ContractTerm:       model.TermInitial,
		StatusID:           f.statuses.byName("Active").ID.String(),
		StartDate:          "2025-01-01",
		EndDate:            "2025-12-31",
		Value:              mustDecimal("1000"),
		Currency:           "BRL",
	}
}

var errStub = errors.New("stub failure")
