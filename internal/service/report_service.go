package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	dashboardCacheKey     = "dashboard:summary"
	dashboardExpiringDays = 30
	dashboardReminderDays = 7
	dashboardListSize     = 5
	dashboardFeedSize     = 10
	reportListSize        = 100
	reportTopSize         = 10
	maxExpirationDays     = 365
)

// ReportService builds the dashboard and the aggregate reports. The dashboard
// is cached in redis and dropped by Invalidate after any contract mutation.
type ReportService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	Expiration(ctx context.Context, days int) (*dto.ExpirationReportResponse, error)
	Value(ctx context.Context) (*dto.ValueReportResponse, error)
	Invalidate(ctx context.Context)
}

type reportService struct {
	repo      repository.ReportRepository
	reminders repository.ReminderRepository
	history   repository.HistoryRepository
	rdb       *redis.Client
	ttl       time.Duration
	clock     clock.Clock
}

// NewReportService wires the report queries. rdb may be nil, which disables caching.
func NewReportService(repo repository.ReportRepository, reminders repository.ReminderRepository, history repository.HistoryRepository, rdb *redis.Client, ttl time.Duration, clk clock.Clock) ReportService {
	if clk == nil {
		clk = clock.System()
	}
	return &reportService{repo: repo, reminders: reminders, history: history, rdb: rdb, ttl: ttl, clock: clk}
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	if cached := s.cached(ctx); cached != nil {
		return cached, nil
	}

	now := s.clock.Now()
	today := dayOf(now)
	soon := today.AddDate(0, 0, dashboardExpiringDays)
	resp := &dto.DashboardResponse{GeneratedAt: now.UTC().Format(timestampLayout)}

	var err error
	if resp.TotalContracts, err = s.repo.CountAll(ctx); err != nil {
		return nil, err
	}
	if resp.ActiveContracts, err = s.repo.CountRunning(ctx, today); err != nil {
		return nil, err
	}
	if resp.ExpiringSoon, err = s.repo.CountEndingBetween(ctx, today, soon); err != nil {
		return nil, err
	}
	if resp.Expired, err = s.repo.CountExpired(ctx, today); err != nil {
		return nil, err
	}

	expiring, err := s.repo.EndingBetween(ctx, today, soon, dashboardListSize)
	if err != nil {
		return nil, err
	}
	resp.ExpiringList = toContractSummaries(expiring, now)
	expired, err := s.repo.Expired(ctx, today, dashboardListSize)
	if err != nil {
		return nil, err
	}
	resp.ExpiredList = toContractSummaries(expired, now)

	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	resp.ByStatus = toCountItems(byStatus)
	byType, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	resp.ByType = toCountItems(byType)

	// Overdue reminders are included: everything open and due within a week.
	reminders, err := s.reminders.PendingDueBetween(ctx, time.Time{}, today.AddDate(0, 0, dashboardReminderDays), dashboardFeedSize)
	if err != nil {
		return nil, err
	}
	resp.PendingReminders = make([]dto.ReminderResponse, len(reminders))
	for i := range reminders {
		resp.PendingReminders[i] = toReminderResponse(&reminders[i], now)
	}

	recent, err := s.history.Recent(ctx, dashboardFeedSize)
	if err != nil {
		return nil, err
	}
	resp.RecentActivity = make([]dto.HistoryItem, len(recent))
	for i := range recent {
		resp.RecentActivity[i] = toHistoryItem(&recent[i])
	}

	s.store(ctx, resp)
	return resp, nil
}

// Invalidate drops the cached dashboard. Failures are logged only.
func (s *reportService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, dashboardCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("dashboard cache: invalidate failed")
	}
}

func (s *reportService) cached(ctx context.Context) *dto.DashboardResponse {
	if s.rdb == nil || s.ttl <= 0 {
		return nil
	}
	raw, err := s.rdb.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("dashboard cache: read failed")
		}
		return nil
	}
	var resp dto.DashboardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Warn().Err(err).Msg("dashboard cache: corrupt entry")
		return nil
	}
	return &resp
}

func (s *reportService) store(ctx context.Context, resp *dto.DashboardResponse) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, dashboardCacheKey, raw, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("dashboard cache: write failed")
	}
}

// ── Reports ───────────────────────────────────────────────────────────────────

// Expiration lists contracts ending within days (1..365, default 30) and
// those already expired, plus a month-by-month count of the window.
func (s *reportService) Expiration(ctx context.Context, days int) (*dto.ExpirationReportResponse, error) {
	if days < 1 {
		days = dashboardExpiringDays
	}
	if days > maxExpirationDays {
		days = maxExpirationDays
	}
	now := s.clock.Now()
	today := dayOf(now)
	until := today.AddDate(0, 0, days)

	expiring, err := s.repo.EndingBetween(ctx, today, until, reportListSize)
	if err != nil {
		return nil, err
	}
	expired, err := s.repo.Expired(ctx, today, reportListSize)
	if err != nil {
		return nil, err
	}
	byMonth, err := s.repo.EndingByMonth(ctx, today, until)
	if err != nil {
		return nil, err
	}
	return &dto.ExpirationReportResponse{
		Days:     days,
		Expiring: toContractSummaries(expiring, now),
		Expired:  toContractSummaries(expired, now),
		ByMonth:  toCountItems(byMonth),
	}, nil
}

func (s *reportService) Value(ctx context.Context) (*dto.ValueReportResponse, error) {
	total, err := s.repo.TotalValue(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := s.repo.ValueByType(ctx)
	if err != nil {
		return nil, err
	}
	byYear, err := s.repo.ValueByYear(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopByValue(ctx, reportTopSize)
	if err != nil {
		return nil, err
	}
	return &dto.ValueReportResponse{
		TotalValue: total,
		ByType:     toValueItems(byType),
		ByYear:     toValueItems(byYear),
		Top:        toContractSummaries(top, s.clock.Now()),
	}, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toCountItems(rows []repository.CountRow) []dto.CountItem {
	out := make([]dto.CountItem, len(rows))
	for i, r := range rows {
		out[i] = dto.CountItem{Key: r.Key, Count: r.Count}
	}
	return out
}

func toValueItems(rows []repository.ValueRow) []dto.ValueItem {
	out := make([]dto.ValueItem, len(rows))
	for i, r := range rows {
		out[i] = dto.ValueItem{Key: r.Key, Count: r.Count, Total: r.Total}
	}
	return out
}
