package service

import (
	"context"
	"strings"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/google/uuid"
)

// HistoryService is the read side of the contract audit trail.
type HistoryService interface {
	ListForContract(ctx context.Context, contractID uuid.UUID, page, limit int) (*dto.HistoryListResponse, error)
	List(ctx context.Context, filter dto.HistoryFilter) (*dto.HistoryListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.HistoryItem, error)
}

type historyService struct {
	repo      repository.HistoryRepository
	contracts repository.ContractRepository
}

func NewHistoryService(repo repository.HistoryRepository, contracts repository.ContractRepository) HistoryService {
	return &historyService{repo: repo, contracts: contracts}
}

func (s *historyService) ListForContract(ctx context.Context, contractID uuid.UUID, page, limit int) (*dto.HistoryListResponse, error) {
	if _, err := s.contracts.FindByID(ctx, contractID); err != nil {
		return nil, notFound(err, "contract")
	}
	return s.list(ctx, repository.HistoryQuery{ContractID: &contractID, Page: page, Limit: limit})
}

// List filters the global trail. date_to is inclusive of the whole day.
func (s *historyService) List(ctx context.Context, filter dto.HistoryFilter) (*dto.HistoryListResponse, error) {
	errs := fieldErrors{}
	q := repository.HistoryQuery{Page: filter.Page, Limit: filter.Limit}
	if v := strings.TrimSpace(filter.ContractID); v != "" {
		q.ContractID = parseOptionalID(&v, "contract_id", errs)
	}
	if v := strings.TrimSpace(filter.UserID); v != "" {
		q.UserID = parseOptionalID(&v, "user_id", errs)
	}
	if v := strings.TrimSpace(filter.DateFrom); v != "" {
		from := parseDate(v, "date_from", errs)
		q.From = &from
	}
	if v := strings.TrimSpace(filter.DateTo); v != "" {
		to := parseDate(v, "date_to", errs).Add(24 * time.Hour)
		q.To = &to
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return s.list(ctx, q)
}

func (s *historyService) Get(ctx context.Context, id uuid.UUID) (*dto.HistoryItem, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "history entry")
	}
	item := toHistoryItem(h)
	return &item, nil
}

func (s *historyService) list(ctx context.Context, q repository.HistoryQuery) (*dto.HistoryListResponse, error) {
	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	data := make([]dto.HistoryItem, len(rows))
	for i := range rows {
		data[i] = toHistoryItem(&rows[i])
	}
	return &dto.HistoryListResponse{Data: data, Total: total, Page: q.Page, Limit: q.Limit}, nil
}
