package service

import (
	"context"
	"strings"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/google/uuid"
)

// ReferenceService manages the status and type lookup tables.
type ReferenceService interface {
	CreateStatus(ctx context.Context, req dto.CreateStatusRequest) (*dto.StatusResponse, error)
	ListStatuses(ctx context.Context, onlyActive bool) ([]dto.StatusResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.StatusResponse, error)
	DeleteStatus(ctx context.Context, id uuid.UUID) error

	CreateType(ctx context.Context, req dto.CreateTypeRequest) (*dto.TypeResponse, error)
	ListTypes(ctx context.Context, onlyActive bool) ([]dto.TypeResponse, error)
	UpdateType(ctx context.Context, id uuid.UUID, req dto.UpdateTypeRequest) (*dto.TypeResponse, error)
	DeleteType(ctx context.Context, id uuid.UUID) error
}

const defaultStatusColor = "#007bff"

type referenceService struct {
	statuses repository.StatusRepository
	types    repository.TypeRepository
	cache    CacheInvalidator
}

func NewReferenceService(statuses repository.StatusRepository, types repository.TypeRepository, cache CacheInvalidator) ReferenceService {
	return &referenceService{statuses: statuses, types: types, cache: cache}
}

// ── Statuses ──────────────────────────────────────────────────────────────────

func (s *referenceService) CreateStatus(ctx context.Context, req dto.CreateStatusRequest) (*dto.StatusResponse, error) {
	name := strings.TrimSpace(req.Name)
	if existing, err := s.statuses.FindByName(ctx, name); err == nil && existing != nil {
		return nil, &ValidationError{Fields: map[string]string{"name": "already exists"}}
	}
	st := &model.ContractStatus{
		Name:        name,
		Description: blankToNil(req.Description),
		Color:       req.Color,
		SortOrder:   req.SortOrder,
		Active:      true,
	}
	if st.Color == "" {
		st.Color = defaultStatusColor
	}
	if req.Active != nil {
		st.Active = *req.Active
	}
	if err := s.statuses.Create(ctx, st); err != nil {
		return nil, err
	}
	resp := toStatusResponse(st)
	return &resp, nil
}

func (s *referenceService) ListStatuses(ctx context.Context, onlyActive bool) ([]dto.StatusResponse, error) {
	list, err := s.statuses.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StatusResponse, len(list))
	for i := range list {
		out[i] = toStatusResponse(&list[i])
	}
	return out, nil
}

func (s *referenceService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.StatusResponse, error) {
	st, err := s.statuses.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "status")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if other, err := s.statuses.FindByName(ctx, name); err == nil && other.ID != st.ID {
			return nil, &ValidationError{Fields: map[string]string{"name": "already exists"}}
		}
		st.Name = name
	}
	if req.Description != nil {
		st.Description = blankToNil(req.Description)
	}
	if req.Color != nil {
		st.Color = *req.Color
	}
	if req.SortOrder != nil {
		st.SortOrder = *req.SortOrder
	}
	if req.Active != nil {
		st.Active = *req.Active
	}
	if err := s.statuses.Update(ctx, st); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	resp := toStatusResponse(st)
	return &resp, nil
}

// DeleteStatus refuses to remove a status that any contract still uses.
func (s *referenceService) DeleteStatus(ctx context.Context, id uuid.UUID) error {
	if _, err := s.statuses.FindByID(ctx, id); err != nil {
		return notFound(err, "status")
	}
	inUse, err := s.statuses.InUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrReferenced
	}
	return s.statuses.Delete(ctx, id)
}

// ── Types ─────────────────────────────────────────────────────────────────────

func (s *referenceService) CreateType(ctx context.Context, req dto.CreateTypeRequest) (*dto.TypeResponse, error) {
	name := strings.TrimSpace(req.Name)
	if existing, err := s.types.FindByName(ctx, name); err == nil && existing != nil {
		return nil, &ValidationError{Fields: map[string]string{"name": "already exists"}}
	}
	t := &model.ContractType{Name: name, Description: blankToNil(req.Description), Active: true}
	if req.Active != nil {
		t.Active = *req.Active
	}
	if err := s.types.Create(ctx, t); err != nil {
		return nil, err
	}
	resp := toTypeResponse(t)
	return &resp, nil
}

func (s *referenceService) ListTypes(ctx context.Context, onlyActive bool) ([]dto.TypeResponse, error) {
	list, err := s.types.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TypeResponse, len(list))
	for i := range list {
		out[i] = toTypeResponse(&list[i])
	}
	return out, nil
}

func (s *referenceService) UpdateType(ctx context.Context, id uuid.UUID, req dto.UpdateTypeRequest) (*dto.TypeResponse, error) {
	t, err := s.types.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "type")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if other, err := s.types.FindByName(ctx, name); err == nil && other.ID != t.ID {
			return nil, &ValidationError{Fields: map[string]string{"name": "already exists"}}
		}
		t.Name = name
	}
	if req.Description != nil {
		t.Description = blankToNil(req.Description)
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	if err := s.types.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	resp := toTypeResponse(t)
	return &resp, nil
}

func (s *referenceService) DeleteType(ctx context.Context, id uuid.UUID) error {
	if _, err := s.types.FindByID(ctx, id); err != nil {
		return notFound(err, "type")
	}
	inUse, err := s.types.InUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrReferenced
	}
	return s.types.Delete(ctx, id)
}

func (s *referenceService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func toStatusResponse(st *model.ContractStatus) dto.StatusResponse {
	return dto.StatusResponse{
		ID: st.ID.String(), Name: st.Name, Description: st.Description,
		Color: st.Color, SortOrder: st.SortOrder, Active: st.Active,
	}
}

func toTypeResponse(t *model.ContractType) dto.TypeResponse {
	return dto.TypeResponse{ID: t.ID.String(), Name: t.Name, Description: t.Description, Active: t.Active}
}
