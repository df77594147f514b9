package service

import (
	"context"
	"errors"
	"strings"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderService interface {
	List(ctx context.Context, filter dto.ReminderFilter) (*dto.ReminderListResponse, error)
	Create(ctx context.Context, actor *uuid.UUID, req dto.CreateReminderRequest) (*dto.ReminderResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateReminderRequest) (*dto.ReminderResponse, error)
	// Toggle flips completion, stamping or clearing CompletedDate.
	Toggle(ctx context.Context, id uuid.UUID) (*dto.ReminderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reminderService struct {
	repo      repository.ReminderRepository
	contracts repository.ContractRepository
	users     repository.UserRepository
	clock     clock.Clock
	cache     CacheInvalidator
}

func NewReminderService(repo repository.ReminderRepository, contracts repository.ContractRepository, users repository.UserRepository, cache CacheInvalidator, clk clock.Clock) ReminderService {
	if clk == nil {
		clk = clock.System()
	}
	return &reminderService{repo: repo, contracts: contracts, users: users, cache: cache, clock: clk}
}

func (s *reminderService) List(ctx context.Context, filter dto.ReminderFilter) (*dto.ReminderListResponse, error) {
	now := s.clock.Now()
	list, total, err := s.repo.List(ctx, filter, now)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ReminderResponse, len(list))
	for i := range list {
		data[i] = toReminderResponse(&list[i], now)
	}
	return &dto.ReminderListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *reminderService) Create(ctx context.Context, actor *uuid.UUID, req dto.CreateReminderRequest) (*dto.ReminderResponse, error) {
	errs := fieldErrors{}
	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		errs.add("contract_id", "must be a valid id")
	}
	r := &model.ContractReminder{
		ID:          uuid.New(),
		ContractID:  contractID,
		Title:       strings.TrimSpace(req.Title),
		Description: blankToNil(req.Description),
		DueDate:     parseDate(req.DueDate, "due_date", errs),
		CreatedByID: actor,
	}
	r.AssignedToID = parseOptionalID(req.AssignedToID, "assigned_to_id", errs)
	if r.Title == "" {
		errs.add("title", "is required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, r, errs); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	resp := toReminderResponse(r, s.clock.Now())
	return &resp, nil
}

func (s *reminderService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateReminderRequest) (*dto.ReminderResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "reminder")
	}
	errs := fieldErrors{}
	if req.Title != nil {
		r.Title = strings.TrimSpace(*req.Title)
		if r.Title == "" {
			errs.add("title", "is required")
		}
	}
	if req.Description != nil {
		r.Description = blankToNil(req.Description)
	}
	if req.DueDate != nil {
		r.DueDate = parseDate(*req.DueDate, "due_date", errs)
	}
	if req.AssignedToID != nil {
		r.AssignedToID = parseOptionalID(req.AssignedToID, "assigned_to_id", errs)
		r.AssignedTo = nil
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, r, errs); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	resp := toReminderResponse(r, s.clock.Now())
	return &resp, nil
}

func (s *reminderService) Toggle(ctx context.Context, id uuid.UUID) (*dto.ReminderResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "reminder")
	}
	now := s.clock.Now()
	r.IsCompleted = !r.IsCompleted
	if r.IsCompleted {
		t := now.UTC()
		r.CompletedDate = &t
	} else {
		r.CompletedDate = nil
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	resp := toReminderResponse(r, now)
	return &resp, nil
}

func (s *reminderService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "reminder")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// resolve loads the contract and assignee, recording missing ones in errs.
func (s *reminderService) resolve(ctx context.Context, r *model.ContractReminder, errs fieldErrors) error {
	c, err := s.contracts.FindByID(ctx, r.ContractID)
	switch {
	case err == nil:
		r.Contract = c
	case errors.Is(err, gorm.ErrRecordNotFound):
		errs.add("contract_id", "does not exist")
	default:
		return err
	}
	if r.AssignedToID != nil && (r.AssignedTo == nil || r.AssignedTo.ID != *r.AssignedToID) {
		u, err := s.users.FindByID(ctx, *r.AssignedToID)
		switch {
		case err == nil:
			r.AssignedTo = u
		case errors.Is(err, gorm.ErrRecordNotFound):
			errs.add("assigned_to_id", "does not exist")
		default:
			return err
		}
	}
	return nil
}

func (s *reminderService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
