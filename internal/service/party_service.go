package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/audit"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartyService interface {
	List(ctx context.Context, contractID uuid.UUID) ([]dto.PartyResponse, error)
	Add(ctx context.Context, contractID uuid.UUID, actor *uuid.UUID, req dto.AddPartyRequest) (*dto.PartyResponse, error)
	Update(ctx context.Context, contractID, partyID uuid.UUID, req dto.UpdatePartyRequest) (*dto.PartyResponse, error)
	Remove(ctx context.Context, contractID, partyID uuid.UUID, actor *uuid.UUID) error
}

type partyService struct {
	repo      repository.PartyRepository
	contracts repository.ContractRepository
	users     repository.UserRepository
	recorder  *audit.Recorder
}

func NewPartyService(repo repository.PartyRepository, contracts repository.ContractRepository, users repository.UserRepository, recorder *audit.Recorder) PartyService {
	return &partyService{repo: repo, contracts: contracts, users: users, recorder: recorder}
}

func (s *partyService) List(ctx context.Context, contractID uuid.UUID) ([]dto.PartyResponse, error) {
	if _, err := s.contracts.FindByID(ctx, contractID); err != nil {
		return nil, notFound(err, "contract")
	}
	list, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PartyResponse, len(list))
	for i := range list {
		out[i] = toPartyResponse(&list[i])
	}
	return out, nil
}

// Add links a user to the contract and records a history event in the same
// transaction. A user can be a party only once per contract.
func (s *partyService) Add(ctx context.Context, contractID uuid.UUID, actor *uuid.UUID, req dto.AddPartyRequest) (*dto.PartyResponse, error) {
	if _, err := s.contracts.FindByID(ctx, contractID); err != nil {
		return nil, notFound(err, "contract")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"user_id": "must be a valid id"}}
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Fields: map[string]string{"user_id": "does not exist"}}
		}
		return nil, err
	}

	p := &model.ContractParty{
		ID:         uuid.New(),
		ContractID: contractID,
		UserID:     userID,
		Role:       req.Role,
		IsPrimary:  req.IsPrimary,
		Notes:      blankToNil(req.Notes),
		User:       user,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, p); err != nil {
			return err
		}
		label := partyLabel(user.Username, p.Role)
		_, err := s.recorder.RecordEvent(ctx, tx, contractID, actor,
			fmt.Sprintf("Party added: %s.", label),
			model.FieldChanges{"party": {New: &label}})
		return err
	})
	if err != nil {
		if repository.IsUniqueViolation(err, "contract_party") {
			return nil, &ValidationError{Fields: map[string]string{"user_id": "is already a party of this contract"}}
		}
		return nil, err
	}
	resp := toPartyResponse(p)
	return &resp, nil
}

func (s *partyService) Update(ctx context.Context, contractID, partyID uuid.UUID, req dto.UpdatePartyRequest) (*dto.PartyResponse, error) {
	p, err := s.find(ctx, contractID, partyID)
	if err != nil {
		return nil, err
	}
	if req.Role != nil {
		p.Role = *req.Role
	}
	if req.IsPrimary != nil {
		p.IsPrimary = *req.IsPrimary
	}
	if req.Notes != nil {
		p.Notes = blankToNil(req.Notes)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := toPartyResponse(p)
	return &resp, nil
}

func (s *partyService) Remove(ctx context.Context, contractID, partyID uuid.UUID, actor *uuid.UUID) error {
	p, err := s.find(ctx, contractID, partyID)
	if err != nil {
		return err
	}
	username := p.UserID.String()
	if p.User != nil {
		username = p.User.Username
	}
	label := partyLabel(username, p.Role)
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, p.ID); err != nil {
			return err
		}
		_, err := s.recorder.RecordEvent(ctx, tx, contractID, actor,
			fmt.Sprintf("Party removed: %s.", label),
			model.FieldChanges{"party": {Old: &label}})
		return err
	})
}

// find loads a party and checks it belongs to contractID.
func (s *partyService) find(ctx context.Context, contractID, partyID uuid.UUID) (*model.ContractParty, error) {
	p, err := s.repo.FindByID(ctx, partyID)
	if err != nil {
		return nil, notFound(err, "party")
	}
	if p.ContractID != contractID {
		return nil, fmt.Errorf("party %w", ErrNotFound)
	}
	return p, nil
}

func partyLabel(username, role string) string {
	return fmt.Sprintf("%s (%s)", username, role)
}

func toPartyResponse(p *model.ContractParty) dto.PartyResponse {
	resp := dto.PartyResponse{
		ID:         p.ID.String(),
		ContractID: p.ContractID.String(),
		User:       dto.RefResponse{ID: p.UserID.String()},
		Role:       p.Role,
		IsPrimary:  p.IsPrimary,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt.Format(timestampLayout),
	}
	if p.User != nil {
		resp.User.Name = p.User.Name
	}
	return resp
}
