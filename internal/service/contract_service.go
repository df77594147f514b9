package service

import (
	"context"
	"errors"
	"strings"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/audit"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/numbering"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ContractService interface {
	Create(ctx context.Context, actor *uuid.UUID, req dto.CreateContractRequest) (*dto.ContractResponse, error)
	Update(ctx context.Context, id uuid.UUID, actor *uuid.UUID, req dto.UpdateContractRequest) (*dto.ContractResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ContractResponse, error)
	List(ctx context.Context, filter dto.ContractFilter) (*dto.ContractListResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// CheckNumber reports whether number is well formed and unused, ignoring
	// the contract identified by exclude.
	CheckNumber(ctx context.Context, number string, exclude *uuid.UUID) (*dto.NumberAvailabilityResponse, error)
}

// CacheInvalidator drops derived data after a contract mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// errNumberTaken rolls back one creation attempt whose number lost the race.
var errNumberTaken = errors.New("contract number taken")

type contractService struct {
	repo        repository.ContractRepository
	statuses    repository.StatusRepository
	types       repository.TypeRepository
	users       repository.UserRepository
	recorder    *audit.Recorder
	allocator   *numbering.Allocator
	cache       CacheInvalidator
	clock       clock.Clock
	maxAttempts int
}

func NewContractService(
	repo repository.ContractRepository,
	statuses repository.StatusRepository,
	types repository.TypeRepository,
	users repository.UserRepository,
	recorder *audit.Recorder,
	allocator *numbering.Allocator,
	cache CacheInvalidator,
	clk clock.Clock,
	maxAttempts int,
) ContractService {
	if clk == nil {
		clk = clock.System()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &contractService{
		repo: repo, statuses: statuses, types: types, users: users,
		recorder: recorder, allocator: allocator, cache: cache,
		clock: clk, maxAttempts: maxAttempts,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// Each attempt is its own transaction:
//   1. allocate the next number for the current year (unless the caller
//      supplied a well-formed one)
//   2. insert against the unique constraint on contract_number
//   3. record the creation history entry
// A unique-constraint conflict rolls the attempt back and starts a new one;
// any other failure aborts. History is never written for a rolled-back insert.

func (s *contractService) Create(ctx context.Context, actor *uuid.UUID, req dto.CreateContractRequest) (*dto.ContractResponse, error) {
	errs := fieldErrors{}
	c := contractFromCreate(req, errs)
	validateContract(c, errs)
	if err := s.resolveReferences(ctx, c, errs); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	c.ID = uuid.New()
	c.CreatedByID = actor

	// Malformed caller-supplied numbers are discarded, never stored.
	supplied := ""
	if req.ContractNumber != nil {
		if n := strings.TrimSpace(*req.ContractNumber); numbering.Valid(n) {
			supplied = n
		}
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			number := supplied
			if number == "" {
				src := numbering.SourceFunc(func(ctx context.Context, prefix string) ([]string, error) {
					return s.repo.NumbersWithPrefix(ctx, tx, prefix)
				})
				next, err := s.allocator.Next(ctx, src)
				if err != nil {
					return err
				}
				number = next
			}
			c.ContractNumber = number

			outcome, err := s.repo.InsertIfUnique(ctx, tx, c)
			switch outcome {
			case repository.InsertConflict:
				return errNumberTaken
			case repository.InsertFatal:
				return err
			}

			_, err = s.recorder.Record(ctx, tx, c.ID, audit.EmptySnapshot(), audit.Capture(c), actor, audit.DescCreated)
			return err
		})

		if err == nil {
			log.Info().Str("contract_id", c.ID.String()).Str("contract_number", c.ContractNumber).
				Int("attempt", attempt).Msg("contract created")
			s.invalidate(ctx)
			resp := toContractResponse(c, s.clock.Now())
			return &resp, nil
		}
		if !errors.Is(err, errNumberTaken) {
			return nil, err
		}
		if supplied != "" {
			return nil, &ValidationError{Fields: map[string]string{"contract_number": "already in use"}}
		}
		log.Warn().Str("contract_number", c.ContractNumber).Int("attempt", attempt).
			Int("max_attempts", s.maxAttempts).Msg("contract number taken concurrently, retrying")
	}
	return nil, ErrNumberConflict
}

// ── Update ────────────────────────────────────────────────────────────────────
// The contract number is immutable. The save and its history entry share one
// transaction; an update that changes no tracked field writes no history.

func (s *contractService) Update(ctx context.Context, id uuid.UUID, actor *uuid.UUID, req dto.UpdateContractRequest) (*dto.ContractResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "contract")
	}
	before := audit.Capture(c)

	errs := fieldErrors{}
	applyUpdate(c, req, errs)
	validateContract(c, errs)
	if err := s.resolveReferences(ctx, c, errs); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, c); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, tx, c.ID, before, audit.Capture(c), actor, audit.DescUpdated)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	resp := toContractResponse(c, s.clock.Now())
	return &resp, nil
}

func (s *contractService) Get(ctx context.Context, id uuid.UUID) (*dto.ContractResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "contract")
	}
	resp := toContractResponse(c, s.clock.Now())
	return &resp, nil
}

func (s *contractService) List(ctx context.Context, filter dto.ContractFilter) (*dto.ContractListResponse, error) {
	now := s.clock.Now()
	contracts, total, err := s.repo.List(ctx, filter, now)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ContractResponse, len(contracts))
	for i := range contracts {
		data[i] = toContractResponse(&contracts[i], now)
	}
	return &dto.ContractListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Delete removes the contract; parties, reminders, attachments and history
// rows go with it through ON DELETE CASCADE.
func (s *contractService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "contract")
	}
	log.Info().Str("contract_id", id.String()).Msg("contract deleted")
	s.invalidate(ctx)
	return nil
}

func (s *contractService) CheckNumber(ctx context.Context, number string, exclude *uuid.UUID) (*dto.NumberAvailabilityResponse, error) {
	number = strings.TrimSpace(number)
	resp := &dto.NumberAvailabilityResponse{ContractNumber: number, ValidFormat: numbering.Valid(number)}
	if !resp.ValidFormat {
		return resp, nil
	}
	taken, err := s.repo.NumberTaken(ctx, number, exclude)
	if err != nil {
		return nil, err
	}
	resp.Available = !taken
	return resp, nil
}

func (s *contractService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
