package audit

import (
	"context"
	"fmt"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Canonical descriptions for the two diff-producing mutations.
const (
	DescCreated = "Contract created."
	DescUpdated = "Contract updated."
)

// HistoryWriter appends history rows inside the caller's transaction.
type HistoryWriter interface {
	Append(ctx context.Context, tx *gorm.DB, h *model.ContractHistory) error
}

// Recorder writes ContractHistory rows. It never updates an existing row.
type Recorder struct {
	store HistoryWriter
	clock clock.Clock
}

func NewRecorder(store HistoryWriter, c clock.Clock) *Recorder {
	if c == nil {
		c = clock.System()
	}
	return &Recorder{store: store, clock: c}
}

// Record diffs before against after and appends one history row with the
// changed fields. Nothing is written, and nil is returned, when no tracked
// field differs. Any write error must abort the caller's transaction.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, contractID uuid.UUID, before, after Snapshot, actor *uuid.UUID, description string) (*model.ContractHistory, error) {
	changes := Diff(before, after)
	if len(changes) == 0 {
		log.Debug().Str("contract_id", contractID.String()).Msg("audit: no tracked field changed")
		return nil, nil
	}
	return r.append(ctx, tx, contractID, actor, description, changes)
}

// RecordEvent appends a discrete event, such as an attachment upload, that is
// not a diff of tracked fields. changes may be empty.
func (r *Recorder) RecordEvent(ctx context.Context, tx *gorm.DB, contractID uuid.UUID, actor *uuid.UUID, description string, changes model.FieldChanges) (*model.ContractHistory, error) {
	if changes == nil {
		changes = model.FieldChanges{}
	}
	return r.append(ctx, tx, contractID, actor, description, changes)
}

func (r *Recorder) append(ctx context.Context, tx *gorm.DB, contractID uuid.UUID, actor *uuid.UUID, description string, changes model.FieldChanges) (*model.ContractHistory, error) {
	h := &model.ContractHistory{
		ID:                uuid.New(),
		ContractID:        contractID,
		ChangedByID:       actor,
		ChangeDate:        r.clock.Now().UTC(),
		ChangeDescription: description,
		ChangedFields:     datatypes.NewJSONType(changes),
	}
	if err := r.store.Append(ctx, tx, h); err != nil {
		return nil, fmt.Errorf("audit: append history: %w", err)
	}
	log.Debug().
		Str("contract_id", contractID.String()).
		Str("description", description).
		Int("fields", len(changes)).
		Msg("audit: history recorded")
	return h, nil
}
