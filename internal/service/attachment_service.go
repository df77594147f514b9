package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/audit"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// BlobStore is the object storage used for attachments and contract documents.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key, filename string) (string, error)
	Remove(ctx context.Context, key string) error
	URLExpiry() time.Duration
}

// Upload is one incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Description *string
	IsPublic    bool
}

// documentKinds maps each contract document slot to its accepted extensions.
var documentKinds = map[string]map[string]bool{
	"contract_document": {"pdf": true, "doc": true, "docx": true},
	"fiscal_portaria":   {"pdf": true, "doc": true, "docx": true},
	"additive_term":     {"pdf": true, "doc": true, "docx": true},
	"document":          {"pdf": true, "doc": true, "docx": true, "odt": true},
}

type AttachmentService interface {
	List(ctx context.Context, contractID uuid.UUID) ([]dto.AttachmentResponse, error)
	Upload(ctx context.Context, contractID uuid.UUID, actor *uuid.UUID, up Upload) (*dto.AttachmentResponse, error)
	Download(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*dto.DownloadResponse, error)
	Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error
	// UploadDocument stores one of the contract's fixed document slots.
	UploadDocument(ctx context.Context, contractID uuid.UUID, kind string, actor *uuid.UUID, up Upload) (*dto.ContractResponse, error)
	DocumentURL(ctx context.Context, contractID uuid.UUID, kind string) (*dto.DownloadResponse, error)
}

type attachmentService struct {
	repo      repository.AttachmentRepository
	contracts repository.ContractRepository
	blobs     BlobStore
	recorder  *audit.Recorder
	clock     clock.Clock
	maxBytes  int64
}

func NewAttachmentService(repo repository.AttachmentRepository, contracts repository.ContractRepository, blobs BlobStore, recorder *audit.Recorder, clk clock.Clock, maxBytes int64) AttachmentService {
	if clk == nil {
		clk = clock.System()
	}
	return &attachmentService{repo: repo, contracts: contracts, blobs: blobs, recorder: recorder, clock: clk, maxBytes: maxBytes}
}

func (s *attachmentService) List(ctx context.Context, contractID uuid.UUID) ([]dto.AttachmentResponse, error) {
	if _, err := s.contracts.FindByID(ctx, contractID); err != nil {
		return nil, notFound(err, "contract")
	}
	list, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AttachmentResponse, len(list))
	for i := range list {
		out[i] = toAttachmentResponse(&list[i])
	}
	return out, nil
}

// ── Upload ────────────────────────────────────────────────────────────────────
// The object is written first; the row and its history event share a
// transaction. If that transaction fails the object is removed again.

func (s *attachmentService) Upload(ctx context.Context, contractID uuid.UUID, actor *uuid.UUID, up Upload) (*dto.AttachmentResponse, error) {
	if s.blobs == nil {
		return nil, ErrStorageUnavailable
	}
	if _, err := s.contracts.FindByID(ctx, contractID); err != nil {
		return nil, notFound(err, "contract")
	}
	ext, err := s.checkFile(up, model.AttachmentExtensions)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	a := &model.ContractAttachment{
		ID:           id,
		ContractID:   contractID,
		ObjectKey:    fmt.Sprintf("contracts/%s/attachments/%s.%s", contractID, id, ext),
		Name:         path.Base(up.Filename),
		Description:  blankToNil(up.Description),
		UploadedByID: actor,
		UploadedAt:   s.clock.Now().UTC(),
		FileSize:     up.Size,
		FileType:     ext,
		IsPublic:     up.IsPublic,
	}
	if err := s.blobs.Put(ctx, a.ObjectKey, up.Body, up.Size, up.ContentType); err != nil {
		return nil, err
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, a); err != nil {
			return err
		}
		name := a.Name
		_, err := s.recorder.RecordEvent(ctx, tx, contractID, actor,
			fmt.Sprintf("Attachment uploaded: %s.", a.Name),
			model.FieldChanges{"attachment": {New: &name}})
		return err
	})
	if err != nil {
		s.removeQuietly(ctx, a.ObjectKey)
		return nil, err
	}
	resp := toAttachmentResponse(a)
	return &resp, nil
}

// Download returns a presigned URL and records who fetched the file.
func (s *attachmentService) Download(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*dto.DownloadResponse, error) {
	if s.blobs == nil {
		return nil, ErrStorageUnavailable
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "attachment")
	}
	url, err := s.blobs.PresignedURL(ctx, a.ObjectKey, a.Name)
	if err != nil {
		return nil, err
	}
	if _, err := s.recorder.RecordEvent(ctx, nil, a.ContractID, actor,
		fmt.Sprintf("Attachment downloaded: %s.", a.Name), nil); err != nil {
		return nil, err
	}
	return &dto.DownloadResponse{URL: url, ExpiresIn: int(s.blobs.URLExpiry().Seconds())}, nil
}

func (s *attachmentService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "attachment")
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, a.ID); err != nil {
			return err
		}
		name := a.Name
		_, err := s.recorder.RecordEvent(ctx, tx, a.ContractID, actor,
			fmt.Sprintf("Attachment deleted: %s.", a.Name),
			model.FieldChanges{"attachment": {Old: &name}})
		return err
	})
	if err != nil {
		return err
	}
	s.removeQuietly(ctx, a.ObjectKey)
	return nil
}

// ── Contract documents ────────────────────────────────────────────────────────

func (s *attachmentService) UploadDocument(ctx context.Context, contractID uuid.UUID, kind string, actor *uuid.UUID, up Upload) (*dto.ContractResponse, error) {
	allowed, ok := documentKinds[kind]
	if !ok {
		return nil, fmt.Errorf("document kind %q %w", kind, ErrNotFound)
	}
	if s.blobs == nil {
		return nil, ErrStorageUnavailable
	}
	c, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, notFound(err, "contract")
	}
	ext, err := s.checkFile(up, allowed)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("contracts/%s/documents/%s/%s.%s", contractID, kind, uuid.New(), ext)
	if err := s.blobs.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, err
	}
	previous := documentKey(c, kind)

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.contracts.UpdateDocument(ctx, tx, contractID, kind, &key); err != nil {
			return err
		}
		name := path.Base(up.Filename)
		change := model.FieldChange{New: &name}
		if previous != nil {
			old := path.Base(*previous)
			change.Old = &old
		}
		_, err := s.recorder.RecordEvent(ctx, tx, contractID, actor,
			fmt.Sprintf("Document uploaded: %s.", kind),
			model.FieldChanges{kind: change})
		return err
	})
	if err != nil {
		s.removeQuietly(ctx, key)
		return nil, err
	}
	if previous != nil {
		s.removeQuietly(ctx, *previous)
	}

	setDocumentKey(c, kind, &key)
	resp := toContractResponse(c, s.clock.Now())
	return &resp, nil
}

func (s *attachmentService) DocumentURL(ctx context.Context, contractID uuid.UUID, kind string) (*dto.DownloadResponse, error) {
	if _, ok := documentKinds[kind]; !ok {
		return nil, fmt.Errorf("document kind %q %w", kind, ErrNotFound)
	}
	if s.blobs == nil {
		return nil, ErrStorageUnavailable
	}
	c, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, notFound(err, "contract")
	}
	key := documentKey(c, kind)
	if key == nil {
		return nil, fmt.Errorf("document %w", ErrNotFound)
	}
	filename := fmt.Sprintf("%s-%s%s", c.ContractNumber, kind, path.Ext(*key))
	url, err := s.blobs.PresignedURL(ctx, *key, filename)
	if err != nil {
		return nil, err
	}
	return &dto.DownloadResponse{URL: url, ExpiresIn: int(s.blobs.URLExpiry().Seconds())}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// checkFile validates size and extension and returns the lower-case extension.
func (s *attachmentService) checkFile(up Upload, allowed map[string]bool) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(up.Filename), "."))
	if !allowed[ext] {
		return "", &ValidationError{Fields: map[string]string{"file": fmt.Sprintf("extension %q is not allowed", ext)}}
	}
	if up.Size <= 0 {
		return "", &ValidationError{Fields: map[string]string{"file": "is empty"}}
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return "", &ValidationError{Fields: map[string]string{"file": fmt.Sprintf("exceeds %d bytes", s.maxBytes)}}
	}
	return ext, nil
}

func (s *attachmentService) removeQuietly(ctx context.Context, key string) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.Remove(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("storage: orphaned object left behind")
	}
}

func documentKey(c *model.Contract, kind string) *string {
	switch kind {
	case "contract_document":
		return c.ContractDocument
	case "fiscal_portaria":
		return c.FiscalPortaria
	case "additive_term":
		return c.AdditiveTerm
	case "document":
		return c.Document
	}
	return nil
}

func setDocumentKey(c *model.Contract, kind string, key *string) {
	switch kind {
	case "contract_document":
		c.ContractDocument = key
	case "fiscal_portaria":
		c.FiscalPortaria = key
	case "additive_term":
		c.AdditiveTerm = key
	case "document":
		c.Document = key
	}
}

func toAttachmentResponse(a *model.ContractAttachment) dto.AttachmentResponse {
	resp := dto.AttachmentResponse{
		ID:          a.ID.String(),
		ContractID:  a.ContractID.String(),
		Name:        a.Name,
		Description: a.Description,
		FileType:    a.FileType,
		FileSize:    a.FileSize,
		IsPublic:    a.IsPublic,
		UploadedAt:  a.UploadedAt.Format(timestampLayout),
	}
	if a.UploadedByID != nil {
		id := a.UploadedByID.String()
		resp.UploadedBy = &id
	}
	return resp
}
