package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"filestore/internal/config"
	"filestore/internal/model"
	"filestore/internal/repository"
	"filestore/internal/storage"
	"filestore/internal/validation"
)

// UploadInput carries the metadata of an upload request.
type UploadInput struct {
	OwnerID      string
	FileName     string
	ContentType  string
	Size         int64
	Category     model.FileCategory
	KycProcessID string
	Reference    string
	Description  string
	// MakePermanent promotes the file right after staging, in one call.
	MakePermanent bool
}

// FileContent bundles a content stream with the file it belongs to.
type FileContent struct {
	File *model.StoredFile
	Body io.ReadCloser
}

// FileService defines the file lifecycle use cases: staging an upload,
// promoting it to permanent storage, deleting it, and reading it back.
type FileService interface {
	// Upload validates and stages the content in temporary storage, records
	// the file in the ledger, and optionally promotes it immediately.
	Upload(ctx context.Context, r io.Reader, in UploadInput) (*model.StoredFile, error)

	// GetContent streams the file bytes back alongside its metadata.
	GetContent(ctx context.Context, id string) (*FileContent, error)

	// MakePermanent copies the bytes to a permanent namespace and clears the
	// expiry. Idempotent for files that are already permanent.
	MakePermanent(ctx context.Context, id string, requester Requester) (*model.StoredFile, error)

	// Delete removes the backing bytes (best effort) and soft-deletes the
	// ledger row. Only the owner or an administrator may delete.
	Delete(ctx context.Context, id string, requester Requester) error

	// ListByUser returns the user's non-deleted files, optionally filtered by
	// category. Non-admins may only list their own files.
	ListByUser(ctx context.Context, userID string, category model.FileCategory, requester Requester) ([]model.StoredFile, error)

	// ListByReference returns non-deleted files carrying the reference.
	// Non-admins see only their own.
	ListByReference(ctx context.Context, reference string, requester Requester) ([]model.StoredFile, error)
}

// fileService is a concrete implementation of FileService.
type fileService struct {
	store     storage.Storage
	repo      repository.FileRepository
	validator *validation.Validator
	ttl       time.Duration
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository, validator *validation.Validator, cfg config.FileStorageConfig) FileService {
	ttl := time.Duration(cfg.ExpiryDays) * 24 * time.Hour
	if ttl <= 0 {
		ttl = model.TemporaryTTL
	}
	return &fileService{store: store, repo: repo, validator: validator, ttl: ttl}
}

// tempBucketFor derives the staging namespace for a category. Identity
// documents go to the per-user kyc-temp namespace, everything else to the
// generic per-user one.
func tempBucketFor(category model.FileCategory, userID string) string {
	if category.IsIdentity() {
		return "kyc-temp-" + userID
	}
	return "user-" + userID
}

// permBucketFor derives the permanent namespace for a category.
func permBucketFor(category model.FileCategory, userID string) string {
	if category.IsIdentity() {
		return "kyc-" + userID
	}
	return "user-" + userID + "-permanent"
}

func (s *fileService) Upload(ctx context.Context, r io.Reader, in UploadInput) (*model.StoredFile, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: reader is nil", ErrValidation)
	}
	if in.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if !s.validator.IsWithinSizeLimit(in.Size) {
		return nil, fmt.Errorf("%w: file size exceeds the configured limit", ErrValidation)
	}
	if in.Category.IsImageClass() && !s.validator.IsAllowedImage(in.FileName, in.ContentType) {
		return nil, fmt.Errorf("%w: file type is not an allowed image", ErrValidation)
	}

	// The digest consumes the whole stream and restores the position, so it
	// must complete before the same stream is handed to the backend.
	hash, err := storage.Digest(r)
	if err != nil {
		return nil, fmt.Errorf("compute hash: %w", err)
	}

	bucket := tempBucketFor(in.Category, in.OwnerID)
	key, err := s.store.StageTemporary(ctx, r, in.FileName, bucket, in.Size, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)
	file := &model.StoredFile{
		ID:           uuid.NewString(),
		UserID:       in.OwnerID,
		OriginalName: in.FileName,
		Extension:    validation.ExtensionOf(in.FileName),
		ContentType:  in.ContentType,
		Size:         in.Size,
		Category:     in.Category,
		Status:       model.FileStatusTemporary,
		Hash:         hash,
		StoragePath:  key,
		Bucket:       bucket,
		KycProcessID: in.KycProcessID,
		Reference:    in.Reference,
		Description:  in.Description,
		ExpiresAt:    &expiresAt,
		Audit:        model.Audit{CreatedBy: in.OwnerID, CreatedAt: now},
	}

	stored, err := s.repo.Create(ctx, file)
	if err != nil {
		// Rollback: drop the staged object so no orphan is left behind.
		if delErr := s.store.Remove(ctx, key, bucket); delErr != nil {
			return nil, fmt.Errorf("ledger insert failed: %v; rollback remove failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("ledger insert failed: %w", err)
	}

	if in.MakePermanent {
		return s.promote(ctx, stored, Requester{UserID: in.OwnerID})
	}
	return stored, nil
}

func (s *fileService) GetContent(ctx context.Context, id string) (*FileContent, error) {
	file, err := s.fetchLive(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := s.store.Read(ctx, file.StoragePath, file.Bucket)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: file content missing", ErrNotFound)
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	return &FileContent{File: file, Body: body}, nil
}

func (s *fileService) MakePermanent(ctx context.Context, id string, requester Requester) (*model.StoredFile, error) {
	file, err := s.fetchLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.Status == model.FileStatusPermanent {
		// Idempotent: the current location is already final.
		return file, nil
	}
	return s.promote(ctx, file, requester)
}

// promote copies the bytes into the permanent namespace and records the move.
// The temporary source is kept; the reclaimer collects it after expiry.
func (s *fileService) promote(ctx context.Context, file *model.StoredFile, requester Requester) (*model.StoredFile, error) {
	dstBucket := permBucketFor(file.Category, file.UserID)
	newKey, err := s.store.Promote(ctx, file.StoragePath, file.OriginalName, file.Bucket, dstBucket)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: staged content missing", ErrNotFound)
		}
		return nil, fmt.Errorf("promote content: %w", err)
	}

	file.MakePermanent(newKey, dstBucket)
	file.StampModified(requester.UserID, time.Now().UTC())
	if err := s.repo.Update(ctx, file); err != nil {
		return nil, fmt.Errorf("record promotion: %w", err)
	}
	return file, nil
}

func (s *fileService) Delete(ctx context.Context, id string, requester Requester) error {
	file, err := s.fetchLive(ctx, id)
	if err != nil {
		return err
	}
	if !requester.IsAdmin && file.UserID != requester.UserID {
		return fmt.Errorf("%w: not the file owner", ErrForbidden)
	}

	// Physical removal is best effort. A failure is logged and the ledger
	// update still proceeds; a stray blob is recoverable, a live ledger row
	// for dead bytes is not.
	if err := s.store.Remove(ctx, file.StoragePath, file.Bucket); err != nil {
		log.Printf("file %s: physical removal failed, continuing: %v", file.ID, err)
	}

	file.MarkDeleted(requester.UserID, time.Now().UTC())
	if err := s.repo.Update(ctx, file); err != nil {
		return fmt.Errorf("record deletion: %w", err)
	}
	return nil
}

func (s *fileService) ListByUser(ctx context.Context, userID string, category model.FileCategory, requester Requester) ([]model.StoredFile, error) {
	if !requester.IsAdmin && requester.UserID != userID {
		return nil, fmt.Errorf("%w: cannot list another user's files", ErrForbidden)
	}
	files, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.StoredFile, 0, len(files))
	for _, f := range files {
		if f.Status == model.FileStatusDeleted {
			continue
		}
		if category != "" && f.Category != category {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *fileService) ListByReference(ctx context.Context, reference string, requester Requester) ([]model.StoredFile, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrValidation)
	}
	files, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	out := make([]model.StoredFile, 0, len(files))
	for _, f := range files {
		if f.Status == model.FileStatusDeleted {
			continue
		}
		if !requester.IsAdmin && f.UserID != requester.UserID {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// fetchLive loads a file and maps absence or soft deletion to ErrNotFound.
func (s *fileService) fetchLive(ctx context.Context, id string) (*model.StoredFile, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	file, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: file %s", ErrNotFound, id)
		}
		return nil, err
	}
	if file.Status == model.FileStatusDeleted {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, id)
	}
	return file, nil
}
