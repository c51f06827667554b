package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"filestore/internal/model"
	"filestore/internal/repository"
	"filestore/internal/validation"
)

// KycUploadInput carries one identity-document upload into a verification case.
type KycUploadInput struct {
	IDOrToken   string
	FileName    string
	ContentType string
	Size        int64
	Category    model.FileCategory
	Requester   Requester
}

// KycProcessDetail is the read projection of a case together with its active
// (non-deleted) files.
type KycProcessDetail struct {
	Process *model.KycProcess  `json:"process"`
	Files   []model.StoredFile `json:"files"`
}

// KycService defines the identity-verification use cases.
type KycService interface {
	// Start returns the user's active case, creating one if none exists.
	// At most one non-terminal case exists per user at any time.
	Start(ctx context.Context, userID string) (*model.KycProcess, error)

	// Get resolves a case by id or session token, with its active files.
	Get(ctx context.Context, idOrToken string) (*KycProcessDetail, error)

	// UploadDocument stages an identity document into the case and
	// recomputes the case status from the attached document set.
	UploadDocument(ctx context.Context, r io.Reader, in KycUploadInput) (*model.StoredFile, error)

	// Complete records the terminal review decision. Administrators only.
	Complete(ctx context.Context, id string, approved bool, comment string, reviewer Requester) (*model.KycProcess, error)
}

type kycService struct {
	kycRepo   repository.KycRepository
	fileRepo  repository.FileRepository
	validator *validation.Validator
	files     FileService
}

// NewKycService constructs a new KycService. Document uploads delegate the
// staging work to the file service so both paths share one lifecycle.
func NewKycService(kycRepo repository.KycRepository, fileRepo repository.FileRepository, validator *validation.Validator, files FileService) KycService {
	return &kycService{kycRepo: kycRepo, fileRepo: fileRepo, validator: validator, files: files}
}

func (s *kycService) Start(ctx context.Context, userID string) (*model.KycProcess, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrValidation)
	}

	existing, err := s.kycRepo.FindActiveByUser(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		existing.UpdateActivity(time.Now().UTC())
		if err := s.kycRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("refresh case activity: %w", err)
		}
		return existing, nil
	}

	process := model.NewKycProcess(userID, time.Now().UTC())
	stored, err := s.kycRepo.Create(ctx, process)
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	return stored, nil
}

func (s *kycService) Get(ctx context.Context, idOrToken string) (*KycProcessDetail, error) {
	process, err := s.lookup(ctx, idOrToken)
	if err != nil {
		return nil, err
	}

	files, err := s.fileRepo.FindByKycProcess(ctx, process.ID)
	if err != nil {
		return nil, err
	}
	active := make([]model.StoredFile, 0, len(files))
	for _, f := range files {
		if f.Status != model.FileStatusDeleted {
			active = append(active, f)
		}
	}
	return &KycProcessDetail{Process: process, Files: active}, nil
}

func (s *kycService) UploadDocument(ctx context.Context, r io.Reader, in KycUploadInput) (*model.StoredFile, error) {
	if !in.Category.IsIdentity() {
		return nil, fmt.Errorf("%w: %s is not an identity document category", ErrValidation, in.Category)
	}
	if !s.validator.IsAllowedImage(in.FileName, in.ContentType) {
		return nil, fmt.Errorf("%w: only image files are allowed", ErrValidation)
	}
	if !s.validator.IsWithinSizeLimit(in.Size) {
		return nil, fmt.Errorf("%w: file size exceeds the configured limit", ErrValidation)
	}

	process, err := s.lookup(ctx, in.IDOrToken)
	if err != nil {
		return nil, err
	}
	// Anonymous continuation by token is allowed; an authenticated caller
	// must be the case owner.
	if in.Requester.UserID != "" && in.Requester.UserID != process.UserID && !in.Requester.IsAdmin {
		return nil, fmt.Errorf("%w: case belongs to another user", ErrForbidden)
	}
	if process.IsTerminal() {
		return nil, fmt.Errorf("%w: case already %s", ErrInvalidState, process.Status)
	}

	attached, err := s.fileRepo.FindByKycProcess(ctx, process.ID)
	if err != nil {
		return nil, err
	}
	if model.HasActiveCategory(attached, in.Category) {
		return nil, fmt.Errorf("%w: a %s document is already attached", ErrConflict, in.Category)
	}

	file, err := s.files.Upload(ctx, r, UploadInput{
		OwnerID:      process.UserID,
		FileName:     in.FileName,
		ContentType:  in.ContentType,
		Size:         in.Size,
		Category:     in.Category,
		KycProcessID: process.ID,
	})
	if err != nil {
		return nil, err
	}

	// Recompute the case status over the post-attachment document set.
	attached = append(attached, *file)
	if err := process.Recompute(attached, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := s.kycRepo.Update(ctx, process); err != nil {
		return nil, fmt.Errorf("record case status: %w", err)
	}
	return file, nil
}

func (s *kycService) Complete(ctx context.Context, id string, approved bool, comment string, reviewer Requester) (*model.KycProcess, error) {
	if !reviewer.IsAdmin {
		return nil, fmt.Errorf("%w: only administrators can verify", ErrForbidden)
	}

	process, err := s.kycRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: case %s", ErrNotFound, id)
		}
		return nil, err
	}
	if process.IsTerminal() {
		return nil, fmt.Errorf("%w: case already %s", ErrInvalidState, process.Status)
	}
	if process.Status != model.KycStatusDocumentsUploaded && process.Status != model.KycStatusUnderReview {
		return nil, fmt.Errorf("%w: case not ready for review, current status %s", ErrInvalidState, process.Status)
	}

	if err := process.CompleteVerification(approved, comment, reviewer.UserID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := s.kycRepo.Update(ctx, process); err != nil {
		return nil, fmt.Errorf("record review decision: %w", err)
	}
	return process, nil
}

// lookup resolves a case by id when the value parses as a UUID, falling back
// to the session token otherwise.
func (s *kycService) lookup(ctx context.Context, idOrToken string) (*model.KycProcess, error) {
	if idOrToken == "" {
		return nil, fmt.Errorf("%w: case id or token is required", ErrValidation)
	}

	var (
		process *model.KycProcess
		err     error
	)
	if _, parseErr := uuid.Parse(idOrToken); parseErr == nil {
		process, err = s.kycRepo.FindByID(ctx, idOrToken)
	} else {
		process, err = s.kycRepo.FindBySessionToken(ctx, idOrToken)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: case %s", ErrNotFound, idOrToken)
		}
		return nil, err
	}
	return process, nil
}
