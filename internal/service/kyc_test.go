package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"filestore/internal/model"
	repoMocks "filestore/internal/repository/mocks"
	storeMocks "filestore/internal/storage/mocks"
	"filestore/internal/validation"
)

// caseID parses as a UUID; sessionToken deliberately does not.
const (
	caseID       = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	sessionToken = "G04oui4vEdKDP0AW"
)

type kycFixture struct {
	kycRepo  *repoMocks.MockKycRepository
	fileRepo *repoMocks.MockFileRepository
	store    *storeMocks.MockStorage
	svc      KycService
}

func newKycFixture() *kycFixture {
	f := &kycFixture{
		kycRepo:  new(repoMocks.MockKycRepository),
		fileRepo: new(repoMocks.MockFileRepository),
		store:    new(storeMocks.MockStorage),
	}
	cfg := testFileConfig()
	files := NewFileService(f.store, f.fileRepo, validation.New(cfg), cfg)
	f.svc = NewKycService(f.kycRepo, f.fileRepo, validation.New(cfg), files)
	return f
}

func (f *kycFixture) assertExpectations(t *testing.T) {
	f.kycRepo.AssertExpectations(t)
	f.fileRepo.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func activeCase(status model.KycStatus) *model.KycProcess {
	return &model.KycProcess{
		ID:           caseID,
		UserID:       "user-1",
		Status:       status,
		SessionToken: sessionToken,
	}
}

func TestKycService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a new case when none is active", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindActiveByUser", ctx, "user-1").Return(nil, sql.ErrNoRows)
		f.kycRepo.On("Create", ctx, mock.MatchedBy(func(p *model.KycProcess) bool {
			return p.UserID == "user-1" &&
				p.Status == model.KycStatusNew &&
				len(p.SessionToken) == 16
		})).Return(func(ctx context.Context, p *model.KycProcess) *model.KycProcess { return p }, nil)

		process, err := f.svc.Start(ctx, "user-1")
		assert.NoError(t, err)
		assert.Equal(t, model.KycStatusNew, process.Status)
		f.assertExpectations(t)
	})

	t.Run("reuses the active case and refreshes activity", func(t *testing.T) {
		f := newKycFixture()
		existing := activeCase(model.KycStatusPartiallyCompleted)
		stale := existing.LastActivityAt

		f.kycRepo.On("FindActiveByUser", ctx, "user-1").Return(existing, nil)
		f.kycRepo.On("Update", ctx, existing).Return(nil)

		process, err := f.svc.Start(ctx, "user-1")
		assert.NoError(t, err)
		assert.True(t, process.Equal(existing))
		assert.True(t, process.LastActivityAt.After(stale))
		f.assertExpectations(t)
	})

	t.Run("empty user is rejected", func(t *testing.T) {
		f := newKycFixture()
		_, err := f.svc.Start(ctx, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("repository error is passed through", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindActiveByUser", ctx, "user-1").Return(nil, errors.New("db fail"))

		_, err := f.svc.Start(ctx, "user-1")
		assert.Error(t, err)
		f.assertExpectations(t)
	})
}

func TestKycService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves by id and filters deleted files", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(activeCase(model.KycStatusPartiallyCompleted), nil)
		f.fileRepo.On("FindByKycProcess", ctx, caseID).Return([]model.StoredFile{
			{ID: "1", Category: model.CategoryIDFront, Status: model.FileStatusTemporary},
			{ID: "2", Category: model.CategoryIDBack, Status: model.FileStatusDeleted},
		}, nil)

		detail, err := f.svc.Get(ctx, caseID)
		assert.NoError(t, err)
		assert.Len(t, detail.Files, 1)
		assert.Equal(t, "1", detail.Files[0].ID)
		f.assertExpectations(t)
	})

	t.Run("resolves by session token", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindBySessionToken", ctx, sessionToken).Return(activeCase(model.KycStatusNew), nil)
		f.fileRepo.On("FindByKycProcess", ctx, caseID).Return([]model.StoredFile{}, nil)

		detail, err := f.svc.Get(ctx, sessionToken)
		assert.NoError(t, err)
		assert.Equal(t, caseID, detail.Process.ID)
		f.assertExpectations(t)
	})

	t.Run("unknown case", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindBySessionToken", ctx, "unknown-token").Return(nil, sql.ErrNoRows)

		_, err := f.svc.Get(ctx, "unknown-token")
		assert.ErrorIs(t, err, ErrNotFound)
		f.assertExpectations(t)
	})

	t.Run("empty identifier", func(t *testing.T) {
		f := newKycFixture()
		_, err := f.svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestKycService_UploadDocument(t *testing.T) {
	ctx := context.Background()

	docInput := func(category model.FileCategory) KycUploadInput {
		return KycUploadInput{
			IDOrToken:   caseID,
			FileName:    "doc.png",
			ContentType: "image/png",
			Size:        4,
			Category:    category,
			Requester:   Requester{UserID: "user-1"},
		}
	}

	// expectStaging wires the storage and ledger calls the delegated upload
	// makes on the happy path.
	expectStaging := func(f *kycFixture) {
		f.store.On("StageTemporary", ctx, mock.Anything, "doc.png", "kyc-temp-user-1", int64(4), "image/png").
			Return("key.png", nil)
		f.fileRepo.On("Create", ctx, mock.MatchedBy(func(file *model.StoredFile) bool {
			return file.KycProcessID == caseID && file.UserID == "user-1"
		})).Return(func(ctx context.Context, file *model.StoredFile) *model.StoredFile { return file }, nil)
	}

	t.Run("first document moves the case to partially completed", func(t *testing.T) {
		f := newKycFixture()
		process := activeCase(model.KycStatusNew)

		f.kycRepo.On("FindByID", ctx, caseID).Return(process, nil)
		f.fileRepo.On("FindByKycProcess", ctx, caseID).Return([]model.StoredFile{}, nil)
		expectStaging(f)
		f.kycRepo.On("Update", ctx, mock.MatchedBy(func(p *model.KycProcess) bool {
			return p.Status == model.KycStatusPartiallyCompleted
		})).Return(nil)

		file, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), docInput(model.CategoryIDFront))
		assert.NoError(t, err)
		assert.Equal(t, model.CategoryIDFront, file.Category)
		f.assertExpectations(t)
	})

	t.Run("completing the document set moves the case to documents uploaded", func(t *testing.T) {
		f := newKycFixture()
		process := activeCase(model.KycStatusPartiallyCompleted)

		f.kycRepo.On("FindByID", ctx, caseID).Return(process, nil)
		f.fileRepo.On("FindByKycProcess", ctx, caseID).Return([]model.StoredFile{
			{ID: "1", Category: model.CategoryIDFront, Status: model.FileStatusTemporary},
			{ID: "2", Category: model.CategoryIDBack, Status: model.FileStatusTemporary},
		}, nil)
		expectStaging(f)
		f.kycRepo.On("Update", ctx, mock.MatchedBy(func(p *model.KycProcess) bool {
			return p.Status == model.KycStatusDocumentsUploaded
		})).Return(nil)

		_, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), docInput(model.CategoryFacePhoto))
		assert.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("anonymous continuation by session token", func(t *testing.T) {
		f := newKycFixture()
		process := activeCase(model.KycStatusNew)

		f.kycRepo.On("FindBySessionToken", ctx, sessionToken).Return(process, nil)
		f.fileRepo.On("FindByKycProcess", ctx, caseID).Return([]model.StoredFile{}, nil)
		expectStaging(f)
		f.kycRepo.On("Update", ctx, mock.Anything).Return(nil)

		in := docInput(model.CategoryPassportMain)
		in.IDOrToken = sessionToken
		in.Requester = Requester{}

		_, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), in)
		assert.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("non-identity category is rejected", func(t *testing.T) {
		f := newKycFixture()
		_, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), docInput(model.CategoryDocument))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("non-image file is rejected", func(t *testing.T) {
		f := newKycFixture()
		in := docInput(model.CategoryIDFront)
		in.FileName = "doc.pdf"
		in.ContentType = "application/pdf"

		_, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), in)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("oversize file is rejected", func(t *testing.T) {
		f := newKycFixture()
		in := docInput(model.CategoryIDFront)
		in.Size = 11 * 1024 * 1024

		_, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), in)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("case owned by another user", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(activeCase(model.KycStatusNew), nil)

		in := docInput(model.CategoryIDFront)
		in.Requester = Requester{UserID: "user-2"}

		_, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), in)
		assert.ErrorIs(t, err, ErrForbidden)
		f.assertExpectations(t)
	})

	t.Run("terminal case rejects uploads", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(activeCase(model.KycStatusVerified), nil)

		_, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), docInput(model.CategoryIDFront))
		assert.ErrorIs(t, err, ErrInvalidState)
		f.assertExpectations(t)
	})

	t.Run("duplicate category conflicts", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(activeCase(model.KycStatusPartiallyCompleted), nil)
		f.fileRepo.On("FindByKycProcess", ctx, caseID).Return([]model.StoredFile{
			{ID: "1", Category: model.CategoryIDFront, Status: model.FileStatusTemporary},
		}, nil)

		_, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), docInput(model.CategoryIDFront))
		assert.ErrorIs(t, err, ErrConflict)
		f.assertExpectations(t)
	})

	t.Run("deleted file of the same category does not conflict", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(activeCase(model.KycStatusNew), nil)
		f.fileRepo.On("FindByKycProcess", ctx, caseID).Return([]model.StoredFile{
			{ID: "1", Category: model.CategoryIDFront, Status: model.FileStatusDeleted},
		}, nil)
		expectStaging(f)
		f.kycRepo.On("Update", ctx, mock.Anything).Return(nil)

		_, err := f.svc.UploadDocument(ctx, strings.NewReader("abcd"), docInput(model.CategoryIDFront))
		assert.NoError(t, err)
		f.assertExpectations(t)
	})
}

func TestKycService_Complete(t *testing.T) {
	ctx := context.Background()
	admin := Requester{UserID: "admin-1", IsAdmin: true}

	t.Run("approval verifies the case", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(activeCase(model.KycStatusDocumentsUploaded), nil)
		f.kycRepo.On("Update", ctx, mock.MatchedBy(func(p *model.KycProcess) bool {
			return p.Status == model.KycStatusVerified &&
				p.ReviewedBy == "admin-1" &&
				p.ReviewedAt != nil
		})).Return(nil)

		process, err := f.svc.Complete(ctx, caseID, true, "all good", admin)
		assert.NoError(t, err)
		assert.Equal(t, model.KycStatusVerified, process.Status)
		f.assertExpectations(t)
	})

	t.Run("rejection records the comment", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(activeCase(model.KycStatusUnderReview), nil)
		f.kycRepo.On("Update", ctx, mock.Anything).Return(nil)

		process, err := f.svc.Complete(ctx, caseID, false, "blurry photos", admin)
		assert.NoError(t, err)
		assert.Equal(t, model.KycStatusRejected, process.Status)
		assert.Equal(t, "blurry photos", process.ReviewComment)
		f.assertExpectations(t)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		f := newKycFixture()
		_, err := f.svc.Complete(ctx, caseID, true, "", Requester{UserID: "user-1"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown case", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(nil, sql.ErrNoRows)

		_, err := f.svc.Complete(ctx, caseID, true, "", admin)
		assert.ErrorIs(t, err, ErrNotFound)
		f.assertExpectations(t)
	})

	t.Run("terminal case cannot be re-reviewed", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(activeCase(model.KycStatusRejected), nil)

		_, err := f.svc.Complete(ctx, caseID, true, "", admin)
		assert.ErrorIs(t, err, ErrInvalidState)
		f.assertExpectations(t)
	})

	t.Run("incomplete document set is not reviewable", func(t *testing.T) {
		f := newKycFixture()
		f.kycRepo.On("FindByID", ctx, caseID).Return(activeCase(model.KycStatusPartiallyCompleted), nil)

		_, err := f.svc.Complete(ctx, caseID, true, "", admin)
		assert.ErrorIs(t, err, ErrInvalidState)
		f.assertExpectations(t)
	})
}
