package mocks

import (
	"context"
	"io"

	"filestore/internal/model"
	"filestore/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, r io.Reader, in service.UploadInput) (*model.StoredFile, error) {
	args := m.Called(ctx, r, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockFileService) GetContent(ctx context.Context, id string) (*service.FileContent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileContent), args.Error(1)
}

func (m *MockFileService) MakePermanent(ctx context.Context, id string, requester service.Requester) (*model.StoredFile, error) {
	args := m.Called(ctx, id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, id string, requester service.Requester) error {
	args := m.Called(ctx, id, requester)
	return args.Error(0)
}

func (m *MockFileService) ListByUser(ctx context.Context, userID string, category model.FileCategory, requester service.Requester) ([]model.StoredFile, error) {
	args := m.Called(ctx, userID, category, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredFile), args.Error(1)
}

func (m *MockFileService) ListByReference(ctx context.Context, reference string, requester service.Requester) ([]model.StoredFile, error) {
	args := m.Called(ctx, reference, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredFile), args.Error(1)
}
