package mocks

import (
	"context"
	"io"

	"filestore/internal/model"
	"filestore/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockKycService struct {
	mock.Mock
}

func (m *MockKycService) Start(ctx context.Context, userID string) (*model.KycProcess, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KycProcess), args.Error(1)
}

func (m *MockKycService) Get(ctx context.Context, idOrToken string) (*service.KycProcessDetail, error) {
	args := m.Called(ctx, idOrToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.KycProcessDetail), args.Error(1)
}

func (m *MockKycService) UploadDocument(ctx context.Context, r io.Reader, in service.KycUploadInput) (*model.StoredFile, error) {
	args := m.Called(ctx, r, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockKycService) Complete(ctx context.Context, id string, approved bool, comment string, reviewer service.Requester) (*model.KycProcess, error) {
	args := m.Called(ctx, id, approved, comment, reviewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KycProcess), args.Error(1)
}
