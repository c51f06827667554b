package mocks

import (
	"context"
	"time"

	"filestore/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) Create(ctx context.Context, file *model.StoredFile) (*model.StoredFile, error) {
	args := m.Called(ctx, file)
	if f, ok := args.Get(0).(func(context.Context, *model.StoredFile) *model.StoredFile); ok {
		return f(ctx, file), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id string) (*model.StoredFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockFileRepository) FindByUser(ctx context.Context, userID string) ([]model.StoredFile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredFile), args.Error(1)
}

func (m *MockFileRepository) FindByKycProcess(ctx context.Context, kycProcessID string) ([]model.StoredFile, error) {
	args := m.Called(ctx, kycProcessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredFile), args.Error(1)
}

func (m *MockFileRepository) FindByReference(ctx context.Context, reference string) ([]model.StoredFile, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredFile), args.Error(1)
}

func (m *MockFileRepository) FindExpiredTemporary(ctx context.Context, before time.Time) ([]model.StoredFile, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredFile), args.Error(1)
}

func (m *MockFileRepository) Update(ctx context.Context, file *model.StoredFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}
