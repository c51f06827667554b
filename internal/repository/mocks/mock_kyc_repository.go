package mocks

import (
	"context"

	"filestore/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockKycRepository struct {
	mock.Mock
}

func (m *MockKycRepository) Create(ctx context.Context, process *model.KycProcess) (*model.KycProcess, error) {
	args := m.Called(ctx, process)
	if f, ok := args.Get(0).(func(context.Context, *model.KycProcess) *model.KycProcess); ok {
		return f(ctx, process), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KycProcess), args.Error(1)
}

func (m *MockKycRepository) FindByID(ctx context.Context, id string) (*model.KycProcess, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KycProcess), args.Error(1)
}

func (m *MockKycRepository) FindBySessionToken(ctx context.Context, token string) (*model.KycProcess, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KycProcess), args.Error(1)
}

func (m *MockKycRepository) FindActiveByUser(ctx context.Context, userID string) (*model.KycProcess, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KycProcess), args.Error(1)
}

func (m *MockKycRepository) Update(ctx context.Context, process *model.KycProcess) error {
	args := m.Called(ctx, process)
	return args.Error(0)
}
