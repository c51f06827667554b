package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) StageTemporary(ctx context.Context, r io.Reader, originalName, namespace string, size int64, contentType string) (string, error) {
	args := m.Called(ctx, r, originalName, namespace, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Promote(ctx context.Context, key, originalName, srcNamespace, dstNamespace string) (string, error) {
	args := m.Called(ctx, key, originalName, srcNamespace, dstNamespace)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Remove(ctx context.Context, key, namespace string) error {
	args := m.Called(ctx, key, namespace)
	return args.Error(0)
}

func (m *MockStorage) Read(ctx context.Context, key, namespace string) (io.ReadCloser, error) {
	args := m.Called(ctx, key, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
