package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

// MockUploadRepo is a mock of UploadRepository.
type MockUploadRepo struct {
	mock.Mock
}

func (m *MockUploadRepo) Create(ctx context.Context, record *domain.UploadRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockUploadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadRecord), args.Error(1)
}

func (m *MockUploadRepo) List(ctx context.Context, filter output.UploadListFilter) ([]*domain.UploadRecord, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.UploadRecord), args.Int(1), args.Error(2)
}

// MockProcessor is a mock of Processor.
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Process(ctx context.Context, req output.ProcessRequest) (*output.ProcessResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*output.ProcessResponse), args.Error(1)
}

// MockMirror is a mock of ArtifactMirror.
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) Mirror(ctx context.Context, prefix string, files []output.MirrorFile) error {
	args := m.Called(ctx, prefix, files)
	return args.Error(0)
}
