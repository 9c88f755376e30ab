package ports

import (
	"context"

	"github.com/google/uuid"

	"dataset-artifact-service/internal/core/domain"
)

type UploadListFilter struct {
	Status string
	Limit  int
	Offset int
}

// UploadRepository is the catalog of upload attempts.
type UploadRepository interface {
	Create(ctx context.Context, record *domain.UploadRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error)
	List(ctx context.Context, filter UploadListFilter) ([]*domain.UploadRecord, int, error)
}
