package services

import (
	"context"

	"github.com/google/uuid"

	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

type CatalogService struct {
	repo output.UploadRepository
}

func NewCatalogService(repo output.UploadRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CatalogService) List(ctx context.Context, filter output.UploadListFilter) ([]*domain.UploadRecord, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}
