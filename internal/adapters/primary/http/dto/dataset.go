package dto

import (
	"time"

	"github.com/google/uuid"

	"dataset-artifact-service/internal/core/domain"
)

type DatasetResponse struct {
	ID           uuid.UUID         `json:"id"`
	Filename     string            `json:"filename"`
	Namespace    string            `json:"namespace"`
	Status       string            `json:"status"`
	Stage        string            `json:"stage"`
	Category     string            `json:"category,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Artifacts    map[string]string `json:"artifacts"`
	SizeBytes    int64             `json:"size_bytes"`
	Columns      int               `json:"columns"`
	Rows         int               `json:"rows"`
	CreatedAt    string            `json:"created_at"`
	CompletedAt  string            `json:"completed_at"`
}

type ListDatasetsResponse struct {
	Items      []DatasetResponse `json:"items"`
	Total      int               `json:"total"`
	PageSize   int               `json:"page_size"`
	NextOffset int               `json:"next_offset"`
}

func ToDatasetResponse(r *domain.UploadRecord) DatasetResponse {
	artifacts := r.Artifacts
	if artifacts == nil {
		artifacts = map[string]string{}
	}
	return DatasetResponse{
		ID:           r.ID,
		Filename:     r.Filename,
		Namespace:    r.Namespace,
		Status:       string(r.Status),
		Stage:        string(r.Stage),
		Category:     string(r.Category),
		ErrorMessage: r.ErrorMessage,
		Artifacts:    artifacts,
		SizeBytes:    r.SizeBytes,
		Columns:      r.Columns,
		Rows:         r.Rows,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		CompletedAt:  r.CompletedAt.Format(time.RFC3339),
	}
}
