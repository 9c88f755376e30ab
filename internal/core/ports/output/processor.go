package ports

import (
	"context"

	"dataset-artifact-service/internal/core/domain"
)

// ProcessRequest is what the analytical engine is given for one dataset.
type ProcessRequest struct {
	InputPath          string `json:"input_path"`
	Namespace          string `json:"output_namespace"`
	NormalizedHint     string `json:"normalized_name_hint"`
	ClassificationHint string `json:"classification_name_hint"`
	ParallelHint       string `json:"parallel_name_hint"`

	// Table is the already-parsed dataset. In-process engines may use it
	// instead of re-reading InputPath; remote engines ignore it.
	Table *domain.TabularDataset `json:"-"`
}

// ProcessResponse is the engine's report of what it wrote.
type ProcessResponse struct {
	Namespace          string `json:"output_namespace"`
	NormalizedName     string `json:"normalized_name"`
	LabelsName         string `json:"labels_name"`
	ClassificationName string `json:"classification_name"`
	ParallelName       string `json:"parallel_name"`
}

// Processor is the analytical engine that turns a validated dataset into
// artifacts. Implementations may run in-process, as a subprocess, or
// remotely.
type Processor interface {
	Process(ctx context.Context, req ProcessRequest) (*ProcessResponse, error)
}
