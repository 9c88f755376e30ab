package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UploadStage is the last stage an upload request reached.
type UploadStage string

const (
	StageReceived  UploadStage = "received"
	StagePersisted UploadStage = "persisted"
	StageValidated UploadStage = "validated"
	StageProcessed UploadStage = "processed"
	StageResponded UploadStage = "responded"
)

// Category classifies a failure for the client.
type Category string

const (
	CategoryBadRequest        Category = "BadRequest"
	CategoryValidationFailure Category = "ValidationFailure"
	CategoryProcessingFailure Category = "ProcessingFailure"
	CategoryNotFound          Category = "NotFound"
	CategoryInternalFault     Category = "InternalFault"
)

// UploadError is returned by the upload service for every failed request.
// Stage is the stage that failed.
type UploadError struct {
	Stage    UploadStage
	Category Category
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// ProcessingError wraps any fault raised by the processing engine.
type ProcessingError struct {
	Cause error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("Error processing file: %v", e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessingFailed
}

// NewProcessingError wraps cause unless it already is a ProcessingError.
func NewProcessingError(cause error) error {
	var pe *ProcessingError
	if errors.As(cause, &pe) {
		return pe
	}
	return &ProcessingError{Cause: cause}
}

// UploadResult is what a successful upload returns to the HTTP layer.
type UploadResult struct {
	UploadID     uuid.UUID
	Filename     string
	UploadedPath string
	Artifacts    *ArtifactSet
	Paths        map[ArtifactKind]string
}

type UploadStatus string

const (
	UploadStatusProcessed UploadStatus = "processed"
	UploadStatusFailed    UploadStatus = "failed"
)

// UploadRecord is the catalog entry kept for every upload attempt.
type UploadRecord struct {
	ID           uuid.UUID         `json:"id"`
	Filename     string            `json:"filename"`
	Namespace    string            `json:"namespace"`
	Status       UploadStatus      `json:"status"`
	Stage        UploadStage       `json:"stage"`
	Category     Category          `json:"category,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Artifacts    map[string]string `json:"artifacts"`
	SizeBytes    int64             `json:"size_bytes"`
	Columns      int               `json:"columns"`
	Rows         int               `json:"rows"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  time.Time         `json:"completed_at"`
}
