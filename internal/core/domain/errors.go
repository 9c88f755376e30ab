package domain

import "errors"

// ============================================================================
// Upload Errors
// ============================================================================

// Bad form errors
var (
	ErrNoFilePart      = errors.New("No file part")
	ErrNoSelectedFile  = errors.New("No selected file")
	ErrInvalidFilename = errors.New("Invalid filename")
	ErrFileTooLarge    = errors.New("File too large")
)

// Validation errors
var (
	ErrInsufficientColumns = errors.New("Insufficient columns in the CSV file")
	ErrMalformedInput      = errors.New("Malformed CSV input")
)

// Processing errors
var (
	ErrProcessingFailed   = errors.New("processing failed")
	ErrEngineUnavailable  = errors.New("processing engine is not configured")
	ErrNoNumericFeatures  = errors.New("no numeric feature columns")
	ErrNoDataRows         = errors.New("no data rows")
	ErrStorageUnavailable = errors.New("artifact storage unavailable")
)

// ============================================================================
// Artifact Errors
// ============================================================================

var (
	ErrArtifactNotFound    = errors.New("File not found")
	ErrInvalidArtifactName = errors.New("invalid artifact name")
)

// ============================================================================
// Catalog Errors
// ============================================================================

var (
	ErrUploadRecordNotFound  = errors.New("upload record not found")
	ErrInvalidUploadID       = errors.New("invalid upload id")
	ErrDefaultDatasetMissing = errors.New("Default dataset not found")
)
