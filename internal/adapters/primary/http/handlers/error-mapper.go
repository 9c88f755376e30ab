package handlers

import (
	"errors"
	"net/http"

	"dataset-artifact-service/internal/adapters/primary/http/dto"
	"dataset-artifact-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	var ue *domain.UploadError
	switch {
	case errors.As(err, &ue):
		mapUploadError(c, ue)

	// Not found errors
	case errors.Is(err, domain.ErrArtifactNotFound),
		errors.Is(err, domain.ErrUploadRecordNotFound),
		errors.Is(err, domain.ErrDefaultDatasetMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidUploadID),
		errors.Is(err, domain.ErrNoFilePart),
		errors.Is(err, domain.ErrNoSelectedFile),
		errors.Is(err, domain.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Processing causes that may be shown to the client. Anything else is
// reported as ErrProcessingFailed; the full cause is only logged.
var publicProcessingErrors = []error{
	domain.ErrNoNumericFeatures,
	domain.ErrNoDataRows,
	domain.ErrEngineUnavailable,
	domain.ErrStorageUnavailable,
}

// mapUploadError writes the failure response for one upload. Storage and
// engine faults get fixed messages so local paths stay server-side.
func mapUploadError(c *gin.Context, ue *domain.UploadError) {
	status := http.StatusInternalServerError
	msg := ue.Err.Error()
	switch ue.Category {
	case domain.CategoryBadRequest, domain.CategoryValidationFailure:
		status = http.StatusBadRequest
	case domain.CategoryNotFound:
		status = http.StatusNotFound
	case domain.CategoryProcessingFailure:
		msg = "Error processing file: " + processingCause(ue.Err)
	case domain.CategoryInternalFault:
		msg = "Error saving file"
	}
	c.JSON(status, dto.ErrorResponse{Error: msg, Category: string(ue.Category)})
}

func processingCause(err error) string {
	for _, known := range publicProcessingErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return domain.ErrProcessingFailed.Error()
}

func badForm(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Category: string(domain.CategoryBadRequest)})
}
