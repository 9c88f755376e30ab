package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"dataset-artifact-service/internal/adapters/primary/http/dto"
	"dataset-artifact-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const formField = "file"

func (h *Handler) Upload(c *gin.Context) {
	in, err := h.readUpload(c)
	if err != nil {
		h.uploadSvc.Reject(c.Request.Context(), in.Filename, err)
		badForm(c, err)
		return
	}

	result, err := h.uploadSvc.Upload(c.Request.Context(), in)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUploadResponse(result, h.uploadSvc.RetrievalName))
}

func (h *Handler) ProcessDefault(c *gin.Context) {
	result, err := h.uploadSvc.ProcessDefault(c.Request.Context())
	if err != nil {
		var ue *domain.UploadError
		if !errors.Is(err, domain.ErrDefaultDatasetMissing) && !errors.As(err, &ue) {
			log.WithError(err).Error("process default dataset failed")
		}
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUploadResponse(result, h.uploadSvc.RetrievalName))
}

// readUpload pulls the "file" part out of a size-limited multipart body.
func (h *Handler) readUpload(c *gin.Context) (domain.UploadedDataset, error) {
	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			return domain.UploadedDataset{}, domain.ErrFileTooLarge
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fh, err := c.FormFile(formField)
	if err != nil {
		return domain.UploadedDataset{}, formError(c, err)
	}
	if fh.Filename == "" {
		return domain.UploadedDataset{}, domain.ErrNoSelectedFile
	}

	content, err := readPart(fh)
	if err != nil {
		if tooLarge(err) {
			return domain.UploadedDataset{Filename: fh.Filename}, domain.ErrFileTooLarge
		}
		return domain.UploadedDataset{Filename: fh.Filename}, domain.ErrNoFilePart
	}
	return domain.UploadedDataset{Filename: fh.Filename, Content: content}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formError(c *gin.Context, err error) error {
	if tooLarge(err) {
		return domain.ErrFileTooLarge
	}
	// A part named "file" sent without a filename is parsed as a plain
	// form value.
	if form := c.Request.MultipartForm; form != nil {
		if _, ok := form.Value[formField]; ok {
			return domain.ErrNoSelectedFile
		}
	}
	return domain.ErrNoFilePart
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}
