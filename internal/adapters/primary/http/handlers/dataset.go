package handlers

import (
	"net/http"
	"strconv"

	"dataset-artifact-service/internal/adapters/primary/http/dto"
	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListDatasets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := output.UploadListFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}

	records, total, err := h.catalogSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list datasets failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.DatasetResponse, 0, len(records))
	for _, r := range records {
		items = append(items, dto.ToDatasetResponse(r))
	}

	if offset < 0 {
		offset = 0
	}
	c.JSON(http.StatusOK, dto.ListDatasetsResponse{
		Items:      items,
		Total:      total,
		PageSize:   len(items),
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetDataset(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidUploadID.Error()})
		return
	}

	record, err := h.catalogSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDatasetResponse(record))
}
