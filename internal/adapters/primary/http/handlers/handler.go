package handlers

import (
	"dataset-artifact-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	uploadSvc      *services.UploadService
	artifactSvc    *services.ArtifactService
	catalogSvc     *services.CatalogService
	maxUploadBytes int64
}

func New(
	uploadSvc *services.UploadService,
	artifactSvc *services.ArtifactService,
	catalogSvc *services.CatalogService,
	maxUploadBytes int64,
) *Handler {
	return &Handler{
		uploadSvc:      uploadSvc,
		artifactSvc:    artifactSvc,
		catalogSvc:     catalogSvc,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	// Upload pipeline
	r.POST("/upload", h.Upload)
	r.POST("/process/default", h.ProcessDefault)

	// Artifact retrieval
	r.GET("/uploads/*name", h.ServeArtifact)

	// Upload catalog
	r.GET("/datasets", h.ListDatasets)
	r.GET("/datasets/:id", h.GetDataset)
}
