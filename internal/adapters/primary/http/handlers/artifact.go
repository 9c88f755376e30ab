package handlers

import (
	"errors"
	"net/http"

	"dataset-artifact-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ServeArtifact streams a stored file by its root-relative name, such as
// "<upload_id>/processed.json".
func (h *Handler) ServeArtifact(c *gin.Context) {
	name := c.Param("name")

	file, err := h.artifactSvc.Open(name)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			log.WithField("name", name).Warn("artifact not found")
			c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrArtifactNotFound.Error()})
			return
		}
		log.WithError(err).WithField("name", name).Error("serve artifact failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error serving file"})
		return
	}
	defer file.Body.Close()

	log.WithField("name", name).Debug("serving artifact")
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, file.Body, nil)
}
