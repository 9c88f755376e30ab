package services

import (
	"errors"
	"io"
	"mime"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

// ArtifactFile is an open artifact ready to be streamed. Callers close it.
type ArtifactFile struct {
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
	Body        io.ReadCloser
}

type ArtifactService struct {
	store output.ArtifactStore
}

func NewArtifactService(store output.ArtifactStore) *ArtifactService {
	return &ArtifactService{store: store}
}

// Open looks name up under the storage root. A missing file, or a name that
// would leave the root, is domain.ErrArtifactNotFound.
func (s *ArtifactService) Open(name string) (*ArtifactFile, error) {
	f, info, err := s.store.Open(name)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArtifactName) {
			log.WithField("name", name).Warn("rejected artifact name outside storage root")
			return nil, domain.ErrArtifactNotFound
		}
		return nil, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(info.Name()))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &ArtifactFile{
		Name:        info.Name(),
		ContentType: contentType,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Body:        f,
	}, nil
}
