package dto

import (
	"path"

	"github.com/google/uuid"

	"dataset-artifact-service/internal/core/domain"
)

const uploadSuccessMessage = "File uploaded and processed successfully"

type UploadPaths struct {
	UploadedFile   string `json:"uploaded_file"`
	JSON           string `json:"json"`
	Labels         string `json:"labels"`
	Classification string `json:"classification"`
	Parallel       string `json:"parallel"`
}

// ArtifactURLs are the retrieval URLs for each artifact under /uploads.
type ArtifactURLs struct {
	JSON           string `json:"json"`
	Labels         string `json:"labels"`
	Classification string `json:"classification"`
	Parallel       string `json:"parallel"`
}

type UploadResponse struct {
	Message      string       `json:"message"`
	UploadID     uuid.UUID    `json:"upload_id"`
	Filename     string       `json:"filename"`
	JSONFolder   string       `json:"json_folder"`
	JSONFilename string       `json:"json_filename"`
	LabelsFile   string       `json:"labels_file"`
	ClusterFile  string       `json:"cluster_file"`
	ParallelFile string       `json:"parallel_file"`
	Paths        UploadPaths  `json:"paths"`
	URLs         ArtifactURLs `json:"urls"`
}

// ToUploadResponse builds the success envelope. retrievalName maps an
// on-disk path to the name it is served under.
func ToUploadResponse(r *domain.UploadResult, retrievalName func(string) string) UploadResponse {
	set := r.Artifacts
	folder := retrievalName(set.Namespace)
	if folder == "." {
		folder = ""
	}
	url := func(kind domain.ArtifactKind) string {
		return path.Join("/uploads", retrievalName(r.Paths[kind]))
	}

	return UploadResponse{
		Message:      uploadSuccessMessage,
		UploadID:     r.UploadID,
		Filename:     r.Filename,
		JSONFolder:   folder,
		JSONFilename: set.Name(domain.ArtifactNormalized),
		LabelsFile:   set.Name(domain.ArtifactLabels),
		ClusterFile:  set.Name(domain.ArtifactClassification),
		ParallelFile: set.Name(domain.ArtifactParallel),
		Paths: UploadPaths{
			UploadedFile:   r.UploadedPath,
			JSON:           r.Paths[domain.ArtifactNormalized],
			Labels:         r.Paths[domain.ArtifactLabels],
			Classification: r.Paths[domain.ArtifactClassification],
			Parallel:       r.Paths[domain.ArtifactParallel],
		},
		URLs: ArtifactURLs{
			JSON:           url(domain.ArtifactNormalized),
			Labels:         url(domain.ArtifactLabels),
			Classification: url(domain.ArtifactClassification),
			Parallel:       url(domain.ArtifactParallel),
		},
	}
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}
