package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

const defaultDatasetName = "dataset.csv"

// sourceDir holds raw uploads inside a namespace, apart from engine output.
const sourceDir = "source"

// Upload outcomes reported to metrics.
const (
	OutcomeProcessed          = "processed"
	OutcomeRejectedBadForm    = "rejected_bad_form"
	OutcomeRejectedValidation = "rejected_validation"
	OutcomeFailedProcessing   = "failed_processing"
	OutcomeInternalFault      = "internal_fault"
)

type UploadService struct {
	store          output.ArtifactStore
	dispatcher     *Dispatcher
	catalog        output.UploadRepository
	mirror         output.ArtifactMirror
	metrics        output.UploadMetrics
	hints          domain.NameHints
	defaultDataset string
	locks          *keyedLock
}

type UploadOption func(*UploadService)

func WithNameHints(h domain.NameHints) UploadOption {
	return func(s *UploadService) { s.hints = h }
}

func WithMirror(m output.ArtifactMirror) UploadOption {
	return func(s *UploadService) { s.mirror = m }
}

func WithMetrics(m output.UploadMetrics) UploadOption {
	return func(s *UploadService) { s.metrics = m }
}

// WithDefaultDataset sets the CSV used by ProcessDefault.
func WithDefaultDataset(path string) UploadOption {
	return func(s *UploadService) { s.defaultDataset = path }
}

func NewUploadService(store output.ArtifactStore, dispatcher *Dispatcher, catalog output.UploadRepository, opts ...UploadOption) *UploadService {
	s := &UploadService{
		store:      store,
		dispatcher: dispatcher,
		catalog:    catalog,
		hints:      domain.NameHints{}.WithDefaults(),
		locks:      newKeyedLock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload runs one request through persist, validate and process. Any
// failure is returned as a *domain.UploadError and carries no artifact
// references; files already written are not rolled back.
func (s *UploadService) Upload(ctx context.Context, in domain.UploadedDataset) (*domain.UploadResult, error) {
	started := time.Now()
	id := uuid.New()
	record := &domain.UploadRecord{
		ID:        id,
		Filename:  in.Filename,
		SizeBytes: int64(len(in.Content)),
		Artifacts: map[string]string{},
		CreatedAt: started.UTC(),
	}
	logger := log.WithFields(log.Fields{
		"upload_id": id,
		"filename":  in.Filename,
	})

	result, err := s.run(ctx, id, in, record, logger)
	record.CompletedAt = time.Now().UTC()

	if err != nil {
		var ue *domain.UploadError
		if !errors.As(err, &ue) {
			ue = &domain.UploadError{Stage: record.Stage, Category: domain.CategoryInternalFault, Err: err}
		}
		record.Status = domain.UploadStatusFailed
		record.Stage = ue.Stage
		record.Category = ue.Category
		record.ErrorMessage = ue.Err.Error()
		record.Artifacts = map[string]string{}

		logger.WithFields(log.Fields{
			"stage":    ue.Stage,
			"category": ue.Category,
		}).WithError(ue.Err).Error("upload failed")

		s.observe(outcomeFor(ue.Category))
		s.record(ctx, record)
		return nil, ue
	}

	record.Status = domain.UploadStatusProcessed
	record.Stage = domain.StageResponded
	s.observe(OutcomeProcessed)
	s.record(ctx, record)

	logger.WithFields(log.Fields{
		"namespace":  result.Artifacts.Namespace,
		"latency_ms": time.Since(started).Milliseconds(),
	}).Info("upload processed")

	return result, nil
}

func (s *UploadService) run(ctx context.Context, id uuid.UUID, in domain.UploadedDataset, record *domain.UploadRecord, logger *log.Entry) (*domain.UploadResult, error) {
	record.Stage = domain.StageReceived
	filename, err := cleanFilename(in.Filename)
	if err != nil {
		return nil, &domain.UploadError{Stage: domain.StageReceived, Category: domain.CategoryBadRequest, Err: err}
	}
	record.Filename = filename

	namespace := s.store.NamespaceFor(id)
	record.Namespace = s.relative(namespace)

	// One mutator per namespace. Scoped namespaces are unique per upload;
	// the shared layout serialises every upload here.
	unlock := s.locks.Lock(namespace)
	defer unlock()

	record.Stage = domain.StagePersisted
	uploadedPath, err := s.store.Write(filepath.Join(namespace, sourceDir), filename, in.Content)
	if err != nil {
		return nil, &domain.UploadError{Stage: domain.StagePersisted, Category: domain.CategoryInternalFault, Err: err}
	}
	logger.WithField("path", uploadedPath).Debug("file uploaded")

	record.Stage = domain.StageValidated
	dataset, err := Validate(in.Content)
	if err != nil {
		return nil, &domain.UploadError{Stage: domain.StageValidated, Category: domain.CategoryValidationFailure, Err: err}
	}
	dataset.SourcePath = uploadedPath
	record.Columns = dataset.ColumnCount()
	record.Rows = dataset.RowCount()

	record.Stage = domain.StageProcessed
	processStart := time.Now()
	set, err := s.dispatcher.Process(ctx, dataset, namespace, s.hints)
	if s.metrics != nil {
		s.metrics.ObserveProcessing(time.Since(processStart).Seconds())
	}
	if err != nil {
		return nil, &domain.UploadError{Stage: domain.StageProcessed, Category: domain.CategoryProcessingFailure, Err: err}
	}

	paths := make(map[domain.ArtifactKind]string, len(set.Artifacts))
	for _, a := range set.Artifacts {
		p, err := s.store.Path(set.Namespace, a.Name)
		if err != nil {
			return nil, &domain.UploadError{Stage: domain.StageProcessed, Category: domain.CategoryProcessingFailure, Err: domain.NewProcessingError(err)}
		}
		paths[a.Kind] = p
		record.Artifacts[string(a.Kind)] = a.Name
	}
	record.Namespace = s.relative(set.Namespace)

	result := &domain.UploadResult{
		UploadID:     id,
		Filename:     filename,
		UploadedPath: uploadedPath,
		Artifacts:    set,
		Paths:        paths,
	}

	s.mirrorResult(ctx, result, logger)
	return result, nil
}

// Reject records an upload the HTTP layer turned away before it reached
// the pipeline, such as a request without a file part.
func (s *UploadService) Reject(ctx context.Context, filename string, cause error) {
	now := time.Now().UTC()
	record := &domain.UploadRecord{
		ID:           uuid.New(),
		Filename:     filename,
		Status:       domain.UploadStatusFailed,
		Stage:        domain.StageReceived,
		Category:     domain.CategoryBadRequest,
		ErrorMessage: cause.Error(),
		Artifacts:    map[string]string{},
		CreatedAt:    now,
		CompletedAt:  now,
	}
	log.WithFields(log.Fields{
		"upload_id": record.ID,
		"filename":  filename,
		"stage":     record.Stage,
	}).WithError(cause).Warn("upload rejected")

	s.observe(OutcomeRejectedBadForm)
	s.record(ctx, record)
}

// ProcessDefault runs the configured default dataset through the same
// pipeline as an upload named dataset.csv.
func (s *UploadService) ProcessDefault(ctx context.Context) (*domain.UploadResult, error) {
	if s.defaultDataset == "" {
		return nil, domain.ErrDefaultDatasetMissing
	}
	content, err := os.ReadFile(s.defaultDataset)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrDefaultDatasetMissing
		}
		return nil, fmt.Errorf("read default dataset: %w", err)
	}
	log.WithField("path", s.defaultDataset).Debug("processing default dataset")
	return s.Upload(ctx, domain.UploadedDataset{Filename: defaultDatasetName, Content: content})
}

// RetrievalName is the name under which the artifact server serves path.
func (s *UploadService) RetrievalName(path string) string {
	return s.relative(path)
}

func (s *UploadService) mirrorResult(ctx context.Context, result *domain.UploadResult, logger *log.Entry) {
	if s.mirror == nil {
		return
	}
	files := []output.MirrorFile{{Name: path.Join(sourceDir, result.Filename), Path: result.UploadedPath}}
	for _, a := range result.Artifacts.Artifacts {
		files = append(files, output.MirrorFile{Name: a.Name, Path: result.Paths[a.Kind]})
	}
	prefix := s.relative(result.Artifacts.Namespace)
	if prefix == "." {
		prefix = ""
	}
	if err := s.mirror.Mirror(ctx, prefix, files); err != nil {
		logger.WithError(err).Warn("mirror upload failed")
	}
}

func (s *UploadService) record(ctx context.Context, record *domain.UploadRecord) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Create(ctx, record); err != nil {
		log.WithError(err).WithField("upload_id", record.ID).Warn("record upload failed")
	}
}

func (s *UploadService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveUpload(outcome)
	}
}

// relative returns path relative to the store root using forward slashes,
// or path unchanged if it is outside the root.
func (s *UploadService) relative(path string) string {
	rel, err := filepath.Rel(s.store.Root(), path)
	if err != nil || !filepath.IsLocal(rel) && rel != "." {
		return path
	}
	return filepath.ToSlash(rel)
}

// cleanFilename keeps only the final element of the client-supplied name.
func cleanFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNoSelectedFile
	}
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == ".." || base == "/" || strings.HasPrefix(base, ".") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFilename, name)
	}
	return base, nil
}

func outcomeFor(c domain.Category) string {
	switch c {
	case domain.CategoryBadRequest:
		return OutcomeRejectedBadForm
	case domain.CategoryValidationFailure:
		return OutcomeRejectedValidation
	case domain.CategoryProcessingFailure:
		return OutcomeFailedProcessing
	default:
		return OutcomeInternalFault
	}
}
