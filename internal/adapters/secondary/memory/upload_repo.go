package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

type uploadRepo struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*domain.UploadRecord
}

// NewUploadRepository returns a process-local catalog. Records are lost on
// restart.
func NewUploadRepository() output.UploadRepository {
	return &uploadRepo{records: make(map[uuid.UUID]*domain.UploadRecord)}
}

func (r *uploadRepo) Create(_ context.Context, record *domain.UploadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = clone(record)
	return nil
}

func (r *uploadRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrUploadRecordNotFound
	}
	return clone(rec), nil
}

func (r *uploadRepo) List(_ context.Context, filter output.UploadListFilter) ([]*domain.UploadRecord, int, error) {
	r.mu.RLock()
	matched := make([]*domain.UploadRecord, 0, len(r.records))
	for _, rec := range r.records {
		if filter.Status != "" && string(rec.Status) != filter.Status {
			continue
		}
		matched = append(matched, rec)
	}
	r.mu.RUnlock()

	// Newest first, matching the postgres ordering.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []*domain.UploadRecord{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}

	items := make([]*domain.UploadRecord, 0, end-filter.Offset)
	for _, rec := range matched[filter.Offset:end] {
		items = append(items, clone(rec))
	}
	return items, total, nil
}

func clone(rec *domain.UploadRecord) *domain.UploadRecord {
	cp := *rec
	cp.Artifacts = make(map[string]string, len(rec.Artifacts))
	for k, v := range rec.Artifacts {
		cp.Artifacts[k] = v
	}
	return &cp
}
