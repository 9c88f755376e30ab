package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dataset-artifact-service/internal/adapters/secondary/filestore"
	"dataset-artifact-service/internal/adapters/secondary/memory"
	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
	"dataset-artifact-service/internal/testutil"
)

type recordingMetrics struct {
	mu        sync.Mutex
	outcomes  []string
	processed int
}

func (m *recordingMetrics) ObserveUpload(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) ObserveProcessing(float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed++
}

func threeColumnCSV(rows int) []byte {
	var b strings.Builder
	b.WriteString("x,y,class\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,%d,%s\n", i, i*2, []string{"a", "b"}[i%2])
	}
	return []byte(b.String())
}

type uploadFixture struct {
	store   output.ArtifactStore
	engine  *testutil.FakeEngine
	catalog output.UploadRepository
	metrics *recordingMetrics
	svc     *UploadService
}

func newUploadFixture(t *testing.T, layout filestore.Layout, opts ...UploadOption) *uploadFixture {
	t.Helper()
	store, err := filestore.New(t.TempDir(), layout)
	require.NoError(t, err)
	engine := &testutil.FakeEngine{Store: store}
	catalog := memory.NewUploadRepository()
	metrics := &recordingMetrics{}
	opts = append([]UploadOption{WithMetrics(metrics)}, opts...)
	return &uploadFixture{
		store:   store,
		engine:  engine,
		catalog: catalog,
		metrics: metrics,
		svc:     NewUploadService(store, NewDispatcher(engine, store), catalog, opts...),
	}
}

func TestUploadService_Upload_Success(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutScoped)

	result, err := f.svc.Upload(context.Background(), domain.UploadedDataset{
		Filename: "sample.csv",
		Content:  threeColumnCSV(10),
	})
	require.NoError(t, err)

	assert.Equal(t, "sample.csv", result.Filename)
	assert.FileExists(t, result.UploadedPath)
	assert.Equal(t, f.store.NamespaceFor(result.UploadID), result.Artifacts.Namespace)
	for _, kind := range domain.ArtifactKinds {
		assert.FileExists(t, result.Paths[kind], string(kind))
	}
	assert.Equal(t, filepath.Join(result.Artifacts.Namespace, "processed.json"), result.Paths[domain.ArtifactNormalized])
	assert.Equal(t, int32(1), f.engine.Calls.Load())

	rec, err := f.catalog.GetByID(context.Background(), result.UploadID)
	require.NoError(t, err)
	assert.Equal(t, domain.UploadStatusProcessed, rec.Status)
	assert.Equal(t, domain.StageResponded, rec.Stage)
	assert.Equal(t, 3, rec.Columns)
	assert.Equal(t, 10, rec.Rows)
	assert.Equal(t, "labels_file.json", rec.Artifacts["labels"])
	assert.Equal(t, result.UploadID.String(), rec.Namespace)

	assert.Equal(t, []string{OutcomeProcessed}, f.metrics.outcomes)
	assert.Equal(t, 1, f.metrics.processed)
}

func TestUploadService_Upload_StripsDirectoryFromFilename(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutScoped)

	result, err := f.svc.Upload(context.Background(), domain.UploadedDataset{
		Filename: `..\..\C:\temp\../evil.csv`,
		Content:  threeColumnCSV(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "evil.csv", result.Filename)
	assert.Equal(t, filepath.Join(result.Artifacts.Namespace, "source", "evil.csv"), result.UploadedPath)
}

func TestUploadService_Upload_FilenameMatchesArtifactName(t *testing.T) {
	for _, layout := range []filestore.Layout{filestore.LayoutScoped, filestore.LayoutShared} {
		t.Run(string(layout), func(t *testing.T) {
			f := newUploadFixture(t, layout)
			content := threeColumnCSV(10)

			result, err := f.svc.Upload(context.Background(), domain.UploadedDataset{Filename: "processed.json", Content: content})
			require.NoError(t, err)
			assert.NotEqual(t, result.UploadedPath, result.Paths[domain.ArtifactNormalized])

			got, err := os.ReadFile(result.UploadedPath)
			require.NoError(t, err)
			assert.Equal(t, content, got)

			normalized, err := os.ReadFile(result.Paths[domain.ArtifactNormalized])
			require.NoError(t, err)
			assert.JSONEq(t, `{"columns":3,"rows":10}`, string(normalized))
		})
	}
}

func TestUploadService_Upload_BadForm(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     error
	}{
		{"empty filename", "", domain.ErrNoSelectedFile},
		{"blank filename", "   ", domain.ErrNoSelectedFile},
		{"dot dot", "..", domain.ErrInvalidFilename},
		{"hidden", ".partial-x", domain.ErrInvalidFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUploadFixture(t, filestore.LayoutScoped)

			result, err := f.svc.Upload(context.Background(), domain.UploadedDataset{Filename: tt.filename, Content: threeColumnCSV(1)})
			assert.Nil(t, result)

			var ue *domain.UploadError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, domain.CategoryBadRequest, ue.Category)
			assert.Equal(t, domain.StageReceived, ue.Stage)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, int32(0), f.engine.Calls.Load())
			assert.Equal(t, []string{OutcomeRejectedBadForm}, f.metrics.outcomes)
		})
	}
}

func TestUploadService_Upload_InsufficientColumns(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutScoped)

	result, err := f.svc.Upload(context.Background(), domain.UploadedDataset{
		Filename: "one.csv",
		Content:  []byte("value\n1\n2\n"),
	})
	assert.Nil(t, result)

	var ue *domain.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, domain.CategoryValidationFailure, ue.Category)
	assert.Equal(t, domain.StageValidated, ue.Stage)
	assert.ErrorIs(t, err, domain.ErrInsufficientColumns)
	assert.Contains(t, err.Error(), "Insufficient columns")
	assert.Equal(t, int32(0), f.engine.Calls.Load(), "engine must not run")

	// Only the raw upload is on disk; no artifact was written.
	items, total, err := f.catalog.List(context.Background(), output.UploadListFilter{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	rec := items[0]
	assert.Equal(t, domain.UploadStatusFailed, rec.Status)
	assert.Equal(t, domain.CategoryValidationFailure, rec.Category)
	assert.Empty(t, rec.Artifacts)

	entries, err := os.ReadDir(filepath.Join(f.store.Root(), rec.Namespace))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "one.csv", entries[0].Name())
}

func TestUploadService_Upload_Malformed(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutScoped)

	_, err := f.svc.Upload(context.Background(), domain.UploadedDataset{
		Filename: "ragged.csv",
		Content:  []byte("a,b,c\n1,2\n"),
	})

	var ue *domain.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, domain.CategoryValidationFailure, ue.Category)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
	assert.Equal(t, []string{OutcomeRejectedValidation}, f.metrics.outcomes)
}

func TestUploadService_Upload_ProcessingFailure(t *testing.T) {
	store, err := filestore.New(t.TempDir(), filestore.LayoutScoped)
	require.NoError(t, err)
	proc := new(testutil.MockProcessor)
	proc.On("Process", mock.Anything, mock.Anything).Return(nil, errors.New("engine exploded")).Once()
	metrics := &recordingMetrics{}
	svc := NewUploadService(store, NewDispatcher(proc, store), nil, WithMetrics(metrics))

	result, err := svc.Upload(context.Background(), domain.UploadedDataset{Filename: "d.csv", Content: threeColumnCSV(3)})
	assert.Nil(t, result)

	var ue *domain.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, domain.CategoryProcessingFailure, ue.Category)
	assert.Equal(t, domain.StageProcessed, ue.Stage)
	assert.ErrorIs(t, err, domain.ErrProcessingFailed)
	assert.Contains(t, err.Error(), "engine exploded")
	assert.Equal(t, []string{OutcomeFailedProcessing}, metrics.outcomes)
	proc.AssertNumberOfCalls(t, "Process", 1)
}

func TestUploadService_Upload_CatalogFailureDoesNotFailUpload(t *testing.T) {
	store, err := filestore.New(t.TempDir(), filestore.LayoutScoped)
	require.NoError(t, err)
	repo := new(testutil.MockUploadRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	svc := NewUploadService(store, NewDispatcher(&testutil.FakeEngine{Store: store}, store), repo)

	result, err := svc.Upload(context.Background(), domain.UploadedDataset{Filename: "d.csv", Content: threeColumnCSV(3)})
	require.NoError(t, err)
	assert.NotNil(t, result)
	repo.AssertExpectations(t)
}

func TestUploadService_Upload_Mirror(t *testing.T) {
	store, err := filestore.New(t.TempDir(), filestore.LayoutScoped)
	require.NoError(t, err)
	mirror := new(testutil.MockMirror)
	mirror.On("Mirror", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(files []output.MirrorFile) bool {
		return len(files) == 5 && files[0].Name == "source/d.csv" && files[1].Name == "processed.json"
	})).Return(errors.New("bucket unreachable")).Once()
	svc := NewUploadService(store, NewDispatcher(&testutil.FakeEngine{Store: store}, store), nil, WithMirror(mirror))

	result, err := svc.Upload(context.Background(), domain.UploadedDataset{Filename: "d.csv", Content: threeColumnCSV(3)})
	require.NoError(t, err, "mirror failure is not an upload failure")
	mirror.AssertCalled(t, "Mirror", mock.Anything, result.UploadID.String(), mock.Anything)
}

func TestUploadService_Upload_RepeatedUploadsSharedLayout(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutShared)

	first, err := f.svc.Upload(context.Background(), domain.UploadedDataset{Filename: "same.csv", Content: threeColumnCSV(4)})
	require.NoError(t, err)
	second, err := f.svc.Upload(context.Background(), domain.UploadedDataset{Filename: "same.csv", Content: threeColumnCSV(6)})
	require.NoError(t, err)

	assert.Equal(t, first.UploadedPath, second.UploadedPath)
	assert.Equal(t, first.Paths, second.Paths)

	got, err := os.ReadFile(second.Paths[domain.ArtifactNormalized])
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":3,"rows":6}`, string(got), "last write wins")
}

func TestUploadService_Upload_RepeatedUploadsScopedLayout(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutScoped)
	content := threeColumnCSV(4)

	first, err := f.svc.Upload(context.Background(), domain.UploadedDataset{Filename: "same.csv", Content: content})
	require.NoError(t, err)
	second, err := f.svc.Upload(context.Background(), domain.UploadedDataset{Filename: "same.csv", Content: content})
	require.NoError(t, err)

	assert.NotEqual(t, first.Artifacts.Namespace, second.Artifacts.Namespace)
	for _, kind := range domain.ArtifactKinds {
		a, err := os.ReadFile(first.Paths[kind])
		require.NoError(t, err)
		b, err := os.ReadFile(second.Paths[kind])
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestUploadService_Upload_ConcurrentSharedLayout(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutShared)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(rows int) {
			defer wg.Done()
			_, err := f.svc.Upload(context.Background(), domain.UploadedDataset{Filename: "race.csv", Content: threeColumnCSV(rows)})
			errs <- err
		}(i + 1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := os.ReadFile(filepath.Join(f.store.Root(), "processed.json"))
	require.NoError(t, err)
	assert.Regexp(t, `^\{"columns":3,"rows":[1-8]\}$`, string(got))
}

func TestUploadService_Reject(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutScoped)

	f.svc.Reject(context.Background(), "big.csv", domain.ErrFileTooLarge)

	assert.Equal(t, []string{OutcomeRejectedBadForm}, f.metrics.outcomes)
	records, total, err := f.catalog.List(context.Background(), output.UploadListFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	rec := records[0]
	assert.Equal(t, "big.csv", rec.Filename)
	assert.Equal(t, domain.UploadStatusFailed, rec.Status)
	assert.Equal(t, domain.StageReceived, rec.Stage)
	assert.Equal(t, domain.CategoryBadRequest, rec.Category)
	assert.Equal(t, "File too large", rec.ErrorMessage)
	assert.Empty(t, rec.Artifacts)
}

func TestUploadService_ProcessDefault(t *testing.T) {
	dataset := filepath.Join(t.TempDir(), "128_20_4.csv")
	require.NoError(t, os.WriteFile(dataset, threeColumnCSV(5), 0o644))
	f := newUploadFixture(t, filestore.LayoutScoped, WithDefaultDataset(dataset))

	result, err := f.svc.ProcessDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dataset.csv", result.Filename)
	assert.FileExists(t, result.UploadedPath)
}

func TestUploadService_ProcessDefault_Missing(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutScoped)
	_, err := f.svc.ProcessDefault(context.Background())
	assert.ErrorIs(t, err, domain.ErrDefaultDatasetMissing)

	g := newUploadFixture(t, filestore.LayoutScoped, WithDefaultDataset(filepath.Join(t.TempDir(), "nope.csv")))
	_, err = g.svc.ProcessDefault(context.Background())
	assert.ErrorIs(t, err, domain.ErrDefaultDatasetMissing)
}

func TestUploadService_RetrievalName(t *testing.T) {
	f := newUploadFixture(t, filestore.LayoutScoped)
	result, err := f.svc.Upload(context.Background(), domain.UploadedDataset{Filename: "d.csv", Content: threeColumnCSV(2)})
	require.NoError(t, err)

	assert.Equal(t, result.UploadID.String()+"/processed.json", f.svc.RetrievalName(result.Paths[domain.ArtifactNormalized]))
}
