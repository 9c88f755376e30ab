package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataset-artifact-service/internal/config"
	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

func TestClient_Process(t *testing.T) {
	var got output.ProcessRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/process", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(output.ProcessResponse{
			Namespace:          got.Namespace,
			NormalizedName:     "out.json",
			LabelsName:         "labels_file.json",
			ClassificationName: got.ClassificationHint,
			ParallelName:       got.ParallelHint,
		})
	}))
	defer srv.Close()

	c := NewClient(&config.EngineConfig{URL: srv.URL, Timeout: time.Second})
	resp, err := c.Process(context.Background(), output.ProcessRequest{
		InputPath:          "/data/u1/iris.csv",
		Namespace:          "/data/u1",
		NormalizedHint:     "processed.json",
		ClassificationHint: "classification.json",
		ParallelHint:       "parallel.json",
		Table:              &domain.TabularDataset{Header: []string{"a", "b"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/data/u1/iris.csv", got.InputPath)
	assert.Equal(t, "processed.json", got.NormalizedHint)
	assert.Nil(t, got.Table)
	assert.Equal(t, "out.json", resp.NormalizedName)
	assert.Equal(t, "labels_file.json", resp.LabelsName)
	assert.Equal(t, "/data/u1", resp.Namespace)
}

func TestClient_Process_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "dataset has no numeric columns", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(&config.EngineConfig{URL: srv.URL})
	_, err := c.Process(context.Background(), output.ProcessRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "no numeric columns")
}

func TestClient_Process_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(&config.EngineConfig{URL: url, Timeout: time.Second})
	_, err := c.Process(context.Background(), output.ProcessRequest{})
	assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
}

func TestClient_Process_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(&config.EngineConfig{URL: srv.URL})
	_, err := c.Process(context.Background(), output.ProcessRequest{})
	assert.ErrorContains(t, err, "decode engine response")
}
