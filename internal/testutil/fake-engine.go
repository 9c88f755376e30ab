package testutil

import (
	"context"
	"fmt"
	"sync/atomic"

	output "dataset-artifact-service/internal/core/ports/output"
)

// FakeEngine writes small fixed artifacts through the store, honouring the
// name hints, and counts its calls.
type FakeEngine struct {
	Store      output.ArtifactStore
	LabelsName string
	Calls      atomic.Int32
}

func (e *FakeEngine) Process(_ context.Context, req output.ProcessRequest) (*output.ProcessResponse, error) {
	e.Calls.Add(1)

	labels := e.LabelsName
	if labels == "" {
		labels = "labels_file.json"
	}
	payload := []byte(fmt.Sprintf(`{"source":%q}`, req.InputPath))
	if req.Table != nil {
		payload = []byte(fmt.Sprintf(`{"columns":%d,"rows":%d}`, req.Table.ColumnCount(), req.Table.RowCount()))
	}

	for _, name := range []string{req.NormalizedHint, labels, req.ClassificationHint, req.ParallelHint} {
		if _, err := e.Store.Write(req.Namespace, name, payload); err != nil {
			return nil, err
		}
	}

	return &output.ProcessResponse{
		Namespace:          req.Namespace,
		NormalizedName:     req.NormalizedHint,
		LabelsName:         labels,
		ClassificationName: req.ClassificationHint,
		ParallelName:       req.ParallelHint,
	}, nil
}
