package builtin

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

type engine struct {
	store output.ArtifactStore
}

// New returns the in-process variance engine. It writes its artifacts
// through store.
func New(store output.ArtifactStore) output.Processor {
	return &engine{store: store}
}

func (e *engine) Process(ctx context.Context, req output.ProcessRequest) (*output.ProcessResponse, error) {
	table := req.Table
	if table == nil {
		var err error
		if table, err = readTable(req.InputPath); err != nil {
			return nil, err
		}
	}

	analysis, err := Analyze(table)
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		name string
		doc  any
	}{
		{req.NormalizedHint, analysis.Normalized()},
		{LabelsName, analysis.LabelSet()},
		{req.ClassificationHint, analysis.Classification()},
		{req.ParallelHint, analysis.Parallel()},
	}
	for _, out := range outputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := json.Marshal(out.doc)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", out.name, err)
		}
		if _, err := e.store.Write(req.Namespace, out.name, data); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"rows":       len(analysis.Raw),
		"dimensions": len(analysis.Dimensions),
		"namespace":  req.Namespace,
	}).Debug("variance engine finished")

	return &output.ProcessResponse{
		Namespace:          req.Namespace,
		NormalizedName:     req.NormalizedHint,
		LabelsName:         LabelsName,
		ClassificationName: req.ClassificationHint,
		ParallelName:       req.ParallelHint,
	}, nil
}

func readTable(path string) (*domain.TabularDataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNoDataRows
	}
	return &domain.TabularDataset{Header: records[0], Rows: records[1:], SourcePath: path}, nil
}
