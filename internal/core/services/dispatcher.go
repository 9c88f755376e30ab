package services

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

// Dispatcher is the boundary to the analytical engine. Every engine fault
// comes back as a *domain.ProcessingError.
type Dispatcher struct {
	processor output.Processor
	store     output.ArtifactStore
}

func NewDispatcher(processor output.Processor, store output.ArtifactStore) *Dispatcher {
	return &Dispatcher{processor: processor, store: store}
}

// Process runs the engine once for dataset. The engine is not retried: its
// partial writes are not known to be idempotent.
func (d *Dispatcher) Process(ctx context.Context, dataset *domain.TabularDataset, namespace string, hints domain.NameHints) (*domain.ArtifactSet, error) {
	if d.processor == nil {
		return nil, domain.NewProcessingError(domain.ErrEngineUnavailable)
	}
	hints = hints.WithDefaults()

	if err := d.store.EnsureNamespace(namespace); err != nil {
		return nil, domain.NewProcessingError(err)
	}

	req := output.ProcessRequest{
		InputPath:          dataset.SourcePath,
		Namespace:          namespace,
		NormalizedHint:     hints.Normalized,
		ClassificationHint: hints.Classification,
		ParallelHint:       hints.Parallel,
		Table:              dataset,
	}

	resp, err := d.invoke(ctx, req)
	if err != nil {
		return nil, domain.NewProcessingError(err)
	}

	set, err := d.toArtifactSet(resp, namespace)
	if err != nil {
		return nil, domain.NewProcessingError(err)
	}

	log.WithFields(log.Fields{
		"namespace":      set.Namespace,
		"normalized":     set.Name(domain.ArtifactNormalized),
		"labels":         set.Name(domain.ArtifactLabels),
		"classification": set.Name(domain.ArtifactClassification),
		"parallel":       set.Name(domain.ArtifactParallel),
	}).Debug("engine produced artifacts")

	return set, nil
}

func (d *Dispatcher) invoke(ctx context.Context, req output.ProcessRequest) (resp *output.ProcessResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()

	resp, err = d.processor.Process(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("engine returned no result")
	}
	return resp, nil
}

// toArtifactSet checks the engine's report against the store. The engine's
// namespace and names win over the ones that were requested.
func (d *Dispatcher) toArtifactSet(resp *output.ProcessResponse, requested string) (*domain.ArtifactSet, error) {
	namespace := strings.TrimSpace(resp.Namespace)
	if namespace == "" {
		namespace = requested
	}

	set := domain.NewArtifactSet(namespace,
		strings.TrimSpace(resp.NormalizedName),
		strings.TrimSpace(resp.LabelsName),
		strings.TrimSpace(resp.ClassificationName),
		strings.TrimSpace(resp.ParallelName),
	)

	for _, a := range set.Artifacts {
		if a.Name == "" {
			return nil, fmt.Errorf("engine returned no name for %s", a.Kind)
		}
		ok, err := d.store.Exists(namespace, a.Name)
		if err != nil {
			return nil, fmt.Errorf("check %s artifact: %w", a.Kind, err)
		}
		if !ok {
			return nil, fmt.Errorf("engine reported %s artifact %q but it was not written", a.Kind, a.Name)
		}
	}
	return set, nil
}
