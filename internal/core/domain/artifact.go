package domain

// ArtifactKind identifies one of the four outputs of the processing engine.
type ArtifactKind string

const (
	ArtifactNormalized     ArtifactKind = "normalized-data"
	ArtifactLabels         ArtifactKind = "labels"
	ArtifactClassification ArtifactKind = "classification"
	ArtifactParallel       ArtifactKind = "parallel-coordinates"
)

// ArtifactKinds lists the kinds in response order.
var ArtifactKinds = []ArtifactKind{
	ArtifactNormalized,
	ArtifactLabels,
	ArtifactClassification,
	ArtifactParallel,
}

// Default name hints passed to the engine when the caller supplies none.
const (
	DefaultNormalizedName     = "processed.json"
	DefaultClassificationName = "classification.json"
	DefaultParallelName       = "parallel.json"
)

// NameHints are the caller's suggested artifact names. The engine may
// ignore them; the names it reports back are authoritative.
type NameHints struct {
	Normalized     string
	Classification string
	Parallel       string
}

// WithDefaults fills empty hints with the default names.
func (h NameHints) WithDefaults() NameHints {
	if h.Normalized == "" {
		h.Normalized = DefaultNormalizedName
	}
	if h.Classification == "" {
		h.Classification = DefaultClassificationName
	}
	if h.Parallel == "" {
		h.Parallel = DefaultParallelName
	}
	return h
}

type Artifact struct {
	Kind ArtifactKind `json:"kind" yaml:"kind"`
	Name string       `json:"name" yaml:"name"`
}

// ArtifactSet is the result of one successful processing run. It is not
// modified after the dispatcher builds it.
type ArtifactSet struct {
	Namespace string     `json:"namespace" yaml:"namespace"`
	Artifacts []Artifact `json:"artifacts" yaml:"artifacts"`
}

// NewArtifactSet builds a set in canonical kind order.
func NewArtifactSet(namespace, normalized, labels, classification, parallel string) *ArtifactSet {
	return &ArtifactSet{
		Namespace: namespace,
		Artifacts: []Artifact{
			{Kind: ArtifactNormalized, Name: normalized},
			{Kind: ArtifactLabels, Name: labels},
			{Kind: ArtifactClassification, Name: classification},
			{Kind: ArtifactParallel, Name: parallel},
		},
	}
}

// Name returns the artifact name for kind, or "" if absent.
func (s *ArtifactSet) Name(kind ArtifactKind) string {
	for _, a := range s.Artifacts {
		if a.Kind == kind {
			return a.Name
		}
	}
	return ""
}
