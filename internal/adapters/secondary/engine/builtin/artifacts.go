package builtin

import "strings"

// Threshold is the z-score at or above which a dimension's bit is set.
const Threshold = 0.0

// LabelsName is the file the engine always writes labels to.
const LabelsName = "labels_file.json"

// SubspaceKey joins dimension names into a processed.json key.
func SubspaceKey(names []string) string {
	return strings.Join(names, "_")
}

// Normalized maps every subspace, the top-k variance dimensions for k=1..n,
// to the z-scored points projected onto it.
func (a *Analysis) Normalized() map[string][]map[string]any {
	out := make(map[string][]map[string]any, len(a.Dimensions))
	names := make([]string, 0, len(a.Dimensions))
	for k, dim := range a.Dimensions {
		names = append(names, dim.Name)
		points := make([]map[string]any, len(a.Z))
		for r, z := range a.Z {
			p := make(map[string]any, k+2)
			p[pointIDKey] = r
			for d := 0; d <= k; d++ {
				p[a.Dimensions[d].Name] = z[d]
			}
			points[r] = p
		}
		out[SubspaceKey(names)] = points
	}
	return out
}

type LabelsDoc struct {
	Labels map[string][]int `json:"labels"`
}

func (a *Analysis) LabelSet() LabelsDoc {
	doc := LabelsDoc{Labels: make(map[string][]int)}
	for r, l := range a.Labels {
		doc.Labels[l] = append(doc.Labels[l], r)
	}
	return doc
}

type Assignment struct {
	PointID int    `json:"Point_ID"`
	Cluster string `json:"cluster"`
	Label   string `json:"label"`
}

type ClassificationDoc struct {
	Method     string           `json:"method"`
	Threshold  float64          `json:"threshold"`
	Dimensions []string         `json:"dimensions"`
	Clusters   map[string][]int `json:"clusters"`
	Points     []Assignment     `json:"points"`
}

// Classification groups points by the bit vector of their z-scores against
// Threshold, one bit per ranked dimension.
func (a *Analysis) Classification() ClassificationDoc {
	doc := ClassificationDoc{
		Method:     "zscore",
		Threshold:  Threshold,
		Dimensions: a.dimensionNames(),
		Clusters:   make(map[string][]int),
		Points:     make([]Assignment, len(a.Z)),
	}
	for r, z := range a.Z {
		var b strings.Builder
		for _, v := range z {
			if v >= Threshold {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		bits := b.String()
		doc.Clusters[bits] = append(doc.Clusters[bits], r)
		doc.Points[r] = Assignment{PointID: r, Cluster: bits, Label: a.Labels[r]}
	}
	return doc
}

type ParallelPoint struct {
	PointID int                `json:"Point_ID"`
	Label   string             `json:"label"`
	Values  map[string]float64 `json:"values"`
}

type ParallelDoc struct {
	Dimensions []Dimension     `json:"dimensions"`
	Points     []ParallelPoint `json:"points"`
}

// Parallel is the raw-value projection for a parallel-coordinates plot.
func (a *Analysis) Parallel() ParallelDoc {
	doc := ParallelDoc{
		Dimensions: a.Dimensions,
		Points:     make([]ParallelPoint, len(a.Raw)),
	}
	for r, raw := range a.Raw {
		values := make(map[string]float64, len(raw))
		for d, v := range raw {
			values[a.Dimensions[d].Name] = v
		}
		doc.Points[r] = ParallelPoint{PointID: r, Label: a.Labels[r], Values: values}
	}
	return doc
}

func (a *Analysis) dimensionNames() []string {
	names := make([]string, len(a.Dimensions))
	for i, d := range a.Dimensions {
		names[i] = d.Name
	}
	return names
}
