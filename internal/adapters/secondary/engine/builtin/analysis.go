package builtin

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"dataset-artifact-service/internal/core/domain"
)

const (
	unlabeled  = "unlabeled"
	pointIDKey = "Point_ID"
)

var labelColumnNames = map[string]bool{
	"label":    true,
	"labels":   true,
	"class":    true,
	"target":   true,
	"category": true,
}

// Dimension summarises one numeric feature column.
type Dimension struct {
	Name     string  `json:"name"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// Analysis is everything the engine derives from one table. Dimensions are
// ranked by descending variance; Raw and Z are indexed [row][dimension] in
// that order.
type Analysis struct {
	Dimensions []Dimension
	Labels     []string
	Raw        [][]float64
	Z          [][]float64
}

// Analyze picks the numeric feature columns of t, imputes empty cells with
// the column mean, ranks the columns by variance, and z-scores them.
func Analyze(t *domain.TabularDataset) (*Analysis, error) {
	if t.RowCount() == 0 {
		return nil, domain.ErrNoDataRows
	}

	labelCol := labelColumn(t)
	var cols []int
	for i := range t.Header {
		if i == labelCol {
			continue
		}
		if numericColumn(t.Column(i)) {
			cols = append(cols, i)
		}
	}
	if len(cols) == 0 {
		return nil, domain.ErrNoNumericFeatures
	}

	n := t.RowCount()
	names := featureNames(t.Header, cols)
	values := make([][]float64, len(cols))
	dims := make([]Dimension, len(cols))
	for d, col := range cols {
		values[d], dims[d] = columnStats(names[d], t.Column(col))
	}

	order := make([]int, len(cols))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dims[order[a]].Variance > dims[order[b]].Variance
	})

	a := &Analysis{
		Dimensions: make([]Dimension, len(cols)),
		Labels:     make([]string, n),
		Raw:        make([][]float64, n),
		Z:          make([][]float64, n),
	}
	for rank, d := range order {
		a.Dimensions[rank] = dims[d]
	}
	for r := 0; r < n; r++ {
		a.Raw[r] = make([]float64, len(cols))
		a.Z[r] = make([]float64, len(cols))
		for rank, d := range order {
			v := values[d][r]
			a.Raw[r][rank] = v
			a.Z[r][rank] = zScore(v, dims[d])
		}
		a.Labels[r] = unlabeled
		if labelCol >= 0 {
			if l := strings.TrimSpace(t.Rows[r][labelCol]); l != "" {
				a.Labels[r] = l
			}
		}
	}
	return a, nil
}

// featureNames returns a distinct name for each of cols. Per-point artifacts
// are keyed by dimension name, so a repeated header becomes name_2, name_3
// and so on, and pointIDKey is never used as a dimension.
func featureNames(header []string, cols []int) []string {
	taken := map[string]bool{pointIDKey: true}
	out := make([]string, len(cols))
	for d, col := range cols {
		base := strings.TrimSpace(header[col])
		if base == "" {
			base = "column_" + strconv.Itoa(col+1)
		}
		name := base
		for i := 2; taken[name]; i++ {
			name = base + "_" + strconv.Itoa(i)
		}
		taken[name] = true
		out[d] = name
	}
	return out
}

// labelColumn returns the index of the last column if it holds class labels,
// or -1.
func labelColumn(t *domain.TabularDataset) int {
	last := t.ColumnCount() - 1
	if labelColumnNames[strings.ToLower(strings.TrimSpace(t.Header[last]))] {
		return last
	}
	for _, v := range t.Column(last) {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return last
		}
	}
	return -1
}

func numericColumn(values []string) bool {
	seen := false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		seen = true
	}
	return seen
}

func columnStats(name string, cells []string) ([]float64, Dimension) {
	out := make([]float64, len(cells))
	present := make([]bool, len(cells))
	var sum float64
	var count int
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		f, _ := strconv.ParseFloat(c, 64)
		out[i] = f
		present[i] = true
		sum += f
		count++
	}
	mean := sum / float64(count)

	dim := Dimension{Name: name, Min: math.Inf(1), Max: math.Inf(-1), Mean: mean}
	var sq float64
	for i := range out {
		if !present[i] {
			out[i] = mean
		}
		dim.Min = math.Min(dim.Min, out[i])
		dim.Max = math.Max(dim.Max, out[i])
		sq += (out[i] - mean) * (out[i] - mean)
	}
	dim.Variance = sq / float64(len(out))
	return out, dim
}

func zScore(v float64, d Dimension) float64 {
	std := math.Sqrt(d.Variance)
	if std == 0 {
		return 0
	}
	return (v - d.Mean) / std
}
