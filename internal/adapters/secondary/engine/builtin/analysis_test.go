package builtin

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataset-artifact-service/internal/core/domain"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func table(header []string, rows ...[]string) *domain.TabularDataset {
	return &domain.TabularDataset{Header: header, Rows: rows}
}

func TestAnalyze_RanksByVarianceAndLabels(t *testing.T) {
	a, err := Analyze(table([]string{"x", "y", "class"},
		[]string{"1", "10", "a"},
		[]string{"2", "20", "b"},
		[]string{"3", "30", "a"},
	))
	require.NoError(t, err)

	wantDims := []Dimension{
		{Name: "y", Min: 10, Max: 30, Mean: 20, Variance: 200.0 / 3},
		{Name: "x", Min: 1, Max: 3, Mean: 2, Variance: 2.0 / 3},
	}
	if diff := cmp.Diff(wantDims, a.Dimensions, approx); diff != "" {
		t.Errorf("dimensions mismatch (-want +got):\n%s", diff)
	}

	z := math.Sqrt(1.5)
	wantZ := [][]float64{{-z, -z}, {0, 0}, {z, z}}
	if diff := cmp.Diff(wantZ, a.Z, approx); diff != "" {
		t.Errorf("z-scores mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a", "b", "a"}, a.Labels)
	assert.Equal(t, [][]float64{{10, 1}, {20, 2}, {30, 3}}, a.Raw)
}

func TestAnalyze_ImputesMissingWithMean(t *testing.T) {
	a, err := Analyze(table([]string{"a", "b"},
		[]string{"1", ""},
		[]string{"3", "4"},
		[]string{"5", "6"},
	))
	require.NoError(t, err)

	col := func(name string) []float64 {
		for d, dim := range a.Dimensions {
			if dim.Name == name {
				out := make([]float64, len(a.Raw))
				for r := range a.Raw {
					out[r] = a.Raw[r][d]
				}
				return out
			}
		}
		t.Fatalf("dimension %q missing", name)
		return nil
	}
	assert.Equal(t, []float64{5, 4, 6}, col("b"))
	assert.Equal(t, []string{unlabeled, unlabeled, unlabeled}, a.Labels)
}

func TestAnalyze_LabelColumnByName(t *testing.T) {
	a, err := Analyze(table([]string{"f1", "f2", "Target"},
		[]string{"1", "2", "0"},
		[]string{"2", "1", "1"},
	))
	require.NoError(t, err)
	assert.Len(t, a.Dimensions, 2)
	assert.Equal(t, []string{"0", "1"}, a.Labels)
}

func TestAnalyze_SkipsNonNumericFeatures(t *testing.T) {
	a, err := Analyze(table([]string{"name", "score", "group"},
		[]string{"ann", "1.5", "g1"},
		[]string{"bob", "2.5", "g2"},
	))
	require.NoError(t, err)
	require.Len(t, a.Dimensions, 1)
	assert.Equal(t, "score", a.Dimensions[0].Name)
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := Analyze(table([]string{"a", "b"}))
	assert.ErrorIs(t, err, domain.ErrNoDataRows)

	_, err = Analyze(table([]string{"name", "city"}, []string{"bob", "paris"}))
	assert.ErrorIs(t, err, domain.ErrNoNumericFeatures)
}

func TestAnalyze_ConstantColumn(t *testing.T) {
	a, err := Analyze(table([]string{"c", "v"},
		[]string{"7", "1"},
		[]string{"7", "3"},
	))
	require.NoError(t, err)
	assert.Equal(t, "v", a.Dimensions[0].Name)
	for _, z := range a.Z {
		assert.Equal(t, 0.0, z[1])
	}
}

func TestAnalyze_DuplicateFeatureNames(t *testing.T) {
	a, err := Analyze(table([]string{"x", "x", "Point_ID", "label"},
		[]string{"1", "100", "5", "a"},
		[]string{"2", "200", "5", "b"},
		[]string{"3", "300", "5", "a"},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"x_2", "x", "Point_ID_2"}, a.dimensionNames())

	par := a.Parallel()
	assert.Equal(t, map[string]float64{"x": 1, "x_2": 100, "Point_ID_2": 5}, par.Points[0].Values)

	norm := a.Normalized()
	require.Contains(t, norm, "x_2_x_Point_ID_2")
	point := norm["x_2_x_Point_ID_2"][1]
	assert.Len(t, point, 4)
	assert.Equal(t, 1, point["Point_ID"])
}

func TestArtifacts_Documents(t *testing.T) {
	a, err := Analyze(table([]string{"x", "y", "class"},
		[]string{"1", "10", "a"},
		[]string{"2", "20", "b"},
		[]string{"3", "30", "a"},
	))
	require.NoError(t, err)

	norm := a.Normalized()
	require.Contains(t, norm, "y")
	require.Contains(t, norm, "y_x")
	assert.Len(t, norm["y"][0], 2)
	assert.Len(t, norm["y_x"][0], 3)
	assert.Equal(t, 2, norm["y_x"][2]["Point_ID"])

	want := LabelsDoc{Labels: map[string][]int{"a": {0, 2}, "b": {1}}}
	if diff := cmp.Diff(want, a.LabelSet()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	cls := a.Classification()
	assert.Equal(t, []string{"y", "x"}, cls.Dimensions)
	assert.Equal(t, map[string][]int{"00": {0}, "11": {1, 2}}, cls.Clusters)
	assert.Equal(t, Assignment{PointID: 1, Cluster: "11", Label: "b"}, cls.Points[1])

	par := a.Parallel()
	require.Len(t, par.Points, 3)
	assert.Equal(t, map[string]float64{"x": 3, "y": 30}, par.Points[2].Values)
	assert.Equal(t, "a", par.Points[2].Label)
}
