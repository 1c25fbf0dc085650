package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cgsep/graph"
)

func newTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable([]string{"FT_CD3", "FT_CD8", "PH_Tumor", "area"})
	require.NoError(t, err)
	require.NoError(t, tbl.Append(10, []float64{0.1, 0.2, 1, 50}))
	require.NoError(t, tbl.Append(11, []float64{0.3, 0.4, 0, 60}))
	require.NoError(t, tbl.Append(12, []float64{0.5, 0.6, 1, 70}))
	return tbl
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "CD3", StripPrefix("FT_CD3"))
	assert.Equal(t, "Tumor", StripPrefix("PH_Tumor"))
	assert.Equal(t, "area", StripPrefix("area"))
}

func TestTable(t *testing.T) {
	tbl := newTable(t)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"FT_CD3", "FT_CD8"}, tbl.ColumnsWithPrefix(FeaturePrefix))

	row, ok := tbl.Row(11)
	require.True(t, ok)
	assert.Equal(t, []float64{0.3, 0.4, 0, 60}, row)

	assert.Error(t, tbl.Append(10, []float64{0, 0, 0, 0}), "duplicate id")
	assert.Error(t, tbl.Append(13, []float64{0}), "width")

	_, err := NewTable([]string{"a", "a"})
	assert.Error(t, err)
}

func TestExtractor(t *testing.T) {
	tbl := newTable(t)
	e, err := NewDefaultExtractor(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"CD3", "CD8", "Tumor"}, e.Names())

	g := &graph.Graph{Name: "g", NodeIDs: []int64{12, 10}, Features: [][]float64{{0}, {0}}}
	rows, err := e.Attributes(g)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, 0.6, 1}, {0.1, 0.2, 1}}, rows)

	_, err = e.Attributes(&graph.Graph{Name: "h", NodeIDs: []int64{99}})
	assert.Error(t, err)

	_, err = e.Attributes(&graph.Graph{Name: "i", Features: [][]float64{{1}}})
	assert.Error(t, err, "graph without node ids")

	_, err = NewExtractor(tbl, "FT_CD4")
	assert.Error(t, err)

	_, err = NewExtractor(tbl)
	assert.Error(t, err)
}

func TestFeatureSource(t *testing.T) {
	s, err := NewFeatureSource([]string{"FT_a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Names())

	g := &graph.Graph{Name: "g", Features: [][]float64{{1, 2}}}
	rows, err := s.Attributes(g)
	require.NoError(t, err)
	assert.Equal(t, g.Features, rows)

	_, err = s.Attributes(&graph.Graph{Name: "h", Features: [][]float64{{1}}})
	assert.Error(t, err)
}

func TestStaticAndExtract(t *testing.T) {
	graphs := []*graph.Graph{
		{Name: "a", Features: [][]float64{{0}, {0}}},
		{Name: "b", Features: [][]float64{{0}}},
	}
	s, err := NewStatic([]string{"x", "y"}, graphs, [][][]float64{
		{{1, 2}, {3, 4}},
		{{5, 6}},
	})
	require.NoError(t, err)

	all, err := Extract(s, graphs)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{5, 6}}, all[1])

	_, err = Extract(s, []*graph.Graph{{Name: "a", Features: [][]float64{{0}}}})
	assert.Error(t, err, "row count mismatch")

	_, err = NewStatic([]string{"x"}, graphs, nil)
	assert.Error(t, err)
}

func TestStrippedNameCollision(t *testing.T) {
	names := []string{"FT_X", "PH_X"}

	_, err := NewFeatureSource(names)
	assert.ErrorContains(t, err, `attribute "X"`)
	assert.Panics(t, func() { MustFeatureSource(names) })

	graphs := []*graph.Graph{{Name: "a", Features: [][]float64{{0}}}}
	_, err = NewStatic(names, graphs, [][][]float64{{{1, 2}}})
	assert.ErrorContains(t, err, `attribute "X"`)

	_, err = NewFeatureSource([]string{"FT_X", "PH_Y"})
	assert.NoError(t, err)
}
