package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
)

func TestDomainSortsWithSpanishCollation(t *testing.T) {
	t.Parallel()

	info := Domain(wideTable())
	require.Equal(t, []string{"Antioquia", "Bogotá D.C.", "Bolívar", "Chocó", "Nariño"}, info.Departments)
	require.Equal(t, []string{"Alta", "Baja", "Media"}, info.Categories)
	require.NotNil(t, info.Bounds)
	require.InDelta(t, 0.1, info.Bounds.Min, 1e-12)
	require.InDelta(t, 0.95, info.Bounds.Max, 1e-12)
}

func TestDomainEmptyTable(t *testing.T) {
	t.Parallel()

	info := Domain(dataset.Table{})
	require.Empty(t, info.Departments)
	require.Empty(t, info.Categories)
	require.Nil(t, info.Bounds)
}

func TestDefaultFilter(t *testing.T) {
	t.Parallel()

	spec := DefaultFilter(wideTable(), 3)
	require.Equal(t, []string{"Bolívar", "Antioquia", "Bogotá D.C."}, spec.Departments)
	require.Equal(t, []string{"Media", "Alta", "Baja"}, spec.Categories)
	require.Equal(t, Range{Min: 0.1, Max: 0.95}, spec.ValueRange)
	require.NoError(t, spec.Validate())

	got := Filter(wideTable(), spec)
	require.Equal(t, 6, got.Len())
}

func TestSortByValue(t *testing.T) {
	t.Parallel()

	d := wideTable()
	sorted := SortByValue(d, true)
	require.Equal(t, d.Len(), sorted.Len())
	for i := 1; i < sorted.Len(); i++ {
		require.GreaterOrEqual(t, sorted.Records[i-1].Value, sorted.Records[i].Value)
	}
	require.Equal(t, "Bolívar", d.Records[0].Department, "input order is untouched")

	asc := SortByValue(d, false)
	require.Equal(t, "Nariño", asc.Records[0].Department)
}

func TestDistribution(t *testing.T) {
	t.Parallel()

	d := dataset.Table{Records: []dataset.Record{
		{Department: "Antioquia", Category: "Alta", Value: 0.4},
		{Department: "Antioquia", Category: "Alta", Value: 0.1},
		{Department: "Antioquia", Category: "Alta", Value: 0.3},
		{Department: "Antioquia", Category: "Alta", Value: 0.2},
		{Department: "Chocó", Category: "Baja", Value: 0.5},
	}}

	dist, err := Distribution(d, []Field{FieldDepartment})
	require.NoError(t, err)
	require.Len(t, dist.Rows, 2)

	box := dist.Rows[0]
	require.Equal(t, []string{"Antioquia"}, box.Key)
	require.Equal(t, 4, box.Count)
	require.InDelta(t, 0.1, box.Min, 1e-12)
	require.InDelta(t, 0.175, box.Q1, 1e-12)
	require.InDelta(t, 0.25, box.Median, 1e-12)
	require.InDelta(t, 0.325, box.Q3, 1e-12)
	require.InDelta(t, 0.4, box.Max, 1e-12)

	single := dist.Rows[1]
	require.Equal(t, 1, single.Count)
	require.InDelta(t, 0.5, single.Median, 1e-12)
	require.InDelta(t, 0.5, single.Q1, 1e-12)

	_, err = Distribution(d, []Field{"Longitud"})
	require.ErrorIs(t, err, ErrInvalidField)
}

func TestMarkersSkipMissingCoordinates(t *testing.T) {
	t.Parallel()

	lat, lon := 6.25, -75.56
	d := dataset.Table{Records: []dataset.Record{
		{Department: "Antioquia", Category: "Alta", Value: 0.8, Latitude: &lat, Longitude: &lon, Institution: "IE San José"},
		{Department: "Antioquia", Category: "Baja", Value: 0.2, Latitude: &lat},
		{Department: "Chocó", Category: "C", Value: 0.9, Latitude: ptr(5.69), Longitude: ptr(-76.66)},
	}}

	markers := Markers(d, DefaultLegend())
	require.Len(t, markers, 2)

	require.Equal(t, "green", markers[0].Color)
	require.Equal(t, "IE San José", markers[0].Institution)
	require.Equal(t, "Antioquia", markers[0].Tooltip)
	require.Equal(t, lat, markers[0].Lat)

	require.Equal(t, FallbackColor, markers[1].Color, "unknown categories use the fallback color")
	require.Equal(t, "N/A", markers[1].Institution)
}
