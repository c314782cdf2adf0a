package query

import (
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
)

// FallbackColor marks categories the legend does not know.
const FallbackColor = "blue"

// Legend maps a category to a marker color.
type Legend map[string]string

// DefaultLegend is the map page's performance legend.
func DefaultLegend() Legend {
	return Legend{"Alta": "green", "Media": "orange", "Baja": "red"}
}

// Color returns the category's color or FallbackColor.
func (l Legend) Color(category string) string {
	if c, ok := l[category]; ok && c != "" {
		return c
	}
	return FallbackColor
}

// Marker is one map point.
type Marker struct {
	Department  string  `json:"departamento"`
	Category    string  `json:"categoria"`
	Value       float64 `json:"valor"`
	Institution string  `json:"institucion"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Color       string  `json:"color"`
	Tooltip     string  `json:"tooltip"`
}

// Markers places every record that has both coordinates; the rest stay out of the map only.
func Markers(t dataset.Table, legend Legend) []Marker {
	out := make([]Marker, 0, len(t.Records))
	for _, rec := range t.Records {
		if !rec.HasCoordinates() {
			continue
		}
		institution := rec.Institution
		if institution == "" {
			institution = "N/A"
		}
		out = append(out, Marker{
			Department:  rec.Department,
			Category:    rec.Category,
			Value:       rec.Value,
			Institution: institution,
			Lat:         *rec.Latitude,
			Lon:         *rec.Longitude,
			Color:       legend.Color(rec.Category),
			Tooltip:     rec.Department,
		})
	}
	return out
}
