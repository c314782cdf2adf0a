package http

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/query"
)

// filterParams are shared by every data route. Departments and categories repeat
// (?departamento=Antioquia&departamento=Chocó); no value means no restriction.
// A missing bound leaves that side open, so only two given bounds can conflict.
type filterParams struct {
	Departments []string `form:"departamento"`
	Categories  []string `form:"categoria"`
	Min         *float64 `form:"min"`
	Max         *float64 `form:"max"`
}

type groupParams struct {
	GroupBy []string `form:"group_by"`
}

type aggregateParams struct {
	groupParams
	Metric string `form:"metric" binding:"required"`
}

type recordsParams struct {
	Sort string `form:"sort"`
}

// spec turns the parameters into a filter.
func (p filterParams) spec() (query.FilterSpec, error) {
	bounds := query.Range{Min: math.Inf(-1), Max: math.Inf(1)}
	if p.Min != nil {
		bounds.Min = *p.Min
	}
	if p.Max != nil {
		bounds.Max = *p.Max
	}

	spec := query.FilterSpec{
		Departments: nonEmpty(p.Departments),
		Categories:  nonEmpty(p.Categories),
		ValueRange:  bounds,
	}
	return spec, spec.Validate()
}

func (p groupParams) fields() ([]query.Field, error) {
	if len(p.GroupBy) == 0 {
		return nil, nil
	}
	fields := make([]query.Field, 0, len(p.GroupBy))
	for _, raw := range p.GroupBy {
		f, err := query.ParseField(raw)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (p recordsParams) order() (sorted, desc bool, err error) {
	switch strings.ToLower(p.Sort) {
	case "":
		return false, false, nil
	case "valor_desc":
		return true, true, nil
	case "valor_asc":
		return true, false, nil
	default:
		return false, false, fmt.Errorf("invalid sort %q, expected valor_desc or valor_asc", p.Sort)
	}
}

// filtered binds the filter parameters and applies them to the current snapshot.
// On failure it writes a 400 response and returns ok=false.
func (s *Server) filtered(c *gin.Context) (full, out dataset.Table, ok bool) {
	var params filterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid filter parameters: %v", err)})
		return dataset.Table{}, dataset.Table{}, false
	}

	full = *s.data.Dataset()
	spec, err := params.spec()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return dataset.Table{}, dataset.Table{}, false
	}

	out = query.Filter(full, spec)
	s.metrics.ObserveFiltered(out.Len())
	return full, out, true
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
