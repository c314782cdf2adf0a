// Package query filters, groups and summarizes an in-memory indicators table.
//
// Every function is pure: inputs are never modified and results depend only on the arguments.
package query

import (
	"errors"
	"fmt"
	"math"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
)

// ErrInvalidRange is returned when a value range has min > max or a NaN bound.
var ErrInvalidRange = errors.New("invalid value range")

// Range is an inclusive [Min, Max] interval over Valor.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the inclusive range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterSpec selects records by department, category and value.
// Empty department or category sets select everything.
type FilterSpec struct {
	Departments []string `json:"departments"`
	Categories  []string `json:"categories"`
	ValueRange  Range    `json:"value_range"`
}

// Validate checks the range invariant.
func (s FilterSpec) Validate() error {
	if math.IsNaN(s.ValueRange.Min) || math.IsNaN(s.ValueRange.Max) {
		return fmt.Errorf("%w: NaN bound", ErrInvalidRange)
	}
	if s.ValueRange.Min > s.ValueRange.Max {
		return fmt.Errorf("%w: min %g > max %g", ErrInvalidRange, s.ValueRange.Min, s.ValueRange.Max)
	}
	return nil
}

// Filter returns the records of t matching every predicate of spec, in their original order.
// Department or category values absent from the data simply match nothing.
func Filter(t dataset.Table, spec FilterSpec) dataset.Table {
	departments := toSet(spec.Departments)
	categories := toSet(spec.Categories)

	out := make([]dataset.Record, 0, len(t.Records))
	for _, rec := range t.Records {
		if departments != nil {
			if _, ok := departments[rec.Department]; !ok {
				continue
			}
		}
		if categories != nil {
			if _, ok := categories[rec.Category]; !ok {
				continue
			}
		}
		if !spec.ValueRange.Contains(rec.Value) {
			continue
		}
		out = append(out, rec)
	}
	return t.WithRecords(out)
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
