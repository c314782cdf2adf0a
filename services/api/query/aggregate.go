package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
)

var (
	// ErrInvalidMetric is returned for metrics outside Average, Sum and Count.
	ErrInvalidMetric = errors.New("invalid aggregation metric")
	// ErrInvalidField is returned for group-by fields outside the record schema.
	ErrInvalidField = errors.New("invalid group-by field")
)

// Metric is the reduction applied to each partition.
type Metric string

const (
	Average Metric = "average"
	Sum     Metric = "sum"
	Count   Metric = "count"
)

// Metrics lists the supported metrics in display order.
var Metrics = []Metric{Average, Sum, Count}

// ParseMetric accepts English names and the Spanish labels used by the dashboard.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "average", "avg", "mean", "promedio":
		return Average, nil
	case "sum", "suma":
		return Sum, nil
	case "count", "conteo":
		return Count, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
}

// Label returns the Spanish label shown in the comparison view.
func (m Metric) Label() string {
	switch m {
	case Average:
		return "Promedio"
	case Sum:
		return "Suma"
	case Count:
		return "Conteo"
	default:
		return string(m)
	}
}

func (m Metric) validate() error {
	switch m {
	case Average, Sum, Count:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMetric, string(m))
	}
}

// Field is a groupable record column.
type Field string

const (
	FieldDepartment  Field = dataset.ColDepartment
	FieldCategory    Field = dataset.ColCategory
	FieldInstitution Field = dataset.ColInstitution
)

// DefaultGroupBy is the Department × Category grouping used by the comparison view.
var DefaultGroupBy = []Field{FieldDepartment, FieldCategory}

// ParseField resolves a column name, also accepting the unaccented lowercase spelling.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "departamento":
		return FieldDepartment, nil
	case "categoría", "categoria":
		return FieldCategory, nil
	case "institución", "institucion":
		return FieldInstitution, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidField, s)
	}
}

func (f Field) value(rec dataset.Record) string {
	switch f {
	case FieldDepartment:
		return rec.Department
	case FieldCategory:
		return rec.Category
	case FieldInstitution:
		return rec.Institution
	default:
		return ""
	}
}

func validateFields(fields []Field) error {
	for _, f := range fields {
		switch f {
		case FieldDepartment, FieldCategory, FieldInstitution:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidField, string(f))
		}
	}
	return nil
}

// AggregationSpec describes how a filtered table is grouped and reduced.
// A nil GroupBy means DefaultGroupBy.
type AggregationSpec struct {
	Metric  Metric  `json:"metric"`
	GroupBy []Field `json:"group_by"`
}

// AggregateRow is the reduced value of one partition.
type AggregateRow struct {
	Key   []string `json:"key"`
	Value float64  `json:"value"`
	Count int      `json:"count"`
}

// AggregateTable holds one row per observed group key.
type AggregateTable struct {
	Metric  Metric         `json:"metric"`
	GroupBy []Field        `json:"group_by"`
	Rows    []AggregateRow `json:"rows"`
}

// ValueColumn is the name of the result column: Conteo for counts, Valor otherwise.
func (a AggregateTable) ValueColumn() string {
	if a.Metric == Count {
		return "Conteo"
	}
	return dataset.ColValue
}

// Records flattens the table into field-name keyed rows for the presentation layer.
func (a AggregateTable) Records() []map[string]any {
	out := make([]map[string]any, 0, len(a.Rows))
	col := a.ValueColumn()
	for _, row := range a.Rows {
		rec := make(map[string]any, len(a.GroupBy)+1)
		for i, f := range a.GroupBy {
			rec[string(f)] = row.Key[i]
		}
		if a.Metric == Count {
			rec[col] = row.Count
		} else {
			rec[col] = row.Value
		}
		out = append(out, rec)
	}
	return out
}

// Aggregate partitions an already filtered table by the group-by fields and reduces each
// partition with the metric. Keys with no records are not emitted. Rows are ordered by key
// using Spanish collation.
func Aggregate(t dataset.Table, spec AggregationSpec) (AggregateTable, error) {
	if err := spec.Metric.validate(); err != nil {
		return AggregateTable{}, err
	}
	groupBy := spec.GroupBy
	if groupBy == nil {
		groupBy = DefaultGroupBy
	}
	if err := validateFields(groupBy); err != nil {
		return AggregateTable{}, err
	}

	partitions := partition(t, groupBy)
	rows := make([]AggregateRow, 0, len(partitions))
	for _, p := range partitions {
		row := AggregateRow{Key: p.key, Count: len(p.values)}
		switch spec.Metric {
		case Sum:
			row.Value = sum(p.values)
		case Average:
			row.Value = sum(p.values) / float64(len(p.values))
		case Count:
			row.Value = float64(len(p.values))
		}
		rows = append(rows, row)
	}

	return AggregateTable{Metric: spec.Metric, GroupBy: groupBy, Rows: rows}, nil
}

type group struct {
	key    []string
	values []float64
}

// partition groups record values by key, returning groups sorted by key.
// Every group holds at least one value.
func partition(t dataset.Table, fields []Field) []group {
	index := make(map[string]int)
	groups := make([]group, 0)
	for _, rec := range t.Records {
		key := make([]string, len(fields))
		for i, f := range fields {
			key[i] = f.value(rec)
		}
		id := strings.Join(key, "\x1f")
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, group{key: key})
		}
		groups[i].values = append(groups[i].values, rec.Value)
	}

	cmp := newComparer()
	sort.SliceStable(groups, func(i, j int) bool {
		return cmp.lessKeys(groups[i].key, groups[j].key)
	})
	return groups
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
