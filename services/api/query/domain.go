package query

import (
	"sort"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
)

// DomainInfo describes the values available to the filter controls.
type DomainInfo struct {
	Departments []string `json:"departments"`
	Categories  []string `json:"categories"`
	// Bounds is nil for an empty table.
	Bounds *Range `json:"bounds,omitempty"`
}

// Domain collects distinct departments and categories, sorted with Spanish collation,
// and the observed Valor bounds.
func Domain(t dataset.Table) DomainInfo {
	info := DomainInfo{
		Departments: distinct(t, FieldDepartment),
		Categories:  distinct(t, FieldCategory),
	}
	cmp := newComparer()
	cmp.sortStrings(info.Departments)
	cmp.sortStrings(info.Categories)

	if s := SummaryStats(t); !s.NoData {
		info.Bounds = &Range{Min: s.Min, Max: s.Max}
	}
	return info
}

// DefaultFilter is the initial dashboard selection: the first n departments in the order
// they appear in the data, every category, and the full value range.
func DefaultFilter(t dataset.Table, n int) FilterSpec {
	departments := distinct(t, FieldDepartment)
	if n >= 0 && len(departments) > n {
		departments = departments[:n]
	}

	spec := FilterSpec{
		Departments: departments,
		Categories:  distinct(t, FieldCategory),
	}
	if s := SummaryStats(t); !s.NoData {
		spec.ValueRange = Range{Min: s.Min, Max: s.Max}
	}
	return spec
}

// SortByValue returns a copy of t ordered by Valor; ties keep their original order.
func SortByValue(t dataset.Table, desc bool) dataset.Table {
	records := append([]dataset.Record(nil), t.Records...)
	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return records[i].Value > records[j].Value
		}
		return records[i].Value < records[j].Value
	})
	return t.WithRecords(records)
}

// distinct returns non-empty field values in discovery order.
func distinct(t dataset.Table, f Field) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, rec := range t.Records {
		v := f.value(rec)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
