package dataset

import (
	"fmt"
	"strconv"
)

// Column names as they appear in the source file header.
const (
	ColDepartment  = "Departamento"
	ColLatitude    = "Latitud"
	ColLongitude   = "Longitud"
	ColCategory    = "Categoría"
	ColValue       = "Valor"
	ColInstitution = "Institución"
)

// RequiredColumns must be present in every dataset header.
var RequiredColumns = []string{ColDepartment, ColLatitude, ColLongitude, ColCategory, ColValue}

// CanonicalColumns is the column order used when a source has no header of its own.
var CanonicalColumns = []string{ColDepartment, ColLatitude, ColLongitude, ColCategory, ColValue, ColInstitution}

// Record is one row of the indicators dataset.
type Record struct {
	Department  string   `json:"Departamento"`
	Latitude    *float64 `json:"Latitud"`
	Longitude   *float64 `json:"Longitud"`
	Category    string   `json:"Categoría"`
	Value       float64  `json:"Valor"`
	Institution string   `json:"Institución,omitempty"`

	// Cells keeps the original text of every cell, keyed by header name. Export writes it back
	// unchanged; records built in code leave it nil and are rendered from the typed fields.
	Cells map[string]string `json:"-"`
}

// HasCoordinates reports whether the record can be placed on a map.
func (r Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Cell returns the named column as written back to CSV: the source text when known,
// otherwise the typed field rendered.
func (r Record) Cell(column string) string {
	if v, ok := r.Cells[column]; ok {
		return v
	}
	switch column {
	case ColDepartment:
		return r.Department
	case ColLatitude:
		return floatPtrString(r.Latitude)
	case ColLongitude:
		return floatPtrString(r.Longitude)
	case ColCategory:
		return r.Category
	case ColValue:
		return strconv.FormatFloat(r.Value, 'f', -1, 64)
	case ColInstitution:
		return r.Institution
	default:
		return ""
	}
}

// Table is an ordered sequence of records plus the header they were read with.
// A *Table handed out by a loader is never mutated afterwards.
type Table struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Len returns the number of records.
func (t Table) Len() int {
	return len(t.Records)
}

// WithRecords returns a table sharing t's header with a different record set.
func (t Table) WithRecords(records []Record) Table {
	return Table{Columns: t.Columns, Records: records}
}

// ParseError describes a row or header that cannot be loaded.
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CoerceFloat parses a numeric cell, treating empty or non-numeric text as missing.
func CoerceFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || isNaNOrInf(v) {
		return nil
	}
	return &v
}

func floatPtrString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
