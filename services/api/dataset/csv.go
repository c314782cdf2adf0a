package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyDepartment is returned for rows without a department name.
	ErrEmptyDepartment = errors.New("department is empty")
	// ErrInvalidValue is returned when Valor is not a finite number.
	ErrInvalidValue = errors.New("value is not numeric")
)

// LoadFile reads and parses a dataset file. The file is closed whether or not parsing succeeds.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return t, nil
}

// ParseCSV reads a header row followed by records. Coordinates that fail to parse are kept as
// nil; a missing required column, an empty department or a non-numeric value fails the load.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		columns[i] = h
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &ParseError{Line: 1, Column: col, Err: ErrMissingColumn}
		}
	}

	t := &Table{Columns: columns, Records: make([]Record, 0)}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		rec, err := buildRecord(row, columns, index, line)
		if err != nil {
			return nil, err
		}
		t.Records = append(t.Records, rec)
	}

	return t, nil
}

func buildRecord(row, columns []string, index map[string]int, line int) (Record, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := Record{
		Department:  cell(ColDepartment),
		Latitude:    CoerceFloat(cell(ColLatitude)),
		Longitude:   CoerceFloat(cell(ColLongitude)),
		Category:    cell(ColCategory),
		Institution: cell(ColInstitution),
	}
	if rec.Department == "" {
		return Record{}, &ParseError{Line: line, Column: ColDepartment, Err: ErrEmptyDepartment}
	}

	raw := cell(ColValue)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || isNaNOrInf(v) {
		return Record{}, &ParseError{Line: line, Column: ColValue, Err: fmt.Errorf("%w: %q", ErrInvalidValue, raw)}
	}
	rec.Value = v

	rec.Cells = make(map[string]string, len(columns))
	for i, col := range columns {
		if i >= len(row) {
			break
		}
		if _, dup := rec.Cells[col]; !dup {
			rec.Cells[col] = row[i]
		}
	}

	return rec, nil
}

// WriteCSV serializes a table using its header columns in their original order.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}

	row := make([]string, len(t.Columns))
	for _, rec := range t.Records {
		for i, col := range t.Columns {
			row[i] = rec.Cell(col)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func isNaNOrInf(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
