package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
)

// ErrInvalidTable is returned for table names that are not plain (optionally schema-qualified) identifiers.
var ErrInvalidTable = errors.New("invalid table name")

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Store wraps access to a dataset table.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database named by dsn. postgres:// URLs use the pgx driver;
// sqlite://path, file: URIs and *.db / *.sqlite paths use the pure-Go SQLite driver.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, source, err := driverFor(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return &Store{db: conn, driver: driver}, nil
}

// NewWithDB wraps an existing connection. Statements use PostgreSQL placeholders.
func NewWithDB(conn *sql.DB) *Store {
	return &Store{db: conn, driver: "pgx"}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func driverFor(dsn string) (string, string, error) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "pgx", dsn, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return "sqlite", dsn[len("sqlite://"):], nil
	case strings.HasPrefix(lower, "file:"),
		strings.HasSuffix(lower, ".db"),
		strings.HasSuffix(lower, ".sqlite"),
		strings.HasSuffix(lower, ".sqlite3"):
		return "sqlite", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", dsn)
	}
}

const (
	loadTableSQL = `
    SELECT departamento, latitud, longitud, categoria, valor, institucion, celdas
    FROM %s
    ORDER BY ordinal
`
	loadColumnsSQL = `
    SELECT nombre
    FROM %s_columns
    ORDER BY posicion
`
)

// LoadTable reads every row of table, in import order, into a dataset.Table. The header comes
// from the companion <table>_columns table, or the canonical column order when it is empty.
// NULL coordinates become missing coordinates; NULL institutions become empty strings.
func (s *Store) LoadTable(ctx context.Context, table string) (*dataset.Table, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	records, err := s.loadRecords(ctx, table)
	if err != nil {
		return nil, err
	}
	columns, err := s.loadColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		columns = append([]string(nil), dataset.CanonicalColumns...)
	}
	return &dataset.Table{Columns: columns, Records: records}, nil
}

func (s *Store) loadRecords(ctx context.Context, table string) ([]dataset.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(loadTableSQL, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]dataset.Record, 0)
	line := 1
	for rows.Next() {
		line++
		var (
			rec         dataset.Record
			lat, lon    sql.NullFloat64
			institution sql.NullString
			cells       sql.NullString
		)
		if err := rows.Scan(
			&rec.Department,
			&lat,
			&lon,
			&rec.Category,
			&rec.Value,
			&institution,
			&cells,
		); err != nil {
			return nil, err
		}
		if rec.Department == "" {
			return nil, &dataset.ParseError{Line: line, Column: dataset.ColDepartment, Err: dataset.ErrEmptyDepartment}
		}
		if math.IsNaN(rec.Value) || math.IsInf(rec.Value, 0) {
			return nil, &dataset.ParseError{
				Line:   line,
				Column: dataset.ColValue,
				Err:    fmt.Errorf("%w: %v", dataset.ErrInvalidValue, rec.Value),
			}
		}
		if lat.Valid {
			v := lat.Float64
			rec.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			rec.Longitude = &v
		}
		rec.Institution = institution.String
		if cells.Valid && cells.String != "" {
			if err := json.Unmarshal([]byte(cells.String), &rec.Cells); err != nil {
				return nil, &dataset.ParseError{Line: line, Column: "celdas", Err: err}
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) loadColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(loadColumnsSQL, table))
	if err != nil {
		return nil, fmt.Errorf("load %s_columns: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

const (
	createTableSQL = `
    CREATE TABLE IF NOT EXISTS %s (
        ordinal INTEGER NOT NULL,
        departamento TEXT NOT NULL,
        latitud DOUBLE PRECISION,
        longitud DOUBLE PRECISION,
        categoria TEXT NOT NULL,
        valor DOUBLE PRECISION NOT NULL,
        institucion TEXT,
        celdas TEXT
    )
`
	createColumnsSQL = `
    CREATE TABLE IF NOT EXISTS %s_columns (
        posicion INTEGER NOT NULL,
        nombre TEXT NOT NULL
    )
`
)

// ReplaceTable creates table and <table>_columns if needed and swaps their contents for t inside
// one transaction, so readers never observe a partially written dataset. Row order, the header
// and the original cell text are stored so LoadTable returns what the CSV loader would.
func (s *Store) ReplaceTable(ctx context.Context, table string, t *dataset.Table) error {
	if !tableNameRe.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{
		fmt.Sprintf(createTableSQL, table),
		fmt.Sprintf(createColumnsSQL, table),
		"DELETE FROM " + table,
		"DELETE FROM " + table + "_columns",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("prepare %s: %w", table, err)
		}
	}

	colStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s_columns (posicion, nombre) VALUES (%s)", table, s.placeholders(2)))
	if err != nil {
		return err
	}
	defer colStmt.Close()

	for i, col := range t.Columns {
		if _, err := colStmt.ExecContext(ctx, i+1, col); err != nil {
			return fmt.Errorf("insert column %q: %w", col, err)
		}
	}

	rowStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (ordinal, departamento, latitud, longitud, categoria, valor, institucion, celdas) VALUES (%s)",
		table, s.placeholders(8)))
	if err != nil {
		return err
	}
	defer rowStmt.Close()

	for i, rec := range t.Records {
		cells, err := encodeCells(rec.Cells)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i+1, err)
		}
		if _, err := rowStmt.ExecContext(ctx,
			i+1,
			rec.Department,
			nullFloat(rec.Latitude),
			nullFloat(rec.Longitude),
			rec.Category,
			rec.Value,
			sql.NullString{String: rec.Institution, Valid: rec.Institution != ""},
			cells,
		); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// placeholders returns n bind parameters in the driver's syntax.
func (s *Store) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if s.driver == "sqlite" {
			parts[i] = "?"
		} else {
			parts[i] = "$" + strconv.Itoa(i+1)
		}
	}
	return strings.Join(parts, ", ")
}

func encodeCells(cells map[string]string) (sql.NullString, error) {
	if cells == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(cells)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
