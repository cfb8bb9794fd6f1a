package datarecording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ErrUnmappedTable is returned when querying a table that was never mapped.
var ErrUnmappedTable = errors.New("table is not mapped")

// QueryParams selects and pages rows.
type QueryParams struct {
	// Where is a SQL condition without the WHERE keyword, for example
	// "Region = ? AND Kind = ?".
	Where string
	Args  []any

	// OrderBy is a column list without ORDER BY, for example "StartTime DESC".
	OrderBy string

	// Limit of zero returns every row. Offset only applies with a Limit.
	Limit  int
	Offset int
}

// DataReader reads tables written by a DataRecorder.
type DataReader interface {
	// MapTable associates a table with the struct type its rows decode to.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables, sorted.
	ListTables() []string

	// Query returns pointers to decoded rows and the number of rows that
	// match params ignoring Limit and Offset.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	Close() error
}

type sqliteReader struct {
	db     *sql.DB
	tables map[string]reflect.Type
}

// NewReader opens a recording file for reading. The file must exist.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", "file:"+dbFilename+"?mode=ro")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", dbFilename, err)
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a DataReader over an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:     db,
		tables: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.tables[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// buildQuery returns the row query and the count query for params.
func buildQuery(tableName string, params QueryParams) (rows, count string) {
	var where string
	if params.Where != "" {
		where = " WHERE " + params.Where
	}

	count = "SELECT COUNT(*) FROM " + tableName + where

	var b strings.Builder
	b.WriteString("SELECT * FROM " + tableName + where)

	if params.OrderBy != "" {
		b.WriteString(" ORDER BY " + params.OrderBy)
	}

	if params.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", params.Limit)

		if params.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", params.Offset)
		}
	}

	return b.String(), count
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	structType, ok := r.tables[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnmappedTable, tableName)
	}

	rowQuery, countQuery := buildQuery(tableName, params)

	var total int

	err := r.db.QueryRowContext(ctx, countQuery, params.Args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, rowQuery, params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := decodeRows(rows, structType)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// decodeRows matches columns to struct fields by name. Columns without a
// field are read and dropped.
func decodeRows(rows *sql.Rows, structType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndex := make([]int, len(columns))
	for i, col := range columns {
		fieldIndex[i] = -1

		if f, found := structType.FieldByName(col); found && len(f.Index) == 1 {
			fieldIndex[i] = f.Index[0]
		}
	}

	var results []any

	for rows.Next() {
		entry := reflect.New(structType)
		targets := make([]any, len(columns))

		for i, idx := range fieldIndex {
			if idx < 0 {
				targets[i] = new(any)
				continue
			}

			targets[i] = entry.Elem().Field(idx).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}
