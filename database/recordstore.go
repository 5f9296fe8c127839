package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// RecordStore is a generic table-level CRUD helper over a raw SQL connection.
// Values are always bound positionally; table and column names are only ever
// interpolated from fixed internal call sites, never from request input.
type RecordStore struct {
	db     *sql.DB
	driver string
}

// Row is a single database row as a column name to value mapping
type Row map[string]any

// NewRecordStore creates a record store for the given connection and driver
func NewRecordStore(db *sql.DB, driver string) *RecordStore {
	return &RecordStore{db: db, driver: driver}
}

// placeholder returns the positional placeholder for 1-based index n
func (s *RecordStore) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// sortedKeys returns map keys in a stable order so that the generated SQL and
// the bound argument list always line up.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildWhere renders an AND-conjunction of equality conditions starting at
// placeholder index start, returning the clause and the bound arguments.
func (s *RecordStore) buildWhere(conditions map[string]any, start int) (string, []any) {
	if len(conditions) == 0 {
		return "", nil
	}
	var sb strings.Builder
	args := make([]any, 0, len(conditions))
	sb.WriteString(" WHERE ")
	for i, col := range sortedKeys(conditions) {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ")
		sb.WriteString(s.placeholder(start + i))
		args = append(args, conditions[col])
	}
	return sb.String(), args
}

// scanRows converts a result set into a slice of Row maps
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Select returns all rows matching an AND-conjunction of equality conditions.
// orderBy/order and limit are optional ("" and 0 disable them).
func (s *RecordStore) Select(table string, conditions map[string]any, orderBy, order string, limit int) ([]Row, error) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)

	where, args := s.buildWhere(conditions, 1)
	sb.WriteString(where)

	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
		if strings.EqualFold(order, "DESC") {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}
	if limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", limit))
	}

	rows, err := s.db.Query(sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// SelectDistinct returns de-duplicated rows projected to the given columns
func (s *RecordStore) SelectDistinct(table string, columns []string, conditions map[string]any, orderBy, order string, limit int) ([]Row, error) {
	var sb strings.Builder
	sb.WriteString("SELECT DISTINCT ")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(table)

	where, args := s.buildWhere(conditions, 1)
	sb.WriteString(where)

	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
		if strings.EqualFold(order, "DESC") {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}
	if limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", limit))
	}

	rows, err := s.db.Query(sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Count returns the number of rows matching the conditions
func (s *RecordStore) Count(table string, conditions map[string]any) (int64, error) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(table)

	where, args := s.buildWhere(conditions, 1)
	sb.WriteString(where)

	var count int64
	if err := s.db.QueryRow(sb.String(), args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountRange returns the number of rows whose columns fall inside the given
// inclusive [low, high] bounds, one BETWEEN clause per column.
func (s *RecordStore) CountRange(table string, ranges map[string][2]any) (int64, error) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(table)

	var args []any
	if len(ranges) > 0 {
		sb.WriteString(" WHERE ")
		n := 1
		for i, col := range sortedKeys(ranges) {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			bound := ranges[col]
			sb.WriteString(col)
			sb.WriteString(" BETWEEN ")
			sb.WriteString(s.placeholder(n))
			sb.WriteString(" AND ")
			sb.WriteString(s.placeholder(n + 1))
			args = append(args, bound[0], bound[1])
			n += 2
		}
	}

	var count int64
	if err := s.db.QueryRow(sb.String(), args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Insert creates a row from a column map and returns the generated primary key
func (s *RecordStore) Insert(table string, data map[string]any) (int64, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("insert into %s: no columns", table)
	}

	cols := sortedKeys(data)
	args := make([]any, 0, len(cols))
	placeholders := make([]string, 0, len(cols))
	for i, col := range cols {
		placeholders = append(placeholders, s.placeholder(i+1))
		args = append(args, data[col])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	// lib/pq does not support LastInsertId
	if s.driver == "postgres" {
		var id int64
		if err := s.db.QueryRow(query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update sets the given columns on all rows matching the conditions. It
// reports whether the statement executed, not whether any row changed.
func (s *RecordStore) Update(table string, data map[string]any, conditions map[string]any) error {
	if len(data) == 0 {
		return fmt.Errorf("update %s: no columns", table)
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")

	args := make([]any, 0, len(data)+len(conditions))
	for i, col := range sortedKeys(data) {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ")
		sb.WriteString(s.placeholder(i + 1))
		args = append(args, data[col])
	}

	where, whereArgs := s.buildWhere(conditions, len(data)+1)
	sb.WriteString(where)
	args = append(args, whereArgs...)

	_, err := s.db.Exec(sb.String(), args...)
	return err
}

// Delete removes all rows matching the conditions
func (s *RecordStore) Delete(table string, conditions map[string]any) error {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(table)

	where, args := s.buildWhere(conditions, 1)
	sb.WriteString(where)

	_, err := s.db.Exec(sb.String(), args...)
	return err
}
