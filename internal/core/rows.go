package core

import (
	"context"
	"reflect"
	"time"

	"github.com/spf13/cast"

	"github.com/coregx/sqlcond/internal/util"
)

type rowState struct {
	record   Record
	isNew    bool
	modified Record
}

// current returns the record with pending modifications applied.
func (r *rowState) current() Record {
	out := r.record.Clone()
	for k, v := range r.modified {
		out[k] = v
	}
	return out
}

// Rows is a set of records of one table with change tracking. New rows
// are inserted by Save; fetched rows remember modified columns and Save
// updates only those. Rows address existing records by the table's
// FirstUnique key and are not filtered by the table appliers.
type Rows struct {
	table  *Table
	schema *Schema
	rows   []*rowState
}

func (t *Table) newRows(ctx context.Context) (*Rows, error) {
	schema, err := t.Schema(ctx)
	if err != nil {
		return nil, err
	}
	return &Rows{table: t, schema: schema}, nil
}

// NewRow returns an unsaved row holding values. Values are cast for their
// columns; fillable and guarded columns are not checked.
func (t *Table) NewRow(ctx context.Context, values Record) (*Rows, error) {
	rows, err := t.newRows(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := rows.prepare(values, false)
	if err != nil {
		return nil, err
	}
	rows.rows = append(rows.rows, &rowState{record: rec, isNew: true, modified: Record{}})
	return rows, nil
}

// NewRowFrom returns an unsaved row holding the db-tagged fields of model.
// A zero auto-increment field is left out so the database assigns it.
func (t *Table) NewRowFrom(ctx context.Context, model any) (*Rows, error) {
	values, err := util.StructToMap(model)
	if err != nil {
		return nil, err
	}
	schema, err := t.Schema(ctx)
	if err != nil {
		return nil, err
	}
	if auto := schema.AutoIncrement; auto != "" {
		if v, ok := values[auto]; ok && reflect.ValueOf(v).IsZero() {
			delete(values, auto)
		}
	}
	for col := range values {
		if _, ok := schema.Column(col); !ok {
			delete(values, col)
		}
	}
	return t.NewRow(ctx, values)
}

// Create inserts model and stores the assigned auto-increment value back
// into it.
func (t *Table) Create(ctx context.Context, model any) error {
	rows, err := t.NewRowFrom(ctx, model)
	if err != nil {
		return err
	}
	if err := rows.Save(ctx); err != nil {
		return err
	}
	if auto := rows.schema.AutoIncrement; auto != "" {
		if field, ok := util.FieldByColumn(model, auto); ok {
			return assign(field, rows.rows[0].record[auto])
		}
	}
	return nil
}

// FetchRows returns the rows of q with change tracking.
func (t *Table) FetchRows(ctx context.Context, q *SelectQuery) (*Rows, error) {
	rows, err := t.newRows(ctx)
	if err != nil {
		return nil, err
	}
	records, err := t.FetchAll(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := rows.appendFetched(r); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// FetchRow returns the first row of q or ErrNoRows.
func (t *Table) FetchRow(ctx context.Context, q *SelectQuery) (*Rows, error) {
	rows, err := t.FetchRows(ctx, q.Clone().Limit(1))
	if err != nil {
		return nil, err
	}
	if rows.Len() == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// Find returns the row identified by key, given in FirstUnique order.
func (t *Table) Find(ctx context.Context, key ...any) (*Rows, error) {
	schema, err := t.Schema(ctx)
	if err != nil {
		return nil, err
	}
	cols, err := schema.FirstUnique()
	if err != nil {
		return nil, err
	}
	if len(cols) != len(key) {
		return nil, newQueryError("unique key has %d columns, got %d values", len(cols), len(key))
	}
	q := t.Select()
	for i, c := range cols {
		q.Where(t.column(c), key[i])
	}
	return t.FetchRow(ctx, q)
}

func (r *Rows) appendFetched(rec Record) error {
	prepared, err := r.prepare(rec, false)
	if err != nil {
		return err
	}
	r.rows = append(r.rows, &rowState{record: prepared, modified: Record{}})
	return nil
}

// prepare casts every known column of rec. Unknown columns, such as
// computed select columns, are kept as is.
func (r *Rows) prepare(rec Record, toDB bool) (Record, error) {
	out := make(Record, len(rec))
	for k, v := range rec {
		col, ok := r.schema.Column(k)
		if !ok {
			if toDB {
				continue
			}
			out[k] = v
			continue
		}
		cv, err := castValue(col, r.table.casts[k], v, toDB)
		if err != nil {
			return nil, err
		}
		out[k] = cv
	}
	return out, nil
}

// Len returns the number of rows.
func (r *Rows) Len() int { return len(r.rows) }

// Row returns row i as a one-row set sharing state with r.
func (r *Rows) Row(i int) *Rows {
	return &Rows{table: r.table, schema: r.schema, rows: []*rowState{r.rows[i]}}
}

// Records returns the current values of every row.
func (r *Rows) Records() []Record {
	out := make([]Record, len(r.rows))
	for i, row := range r.rows {
		out[i] = row.current()
	}
	return out
}

// Record returns the current values of row i.
func (r *Rows) Record(i int) Record { return r.rows[i].current() }

// IsNew reports whether row i has not been saved yet.
func (r *Rows) IsNew(i int) bool { return r.rows[i].isNew }

// Modified returns the unsaved changes of row i.
func (r *Rows) Modified(i int) Record { return r.rows[i].modified.Clone() }

// Has reports whether every row holds column.
func (r *Rows) Has(column string) bool {
	if len(r.rows) == 0 {
		return false
	}
	for _, row := range r.rows {
		if _, ok := row.modified[column]; ok {
			continue
		}
		if !row.record.Has(column) {
			return false
		}
	}
	return true
}

// Get returns the current value of column for every row.
func (r *Rows) Get(column string) ([]any, error) {
	if _, ok := r.schema.Column(column); !ok {
		return nil, newQueryError("column %s not found in table %s", column, r.table.name)
	}
	out := make([]any, len(r.rows))
	for i, row := range r.rows {
		if v, ok := row.modified[column]; ok {
			out[i] = v
			continue
		}
		out[i] = row.record[column]
	}
	return out, nil
}

// Value returns the current value of column in the first row.
func (r *Rows) Value(column string) any {
	if len(r.rows) == 0 {
		return nil
	}
	return r.rows[0].current()[column]
}

// Set changes column on every row. New rows take the value directly;
// saved rows record it as a modification, and setting a value back to the
// stored one drops the modification.
func (r *Rows) Set(column string, value any) error {
	col, ok := r.schema.Column(column)
	if !ok {
		return newQueryError("column %s not found in table %s", column, r.table.name)
	}
	if !r.table.isFillable(column) {
		return newQueryError("column %s is not fillable in table %s", column, r.table.name)
	}
	v, err := castValue(col, r.table.casts[column], value, false)
	if err != nil {
		return err
	}

	for _, row := range r.rows {
		switch {
		case row.isNew:
			row.record[column] = v
		case row.record.Has(column) && reflect.DeepEqual(row.record[column], v):
			delete(row.modified, column)
		default:
			row.modified[column] = v
		}
	}
	return nil
}

// SetMultiple calls Set for every entry, in column order.
func (r *Rows) SetMultiple(values map[string]any) error {
	for _, k := range sortedKeys(values) {
		if err := r.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Decode copies the current values into dest, a pointer to a struct (first
// row) or to a slice of structs.
func (r *Rows) Decode(dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() == reflect.Ptr && v.Elem().Kind() == reflect.Slice {
		return decodeRecords(r.Records(), dest)
	}
	if len(r.rows) == 0 {
		return ErrNoRows
	}
	return decodeRecord(r.rows[0].current(), dest)
}

// MarkAsNew makes Save insert every row again, folding in pending changes.
func (r *Rows) MarkAsNew() {
	for _, row := range r.rows {
		row.record = row.current()
		row.modified = Record{}
		row.isNew = true
	}
}

// MarkAsOld makes Save treat every row as stored.
func (r *Rows) MarkAsOld() {
	for _, row := range r.rows {
		row.isNew = false
	}
}

// IsDeleted reports whether the first row is soft-deleted.
func (r *Rows) IsDeleted() bool {
	if r.table.softDelete == "" || len(r.rows) == 0 {
		return false
	}
	return r.rows[0].current()[r.table.softDelete] != nil
}

// Save inserts new rows and updates modified columns of stored rows.
// Inserted rows receive their auto-increment value, read through RETURNING
// on dialects that support it and from the driver's last insert ID
// elsewhere.
func (r *Rows) Save(ctx context.Context) error {
	for _, row := range r.rows {
		var err error
		if row.isNew {
			err = r.insert(ctx, row)
		} else if len(row.modified) > 0 {
			err = r.update(ctx, row)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Rows) insert(ctx context.Context, row *rowState) error {
	values, err := r.prepare(row.record, true)
	if err != nil {
		return err
	}
	auto := r.schema.AutoIncrement
	if auto != "" && values[auto] == nil {
		delete(values, auto)
	}
	if len(values) == 0 {
		return newQueryError("no values to insert into %s", r.table.name)
	}

	exec := r.table.exec
	q := r.table.Insert().ValuesMap(values)
	switch {
	case auto == "" || row.record[auto] != nil:
		if _, err := exec.Execute(ctx, q); err != nil {
			return err
		}
	case exec.db.dialect.Returning(auto) != "":
		id, err := exec.FetchColumn(ctx, q.Returning(auto))
		if err != nil {
			return err
		}
		row.record[auto] = cast.ToInt64(id)
	default:
		res, err := exec.Prepare(q).WithContext(ctx).Exec()
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		row.record[auto] = id
	}

	row.isNew = false
	row.modified = Record{}
	return nil
}

func (r *Rows) update(ctx context.Context, row *rowState) error {
	key, err := r.rowKey(row)
	if err != nil {
		return err
	}
	values, err := r.prepare(row.modified, true)
	if err != nil {
		return err
	}

	q := r.table.Update().SetMultiple(values)
	for _, c := range sortedKeys(key) {
		q.Where(c, key[c])
	}
	if _, err := r.table.exec.Execute(ctx, q); err != nil {
		return err
	}

	row.record = row.current()
	row.modified = Record{}
	return nil
}

// rowKey returns the stored FirstUnique values of row.
func (r *Rows) rowKey(row *rowState) (map[string]any, error) {
	cols, err := r.schema.FirstUnique()
	if err != nil {
		return nil, err
	}
	key := make(map[string]any, len(cols))
	for _, c := range cols {
		v := row.record[c]
		if v == nil {
			return nil, newQueryError("row of %s has no value for unique column %s", r.table.name, c)
		}
		key[c] = v
	}
	return key, nil
}

// Destroy deletes the stored rows by their unique key, as one statement
// using IN (a row IN for composite keys). Deleted rows become new. On
// soft-delete tables the deleted column is set instead and the rows stay
// stored.
func (r *Rows) Destroy(ctx context.Context) error {
	cols, err := r.schema.FirstUnique()
	if err != nil {
		return err
	}

	var (
		stored []*rowState
		keys   []any
	)
	for _, row := range r.rows {
		if row.isNew {
			continue
		}
		key, err := r.rowKey(row)
		if err != nil {
			return err
		}
		if len(cols) == 1 {
			keys = append(keys, key[cols[0]])
		} else {
			tuple := make([]any, len(cols))
			for i, c := range cols {
				tuple[i] = key[c]
			}
			keys = append(keys, tuple)
		}
		stored = append(stored, row)
	}
	if len(stored) == 0 {
		return nil
	}

	exec := r.table.exec
	if column := r.table.softDelete; column != "" {
		now := time.Now().UTC().Format(datetimeLayout)
		q := r.table.Update().Set(column, now)
		whereKeys(q.WhereClause(), cols, keys)
		if _, err := exec.Execute(ctx, q); err != nil {
			return err
		}
		for _, row := range stored {
			row.record[column] = now
			delete(row.modified, column)
		}
		return nil
	}

	q := r.table.Delete()
	whereKeys(q.WhereClause(), cols, keys)
	if _, err := exec.Execute(ctx, q); err != nil {
		return err
	}
	for _, row := range stored {
		row.record = row.current()
		row.modified = Record{}
		row.isNew = true
	}
	return nil
}

func whereKeys(w *WhereClause, cols []string, keys []any) {
	if len(cols) == 1 {
		w.Where(cols[0], keys)
		return
	}
	w.WhereRow(cols, keys)
}
