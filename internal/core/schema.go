package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Column describes one table column.
type Column struct {
	Name          string
	Type          string
	Nullable      bool
	Default       any
	Primary       bool
	AutoIncrement bool
}

// Schema describes a table: its columns in declaration order, primary key,
// unique keys and auto-increment column.
type Schema struct {
	Table         string
	Columns       []Column
	Primary       []string
	Unique        [][]string
	AutoIncrement string
}

// Column returns the named column.
func (s *Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// FirstUnique returns the columns identifying a row: the auto-increment
// column, else the primary key, else the first unique key.
func (s *Schema) FirstUnique() ([]string, error) {
	switch {
	case s.AutoIncrement != "":
		return []string{s.AutoIncrement}, nil
	case len(s.Primary) > 0:
		return s.Primary, nil
	case len(s.Unique) > 0:
		return s.Unique[0], nil
	}
	return nil, newQueryError("table %s has no unique key", s.Table)
}

// Describe returns the schema of table. Results are cached per DB and
// concurrent calls for the same table share one lookup.
func (s *session) Describe(ctx context.Context, table string) (*Schema, error) {
	db := s.db
	if schema, ok := db.schemas.Get(table); ok {
		return schema, nil
	}

	v, err, _ := db.describing.Do(table, func() (any, error) {
		if schema, ok := db.schemas.Get(table); ok {
			return schema, nil
		}
		schema, err := s.describe(ctx, table)
		if err != nil {
			return nil, err
		}
		db.schemas.Set(table, schema)
		return schema, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Schema), nil
}

// ForgetSchema drops the cached schema of table, or of every table when
// table is empty.
func (db *DB) ForgetSchema(table string) {
	if table == "" {
		db.schemas.Clear()
		return
	}
	db.schemas.Remove(table)
}

func (s *session) describe(ctx context.Context, table string) (*Schema, error) {
	var (
		schema *Schema
		err    error
	)
	switch s.db.dialect.Name() {
	case "sqlite":
		schema, err = s.describeSQLite(ctx, table)
	case "postgres":
		schema, err = s.describePostgres(ctx, table)
	default:
		schema, err = s.describeMySQL(ctx, table)
	}
	if err != nil {
		return nil, WrapError(err, "describe "+table)
	}
	if len(schema.Columns) == 0 {
		return nil, newQueryError("table %s does not exist", table)
	}
	return schema, nil
}

// trustedQuery builds an internal introspection query that skips the
// validator.
func (s *session) trustedQuery(ctx context.Context, sql string, params ...any) *Query {
	q := s.NewQuery(sql, params...).WithContext(ctx)
	q.trusted = true
	return q
}

func (s *session) describeSQLite(ctx context.Context, table string) (*Schema, error) {
	d := s.db.dialect
	rows, err := s.trustedQuery(ctx, "PRAGMA table_info("+d.QuoteName(table)+")").All()
	if err != nil {
		return nil, err
	}

	schema := &Schema{Table: table}
	type pk struct {
		pos  int64
		name string
	}
	var pks []pk
	for _, r := range rows {
		pos, _ := r.Int64("pk")
		notNull, _ := r.Int64("notnull")
		col := Column{
			Name:     r.String("name"),
			Type:     strings.ToLower(r.String("type")),
			Nullable: notNull == 0,
			Default:  r["dflt_value"],
			Primary:  pos > 0,
		}
		if pos > 0 {
			pks = append(pks, pk{pos, col.Name})
		}
		schema.Columns = append(schema.Columns, col)
	}
	sort.Slice(pks, func(i, j int) bool { return pks[i].pos < pks[j].pos })
	for _, p := range pks {
		schema.Primary = append(schema.Primary, p.name)
	}

	// A single INTEGER PRIMARY KEY aliases the rowid.
	if len(pks) == 1 {
		for i, c := range schema.Columns {
			if c.Name == pks[0].name && c.Type == "integer" {
				schema.Columns[i].AutoIncrement = true
				schema.AutoIncrement = c.Name
			}
		}
	}

	indexes, err := s.trustedQuery(ctx, "PRAGMA index_list("+d.QuoteName(table)+")").All()
	if err != nil {
		return nil, err
	}
	for _, idx := range indexes {
		unique, _ := idx.Int64("unique")
		if unique == 0 || idx.String("origin") == "pk" {
			continue
		}
		cols, err := s.trustedQuery(ctx, "PRAGMA index_info("+d.QuoteName(idx.String("name"))+")").All()
		if err != nil {
			return nil, err
		}
		sort.Slice(cols, func(i, j int) bool {
			a, _ := cols[i].Int64("seqno")
			b, _ := cols[j].Int64("seqno")
			return a < b
		})
		key := make([]string, len(cols))
		for i, c := range cols {
			key[i] = c.String("name")
		}
		schema.Unique = append(schema.Unique, key)
	}
	return schema, nil
}

func (s *session) describeMySQL(ctx context.Context, table string) (*Schema, error) {
	rows, err := s.trustedQuery(ctx, "SHOW COLUMNS FROM "+s.db.dialect.QuoteName(table)).All()
	if err != nil {
		return nil, err
	}

	schema := &Schema{Table: table}
	for _, r := range rows {
		col := Column{
			Name:          r.String("Field"),
			Type:          strings.ToLower(r.String("Type")),
			Nullable:      strings.EqualFold(r.String("Null"), "YES"),
			Default:       r["Default"],
			Primary:       r.String("Key") == "PRI",
			AutoIncrement: strings.Contains(strings.ToLower(r.String("Extra")), "auto_increment"),
		}
		if col.Primary {
			schema.Primary = append(schema.Primary, col.Name)
		}
		if r.String("Key") == "UNI" {
			schema.Unique = append(schema.Unique, []string{col.Name})
		}
		if col.AutoIncrement {
			schema.AutoIncrement = col.Name
		}
		schema.Columns = append(schema.Columns, col)
	}
	return schema, nil
}

const postgresColumnsSQL = `SELECT c.column_name, c.data_type, c.is_nullable, c.column_default
FROM information_schema.columns c
WHERE c.table_schema = current_schema() AND c.table_name = ?
ORDER BY c.ordinal_position`

const postgresKeysSQL = `SELECT tc.constraint_name, tc.constraint_type, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
WHERE tc.table_schema = current_schema() AND tc.table_name = ?
  AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
ORDER BY tc.constraint_name, kcu.ordinal_position`

func (s *session) describePostgres(ctx context.Context, table string) (*Schema, error) {
	rows, err := s.trustedQuery(ctx, postgresColumnsSQL, table).All()
	if err != nil {
		return nil, err
	}

	schema := &Schema{Table: table}
	for _, r := range rows {
		def := r.String("column_default")
		col := Column{
			Name:          r.String("column_name"),
			Type:          strings.ToLower(r.String("data_type")),
			Nullable:      r.String("is_nullable") == "YES",
			AutoIncrement: strings.HasPrefix(def, "nextval("),
		}
		if !r.IsNull("column_default") && !col.AutoIncrement {
			col.Default = def
		}
		if col.AutoIncrement && schema.AutoIncrement == "" {
			schema.AutoIncrement = col.Name
		}
		schema.Columns = append(schema.Columns, col)
	}

	keys, err := s.trustedQuery(ctx, postgresKeysSQL, table).All()
	if err != nil {
		return nil, err
	}
	unique := map[string][]string{}
	var order []string
	for _, k := range keys {
		name := k.String("column_name")
		if k.String("constraint_type") == "PRIMARY KEY" {
			schema.Primary = append(schema.Primary, name)
			for i := range schema.Columns {
				if schema.Columns[i].Name == name {
					schema.Columns[i].Primary = true
				}
			}
			continue
		}
		c := k.String("constraint_name")
		if _, ok := unique[c]; !ok {
			order = append(order, c)
		}
		unique[c] = append(unique[c], name)
	}
	for _, c := range order {
		schema.Unique = append(schema.Unique, unique[c])
	}
	return schema, nil
}

func (s *Schema) String() string {
	return fmt.Sprintf("%s(%s)", s.Table, strings.Join(s.ColumnNames(), ", "))
}
