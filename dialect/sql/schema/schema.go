// Package schema derives SQL tables from a model graph and creates them.
package schema

import (
	"fmt"

	"github.com/syssam/cruddals/dialect"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
)

// ReferenceOption is the ON DELETE action of a foreign key.
type ReferenceOption string

// Reference options.
const (
	NoAction ReferenceOption = ""
	Cascade  ReferenceOption = "CASCADE"
	SetNull  ReferenceOption = "SET NULL"
)

type (
	// Table is a table definition.
	Table struct {
		Name        string
		Columns     []*Column
		PrimaryKey  []*Column
		ForeignKeys []*ForeignKey
	}

	// Column is a column definition.
	Column struct {
		Name      string
		Type      field.Type
		Nullable  bool
		Unique    bool
		Increment bool
	}

	// ForeignKey is a foreign-key constraint.
	ForeignKey struct {
		Symbol     string
		Columns    []*Column
		RefTable   *Table
		RefColumns []*Column
		OnDelete   ReferenceOption
	}
)

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// NewTables returns the tables of every model in g followed by the join
// tables of its many-to-many relations.
func NewTables(g *schema.Graph) ([]*Table, error) {
	var (
		tables  []*Table
		byModel = make(map[string]*Table, len(g.Models))
	)
	for _, m := range g.Models {
		t := &Table{Name: m.Table}
		pk := m.PrimaryKey()
		for _, f := range m.Columns() {
			c := &Column{Name: f.Column, Type: f.Type, Nullable: f.Nullable, Unique: f.Unique}
			switch {
			case f == pk:
				c.Nullable, c.Unique = false, false
				c.Increment = f.Type == field.TypeID
				t.PrimaryKey = []*Column{c}
			case f.Type.IsRelation():
				c.Type = field.TypeInt64
				if target, ok := g.Model(f.Related); ok {
					c.Type = keyType(target.PrimaryKey())
				}
				if f.Type == field.TypeOneToOne {
					c.Unique = true
				}
			}
			t.Columns = append(t.Columns, c)
		}
		tables = append(tables, t)
		byModel[m.Name] = t
	}
	for _, m := range g.Models {
		t := byModel[m.Name]
		for _, f := range m.Relations() {
			if !f.HasColumn() {
				continue
			}
			ref, ok := byModel[f.Related]
			if !ok {
				continue
			}
			c, _ := t.Column(f.Column)
			fk := &ForeignKey{
				Symbol:     fmt.Sprintf("%s_%s_fkey", t.Name, c.Name),
				Columns:    []*Column{c},
				RefTable:   ref,
				RefColumns: ref.PrimaryKey,
			}
			if f.Nullable {
				fk.OnDelete = SetNull
			}
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
	}
	for _, r := range g.JoinTables() {
		own, other := byModel[r.Model.Name], byModel[r.Target.Name]
		t := &Table{
			Name: r.Join.Table,
			Columns: []*Column{
				{Name: r.Join.Own, Type: keyType(r.Model.PrimaryKey())},
				{Name: r.Join.Other, Type: keyType(r.Target.PrimaryKey())},
			},
		}
		t.PrimaryKey = t.Columns
		t.ForeignKeys = []*ForeignKey{
			{
				Symbol:     fmt.Sprintf("%s_%s_fkey", t.Name, r.Join.Own),
				Columns:    t.Columns[:1],
				RefTable:   own,
				RefColumns: own.PrimaryKey,
				OnDelete:   Cascade,
			},
			{
				Symbol:     fmt.Sprintf("%s_%s_fkey", t.Name, r.Join.Other),
				Columns:    t.Columns[1:],
				RefTable:   other,
				RefColumns: other.PrimaryKey,
				OnDelete:   Cascade,
			},
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// keyType is the column type of a reference to pk.
func keyType(pk *field.Descriptor) field.Type {
	if pk.Type == field.TypeID {
		return field.TypeInt64
	}
	return pk.Type
}

var columnTypes = map[field.Type][3]string{
	//                    postgres                    mysql              sqlite
	field.TypeID:        {"bigint", "bigint", "integer"},
	field.TypeBool:      {"boolean", "boolean", "bool"},
	field.TypeInt:       {"bigint", "bigint", "integer"},
	field.TypeInt64:     {"bigint", "bigint", "integer"},
	field.TypeUint:      {"bigint", "bigint unsigned", "integer"},
	field.TypeFloat:     {"double precision", "double", "real"},
	field.TypeDecimal:   {"numeric", "decimal(38,10)", "numeric"},
	field.TypeString:    {"varchar", "varchar(255)", "text"},
	field.TypeText:      {"text", "longtext", "text"},
	field.TypeEnum:      {"varchar", "varchar(255)", "text"},
	field.TypeDate:      {"date", "date", "text"},
	field.TypeTimeOfDay: {"time", "time", "text"},
	field.TypeTime:      {"timestamp with time zone", "datetime(6)", "datetime"},
	field.TypeDuration:  {"bigint", "bigint", "integer"},
	field.TypeUUID:      {"uuid", "char(36)", "text"},
	field.TypeJSON:      {"jsonb", "json", "json"},
	field.TypeBytes:     {"bytea", "longblob", "blob"},
}

// ColumnType returns the SQL type of a column in the given dialect.
func ColumnType(d string, t field.Type) (string, error) {
	types, ok := columnTypes[t]
	if !ok {
		return "", fmt.Errorf("schema: no column type for %s", t)
	}
	switch d {
	case dialect.Postgres:
		return types[0], nil
	case dialect.MySQL:
		return types[1], nil
	case dialect.SQLite:
		return types[2], nil
	}
	return "", fmt.Errorf("schema: unsupported dialect %q", d)
}
