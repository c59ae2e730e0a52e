package schema

import (
	"errors"
	"fmt"
)

// Postgres truncates identifiers at 63 bytes, the lowest limit of the
// supported databases.
const maxIdentLen = 63

// Problem is an issue of a table definition. Warnings do not prevent
// the creation of the table.
type Problem struct {
	Table   string
	Column  string
	Message string
	Warning bool
}

func (p Problem) Error() string {
	if p.Column == "" {
		return p.Table + ": " + p.Message
	}
	return p.Table + "." + p.Column + ": " + p.Message
}

// Problems lists the issues found by Check.
type Problems []Problem

// Err joins the problems that are not warnings, or returns nil.
func (ps Problems) Err() error {
	var errs []error
	for _, p := range ps {
		if !p.Warning {
			errs = append(errs, p)
		}
	}
	return errors.Join(errs...)
}

// Warnings returns the problems that are warnings.
func (ps Problems) Warnings() Problems {
	var ws Problems
	for _, p := range ps {
		if p.Warning {
			ws = append(ws, p)
		}
	}
	return ws
}

// Check checks the tables and the references between them: identifier
// lengths, duplicate names, foreign keys to unknown tables or columns and
// SET NULL actions on required columns.
func Check(tables []*Table) Problems {
	var ps Problems
	add := func(table, column string, format string, args ...any) {
		ps = append(ps, Problem{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
	}
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		if seen[t.Name] {
			add(t.Name, "", "duplicate table name")
		}
		seen[t.Name] = true
	}
	for _, t := range tables {
		if len(t.Name) > maxIdentLen {
			add(t.Name, "", "table name exceeds %d characters", maxIdentLen)
		}
		if len(t.PrimaryKey) == 0 {
			ps = append(ps, Problem{Table: t.Name, Message: "table has no primary key", Warning: true})
		}
		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			switch {
			case cols[c.Name]:
				add(t.Name, c.Name, "duplicate column name")
			case len(c.Name) > maxIdentLen:
				add(t.Name, c.Name, "column name exceeds %d characters", maxIdentLen)
			}
			cols[c.Name] = true
		}
		for _, fk := range t.ForeignKeys {
			if len(fk.Symbol) > maxIdentLen {
				add(t.Name, "", "foreign key name %q exceeds %d characters", fk.Symbol, maxIdentLen)
			}
			if !seen[fk.RefTable.Name] {
				add(t.Name, "", "foreign key references non-existent table %q", fk.RefTable.Name)
			}
			for _, c := range fk.Columns {
				if !cols[c.Name] {
					add(t.Name, "", "foreign key references non-existent column %q", c.Name)
				}
				if fk.OnDelete == SetNull && !c.Nullable {
					add(t.Name, c.Name, "ON DELETE SET NULL on a NOT NULL column")
				}
			}
		}
	}
	return ps
}
