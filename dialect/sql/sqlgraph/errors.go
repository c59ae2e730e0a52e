package sqlgraph

import (
	"errors"
	"slices"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/syssam/cruddals"
)

// violation describes how each driver reports one kind of constraint
// violation: a Postgres SQLSTATE, MySQL error numbers and, for drivers
// exposing neither like SQLite, message fragments.
type violation struct {
	kind      string
	sqlState  string
	mysql     []uint16
	fragments []string
}

var violations = []violation{
	{
		kind:      "unique",
		sqlState:  "23505",
		mysql:     []uint16{1062},
		fragments: []string{"Error 1062", "violates unique constraint", "UNIQUE constraint failed"},
	},
	{
		kind:      "foreign key",
		sqlState:  "23503",
		mysql:     []uint16{1451, 1452},
		fragments: []string{"Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"},
	},
	{
		kind:      "check",
		sqlState:  "23514",
		mysql:     []uint16{3819},
		fragments: []string{"Error 3819", "violates check constraint", "CHECK constraint failed"},
	},
}

// sqlStateError is implemented by drivers that expose SQLSTATE codes.
type sqlStateError interface {
	SQLState() string
}

// violationOf returns the kind of constraint err violates, or "".
func violationOf(err error) string {
	if err == nil {
		return ""
	}
	var (
		pqErr *pq.Error
		myErr *mysql.MySQLError
		state sqlStateError
	)
	switch {
	case errors.As(err, &pqErr):
		return kindOf(func(v violation) bool { return string(pqErr.Code) == v.sqlState })
	case errors.As(err, &myErr):
		return kindOf(func(v violation) bool { return slices.Contains(v.mysql, myErr.Number) })
	case errors.As(err, &state):
		if kind := kindOf(func(v violation) bool { return state.SQLState() == v.sqlState }); kind != "" {
			return kind
		}
	}
	msg := err.Error()
	return kindOf(func(v violation) bool {
		return slices.ContainsFunc(v.fragments, func(f string) bool { return strings.Contains(msg, f) })
	})
}

func kindOf(match func(violation) bool) string {
	for _, v := range violations {
		if match(v) {
			return v.kind
		}
	}
	return ""
}

// IsConstraintError reports whether err is a constraint violation, wrapped
// or not.
func IsConstraintError(err error) bool {
	return cruddals.IsConstraintError(err) || violationOf(err) != ""
}

// IsUniqueConstraintError reports whether err violates a unique constraint.
func IsUniqueConstraintError(err error) bool { return violationOf(err) == "unique" }

// IsForeignKeyConstraintError reports whether err violates a foreign key.
func IsForeignKeyConstraintError(err error) bool { return violationOf(err) == "foreign key" }

// IsCheckConstraintError reports whether err violates a check constraint.
func IsCheckConstraintError(err error) bool { return violationOf(err) == "check" }

// WrapConstraint wraps driver constraint violations in a
// cruddals.ConstraintError named after the violated kind. Other errors are
// returned unchanged.
func WrapConstraint(err error) error {
	if err == nil || cruddals.IsConstraintError(err) {
		return err
	}
	if kind := violationOf(err); kind != "" {
		return cruddals.NewConstraintError(kind, err)
	}
	return err
}

// UniqueColumn returns the column named by a unique violation, or "" when
// the driver does not report it.
//
//	UNIQUE constraint failed: categories.name        (SQLite)
//	Duplicate entry 'x' for key 'categories.name'    (MySQL)
//	Key (name)=(x) already exists.                   (Postgres detail)
func UniqueColumn(err error) string {
	msg := err.Error()
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		msg = pqErr.Detail
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		msg = myErr.Message
	}
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: "):
		_, rest, _ := strings.Cut(msg, "UNIQUE constraint failed: ")
		rest, _, _ = strings.Cut(rest, ",")
		return lastPart(strings.TrimSpace(rest))
	case strings.Contains(msg, "for key '"):
		_, rest, _ := strings.Cut(msg, "for key '")
		rest, _, _ = strings.Cut(rest, "'")
		return lastPart(rest)
	case strings.Contains(msg, "Key ("):
		_, rest, _ := strings.Cut(msg, "Key (")
		rest, _, _ = strings.Cut(rest, ")")
		rest, _, _ = strings.Cut(rest, ",")
		return rest
	}
	return ""
}

func lastPart(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}
