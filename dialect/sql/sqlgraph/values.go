package sqlgraph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syssam/cruddals/schema/field"
)

// ToDB coerces v to the Go value of the field and converts it to the
// value written to its column:
//
//	decimal.Decimal  string
//	time.Duration    int64 (nanoseconds)
//	uuid.UUID        string
//	date             string (2006-01-02)
//	time             time.Time in UTC
//	json             string (encoded document)
//
// Relation fields are converted by the primary key of the related node.
func ToDB(fs *FieldSpec, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	pv, err := parse(fs, v)
	if err != nil {
		return nil, err
	}
	if fs.Type == field.TypeJSON {
		buf, err := json.Marshal(pv)
		if err != nil {
			return nil, fmt.Errorf("sqlgraph: encode %s: %w", fs.Column, err)
		}
		return string(buf), nil
	}
	switch pv := pv.(type) {
	case decimal.Decimal:
		return pv.String(), nil
	case time.Duration:
		return int64(pv), nil
	case uuid.UUID:
		return pv.String(), nil
	case time.Time:
		if fs.Type == field.TypeDate {
			return pv.Format(field.DateLayout), nil
		}
		return pv.UTC(), nil
	}
	return pv, nil
}

// FromDB converts a scanned column value to the Go value of the field.
func FromDB(fs *FieldSpec, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return fs.Type.Parse(v)
}

func parse(fs *FieldSpec, v any) (any, error) {
	var (
		pv  any
		err error
	)
	if fs.Desc != nil {
		pv, err = fs.Desc.Parse(v)
	} else {
		pv, err = fs.Type.Parse(v)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlgraph: invalid value for %s: %w", fs.Column, err)
	}
	return pv, nil
}
