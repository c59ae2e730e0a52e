package field

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Layouts of the date and time-of-day kinds.
const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04:05"
)

// timeLayouts are tried in order for timestamps read back from the store.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	DateLayout,
}

// Parse coerces a wire or storage value into the canonical Go value of t:
//
//	TypeID, TypeInt, TypeInt64, TypeUint  int64
//	TypeFloat                             float64
//	TypeDecimal                           decimal.Decimal
//	TypeString, TypeText, TypeEnum        string
//	TypeDate, TypeTime                    time.Time
//	TypeTimeOfDay                         string (15:04:05)
//	TypeDuration                          time.Duration
//	TypeUUID                              uuid.UUID
//	TypeJSON                              any (decoded document)
//	TypeBytes                             []byte
//
// nil is returned unchanged. Relation kinds are returned unchanged.
func (t Type) Parse(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case TypeID, TypeInt, TypeInt64, TypeUint:
		return parseInt(v)
	case TypeBool:
		switch v := v.(type) {
		case int64:
			return v != 0, nil
		case []byte:
			return graphql.UnmarshalBoolean(string(v))
		}
		return graphql.UnmarshalBoolean(v)
	case TypeFloat:
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		return graphql.UnmarshalFloat(v)
	case TypeDecimal:
		return parseDecimal(v)
	case TypeString, TypeText, TypeEnum:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
		return graphql.UnmarshalString(v)
	case TypeDate:
		tm, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		y, m, d := tm.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	case TypeTimeOfDay:
		return parseTimeOfDay(v)
	case TypeTime:
		return parseTime(v)
	case TypeDuration:
		return parseDuration(v)
	case TypeUUID:
		return parseUUID(v)
	case TypeJSON:
		return parseJSON(v)
	case TypeBytes:
		switch v := v.(type) {
		case []byte:
			return v, nil
		case string:
			return base64.StdEncoding.DecodeString(v)
		}
		return nil, fmt.Errorf("%T is not binary data", v)
	}
	if t.IsRelation() {
		return v, nil
	}
	return nil, fmt.Errorf("field: cannot parse values of type %s", t)
}

func parseInt(v any) (int64, error) {
	switch v := v.(type) {
	case int32:
		return int64(v), nil
	case int8, int16, uint8, uint16, uint32:
		return strconv.ParseInt(fmt.Sprint(v), 10, 64)
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case uint:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an int", v)
		}
		return int64(v), nil
	case []byte:
		return graphql.UnmarshalInt64(string(v))
	case string:
		return graphql.UnmarshalInt64(strings.TrimSpace(v))
	}
	return graphql.UnmarshalInt64(v)
}

func parseDecimal(v any) (decimal.Decimal, error) {
	switch v := v.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case []byte:
		return decimal.NewFromString(string(v))
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	}
	return decimal.Zero, fmt.Errorf("%T is not a decimal", v)
}

func parseTime(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case []byte:
		return parseTime(string(v))
	case string:
		if tm, err := graphql.UnmarshalTime(v); err == nil {
			return tm, nil
		}
		for _, layout := range timeLayouts {
			if tm, err := time.Parse(layout, v); err == nil {
				return tm, nil
			}
		}
		return time.Time{}, fmt.Errorf("%q is not a valid time", v)
	}
	return time.Time{}, fmt.Errorf("%T is not a time", v)
}

func parseTimeOfDay(v any) (string, error) {
	switch v := v.(type) {
	case time.Time:
		return v.Format(TimeOfDayLayout), nil
	case []byte:
		return parseTimeOfDay(string(v))
	case string:
		for _, layout := range []string{TimeOfDayLayout, "15:04", "15:04:05.999999999"} {
			if tm, err := time.Parse(layout, v); err == nil {
				return tm.Format(TimeOfDayLayout), nil
			}
		}
		return "", fmt.Errorf("%q is not a valid time of day", v)
	}
	return "", fmt.Errorf("%T is not a time of day", v)
}

func parseDuration(v any) (time.Duration, error) {
	switch v := v.(type) {
	case time.Duration:
		return v, nil
	case int64:
		return time.Duration(v), nil
	case int:
		return time.Duration(v), nil
	case float64:
		return time.Duration(v), nil
	case string:
		if d, err := graphql.UnmarshalDuration(v); err == nil {
			return d, nil
		}
		return time.ParseDuration(v)
	}
	return 0, fmt.Errorf("%T is not a duration", v)
}

func parseUUID(v any) (uuid.UUID, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	}
	return uuid.Nil, fmt.Errorf("%T is not a uuid", v)
}

func parseJSON(v any) (any, error) {
	var raw []byte
	switch v := v.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		return v, nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	return doc, nil
}
