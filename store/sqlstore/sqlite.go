package sqlstore

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"sync"

	"modernc.org/sqlite"
)

// patterns caches the expressions compiled by the SQLite regexp function.
var patterns sync.Map

func init() {
	// X REGEXP Y calls regexp(Y, X).
	sqlite.MustRegisterDeterministicScalarFunction("regexp", 2, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		pattern, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("regexp: invalid pattern %T", args[0])
		}
		var s string
		switch v := args[1].(type) {
		case nil:
			return false, nil
		case string:
			s = v
		case []byte:
			s = string(v)
		default:
			s = fmt.Sprint(v)
		}
		re, err := compile(pattern)
		if err != nil {
			return nil, err
		}
		return re.MatchString(s), nil
	})
}

func compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}
