package sqlite

import (
	"database/sql/driver"

	moderncsqlite "modernc.org/sqlite"

	"github.com/vivilio/vivilio-server/internal/normalize"
)

// foldFunc is the SQL name of the Unicode case-folding function. SQLite's
// LOWER only folds ASCII, so substring searches compare fold(column) against
// a pattern folded the same way.
const foldFunc = "fold"

func init() {
	moderncsqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, sqlFold)
}

func sqlFold(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return normalize.Fold(v), nil
	case []byte:
		return normalize.Fold(string(v)), nil
	default:
		return v, nil
	}
}
