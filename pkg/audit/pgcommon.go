package audit

import (
	stdsql "database/sql"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is Postgres's SQLSTATE for a unique_violation.
const pgUniqueViolation = "23505"

type scannable interface {
	Scan(dest ...interface{}) error
}

func marshalJSON(v map[string]interface{}) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}

func unmarshalJSON(raw []byte) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v map[string]interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func isNoRows(err error) bool {
	return err == stdsql.ErrNoRows
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return err != nil && asPgError(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// asPgError walks err's Unwrap chain looking for a *pgconn.PgError, the way
// errors.As would, without importing the errors package into every caller.
func asPgError(err error, target **pgconn.PgError) bool {
	for err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			*target = pgErr
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
