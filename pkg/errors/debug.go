package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// ErrorDump is the flattened view of an error chain written to request logs.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

type pgDetails struct {
	code       string
	constraint string
	table      string
	column     string
	detail     string
	message    string
}

func extractPG(err error) (pgDetails, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgDetails{
			code:       pgxErr.Code,
			constraint: pgxErr.ConstraintName,
			table:      pgxErr.TableName,
			column:     pgxErr.ColumnName,
			detail:     pgxErr.Detail,
			message:    pgxErr.Message,
		}, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pgDetails{
			code:       string(pqErr.Code),
			constraint: pqErr.Constraint,
			table:      pqErr.Table,
			column:     pqErr.Column,
			detail:     pqErr.Detail,
			message:    pqErr.Message,
		}, true
	}
	return pgDetails{}, false
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	if pg, ok := extractPG(err); ok {
		d.PGCode = pg.code
		d.PGConstraint = pg.constraint
		d.PGTable = pg.table
		d.PGColumn = pg.column
		d.PGDetail = pg.detail
		d.PGMessage = pg.message
	}
	return d
}

// WrapDB wraps a failed write. Check violations become validation errors,
// unique and foreign key violations become conflicts, and anything else is a
// dependency failure. The violated constraint is reported in the details.
func WrapDB(err error, message string) *Error {
	pg, ok := extractPG(err)
	if !ok {
		return Wrap(CodeDependency, err, message)
	}

	var code Code
	switch pg.code {
	case pgCheckViolation:
		code = CodeValidation
	case pgUniqueViolation, pgForeignKeyViolation:
		code = CodeConflict
	default:
		return Wrap(CodeDependency, err, message)
	}
	wrapped := Wrap(code, err, message)
	if pg.constraint != "" {
		wrapped.WithDetails(map[string]any{"constraint": pg.constraint})
	}
	return wrapped
}
