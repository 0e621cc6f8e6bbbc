package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorDump is the log-only view of an error. It is never sent to clients.
type ErrorDump struct {
	TopMessage string        `json:"top_message"`
	Code       Code          `json:"code,omitempty"`
	Retryable  bool          `json:"retryable,omitempty"`
	Chain      []string      `json:"chain,omitempty"`
	Postgres   *PostgresDump `json:"postgres,omitempty"`
}

// PostgresDump is filled when the sql storage driver surfaced the failure.
type PostgresDump struct {
	Code       string `json:"code"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(d.Code).Retryable
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		d.Postgres = &PostgresDump{
			Code:       pgErr.Code,
			Constraint: pgErr.ConstraintName,
			Table:      pgErr.TableName,
			Detail:     pgErr.Detail,
		}
	}
	return d
}
