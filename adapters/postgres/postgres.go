// Package postgres implements the storage ports on PostgreSQL via sqlx.
// Uniqueness invariants live in the schema; conditional updates implement
// the atomic status transitions the ports require.
package postgres

import (
	"database/sql"
	"errors"

	"agora/domain/core"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for constraint conflicts
const uniqueViolation = "23505"

// mapConflict surfaces a unique-constraint race as the typed domain
// conflict. A pre-check read passing does not make the insert safe; the
// constraint is the authority.
func mapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return core.ErrConflict
	}
	return err
}

// orNotFound converts sql.ErrNoRows into a typed not-found error
func orNotFound(err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}
