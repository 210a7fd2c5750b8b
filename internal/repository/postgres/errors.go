// Package postgres implements the record store on PostgreSQL through gorm.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// constraintActiveVisit is the partial unique index created by database.Migrate.
const constraintActiveVisit = "uniq_visits_active_mrn"

// uniqueConstraint returns the violated constraint name if err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
