package postgres

import (
	"database/sql"
	"errors"

	"embervite/internal/domain"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Unique constraint names from migrations/001_init.sql.
const (
	constraintUserEmail       = "users_email_key"
	constraintUserUsername    = "users_username_key"
	constraintProfileHash     = "user_profiles_unique_hash_key"
	constraintEventMemberHash = "event_members_unique_hash_key"
	constraintEventMemberPair = "event_members_event_member_key"
)

// uniqueConstraint reports the violated constraint when err is a Postgres unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// notFound maps sql.ErrNoRows to domain.ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// requireAffected returns domain.ErrNotFound when an UPDATE or DELETE matched no rows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
