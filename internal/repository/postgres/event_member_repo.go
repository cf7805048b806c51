package postgres

import (
	"context"
	"database/sql"
	"time"

	"embervite/internal/domain"

	"github.com/lib/pq"
)

type eventMemberRepository struct {
	DB *sql.DB
}

func NewEventMemberRepository(db *sql.DB) domain.EventMemberRepository {
	return &eventMemberRepository{DB: db}
}

const eventMemberDetailColumns = `em.id, em.event_id, em.member_id, em.unique_hash, em.attending, em.invited_at, em.responded_at, em.created_at,
	e.title, m.first_name, m.last_name, m.email`

func scanEventMemberDetail(row interface{ Scan(...any) error }) (*domain.EventMemberDetail, error) {
	d := &domain.EventMemberDetail{}
	var (
		attending   sql.NullBool
		invitedAt   sql.NullTime
		respondedAt sql.NullTime
	)
	err := row.Scan(&d.ID, &d.EventID, &d.MemberID, &d.UniqueHash, &attending, &invitedAt, &respondedAt, &d.CreatedAt,
		&d.EventTitle, &d.MemberFirstName, &d.MemberLastName, &d.MemberEmail)
	if err != nil {
		return nil, err
	}
	if attending.Valid {
		v := attending.Bool
		d.Attending = &v
	}
	if invitedAt.Valid {
		t := invitedAt.Time
		d.InvitedAt = &t
	}
	if respondedAt.Valid {
		t := respondedAt.Time
		d.RespondedAt = &t
	}
	return d, nil
}

func (r *eventMemberRepository) Create(ctx context.Context, em *domain.EventMember) error {
	query := `
		INSERT INTO event_members (event_id, member_id, unique_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, em.EventID, em.MemberID, em.UniqueHash, em.CreatedAt).Scan(&em.ID)
	if constraint, ok := uniqueConstraint(err); ok {
		switch constraint {
		case constraintEventMemberHash:
			return domain.ErrDuplicateToken
		case constraintEventMemberPair:
			return domain.ErrAlreadyInvited
		}
	}
	return err
}

func (r *eventMemberRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventMemberDetail, error) {
	query := `
		SELECT ` + eventMemberDetailColumns + `
		FROM event_members em
		JOIN events e ON e.id = em.event_id
		JOIN members m ON m.id = em.member_id
		WHERE em.event_id = $1
		ORDER BY m.first_name, m.last_name, em.id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.EventMemberDetail
	for rows.Next() {
		d, err := scanEventMemberDetail(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *eventMemberRepository) GetByUniqueHash(ctx context.Context, hash string) (*domain.EventMemberDetail, error) {
	query := `
		SELECT ` + eventMemberDetailColumns + `
		FROM event_members em
		JOIN events e ON e.id = em.event_id
		JOIN members m ON m.id = em.member_id
		WHERE em.unique_hash = $1
	`
	d, err := scanEventMemberDetail(r.DB.QueryRowContext(ctx, query, hash))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (r *eventMemberRepository) SetAttendingByHash(ctx context.Context, hash string, attending bool, at time.Time) (*domain.EventMemberDetail, error) {
	query := `
		UPDATE event_members em
		SET attending = $2, responded_at = $3
		FROM events e, members m
		WHERE em.unique_hash = $1 AND e.id = em.event_id AND m.id = em.member_id
		RETURNING ` + eventMemberDetailColumns
	d, err := scanEventMemberDetail(r.DB.QueryRowContext(ctx, query, hash, attending, at))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (r *eventMemberRepository) DeleteByEventExcept(ctx context.Context, eventID string, keep []string) error {
	if keep == nil {
		keep = []string{}
	}
	query := `DELETE FROM event_members WHERE event_id = $1 AND NOT (member_id::text = ANY($2))`
	_, err := r.DB.ExecContext(ctx, query, eventID, pq.Array(keep))
	return err
}

func (r *eventMemberRepository) MarkInvited(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE event_members SET invited_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *eventMemberRepository) ResetAttendance(ctx context.Context, eventID string) error {
	query := `UPDATE event_members SET attending = NULL, responded_at = NULL WHERE event_id = $1`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}
