package postgres

import (
	"context"
	"database/sql"
	"time"

	"embervite/internal/domain"

	"github.com/lib/pq"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `id, owner_id, title, description, occurrence, days, time, invite_day, invite_time, timezone, disabled, invites_sent_at, enabled_at, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var sentAt, enabledAt sql.NullTime
	err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.Occurrence, pq.Array(&e.Days),
		&e.Time, &e.InviteDay, &e.InviteTime, &e.Timezone, &e.Disabled, &sentAt, &enabledAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		t := sentAt.Time
		e.InvitesSentAt = &t
	}
	if enabledAt.Valid {
		t := enabledAt.Time
		e.EnabledAt = &t
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (owner_id, title, description, occurrence, days, time, invite_day, invite_time, timezone, disabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, e.OwnerID, e.Title, e.Description, e.Occurrence, pq.Array(e.Days),
		e.Time, e.InviteDay, e.InviteTime, e.Timezone, e.Disabled, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE owner_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, ownerID)
}

func (r *eventRepository) ListEnabled(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE disabled = FALSE ORDER BY created_at, id`
	return r.list(ctx, query)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, occurrence = $4, days = $5, time = $6,
		    invite_day = $7, invite_time = $8, timezone = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, e.ID, e.Title, e.Description, e.Occurrence, pq.Array(e.Days),
		e.Time, e.InviteDay, e.InviteTime, e.Timezone, e.UpdatedAt)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *eventRepository) SetDisabled(ctx context.Context, id string, disabled bool) (*domain.Event, error) {
	query := `
		UPDATE events SET disabled = $2, updated_at = NOW(),
		    enabled_at = CASE WHEN $2 THEN enabled_at ELSE NOW() END
		WHERE id = $1
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, disabled))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *eventRepository) MarkInvitesSent(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE events SET invites_sent_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
