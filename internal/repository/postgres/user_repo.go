package postgres

import (
	"context"
	"database/sql"

	"embervite/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) CreateWithProfile(ctx context.Context, u *domain.User, p *domain.UserProfile, assign domain.HashAssigner) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := insertUser(ctx, tx, u); err != nil {
		_ = tx.Rollback()
		return err
	}
	p.UserID = u.ID
	err = assign(ctx, func(ctx context.Context, hash string) error {
		p.UniqueHash = hash
		return insertProfile(ctx, tx, p)
	})
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertUser(ctx context.Context, tx *sql.Tx, u *domain.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, salt, name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := tx.QueryRowContext(ctx, query, u.Email, u.Username, u.PasswordHash, u.Salt, u.Name, u.LastName, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if constraint, ok := uniqueConstraint(err); ok {
		switch constraint {
		case constraintUserEmail:
			return domain.ErrDuplicateEmail
		case constraintUserUsername:
			return domain.ErrDuplicateUsername
		}
	}
	return err
}

// insertProfile runs inside a savepoint so a hash collision leaves the
// surrounding transaction usable for the next attempt.
func insertProfile(ctx context.Context, tx *sql.Tx, p *domain.UserProfile) error {
	if _, err := tx.ExecContext(ctx, `SAVEPOINT profile_hash`); err != nil {
		return err
	}
	query := `
		INSERT INTO user_profiles (user_id, unique_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := tx.QueryRowContext(ctx, query, p.UserID, p.UniqueHash, p.CreatedAt).Scan(&p.ID)
	if err == nil {
		_, err = tx.ExecContext(ctx, `RELEASE SAVEPOINT profile_hash`)
		return err
	}
	if constraint, ok := uniqueConstraint(err); ok && constraint == constraintProfileHash {
		if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT profile_hash`); rbErr != nil {
			return rbErr
		}
		return domain.ErrDuplicateToken
	}
	return err
}

const userColumns = `id, email, username, password_hash, salt, name, last_name, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Salt, &u.Name, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, id))
}
