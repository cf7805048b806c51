package postgres

import (
	"context"
	"database/sql"

	"embervite/internal/domain"
)

type userProfileRepository struct {
	DB *sql.DB
}

func NewUserProfileRepository(db *sql.DB) domain.UserProfileRepository {
	return &userProfileRepository{DB: db}
}

func (r *userProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `
		SELECT id, user_id, unique_hash, created_at
		FROM user_profiles
		WHERE user_id = $1
	`
	p := &domain.UserProfile{}
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.UserID, &p.UniqueHash, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}
