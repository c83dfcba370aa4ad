package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaamsetu/kaamsetu-api/internal/domain/repository"
)

// ProfileRepository serves profile-existence probes only; profile CRUD
// lives in its own service.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) CandidateProfileExists(ctx context.Context, identityID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM candidate_profiles WHERE identity_id = $1)`, identityID)
}

func (r *ProfileRepository) EmployerProfileExists(ctx context.Context, identityID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM employer_profiles WHERE identity_id = $1)`, identityID)
}

func (r *ProfileRepository) exists(ctx context.Context, q, identityID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, identityID).Scan(&exists)
	return exists, err
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
