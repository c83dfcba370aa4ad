package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaamsetu/kaamsetu-api/internal/domain/entity"
	"github.com/kaamsetu/kaamsetu-api/internal/domain/repository"
)

const identityColumns = `id, mobile, email, password_hash, role, is_active, is_verified, otp_code, otp_expiry, created_at, updated_at`

type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func scanIdentity(row pgx.Row) (*entity.Identity, error) {
	u := &entity.Identity{}
	if err := row.Scan(&u.ID, &u.Mobile, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.IsVerified, &u.OTPCode, &u.OTPExpiry,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *IdentityRepository) Create(ctx context.Context, u *entity.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO identities (mobile, email, password_hash, role, is_active, is_verified, otp_code, otp_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, u.Mobile, u.Email, u.PasswordHash, u.Role, u.IsActive, u.IsVerified, u.OTPCode, u.OTPExpiry)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*entity.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanIdentity(r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE id = $1
	`, id))
}

func (r *IdentityRepository) GetByMobile(ctx context.Context, mobile string) (*entity.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanIdentity(r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE mobile = $1
	`, mobile))
}

func (r *IdentityRepository) GetByMobileAndCode(ctx context.Context, mobile, code string) (*entity.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanIdentity(r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE mobile = $1 AND otp_code = $2
	`, mobile, code))
}

func (r *IdentityRepository) SetOTP(ctx context.Context, id string, code string, expiry time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET otp_code = $1, otp_expiry = $2, updated_at = now()
		WHERE id = $3
	`, code, expiry, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeOTP clears the code and expiry and flags the identity verified
// in one statement. The code guard makes the consume atomic under
// concurrent verify attempts: only the request holding the live code
// wins, everyone else sees zero rows.
func (r *IdentityRepository) ConsumeOTP(ctx context.Context, id string, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET otp_code = NULL, otp_expiry = NULL, is_verified = true, updated_at = now()
		WHERE id = $1 AND otp_code = $2
	`, id, code)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *IdentityRepository) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM identities WHERE mobile = $1)
	`, mobile).Scan(&exists)
	return exists, err
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)
