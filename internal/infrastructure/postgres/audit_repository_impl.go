package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaamsetu/kaamsetu-api/internal/domain/entity"
	"github.com/kaamsetu/kaamsetu-api/internal/domain/repository"
)

// AuditRepository writes append-only audit rows. Each Insert acquires
// and releases its own pooled connection, so a failed log write never
// holds a resource open for the operation it describes.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e *entity.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO auth_audit_logs (identity_id, mobile, role, step, status, message, detail, ip, device)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, e.IdentityID, e.Mobile, e.Role, e.Step, e.Status, e.Message, e.Detail, e.IP, e.Device)

	return row.Scan(&e.ID, &e.CreatedAt)
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
