package repository

import (
	"context"

	"github.com/kaamsetu/kaamsetu-api/internal/domain/entity"
)

// AuditRepository persists append-only audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *entity.AuditEntry) error
}
