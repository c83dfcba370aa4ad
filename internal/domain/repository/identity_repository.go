package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kaamsetu/kaamsetu-api/internal/domain/entity"
)

// ErrNotFound is returned by lookups that match no row. Callers use it
// to tell a business miss from a store failure.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert collides with the unique
// mobile constraint (two registrations racing for the same number).
var ErrDuplicate = errors.New("duplicate")

// IdentityRepository defines the durable credential store keyed by
// mobile number.
type IdentityRepository interface {
	Create(ctx context.Context, id *entity.Identity) error
	GetByID(ctx context.Context, id string) (*entity.Identity, error)
	GetByMobile(ctx context.Context, mobile string) (*entity.Identity, error)
	// GetByMobileAndCode matches mobile and the currently stored OTP
	// exactly; a cleared or different code is a miss.
	GetByMobileAndCode(ctx context.Context, mobile, code string) (*entity.Identity, error)
	// SetOTP overwrites the pending code and expiry in place.
	SetOTP(ctx context.Context, id string, code string, expiry time.Time) error
	// ConsumeOTP clears code and expiry and marks the identity verified
	// in a single statement, guarded by the code still matching. It
	// reports false when the guard fails (code already consumed or
	// overwritten by a later request).
	ConsumeOTP(ctx context.Context, id string, code string) (bool, error)
	ExistsByMobile(ctx context.Context, mobile string) (bool, error)
}
