package entity

import "time"

// Role labels an identity's place in the marketplace.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticable principal, keyed by mobile number.
// OTPCode and OTPExpiry are always set and cleared together: a pending
// code has both non-nil, a consumed or never-issued one has both nil.
// IsVerified is monotonic; once true it is never unset here.
type Identity struct {
	ID           string
	Mobile       string
	Email        *string
	PasswordHash *string
	Role         Role
	IsActive     bool
	IsVerified   bool
	OTPCode      *string
	OTPExpiry    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
