package entity

import "time"

// Outcome of one audited authentication step.
const (
	AuditSuccess = "success"
	AuditWarning = "warning"
	AuditError   = "error"
)

// AuditEntry is an immutable record of one authentication-pipeline
// action. Mobile is denormalized so the record outlives its identity.
// Entries are insert-only; nothing updates or deletes them.
type AuditEntry struct {
	ID         string
	IdentityID *string
	Mobile     string
	Role       string
	Step       string
	Status     string
	Message    string
	Detail     *string
	IP         string
	Device     string
	CreatedAt  time.Time
}
