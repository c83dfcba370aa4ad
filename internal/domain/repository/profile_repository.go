package repository

import "context"

// ProfileRepository answers profile-existence probes for the
// post-verification redirect hint. Profile CRUD itself lives elsewhere.
type ProfileRepository interface {
	CandidateProfileExists(ctx context.Context, identityID string) (bool, error)
	EmployerProfileExists(ctx context.Context, identityID string) (bool, error)
}
