package interfaces

import (
	"context"
	"time"

	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// ClaimRepository persists claims. Claims are append-mostly: Create and
// the guarded Transition are the only writes, and nothing ever deletes
// a claim.
type ClaimRepository interface {
	Create(ctx context.Context, claim *model.Claim) (*model.Claim, error)
	Get(ctx context.Context, id types.ClaimID) (*model.Claim, error)

	// FindByFingerprint returns a claim by the same member with the same
	// content fingerprint submitted at or after since, or ErrNotFound.
	FindByFingerprint(ctx context.Context, memberID types.MemberID, fingerprint string, since time.Time) (*model.Claim, error)

	// ListByMember returns the member's claims, newest first
	ListByMember(ctx context.Context, memberID types.MemberID, opts ...ListClaimOption) ([]*model.Claim, error)

	// ListByStatus returns claims in the given status ordered FIFO by
	// submission time, ties broken by claim ID
	ListByStatus(ctx context.Context, status types.ClaimStatus, opts ...ListClaimOption) ([]*model.Claim, error)

	// Transition applies a mutation to the claim only if its current
	// status is one of expected; otherwise it fails with
	// ErrStatusConflict without applying. Backends implement this as a
	// conditional update (transaction or equivalent), never as
	// read-then-write, so two concurrent actors cannot both succeed.
	Transition(ctx context.Context, id types.ClaimID, expected []types.ClaimStatus, apply func(claim *model.Claim) error) (*model.Claim, error)
}
