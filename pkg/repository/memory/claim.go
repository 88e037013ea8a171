package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

type claimRepository struct {
	mu     sync.RWMutex
	claims map[types.ClaimID]*model.Claim
}

func newClaimRepository() *claimRepository {
	return &claimRepository{
		claims: make(map[types.ClaimID]*model.Claim),
	}
}

func copyClaim(c *model.Claim) *model.Claim {
	copied := *c
	copied.Turns = slices.Clone(c.Turns)
	copied.Audit = slices.Clone(c.Audit)
	if c.ApprovedAmount != nil {
		amount := *c.ApprovedAmount
		copied.ApprovedAmount = &amount
	}
	return &copied
}

func (r *claimRepository) Create(ctx context.Context, claim *model.Claim) (*model.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyClaim(claim)
	if created.ID == "" {
		created.ID = types.NewClaimID()
	}
	if created.SubmittedAt.IsZero() {
		created.SubmittedAt = time.Now().UTC()
	}

	if _, exists := r.claims[created.ID]; exists {
		return nil, goerr.New("claim already exists", goerr.V("id", created.ID))
	}

	r.claims[created.ID] = created
	return copyClaim(created), nil
}

func (r *claimRepository) Get(ctx context.Context, id types.ClaimID) (*model.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	claim, exists := r.claims[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "claim not found", goerr.V("id", id))
	}

	return copyClaim(claim), nil
}

func (r *claimRepository) FindByFingerprint(ctx context.Context, memberID types.MemberID, fingerprint string, since time.Time) (*model.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, claim := range r.claims {
		if claim.MemberID == memberID && claim.Fingerprint == fingerprint && !claim.SubmittedAt.Before(since) {
			return copyClaim(claim), nil
		}
	}

	return nil, goerr.Wrap(interfaces.ErrNotFound, "no claim with fingerprint",
		goerr.V("memberID", memberID))
}

func (r *claimRepository) ListByMember(ctx context.Context, memberID types.MemberID, opts ...interfaces.ListClaimOption) ([]*model.Claim, error) {
	cfg := interfaces.BuildListClaimConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Claim
	for _, claim := range r.claims {
		if claim.MemberID != memberID {
			continue
		}
		if cfg.Status() != nil && claim.Status != *cfg.Status() {
			continue
		}
		result = append(result, copyClaim(claim))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].SubmittedAt.After(result[j].SubmittedAt)
		}
		return result[i].ID > result[j].ID
	})

	return paginate(result, cfg.Offset(), cfg.Limit()), nil
}

func (r *claimRepository) ListByStatus(ctx context.Context, status types.ClaimStatus, opts ...interfaces.ListClaimOption) ([]*model.Claim, error) {
	cfg := interfaces.BuildListClaimConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Claim
	for _, claim := range r.claims {
		if claim.Status != status {
			continue
		}
		result = append(result, copyClaim(claim))
	}

	// FIFO by submission time, ties broken by claim ID
	sort.Slice(result, func(i, j int) bool {
		if !result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].SubmittedAt.Before(result[j].SubmittedAt)
		}
		return result[i].ID < result[j].ID
	})

	return paginate(result, cfg.Offset(), cfg.Limit()), nil
}

func (r *claimRepository) Transition(ctx context.Context, id types.ClaimID, expected []types.ClaimStatus, apply func(claim *model.Claim) error) (*model.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claim, exists := r.claims[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "claim not found", goerr.V("id", id))
	}

	if !slices.Contains(expected, claim.Status) {
		return nil, goerr.Wrap(interfaces.ErrStatusConflict, "claim is not in an expected status",
			goerr.V("id", id),
			goerr.V("status", claim.Status),
			goerr.V("expected", expected))
	}

	updated := copyClaim(claim)
	if err := apply(updated); err != nil {
		return nil, err
	}
	if updated.Status != claim.Status && !claim.Status.CanTransitionTo(updated.Status) {
		return nil, goerr.Wrap(interfaces.ErrStatusConflict, "invalid status transition",
			goerr.V("id", id),
			goerr.V("from", claim.Status),
			goerr.V("to", updated.Status))
	}

	r.claims[id] = updated
	return copyClaim(updated), nil
}

func paginate(claims []*model.Claim, offset, limit int) []*model.Claim {
	if offset >= len(claims) {
		return []*model.Claim{}
	}
	end := offset + limit
	if end > len(claims) {
		end = len(claims)
	}
	return claims[offset:end]
}
