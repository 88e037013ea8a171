package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/model/auth"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// ListPendingClaims returns the review queue in submission order,
// oldest first. Staff and admin only.
func (uc *UseCases) ListPendingClaims(ctx context.Context, page int) ([]*model.Claim, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}
	if !identity.Role.Elevated() {
		return nil, goerr.Wrap(ErrPermissionDenied, "review queue requires staff role")
	}

	claims, err := uc.repo.Claim().ListByStatus(ctx, types.ClaimStatusPending,
		interfaces.WithPage(page, interfaces.DefaultPageSize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pending claims")
	}

	return claims, nil
}

// StartReview marks a pending claim as under review so two reviewers do
// not pick up the same claim
func (uc *UseCases) StartReview(ctx context.Context, id types.ClaimID) (*model.Claim, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}
	if !identity.Role.Elevated() {
		return nil, goerr.Wrap(ErrPermissionDenied, "review requires staff role")
	}

	now := uc.now()
	claim, err := uc.repo.Claim().Transition(ctx, id,
		[]types.ClaimStatus{types.ClaimStatusPending},
		func(claim *model.Claim) error {
			claim.Status = types.ClaimStatusUnderReview
			claim.ReviewerID = identity.Sub
			claim.AddAudit(now, identity.Sub, "review_started", "", "")
			return nil
		})
	if err != nil {
		return nil, mapReviewError(err, id)
	}

	return claim, nil
}

// ReviewClaimInput is one manual review decision
type ReviewClaimInput struct {
	ClaimID types.ClaimID
	Approve bool

	// AmountOverride replaces the computed amount on approval. Nil
	// approves the computed amount as-is.
	AmountOverride *types.Amount
	Notes          string
}

// ReviewClaim records a manual approve or reject decision on a claim
// awaiting review. Approval mints the ledger entry; rejection mints
// nothing. A reviewer cannot decide their own claim.
func (uc *UseCases) ReviewClaim(ctx context.Context, input *ReviewClaimInput) (*model.Claim, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}
	if !identity.Role.Elevated() {
		return nil, goerr.Wrap(ErrPermissionDenied, "review requires staff role")
	}
	if input.Approve && input.AmountOverride != nil && *input.AmountOverride <= 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "amount override must be positive",
			goerr.V("amount", *input.AmountOverride))
	}

	notes := strings.TrimSpace(input.Notes)
	now := uc.now()

	claim, err := uc.repo.Claim().Transition(ctx, input.ClaimID,
		[]types.ClaimStatus{types.ClaimStatusPending, types.ClaimStatusUnderReview},
		func(claim *model.Claim) error {
			if claim.MemberID == identity.Sub {
				return goerr.Wrap(ErrPermissionDenied, "cannot review own claim")
			}

			claim.ReviewerID = identity.Sub
			claim.ReviewNotes = notes
			claim.ReviewedAt = now

			if input.Approve {
				approved := claim.ComputedAmount
				if input.AmountOverride != nil {
					approved = *input.AmountOverride
				}
				claim.ApprovedAmount = &approved
				claim.Status = types.ClaimStatusApproved
				claim.AddAudit(now, identity.Sub, "review_approved", "manual_review", notes)
			} else {
				claim.Status = types.ClaimStatusRejected
				claim.AddAudit(now, identity.Sub, "review_rejected", "manual_review", notes)
			}
			return nil
		})
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return nil, err
		}
		return nil, mapReviewError(err, input.ClaimID)
	}

	if claim.Status == types.ClaimStatusApproved {
		if err := uc.mintLedgerEntry(ctx, claim); err != nil {
			return nil, err
		}
	}

	uc.notifyDecision(ctx, claim)

	return claim, nil
}

// mapReviewError translates repository errors for the review workflow.
// A status conflict means another reviewer already decided the claim.
func mapReviewError(err error, id types.ClaimID) error {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return goerr.Wrap(ErrClaimNotFound, "claim not found", goerr.V(ClaimIDKey, id))
	case errors.Is(err, interfaces.ErrStatusConflict):
		return goerr.Wrap(ErrAlreadyReviewed, "claim is not awaiting review", goerr.V(ClaimIDKey, id))
	default:
		return goerr.Wrap(err, "failed to update claim", goerr.V(ClaimIDKey, id))
	}
}
