package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/repository/memory"
	"github.com/stoa-lab/salescredit/pkg/usecase"
)

// submitPending submits one claim that lands in the review queue
func submitPending(t *testing.T, uc *usecase.UseCases, member types.MemberID, text string) types.ClaimID {
	t.Helper()

	summary, err := uc.SubmitClaim(memberCtx(member), &usecase.SubmitClaimInput{
		Channel: types.ChannelText,
		Text:    text,
	})
	gt.NoError(t, err).Required()
	gt.Value(t, summary.Status).Equal(types.ClaimStatusPending)
	return summary.ID
}

func pendingUseCases(repo interfaces.Repository) *usecase.UseCases {
	return usecase.New(repo, nil, usecase.WithExtractor(&stubExtractor{
		result: &model.ExtractionResult{
			Category:   types.CategoryConsultation,
			Confidence: 0.50,
		},
	}))
}

func TestListPendingClaims(t *testing.T) {
	t.Run("returns the queue oldest first, staff only", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)

		first := submitPending(t, uc, "member-001", "talked a customer through fence post spacing")
		second := submitPending(t, uc, "member-002", "talked a customer through gutter guard options")

		claims, err := uc.ListPendingClaims(staffCtx("staff-001"), 0)
		gt.NoError(t, err).Required()
		gt.Array(t, claims).Length(2).Required()
		gt.Value(t, claims[0].ID).Equal(first)
		gt.Value(t, claims[1].ID).Equal(second)

		_, err = uc.ListPendingClaims(memberCtx("member-001"), 0)
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})
}

func TestStartReview(t *testing.T) {
	t.Run("moves a pending claim under review once", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)
		id := submitPending(t, uc, "member-001", "explained sprinkler zone layouts to a customer")

		claim, err := uc.StartReview(staffCtx("staff-001"), id)
		gt.NoError(t, err).Required()
		gt.Value(t, claim.Status).Equal(types.ClaimStatusUnderReview)
		gt.Value(t, claim.ReviewerID).Equal(types.MemberID("staff-001"))

		// A second reviewer cannot pick it up
		_, err = uc.StartReview(staffCtx("staff-002"), id)
		gt.Bool(t, errors.Is(err, usecase.ErrAlreadyReviewed)).True()
	})

	t.Run("members cannot start a review", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)
		id := submitPending(t, uc, "member-001", "explained sprinkler zone layouts to a customer")

		_, err := uc.StartReview(memberCtx("member-002"), id)
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})
}

func TestReviewClaim(t *testing.T) {
	t.Run("approval mints credit at the computed amount by default", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)
		id := submitPending(t, uc, "member-001", "walked a customer through picking a storm door")

		claim, err := uc.ReviewClaim(staffCtx("staff-001"), &usecase.ReviewClaimInput{
			ClaimID: id,
			Approve: true,
			Notes:   "verified with POS",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, claim.Status).Equal(types.ClaimStatusApproved)
		gt.Value(t, claim.ReviewNotes).Equal("verified with POS")
		gt.Value(t, claim.ApprovedAmount).NotNil()
		gt.Value(t, *claim.ApprovedAmount).Equal(claim.ComputedAmount)

		entry, err := repo.Ledger().FindByClaim(staffCtx("staff-001"), id)
		gt.NoError(t, err).Required()
		gt.Value(t, entry.Amount).Equal(claim.ComputedAmount)
	})

	t.Run("approval with override mints the override amount", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)
		id := submitPending(t, uc, "member-001", "walked a customer through picking a storm door")

		override := types.Amount(1234)
		claim, err := uc.ReviewClaim(staffCtx("staff-001"), &usecase.ReviewClaimInput{
			ClaimID:        id,
			Approve:        true,
			AmountOverride: &override,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, *claim.ApprovedAmount).Equal(override)

		entry, err := repo.Ledger().FindByClaim(staffCtx("staff-001"), id)
		gt.NoError(t, err).Required()
		gt.Value(t, entry.Amount).Equal(override)
	})

	t.Run("rejection mints nothing", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)
		id := submitPending(t, uc, "member-001", "walked a customer through picking a storm door")

		claim, err := uc.ReviewClaim(staffCtx("staff-001"), &usecase.ReviewClaimInput{
			ClaimID: id,
			Approve: false,
			Notes:   "no matching sale",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, claim.Status).Equal(types.ClaimStatusRejected)
		gt.Value(t, claim.ApprovedAmount).Nil()

		_, err = repo.Ledger().FindByClaim(staffCtx("staff-001"), id)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("decided claims cannot be reviewed again", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)
		id := submitPending(t, uc, "member-001", "walked a customer through picking a storm door")

		_, err := uc.ReviewClaim(staffCtx("staff-001"), &usecase.ReviewClaimInput{
			ClaimID: id,
			Approve: true,
		})
		gt.NoError(t, err).Required()

		_, err = uc.ReviewClaim(staffCtx("staff-002"), &usecase.ReviewClaimInput{
			ClaimID: id,
			Approve: false,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrAlreadyReviewed)).True()

		// The first decision stands, along with its single ledger entry
		entry, err := repo.Ledger().FindByClaim(staffCtx("staff-001"), id)
		gt.NoError(t, err).Required()
		gt.Bool(t, entry.Amount > 0).True()
	})

	t.Run("an under-review claim can be decided directly", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)
		id := submitPending(t, uc, "member-001", "walked a customer through picking a storm door")

		_, err := uc.StartReview(staffCtx("staff-001"), id)
		gt.NoError(t, err).Required()

		claim, err := uc.ReviewClaim(staffCtx("staff-001"), &usecase.ReviewClaimInput{
			ClaimID: id,
			Approve: true,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, claim.Status).Equal(types.ClaimStatusApproved)
	})

	t.Run("reviewers cannot decide their own claims", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)

		// A staff member submits a claim of their own
		summary, err := uc.SubmitClaim(staffCtx("staff-001"), &usecase.SubmitClaimInput{
			Channel: types.ChannelText,
			Text:    "helped a customer load a pallet of pavers",
		})
		gt.NoError(t, err).Required()

		_, err = uc.ReviewClaim(staffCtx("staff-001"), &usecase.ReviewClaimInput{
			ClaimID: summary.ID,
			Approve: true,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()

		// The claim stays reviewable by someone else
		claim, err := uc.ReviewClaim(staffCtx("staff-002"), &usecase.ReviewClaimInput{
			ClaimID: summary.ID,
			Approve: true,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, claim.Status).Equal(types.ClaimStatusApproved)
	})

	t.Run("members cannot review", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)
		id := submitPending(t, uc, "member-001", "walked a customer through picking a storm door")

		_, err := uc.ReviewClaim(memberCtx("member-002"), &usecase.ReviewClaimInput{
			ClaimID: id,
			Approve: true,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})

	t.Run("non-positive override is rejected", func(t *testing.T) {
		repo := memory.New()
		uc := pendingUseCases(repo)
		id := submitPending(t, uc, "member-001", "walked a customer through picking a storm door")

		override := types.Amount(0)
		_, err := uc.ReviewClaim(staffCtx("staff-001"), &usecase.ReviewClaimInput{
			ClaimID:        id,
			Approve:        true,
			AmountOverride: &override,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("unknown claim is not found", func(t *testing.T) {
		uc := pendingUseCases(memory.New())
		_, err := uc.ReviewClaim(staffCtx("staff-001"), &usecase.ReviewClaimInput{
			ClaimID: types.NewClaimID(),
			Approve: true,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrClaimNotFound)).True()
	})
}
