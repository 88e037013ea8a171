package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/model/auth"
	"github.com/stoa-lab/salescredit/pkg/domain/model/config"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/repository/memory"
	"github.com/stoa-lab/salescredit/pkg/usecase"
)

// stubExtractor returns a fixed extraction result
type stubExtractor struct {
	result *model.ExtractionResult
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, text string, turns []model.ConversationTurn) *model.ExtractionResult {
	s.calls++
	result := *s.result
	return &result
}

func memberCtx(sub types.MemberID) context.Context {
	return auth.ContextWithIdentity(context.Background(), &auth.Identity{
		Sub:  sub,
		Role: types.RoleMember,
	})
}

func staffCtx(sub types.MemberID) context.Context {
	return auth.ContextWithIdentity(context.Background(), &auth.Identity{
		Sub:  sub,
		Role: types.RoleStaff,
	})
}

func TestSubmitClaim(t *testing.T) {
	t.Run("high confidence small claim auto-approves and mints credit", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil, usecase.WithExtractor(&stubExtractor{
			result: &model.ExtractionResult{
				Category:   types.CategoryRecommendation,
				Confidence: 0.90,
			},
		}))
		ctx := memberCtx("member-001")

		summary, err := uc.SubmitClaim(ctx, &usecase.SubmitClaimInput{
			Channel: types.ChannelText,
			Text:    "I recommended the 20V cordless drill to a customer this morning",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, summary.Status).Equal(types.ClaimStatusApproved)
		// default base 150 cents x 0.90 confidence = 135
		gt.Value(t, summary.ClaimedAmount).Equal("$1.35")
		gt.Value(t, summary.ApprovedAmount).Equal("$1.35")

		entry, err := repo.Ledger().FindByClaim(ctx, summary.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, entry.Amount).Equal(types.Amount(135))
		gt.Value(t, entry.Type).Equal(types.EntryTypeEarned)
		gt.Value(t, entry.MemberID).Equal(types.MemberID("member-001"))
		gt.Bool(t, entry.ExpiresAt.IsZero()).False()
	})

	t.Run("low confidence claim queues for review without credit", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil, usecase.WithExtractor(&stubExtractor{
			result: &model.ExtractionResult{
				Category:   types.CategoryConsultation,
				Confidence: 0.50,
			},
		}))
		ctx := memberCtx("member-001")

		summary, err := uc.SubmitClaim(ctx, &usecase.SubmitClaimInput{
			Channel: types.ChannelVoice,
			Text:    "I think I helped someone with paint at some point",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, summary.Status).Equal(types.ClaimStatusPending)
		gt.Value(t, summary.ApprovedAmount).Equal("")

		_, err = repo.Ledger().FindByClaim(ctx, summary.ID)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("large amount queues even at high confidence", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil, usecase.WithExtractor(&stubExtractor{
			result: &model.ExtractionResult{
				Category:   types.CategoryProblemSolving,
				Confidence: 0.95,
			},
		}))
		ctx := memberCtx("member-001")

		// $300.00 sale x 18% x 1.4 high-value x 0.95 = $71.82, over the $20.00 ceiling
		summary, err := uc.SubmitClaim(ctx, &usecase.SubmitClaimInput{
			Channel:   types.ChannelText,
			Text:      "Fixed a customer's broken mower and sold them a new blade",
			SaleValue: 30000,
		})
		gt.NoError(t, err).Required()

		gt.Value(t, summary.Status).Equal(types.ClaimStatusPending)
		gt.Value(t, summary.ClaimedAmount).Equal("$71.82")
	})

	t.Run("duplicate submission within window is rejected", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil, usecase.WithExtractor(&stubExtractor{
			result: &model.ExtractionResult{
				Category:   types.CategoryRecommendation,
				Confidence: 0.9,
			},
		}))
		ctx := memberCtx("member-001")

		input := &usecase.SubmitClaimInput{
			Channel: types.ChannelVoice,
			Text:    "I recommended the shop vac to a contractor",
		}

		_, err := uc.SubmitClaim(ctx, input)
		gt.NoError(t, err).Required()

		_, err = uc.SubmitClaim(ctx, input)
		gt.Bool(t, errors.Is(err, usecase.ErrDuplicateClaim)).True()

		// Whitespace and casing differences still collide
		_, err = uc.SubmitClaim(ctx, &usecase.SubmitClaimInput{
			Channel: types.ChannelVoice,
			Text:    "  I RECOMMENDED the   shop vac to a contractor ",
		})
		gt.Bool(t, errors.Is(err, usecase.ErrDuplicateClaim)).True()
	})

	t.Run("same text from another member is not a duplicate", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil, usecase.WithExtractor(&stubExtractor{
			result: &model.ExtractionResult{
				Category:   types.CategoryRecommendation,
				Confidence: 0.9,
			},
		}))

		input := &usecase.SubmitClaimInput{
			Channel: types.ChannelText,
			Text:    "I recommended the shop vac to a contractor",
		}

		_, err := uc.SubmitClaim(memberCtx("member-001"), input)
		gt.NoError(t, err).Required()

		_, err = uc.SubmitClaim(memberCtx("member-002"), input)
		gt.NoError(t, err)
	})

	t.Run("resubmission after the window succeeds", func(t *testing.T) {
		repo := memory.New()
		cfg := config.Default()
		cfg.DedupWindow = 30 * time.Millisecond
		uc := usecase.New(repo, cfg, usecase.WithExtractor(&stubExtractor{
			result: &model.ExtractionResult{
				Category:   types.CategoryRecommendation,
				Confidence: 0.9,
			},
		}))
		ctx := memberCtx("member-001")

		input := &usecase.SubmitClaimInput{
			Channel: types.ChannelText,
			Text:    "I recommended the shop vac to a contractor",
		}

		_, err := uc.SubmitClaim(ctx, input)
		gt.NoError(t, err).Required()

		time.Sleep(50 * time.Millisecond)

		_, err = uc.SubmitClaim(ctx, input)
		gt.NoError(t, err)
	})

	t.Run("extraction failure falls back and queues for review", func(t *testing.T) {
		repo := memory.New()
		// No extractor configured: the pipeline uses the deterministic
		// fallback, same as a provider outage
		uc := usecase.New(repo, nil)
		ctx := memberCtx("member-001")

		summary, err := uc.SubmitClaim(ctx, &usecase.SubmitClaimInput{
			Channel: types.ChannelVoice,
			Text:    "mumble mumble helped someone with a thing",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, summary.Status).Equal(types.ClaimStatusPending)

		claim, err := repo.Claim().Get(ctx, summary.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, claim.ExtractionFallback).True()
		gt.Value(t, claim.Confidence).Equal(types.Confidence(0.30))
	})

	t.Run("too-short text is rejected before any claim exists", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil)
		ctx := memberCtx("member-001")

		_, err := uc.SubmitClaim(ctx, &usecase.SubmitClaimInput{
			Channel: types.ChannelText,
			Text:    "helped",
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()

		claims, err := repo.Claim().ListByMember(ctx, "member-001")
		gt.NoError(t, err).Required()
		gt.Array(t, claims).Length(0)
	})

	t.Run("invalid channel is rejected", func(t *testing.T) {
		uc := usecase.New(memory.New(), nil)
		_, err := uc.SubmitClaim(memberCtx("member-001"), &usecase.SubmitClaimInput{
			Channel: types.Channel("carrier-pigeon"),
			Text:    "I recommended the shop vac to a contractor",
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("unauthenticated submission is denied", func(t *testing.T) {
		uc := usecase.New(memory.New(), nil)
		_, err := uc.SubmitClaim(context.Background(), &usecase.SubmitClaimInput{
			Channel: types.ChannelText,
			Text:    "I recommended the shop vac to a contractor",
		})
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})

	t.Run("decision is recorded in the audit trail", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil, usecase.WithExtractor(&stubExtractor{
			result: &model.ExtractionResult{
				Category:   types.CategoryAssistance,
				Confidence: 0.9,
			},
		}))
		ctx := memberCtx("member-001")

		summary, err := uc.SubmitClaim(ctx, &usecase.SubmitClaimInput{
			Channel: types.ChannelText,
			Text:    "carried lumber out to a customer's truck and tied it down",
		})
		gt.NoError(t, err).Required()

		claim, err := repo.Claim().Get(ctx, summary.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, claim.Audit).Length(1).Required()
		gt.Value(t, claim.Audit[0].Event).Equal("decision")
		gt.Value(t, claim.Audit[0].Rule).NotEqual("")
	})
}

func TestProcessTurn(t *testing.T) {
	t.Run("delegates to the extractor without creating a claim", func(t *testing.T) {
		repo := memory.New()
		stub := &stubExtractor{
			result: &model.ExtractionResult{
				Category:      types.CategoryConsultation,
				Confidence:    0.6,
				NeedsFollowUp: true,
			},
		}
		uc := usecase.New(repo, nil, usecase.WithExtractor(stub))
		ctx := memberCtx("member-001")

		result, err := uc.ProcessTurn(ctx, "conv-1", "I talked someone through deck stain options", nil)
		gt.NoError(t, err).Required()
		gt.Bool(t, result.NeedsFollowUp).True()
		gt.Number(t, stub.calls).Equal(1)

		claims, err := repo.Claim().ListByMember(ctx, "member-001")
		gt.NoError(t, err).Required()
		gt.Array(t, claims).Length(0)
	})

	t.Run("empty turn text is rejected", func(t *testing.T) {
		uc := usecase.New(memory.New(), nil)
		_, err := uc.ProcessTurn(memberCtx("member-001"), "conv-1", "   ", nil)
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})
}

func TestSubmitProcessed(t *testing.T) {
	t.Run("recomputes the amount server-side", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil)
		ctx := memberCtx("member-001")

		summary, err := uc.SubmitProcessed(ctx, &usecase.SubmitProcessedInput{
			Channel: types.ChannelManual,
			Text:    "walked a customer through tile underlayment choices",
			Extraction: &model.ExtractionResult{
				Category:   types.CategoryConsultation,
				Confidence: 0.95,
			},
			SaleValue: 4500,
			Modifiers: model.Modifiers{
				Tier:              types.TierPremium,
				FirstTimeCustomer: true,
			},
		})
		gt.NoError(t, err).Required()

		// 4500 x 0.12 x 1.3 x 1.2 x 0.95 = 800.28, rounded once
		gt.Value(t, summary.ClaimedAmount).Equal("$8.00")
		gt.Value(t, summary.Status).Equal(types.ClaimStatusApproved)
	})

	t.Run("client confidence out of range is clamped", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil)
		ctx := memberCtx("member-001")

		summary, err := uc.SubmitProcessed(ctx, &usecase.SubmitProcessedInput{
			Channel: types.ChannelManual,
			Text:    "recommended a wet saw for a bathroom remodel",
			Extraction: &model.ExtractionResult{
				Category:   types.CategoryRecommendation,
				Confidence: 7.5,
			},
		})
		gt.NoError(t, err).Required()

		claim, err := repo.Claim().Get(ctx, summary.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, claim.Confidence).Equal(types.Confidence(1.0))
	})

	t.Run("invalid extraction category is rejected", func(t *testing.T) {
		uc := usecase.New(memory.New(), nil)
		_, err := uc.SubmitProcessed(memberCtx("member-001"), &usecase.SubmitProcessedInput{
			Channel: types.ChannelManual,
			Text:    "helped someone pick out a grill cover",
			Extraction: &model.ExtractionResult{
				Category:   types.Category("mystery"),
				Confidence: 0.9,
			},
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("missing extraction is rejected", func(t *testing.T) {
		uc := usecase.New(memory.New(), nil)
		_, err := uc.SubmitProcessed(memberCtx("member-001"), &usecase.SubmitProcessedInput{
			Channel: types.ChannelManual,
			Text:    "helped someone pick out a grill cover",
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})
}

func TestGetClaim(t *testing.T) {
	t.Run("members cannot read another member's claim", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, nil)

		summary, err := uc.SubmitClaim(memberCtx("member-001"), &usecase.SubmitClaimInput{
			Channel: types.ChannelText,
			Text:    "recommended a ladder stabilizer to a roofer",
		})
		gt.NoError(t, err).Required()

		_, err = uc.GetClaim(memberCtx("member-002"), summary.ID)
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()

		// The owner and elevated roles can read it
		_, err = uc.GetClaim(memberCtx("member-001"), summary.ID)
		gt.NoError(t, err)
		_, err = uc.GetClaim(staffCtx("staff-001"), summary.ID)
		gt.NoError(t, err)
	})

	t.Run("unknown claim is not found", func(t *testing.T) {
		uc := usecase.New(memory.New(), nil)
		_, err := uc.GetClaim(memberCtx("member-001"), types.NewClaimID())
		gt.Bool(t, errors.Is(err, usecase.ErrClaimNotFound)).True()
	})
}
