package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/model/auth"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/service/extraction"
	"github.com/stoa-lab/salescredit/pkg/utils/async"
)

// SubmitClaimInput is one raw claim submission
type SubmitClaimInput struct {
	Channel        types.Channel
	Text           string
	ConversationID types.ConversationID
	Turns          []model.ConversationTurn
	SaleValue      types.Amount
	Modifiers      model.Modifiers
}

// SubmitClaim validates and deduplicates a raw claim, runs extraction,
// computes the credit amount, and decides between auto-approval and the
// review queue. The extraction provider failing never fails the
// submission; the deterministic fallback applies instead.
func (uc *UseCases) SubmitClaim(ctx context.Context, input *SubmitClaimInput) (*model.ClaimSummary, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}

	text := strings.TrimSpace(input.Text)
	if !input.Channel.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid submission channel", goerr.V("channel", input.Channel))
	}
	if len(text) < uc.cfg.MinTextLength {
		return nil, goerr.Wrap(ErrInvalidInput, "claim text is too short",
			goerr.V("length", len(text)),
			goerr.V("min", uc.cfg.MinTextLength))
	}

	fingerprint := claimFingerprint(identity.Sub, text)
	if err := uc.checkDuplicate(ctx, identity.Sub, fingerprint); err != nil {
		return nil, err
	}

	claim := &model.Claim{
		MemberID:       identity.Sub,
		Channel:        input.Channel,
		RawText:        text,
		ConversationID: input.ConversationID,
		Turns:          model.BoundTurns(input.Turns, DefaultTurnLimit),
		Fingerprint:    fingerprint,
		SaleValue:      input.SaleValue,
		Modifiers:      input.Modifiers,
		Status:         types.ClaimStatusReceived,
		SubmittedAt:    uc.now(),
	}

	created, err := uc.repo.Claim().Create(ctx, claim)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create claim")
	}
	uc.dedup.Set(dedupKey(identity.Sub, fingerprint), created.ID, uc.cfg.DedupWindow)

	// Turns within one conversation are extracted in arrival order; the
	// provider depends on prior-turn context.
	unlock := uc.lockConversation(input.ConversationID)
	result := uc.runExtraction(ctx, text, created.Turns)
	unlock()

	decided, err := uc.finalizeDecision(ctx, created.ID, result)
	if err != nil {
		return nil, err
	}

	return decided.Summary(), nil
}

// DefaultTurnLimit bounds conversation history stored on a claim
const DefaultTurnLimit = 10

// ProcessTurn runs extraction for one conversation turn without
// creating a claim. The caller owns and bounds the turn history.
func (uc *UseCases) ProcessTurn(ctx context.Context, conversationID types.ConversationID, text string, priorTurns []model.ConversationTurn) (*model.ExtractionResult, error) {
	if _, err := auth.IdentityFromContext(ctx); err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "turn text is required")
	}

	unlock := uc.lockConversation(conversationID)
	defer unlock()

	return uc.runExtraction(ctx, text, model.BoundTurns(priorTurns, DefaultTurnLimit)), nil
}

// SubmitProcessedInput carries a claim whose extraction already
// happened client-side or in a prior conversation turn
type SubmitProcessedInput struct {
	Channel    types.Channel
	Text       string
	Extraction *model.ExtractionResult
	SaleValue  types.Amount
	Modifiers  model.Modifiers
}

// SubmitProcessed ingests a pre-extracted claim. The credit amount is
// always recomputed server-side from the rate table; a client-supplied
// amount is never trusted.
func (uc *UseCases) SubmitProcessed(ctx context.Context, input *SubmitProcessedInput) (*model.ClaimSummary, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}

	text := strings.TrimSpace(input.Text)
	if !input.Channel.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid submission channel", goerr.V("channel", input.Channel))
	}
	if len(text) < uc.cfg.MinTextLength {
		return nil, goerr.Wrap(ErrInvalidInput, "claim text is too short",
			goerr.V("length", len(text)),
			goerr.V("min", uc.cfg.MinTextLength))
	}
	if input.Extraction == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "extraction result is required")
	}
	if err := input.Extraction.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid extraction result", goerr.V("cause", err.Error()))
	}

	fingerprint := claimFingerprint(identity.Sub, text)
	if err := uc.checkDuplicate(ctx, identity.Sub, fingerprint); err != nil {
		return nil, err
	}

	claim := &model.Claim{
		MemberID:    identity.Sub,
		Channel:     input.Channel,
		RawText:     text,
		Fingerprint: fingerprint,
		SaleValue:   input.SaleValue,
		Modifiers:   input.Modifiers,
		Status:      types.ClaimStatusReceived,
		SubmittedAt: uc.now(),
	}

	created, err := uc.repo.Claim().Create(ctx, claim)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create claim")
	}
	uc.dedup.Set(dedupKey(identity.Sub, fingerprint), created.ID, uc.cfg.DedupWindow)

	decided, err := uc.finalizeDecision(ctx, created.ID, input.Extraction)
	if err != nil {
		return nil, err
	}

	return decided.Summary(), nil
}

// ListOwnClaims returns the caller's claims, newest first
func (uc *UseCases) ListOwnClaims(ctx context.Context, status *types.ClaimStatus, page int) ([]*model.ClaimSummary, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}

	opts := []interfaces.ListClaimOption{
		interfaces.WithPage(page, interfaces.DefaultPageSize),
	}
	if status != nil {
		opts = append(opts, interfaces.WithClaimStatus(*status))
	}

	claims, err := uc.repo.Claim().ListByMember(ctx, identity.Sub, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list claims", goerr.V(MemberIDKey, identity.Sub))
	}

	summaries := make([]*model.ClaimSummary, len(claims))
	for i, claim := range claims {
		summaries[i] = claim.Summary()
	}
	return summaries, nil
}

// GetClaim returns one claim. Members only see their own claims;
// elevated roles see all.
func (uc *UseCases) GetClaim(ctx context.Context, id types.ClaimID) (*model.Claim, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}

	claim, err := uc.repo.Claim().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrClaimNotFound, "claim not found", goerr.V(ClaimIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get claim", goerr.V(ClaimIDKey, id))
	}

	if claim.MemberID != identity.Sub && !identity.Role.Elevated() {
		return nil, goerr.Wrap(ErrPermissionDenied, "cannot access another member's claim",
			goerr.V(ClaimIDKey, id))
	}

	return claim, nil
}

// runExtraction delegates to the extraction adapter. A deployment
// without a provider degrades to the same fallback an outage produces.
func (uc *UseCases) runExtraction(ctx context.Context, text string, turns []model.ConversationTurn) *model.ExtractionResult {
	if uc.extractor == nil {
		return extraction.Fallback()
	}
	return uc.extractor.Extract(ctx, text, turns)
}

// finalizeDecision applies the extraction result to the claim, computes
// the credit amount, evaluates the auto-approval rule, and records the
// decision. Approval mints exactly one ledger entry.
func (uc *UseCases) finalizeDecision(ctx context.Context, id types.ClaimID, result *model.ExtractionResult) (*model.Claim, error) {
	confidence := result.Confidence.Clamp()
	now := uc.now()

	decided, err := uc.repo.Claim().Transition(ctx, id,
		[]types.ClaimStatus{types.ClaimStatusReceived},
		func(claim *model.Claim) error {
			amount := uc.calculator.Calculate(result.Category, claim.SaleValue, claim.Modifiers, confidence)
			outcome := uc.engine.Evaluate(confidence, amount)

			claim.Category = result.Category
			claim.Confidence = confidence
			claim.ExtractionFallback = result.Fallback
			claim.ComputedAmount = amount
			claim.Status = outcome.Status
			claim.DecidedAt = now
			if outcome.Status == types.ClaimStatusApproved {
				approved := amount
				claim.ApprovedAmount = &approved
			}
			claim.AddAudit(now, "", "decision", outcome.Rule, "")
			return nil
		})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to record decision", goerr.V(ClaimIDKey, id))
	}

	if decided.Status == types.ClaimStatusApproved {
		if err := uc.mintLedgerEntry(ctx, decided); err != nil {
			return nil, err
		}
	}

	uc.notifyDecision(ctx, decided)

	return decided, nil
}

// mintLedgerEntry creates the earned entry for an approved claim. The
// claim-ID lookup makes minting idempotent: a claim gets at most one
// ledger entry even if the approval path is retried.
func (uc *UseCases) mintLedgerEntry(ctx context.Context, claim *model.Claim) error {
	if _, err := uc.repo.Ledger().FindByClaim(ctx, claim.ID); err == nil {
		return nil
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(err, "failed to check existing ledger entry", goerr.V(ClaimIDKey, claim.ID))
	}

	amount := claim.ComputedAmount
	if claim.ApprovedAmount != nil {
		amount = *claim.ApprovedAmount
	}

	entry := &model.LedgerEntry{
		MemberID:  claim.MemberID,
		ClaimID:   claim.ID,
		Amount:    amount,
		Type:      types.EntryTypeEarned,
		ExpiresAt: uc.now().Add(uc.cfg.EntryExpiry),
		CreatedAt: uc.now(),
	}

	if _, err := uc.repo.Ledger().Create(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to create ledger entry", goerr.V(ClaimIDKey, claim.ID))
	}

	return nil
}

// notifyDecision dispatches the decision event to the sink without
// awaiting it
func (uc *UseCases) notifyDecision(ctx context.Context, claim *model.Claim) {
	if uc.notifier == nil {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.notifier.NotifyClaimDecided(ctx, claim)
	})
}

// checkDuplicate rejects a resubmission with the same fingerprint from
// the same member within the dedup window. The in-process cache is a
// fast path; the repository query is the canonical guard and also
// covers process restarts.
func (uc *UseCases) checkDuplicate(ctx context.Context, memberID types.MemberID, fingerprint string) error {
	if _, found := uc.dedup.Get(dedupKey(memberID, fingerprint)); found {
		return goerr.Wrap(ErrDuplicateClaim, "identical claim submitted within dedup window",
			goerr.V(MemberIDKey, memberID))
	}

	since := uc.now().Add(-uc.cfg.DedupWindow)
	_, err := uc.repo.Claim().FindByFingerprint(ctx, memberID, fingerprint, since)
	if err == nil {
		return goerr.Wrap(ErrDuplicateClaim, "identical claim submitted within dedup window",
			goerr.V(MemberIDKey, memberID))
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(err, "failed to check for duplicate claim", goerr.V(MemberIDKey, memberID))
	}

	return nil
}

// claimFingerprint hashes the submitter and normalized text. Retried
// voice or network calls produce the same fingerprint and are rejected
// as duplicates within the window.
func claimFingerprint(memberID types.MemberID, text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(memberID.String() + "\x00" + normalized))
	return hex.EncodeToString(sum[:])
}

func dedupKey(memberID types.MemberID, fingerprint string) string {
	return memberID.String() + ":" + fingerprint
}
