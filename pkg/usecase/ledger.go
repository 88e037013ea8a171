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

// GetBalance sums the caller's active ledger entries. Redeemed and
// expired entries do not count.
func (uc *UseCases) GetBalance(ctx context.Context) (*model.Balance, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}
	return uc.balanceOf(ctx, identity.Sub)
}

// GetMemberBalance returns any member's balance. Staff and admin only.
func (uc *UseCases) GetMemberBalance(ctx context.Context, memberID types.MemberID) (*model.Balance, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}
	if identity.Sub != memberID && !identity.Role.Elevated() {
		return nil, goerr.Wrap(ErrPermissionDenied, "cannot access another member's balance",
			goerr.V(MemberIDKey, memberID))
	}
	return uc.balanceOf(ctx, memberID)
}

func (uc *UseCases) balanceOf(ctx context.Context, memberID types.MemberID) (*model.Balance, error) {
	entries, err := uc.repo.Ledger().ListByMember(ctx, memberID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list ledger entries", goerr.V(MemberIDKey, memberID))
	}

	now := uc.now()
	balance := &model.Balance{MemberID: memberID}
	for _, entry := range entries {
		if entry.Active(now) {
			balance.Available += entry.Amount
			balance.Entries = append(balance.Entries, entry)
		}
	}

	return balance, nil
}

// Redeem marks one ledger entry as spent. The entry owner may redeem
// their own entries; staff and admin may redeem on a member's behalf at
// the register. Redemption is first-wins under concurrency.
func (uc *UseCases) Redeem(ctx context.Context, entryID types.EntryID) (*model.LedgerEntry, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}

	entry, err := uc.repo.Ledger().Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrEntryNotFound, "ledger entry not found", goerr.V(EntryIDKey, entryID))
		}
		return nil, goerr.Wrap(err, "failed to get ledger entry", goerr.V(EntryIDKey, entryID))
	}

	if entry.MemberID != identity.Sub && !identity.Role.Elevated() {
		return nil, goerr.Wrap(ErrPermissionDenied, "cannot redeem another member's entry",
			goerr.V(EntryIDKey, entryID))
	}

	now := uc.now()
	if !entry.ExpiresAt.IsZero() && !entry.ExpiresAt.After(now) {
		return nil, goerr.Wrap(ErrInvalidInput, "ledger entry has expired",
			goerr.V(EntryIDKey, entryID),
			goerr.V("expired_at", entry.ExpiresAt))
	}

	redeemed, err := uc.repo.Ledger().Redeem(ctx, entryID, now)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyRedeemed) {
			return nil, goerr.Wrap(ErrAlreadyRedeemed, "ledger entry already redeemed",
				goerr.V(EntryIDKey, entryID))
		}
		return nil, goerr.Wrap(err, "failed to redeem ledger entry", goerr.V(EntryIDKey, entryID))
	}

	return redeemed, nil
}

// AdjustInput is one manual ledger adjustment
type AdjustInput struct {
	MemberID types.MemberID
	Amount   types.Amount
	Type     types.EntryType
	Note     string
}

// Adjust writes a manual bonus or correction entry to a member's
// ledger. Staff and admin only. Bonus entries expire like earned ones;
// adjustment entries never expire and may be negative.
func (uc *UseCases) Adjust(ctx context.Context, input *AdjustInput) (*model.LedgerEntry, error) {
	identity, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrPermissionDenied, "not authenticated")
	}
	if !identity.Role.Elevated() {
		return nil, goerr.Wrap(ErrPermissionDenied, "ledger adjustment requires staff role")
	}

	if input.MemberID == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "member ID is required")
	}
	if input.Amount == 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "adjustment amount must be non-zero")
	}

	now := uc.now()
	entry := &model.LedgerEntry{
		MemberID:  input.MemberID,
		Amount:    input.Amount,
		Note:      strings.TrimSpace(input.Note),
		ActorID:   identity.Sub,
		CreatedAt: now,
	}

	switch input.Type {
	case types.EntryTypeBonus:
		if input.Amount < 0 {
			return nil, goerr.Wrap(ErrInvalidInput, "bonus amount must be positive",
				goerr.V("amount", input.Amount))
		}
		entry.Type = types.EntryTypeBonus
		entry.ExpiresAt = now.Add(uc.cfg.EntryExpiry)
	case types.EntryTypeAdjustment:
		entry.Type = types.EntryTypeAdjustment
	default:
		return nil, goerr.Wrap(ErrInvalidInput, "adjustment type must be bonus or adjustment",
			goerr.V("type", input.Type))
	}

	created, err := uc.repo.Ledger().Create(ctx, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ledger entry", goerr.V(MemberIDKey, input.MemberID))
	}

	return created, nil
}
