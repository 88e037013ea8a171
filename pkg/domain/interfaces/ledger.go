package interfaces

import (
	"context"
	"time"

	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// LedgerRepository persists ledger entries. Entries are append-only:
// amount and type never change after Create, and Redeem is the only
// mutation.
type LedgerRepository interface {
	Create(ctx context.Context, entry *model.LedgerEntry) (*model.LedgerEntry, error)
	Get(ctx context.Context, id types.EntryID) (*model.LedgerEntry, error)

	// FindByClaim returns the entry minted for the claim, or ErrNotFound
	FindByClaim(ctx context.Context, claimID types.ClaimID) (*model.LedgerEntry, error)

	// ListByMember returns all of the member's entries, newest first
	ListByMember(ctx context.Context, memberID types.MemberID) ([]*model.LedgerEntry, error)

	// Redeem flips the redeemed flag with a compare-and-set on its
	// current value being false. A second concurrent attempt fails with
	// ErrAlreadyRedeemed.
	Redeem(ctx context.Context, id types.EntryID, at time.Time) (*model.LedgerEntry, error)
}
