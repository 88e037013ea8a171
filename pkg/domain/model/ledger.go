package model

import (
	"time"

	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// LedgerEntry is one immutable credit grant or adjustment against a
// member's balance. Amount is fixed at creation; the only mutation a
// ledger entry ever sees is the single false-to-true flip of Redeemed.
type LedgerEntry struct {
	ID       types.EntryID
	MemberID types.MemberID
	ClaimID  types.ClaimID // empty for manual bonuses and adjustments
	Amount   types.Amount
	Type     types.EntryType
	Note     string
	ActorID  types.MemberID // staff who wrote a manual entry

	ExpiresAt  time.Time // zero means no expiry
	Redeemed   bool
	RedeemedAt time.Time

	CreatedAt time.Time
}

// Active reports whether the entry counts toward the available balance
// at the given time: not redeemed and not expired.
func (e *LedgerEntry) Active(now time.Time) bool {
	if e.Redeemed {
		return false
	}
	if !e.ExpiresAt.IsZero() && !e.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Balance is a member's derived credit position. The available total is
// always the live sum of active entries, never a stored counter.
type Balance struct {
	MemberID  types.MemberID
	Available types.Amount
	Entries   []*LedgerEntry
}
