package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

type ledgerRepository struct {
	mu      sync.RWMutex
	entries map[types.EntryID]*model.LedgerEntry
}

func newLedgerRepository() *ledgerRepository {
	return &ledgerRepository{
		entries: make(map[types.EntryID]*model.LedgerEntry),
	}
}

func copyEntry(e *model.LedgerEntry) *model.LedgerEntry {
	copied := *e
	return &copied
}

func (r *ledgerRepository) Create(ctx context.Context, entry *model.LedgerEntry) (*model.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyEntry(entry)
	if created.ID == "" {
		created.ID = types.NewEntryID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, exists := r.entries[created.ID]; exists {
		return nil, goerr.New("ledger entry already exists", goerr.V("id", created.ID))
	}

	r.entries[created.ID] = created
	return copyEntry(created), nil
}

func (r *ledgerRepository) Get(ctx context.Context, id types.EntryID) (*model.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "ledger entry not found", goerr.V("id", id))
	}

	return copyEntry(entry), nil
}

func (r *ledgerRepository) FindByClaim(ctx context.Context, claimID types.ClaimID) (*model.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.ClaimID == claimID {
			return copyEntry(entry), nil
		}
	}

	return nil, goerr.Wrap(interfaces.ErrNotFound, "no ledger entry for claim", goerr.V("claimID", claimID))
}

func (r *ledgerRepository) ListByMember(ctx context.Context, memberID types.MemberID) ([]*model.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.LedgerEntry
	for _, entry := range r.entries {
		if entry.MemberID == memberID {
			result = append(result, copyEntry(entry))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

func (r *ledgerRepository) Redeem(ctx context.Context, id types.EntryID, at time.Time) (*model.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "ledger entry not found", goerr.V("id", id))
	}

	if entry.Redeemed {
		return nil, goerr.Wrap(interfaces.ErrAlreadyRedeemed, "entry was already redeemed",
			goerr.V("id", id),
			goerr.V("redeemedAt", entry.RedeemedAt))
	}

	updated := copyEntry(entry)
	updated.Redeemed = true
	updated.RedeemedAt = at.UTC()

	r.entries[id] = updated
	return copyEntry(updated), nil
}
