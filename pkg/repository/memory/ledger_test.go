package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/repository/memory"
)

func TestLedgerRepository(t *testing.T) {
	t.Run("Create assigns ID and preserves amount", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()

		created, err := repo.Ledger().Create(ctx, &model.LedgerEntry{
			MemberID: "member-001",
			ClaimID:  "claim-001",
			Amount:   800,
			Type:     types.EntryTypeEarned,
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).NotEqual(types.EntryID(""))
		gt.Value(t, created.Amount).Equal(types.Amount(800))
		gt.Bool(t, created.Redeemed).False()
		gt.Bool(t, created.CreatedAt.IsZero()).False()
	})

	t.Run("FindByClaim locates the minted entry", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()

		created, err := repo.Ledger().Create(ctx, &model.LedgerEntry{
			MemberID: "member-001",
			ClaimID:  "claim-777",
			Amount:   500,
			Type:     types.EntryTypeEarned,
		})
		gt.NoError(t, err).Required()

		found, err := repo.Ledger().FindByClaim(ctx, "claim-777")
		gt.NoError(t, err).Required()
		gt.Value(t, found.ID).Equal(created.ID)

		_, err = repo.Ledger().FindByClaim(ctx, "claim-other")
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("ListByMember returns only that member's entries", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()

		for _, m := range []types.MemberID{"member-001", "member-001", "member-002"} {
			_, err := repo.Ledger().Create(ctx, &model.LedgerEntry{
				MemberID: m,
				Amount:   100,
				Type:     types.EntryTypeBonus,
			})
			gt.NoError(t, err).Required()
		}

		entries, err := repo.Ledger().ListByMember(ctx, "member-001")
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2)
	})

	t.Run("Redeem flips the flag exactly once", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()

		created, err := repo.Ledger().Create(ctx, &model.LedgerEntry{
			MemberID: "member-001",
			Amount:   300,
			Type:     types.EntryTypeEarned,
		})
		gt.NoError(t, err).Required()

		at := time.Now().UTC()
		redeemed, err := repo.Ledger().Redeem(ctx, created.ID, at)
		gt.NoError(t, err).Required()
		gt.Bool(t, redeemed.Redeemed).True()
		gt.Bool(t, redeemed.RedeemedAt.Equal(at)).True()

		_, err = repo.Ledger().Redeem(ctx, created.ID, at.Add(time.Second))
		gt.Bool(t, errors.Is(err, interfaces.ErrAlreadyRedeemed)).True()
	})

	t.Run("concurrent redemption is first-wins", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()

		created, err := repo.Ledger().Create(ctx, &model.LedgerEntry{
			MemberID: "member-001",
			Amount:   300,
			Type:     types.EntryTypeEarned,
		})
		gt.NoError(t, err).Required()

		const attempts = 16
		var wg sync.WaitGroup
		results := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.Ledger().Redeem(ctx, created.ID, time.Now().UTC())
				results[i] = err
			}(i)
		}
		wg.Wait()

		var wins int
		for _, err := range results {
			if err == nil {
				wins++
			} else {
				gt.Bool(t, errors.Is(err, interfaces.ErrAlreadyRedeemed)).True()
			}
		}
		gt.Number(t, wins).Equal(1)
	})

	t.Run("amounts never change after creation", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()

		created, err := repo.Ledger().Create(ctx, &model.LedgerEntry{
			MemberID: "member-001",
			Amount:   450,
			Type:     types.EntryTypeEarned,
		})
		gt.NoError(t, err).Required()

		// Mutating the returned copy must not affect the stored entry
		created.Amount = 999999
		stored, err := repo.Ledger().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Amount).Equal(types.Amount(450))
	})
}
