package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ledgerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newLedgerRepository(client *firestore.Client) *ledgerRepository {
	return &ledgerRepository{
		client: client,
	}
}

func (r *ledgerRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_ledger"
	}
	return "ledger"
}

func (r *ledgerRepository) Create(ctx context.Context, entry *model.LedgerEntry) (*model.LedgerEntry, error) {
	created := *entry
	if created.ID == "" {
		created.ID = types.NewEntryID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.collection()).Doc(created.ID.String())
	if _, err := docRef.Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create ledger entry", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *ledgerRepository) Get(ctx context.Context, id types.EntryID) (*model.LedgerEntry, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "ledger entry not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get ledger entry", goerr.V("id", id))
	}

	var entry model.LedgerEntry
	if err := docSnap.DataTo(&entry); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ledger entry", goerr.V("id", id))
	}

	return &entry, nil
}

func (r *ledgerRepository) FindByClaim(ctx context.Context, claimID types.ClaimID) (*model.LedgerEntry, error) {
	iter := r.client.Collection(r.collection()).
		Where("ClaimID", "==", claimID.String()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "no ledger entry for claim", goerr.V("claimID", claimID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query ledger entries", goerr.V("claimID", claimID))
	}

	var entry model.LedgerEntry
	if err := docSnap.DataTo(&entry); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ledger entry", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &entry, nil
}

func (r *ledgerRepository) ListByMember(ctx context.Context, memberID types.MemberID) ([]*model.LedgerEntry, error) {
	iter := r.client.Collection(r.collection()).
		Where("MemberID", "==", memberID.String()).
		OrderBy("CreatedAt", firestore.Desc).
		OrderBy("ID", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	entries := []*model.LedgerEntry{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate ledger entries", goerr.V("memberID", memberID))
		}

		var entry model.LedgerEntry
		if err := docSnap.DataTo(&entry); err != nil {
			return nil, goerr.Wrap(err, "failed to decode ledger entry", goerr.V("doc_id", docSnap.Ref.ID))
		}

		entries = append(entries, &entry)
	}

	return entries, nil
}

func (r *ledgerRepository) Redeem(ctx context.Context, id types.EntryID, at time.Time) (*model.LedgerEntry, error) {
	docRef := r.client.Collection(r.collection()).Doc(id.String())

	var updated *model.LedgerEntry
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "ledger entry not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get ledger entry", goerr.V("id", id))
		}

		var entry model.LedgerEntry
		if err := docSnap.DataTo(&entry); err != nil {
			return goerr.Wrap(err, "failed to decode ledger entry", goerr.V("id", id))
		}

		// Compare-and-set on the redeemed flag
		if entry.Redeemed {
			return goerr.Wrap(interfaces.ErrAlreadyRedeemed, "entry was already redeemed",
				goerr.V("id", id),
				goerr.V("redeemedAt", entry.RedeemedAt))
		}

		entry.Redeemed = true
		entry.RedeemedAt = at.UTC()

		updated = &entry
		return tx.Set(docRef, &entry)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
