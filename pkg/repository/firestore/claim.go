package firestore

import (
	"context"
	"slices"
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

type claimRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newClaimRepository(client *firestore.Client) *claimRepository {
	return &claimRepository{
		client: client,
	}
}

func (r *claimRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_claims"
	}
	return "claims"
}

func (r *claimRepository) Create(ctx context.Context, claim *model.Claim) (*model.Claim, error) {
	created := *claim
	if created.ID == "" {
		created.ID = types.NewClaimID()
	}
	if created.SubmittedAt.IsZero() {
		created.SubmittedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.collection()).Doc(created.ID.String())
	if _, err := docRef.Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create claim", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *claimRepository) Get(ctx context.Context, id types.ClaimID) (*model.Claim, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "claim not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get claim", goerr.V("id", id))
	}

	var claim model.Claim
	if err := docSnap.DataTo(&claim); err != nil {
		return nil, goerr.Wrap(err, "failed to decode claim", goerr.V("id", id))
	}

	return &claim, nil
}

func (r *claimRepository) FindByFingerprint(ctx context.Context, memberID types.MemberID, fingerprint string, since time.Time) (*model.Claim, error) {
	iter := r.client.Collection(r.collection()).
		Where("MemberID", "==", memberID.String()).
		Where("Fingerprint", "==", fingerprint).
		Where("SubmittedAt", ">=", since).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "no claim with fingerprint",
			goerr.V("memberID", memberID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query claims by fingerprint",
			goerr.V("memberID", memberID))
	}

	var claim model.Claim
	if err := docSnap.DataTo(&claim); err != nil {
		return nil, goerr.Wrap(err, "failed to decode claim", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &claim, nil
}

func (r *claimRepository) ListByMember(ctx context.Context, memberID types.MemberID, opts ...interfaces.ListClaimOption) ([]*model.Claim, error) {
	cfg := interfaces.BuildListClaimConfig(opts...)

	query := r.client.Collection(r.collection()).
		Where("MemberID", "==", memberID.String())
	if cfg.Status() != nil {
		query = query.Where("Status", "==", cfg.Status().String())
	}
	query = query.
		OrderBy("SubmittedAt", firestore.Desc).
		OrderBy("ID", firestore.Desc).
		Offset(cfg.Offset()).
		Limit(cfg.Limit())

	return r.queryClaims(ctx, query)
}

func (r *claimRepository) ListByStatus(ctx context.Context, claimStatus types.ClaimStatus, opts ...interfaces.ListClaimOption) ([]*model.Claim, error) {
	cfg := interfaces.BuildListClaimConfig(opts...)

	// FIFO by submission time, ties broken by claim ID
	query := r.client.Collection(r.collection()).
		Where("Status", "==", claimStatus.String()).
		OrderBy("SubmittedAt", firestore.Asc).
		OrderBy("ID", firestore.Asc).
		Offset(cfg.Offset()).
		Limit(cfg.Limit())

	return r.queryClaims(ctx, query)
}

func (r *claimRepository) queryClaims(ctx context.Context, query firestore.Query) ([]*model.Claim, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	claims := []*model.Claim{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate claims")
		}

		var claim model.Claim
		if err := docSnap.DataTo(&claim); err != nil {
			return nil, goerr.Wrap(err, "failed to decode claim", goerr.V("doc_id", docSnap.Ref.ID))
		}

		claims = append(claims, &claim)
	}

	return claims, nil
}

func (r *claimRepository) Transition(ctx context.Context, id types.ClaimID, expected []types.ClaimStatus, apply func(claim *model.Claim) error) (*model.Claim, error) {
	docRef := r.client.Collection(r.collection()).Doc(id.String())

	var updated *model.Claim
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "claim not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get claim", goerr.V("id", id))
		}

		var claim model.Claim
		if err := docSnap.DataTo(&claim); err != nil {
			return goerr.Wrap(err, "failed to decode claim", goerr.V("id", id))
		}

		if !slices.Contains(expected, claim.Status) {
			return goerr.Wrap(interfaces.ErrStatusConflict, "claim is not in an expected status",
				goerr.V("id", id),
				goerr.V("status", claim.Status),
				goerr.V("expected", expected))
		}

		prev := claim.Status
		if err := apply(&claim); err != nil {
			return err
		}
		if claim.Status != prev && !prev.CanTransitionTo(claim.Status) {
			return goerr.Wrap(interfaces.ErrStatusConflict, "invalid status transition",
				goerr.V("id", id),
				goerr.V("from", prev),
				goerr.V("to", claim.Status))
		}

		updated = &claim
		return tx.Set(docRef, &claim)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
