package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

type entryResponse struct {
	ID         string     `json:"id"`
	ClaimID    string     `json:"claimId,omitempty"`
	Amount     string     `json:"amount"`
	Type       string     `json:"type"`
	Note       string     `json:"note,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Redeemed   bool       `json:"redeemed"`
	RedeemedAt *time.Time `json:"redeemedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func toEntryResponse(e *model.LedgerEntry) entryResponse {
	resp := entryResponse{
		ID:        e.ID.String(),
		ClaimID:   e.ClaimID.String(),
		Amount:    e.Amount.String(),
		Type:      e.Type.String(),
		Note:      e.Note,
		Redeemed:  e.Redeemed,
		CreatedAt: e.CreatedAt,
	}
	if !e.ExpiresAt.IsZero() {
		resp.ExpiresAt = &e.ExpiresAt
	}
	if !e.RedeemedAt.IsZero() {
		resp.RedeemedAt = &e.RedeemedAt
	}
	return resp
}

type balanceResponse struct {
	MemberID  string          `json:"memberId"`
	Available string          `json:"available"`
	Entries   []entryResponse `json:"entries"`
}

func toBalanceResponse(b *model.Balance) balanceResponse {
	resp := balanceResponse{
		MemberID:  b.MemberID.String(),
		Available: b.Available.String(),
		Entries:   make([]entryResponse, len(b.Entries)),
	}
	for i, e := range b.Entries {
		resp.Entries[i] = toEntryResponse(e)
	}
	return resp
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.uc.GetBalance(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toBalanceResponse(balance))
}

func (s *Server) redeemEntry(w http.ResponseWriter, r *http.Request) {
	id := types.EntryID(chi.URLParam(r, "entryID"))

	entry, err := s.uc.Redeem(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toEntryResponse(entry))
}
