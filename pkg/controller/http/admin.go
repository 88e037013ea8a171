package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/usecase"
)

type reviewClaimResponse struct {
	ID             string    `json:"id"`
	MemberID       string    `json:"memberId"`
	Category       string    `json:"category,omitempty"`
	Status         string    `json:"status"`
	Confidence     float64   `json:"confidence"`
	Fallback       bool      `json:"fallback,omitempty"`
	RawText        string    `json:"rawText"`
	ComputedAmount string    `json:"computedAmount"`
	ApprovedAmount string    `json:"approvedAmount,omitempty"`
	ReviewerID     string    `json:"reviewerId,omitempty"`
	ReviewNotes    string    `json:"reviewNotes,omitempty"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func toReviewClaimResponse(c *model.Claim) reviewClaimResponse {
	resp := reviewClaimResponse{
		ID:             c.ID.String(),
		MemberID:       c.MemberID.String(),
		Category:       c.Category.String(),
		Status:         c.Status.String(),
		Confidence:     c.Confidence.Float(),
		Fallback:       c.ExtractionFallback,
		RawText:        c.RawText,
		ComputedAmount: c.ComputedAmount.String(),
		ReviewerID:     c.ReviewerID.String(),
		ReviewNotes:    c.ReviewNotes,
		SubmittedAt:    c.SubmittedAt,
	}
	if c.ApprovedAmount != nil {
		resp.ApprovedAmount = c.ApprovedAmount.String()
	}
	return resp
}

func (s *Server) listPendingClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := s.uc.ListPendingClaims(r.Context(), queryPage(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := make([]reviewClaimResponse, len(claims))
	for i, c := range claims {
		resp[i] = toReviewClaimResponse(c)
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"claims": resp})
}

func (s *Server) startReview(w http.ResponseWriter, r *http.Request) {
	id := types.ClaimID(chi.URLParam(r, "claimID"))

	claim, err := s.uc.StartReview(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toReviewClaimResponse(claim))
}

type reviewRequest struct {
	Decision            string `json:"decision"` // "approve" or "reject"
	OverrideAmountCents *int64 `json:"overrideAmountCents,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

func (s *Server) reviewClaim(w http.ResponseWriter, r *http.Request) {
	id := types.ClaimID(chi.URLParam(r, "claimID"))

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	input := &usecase.ReviewClaimInput{
		ClaimID: id,
		Notes:   req.Notes,
	}
	switch req.Decision {
	case "approve":
		input.Approve = true
	case "reject":
	default:
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "decision must be approve or reject",
			goerr.V("decision", req.Decision)))
		return
	}
	if req.OverrideAmountCents != nil {
		amount := types.Amount(*req.OverrideAmountCents)
		input.AmountOverride = &amount
	}

	claim, err := s.uc.ReviewClaim(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toReviewClaimResponse(claim))
}

type adjustRequest struct {
	MemberID    string `json:"memberId"`
	AmountCents int64  `json:"amountCents"`
	EntryType   string `json:"entryType"` // "bonus" or "adjustment"
	Note        string `json:"note,omitempty"`
}

func (s *Server) adjustLedger(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	entry, err := s.uc.Adjust(r.Context(), &usecase.AdjustInput{
		MemberID: types.MemberID(req.MemberID),
		Amount:   types.Amount(req.AmountCents),
		Type:     types.EntryType(req.EntryType),
		Note:     req.Note,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toEntryResponse(entry))
}

func (s *Server) getMemberBalance(w http.ResponseWriter, r *http.Request) {
	memberID := types.MemberID(chi.URLParam(r, "memberID"))

	balance, err := s.uc.GetMemberBalance(r.Context(), memberID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toBalanceResponse(balance))
}
