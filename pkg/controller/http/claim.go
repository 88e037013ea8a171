package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/usecase"
)

type turnRequest struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

type modifiersRequest struct {
	Tier              string `json:"tier"`
	FirstTimeCustomer bool   `json:"firstTimeCustomer"`
	RepeatCustomer    bool   `json:"repeatCustomer"`
}

func (m *modifiersRequest) toModel() (model.Modifiers, error) {
	tier := types.MemberTier(m.Tier).Normalize()
	if !tier.IsValid() {
		return model.Modifiers{}, goerr.Wrap(usecase.ErrInvalidInput, "invalid member tier", goerr.V("tier", m.Tier))
	}
	return model.Modifiers{
		Tier:              tier,
		FirstTimeCustomer: m.FirstTimeCustomer,
		RepeatCustomer:    m.RepeatCustomer,
	}, nil
}

func toTurns(reqs []turnRequest) []model.ConversationTurn {
	turns := make([]model.ConversationTurn, len(reqs))
	for i, t := range reqs {
		turns[i] = model.ConversationTurn{
			Speaker: model.TurnSpeaker(t.Speaker),
			Text:    t.Text,
			At:      t.At,
		}
	}
	return turns
}

type submitClaimRequest struct {
	Channel        string           `json:"channel"`
	Text           string           `json:"text"`
	ConversationID string           `json:"conversationId,omitempty"`
	Turns          []turnRequest    `json:"turns,omitempty"`
	SaleValueCents int64            `json:"saleValueCents,omitempty"`
	Modifiers      modifiersRequest `json:"modifiers"`
}

func (s *Server) submitClaim(w http.ResponseWriter, r *http.Request) {
	var req submitClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	mods, err := req.Modifiers.toModel()
	if err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := s.uc.SubmitClaim(r.Context(), &usecase.SubmitClaimInput{
		Channel:        types.Channel(req.Channel),
		Text:           req.Text,
		ConversationID: types.ConversationID(req.ConversationID),
		Turns:          toTurns(req.Turns),
		SaleValue:      types.Amount(req.SaleValueCents),
		Modifiers:      mods,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, summary)
}

type processTurnRequest struct {
	ConversationID string        `json:"conversationId"`
	Text           string        `json:"text"`
	Turns          []turnRequest `json:"turns,omitempty"`
}

type processTurnResponse struct {
	Category         string  `json:"category"`
	Confidence       float64 `json:"confidence"`
	NeedsFollowUp    bool    `json:"needsFollowUp"`
	FollowUpQuestion string  `json:"followUpQuestion,omitempty"`
	ReplyText        string  `json:"replyText,omitempty"`
	Fallback         bool    `json:"fallback,omitempty"`
}

func (s *Server) processTurn(w http.ResponseWriter, r *http.Request) {
	var req processTurnRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.uc.ProcessTurn(r.Context(),
		types.ConversationID(req.ConversationID), req.Text, toTurns(req.Turns))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, processTurnResponse{
		Category:         result.Category.String(),
		Confidence:       result.Confidence.Float(),
		NeedsFollowUp:    result.NeedsFollowUp,
		FollowUpQuestion: result.FollowUpQuestion,
		ReplyText:        result.ReplyText,
		Fallback:         result.Fallback,
	})
}

type extractionRequest struct {
	Category         string  `json:"category"`
	Confidence       float64 `json:"confidence"`
	NeedsFollowUp    bool    `json:"needsFollowUp"`
	FollowUpQuestion string  `json:"followUpQuestion,omitempty"`

	Recommendation *model.RecommendationDetail `json:"recommendation,omitempty"`
	Assistance     *model.AssistanceDetail     `json:"assistance,omitempty"`
	Consultation   *model.ConsultationDetail   `json:"consultation,omitempty"`
	ProblemSolving *model.ProblemSolvingDetail `json:"problemSolving,omitempty"`
}

type submitProcessedRequest struct {
	Channel        string            `json:"channel"`
	Text           string            `json:"text"`
	Extraction     extractionRequest `json:"extraction"`
	SaleValueCents int64             `json:"saleValueCents,omitempty"`
	Modifiers      modifiersRequest  `json:"modifiers"`
}

func (s *Server) submitProcessed(w http.ResponseWriter, r *http.Request) {
	var req submitProcessedRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	mods, err := req.Modifiers.toModel()
	if err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := s.uc.SubmitProcessed(r.Context(), &usecase.SubmitProcessedInput{
		Channel: types.Channel(req.Channel),
		Text:    req.Text,
		Extraction: &model.ExtractionResult{
			Category:         types.Category(req.Extraction.Category),
			Confidence:       types.Confidence(req.Extraction.Confidence),
			NeedsFollowUp:    req.Extraction.NeedsFollowUp,
			FollowUpQuestion: req.Extraction.FollowUpQuestion,
			Recommendation:   req.Extraction.Recommendation,
			Assistance:       req.Extraction.Assistance,
			Consultation:     req.Extraction.Consultation,
			ProblemSolving:   req.Extraction.ProblemSolving,
		},
		SaleValue: types.Amount(req.SaleValueCents),
		Modifiers: mods,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, summary)
}

func (s *Server) listClaims(w http.ResponseWriter, r *http.Request) {
	var status *types.ClaimStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := types.ParseClaimStatus(raw)
		if err != nil {
			handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid status filter", goerr.V("status", raw)))
			return
		}
		status = &parsed
	}

	summaries, err := s.uc.ListOwnClaims(r.Context(), status, queryPage(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"claims": summaries})
}

func (s *Server) getClaim(w http.ResponseWriter, r *http.Request) {
	id := types.ClaimID(chi.URLParam(r, "claimID"))

	claim, err := s.uc.GetClaim(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, claim.Summary())
}

func queryPage(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0
	}
	return page
}
