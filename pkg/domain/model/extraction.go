package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// ExtractionResult is the structured guess produced by the extraction
// provider for one piece of raw claim text. Detail payloads form a
// closed set of per-category variants so downstream rule evaluation can
// be exhaustive; exactly the variant matching Category is populated.
//
// Fallback marks a deterministic substitute result produced when the
// provider failed or timed out. Callers branch on the marker instead of
// handling a provider error.
type ExtractionResult struct {
	Category         types.Category
	Confidence       types.Confidence
	NeedsFollowUp    bool
	FollowUpQuestion string
	ReplyText        string
	Fallback         bool

	Recommendation *RecommendationDetail
	Assistance     *AssistanceDetail
	Consultation   *ConsultationDetail
	ProblemSolving *ProblemSolvingDetail
}

// RecommendationDetail captures hints for a product recommendation claim
type RecommendationDetail struct {
	Products     []string
	CustomerName string
	TimeHint     string
}

// AssistanceDetail captures hints for a hands-on assistance claim
type AssistanceDetail struct {
	Task         string
	Products     []string
	CustomerName string
	TimeHint     string
}

// ConsultationDetail captures hints for an advisory consultation claim
type ConsultationDetail struct {
	Topic        string
	Products     []string
	CustomerName string
	TimeHint     string
}

// ProblemSolvingDetail captures hints for a problem-solving claim
type ProblemSolvingDetail struct {
	Problem      string
	Resolution   string
	CustomerName string
	TimeHint     string
}

// Validate checks category validity, clamps confidence, and drops any
// detail variant that does not match the category.
func (r *ExtractionResult) Validate() error {
	if !r.Category.IsValid() {
		return goerr.New("invalid extraction category", goerr.V("category", r.Category))
	}
	r.Confidence = r.Confidence.Clamp()

	if r.Category != types.CategoryRecommendation {
		r.Recommendation = nil
	}
	if r.Category != types.CategoryAssistance {
		r.Assistance = nil
	}
	if r.Category != types.CategoryConsultation {
		r.Consultation = nil
	}
	if r.Category != types.CategoryProblemSolving {
		r.ProblemSolving = nil
	}
	return nil
}
