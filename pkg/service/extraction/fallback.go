package extraction

import (
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// FallbackConfidence is deliberately below any sane auto-approve
// threshold so fallback claims always land in the review queue.
const FallbackConfidence types.Confidence = 0.30

const fallbackFollowUp = "Could you tell me a bit more about how you helped - which product, and roughly when?"

const fallbackReply = "Thanks! I couldn't quite catch the details, so a teammate will take a look at this one."

// Fallback returns the fixed result substituted when the extraction
// provider fails or times out. It is deterministic: the same fallback
// every time, so the pipeline's behavior under provider outage is
// predictable and testable.
func Fallback() *model.ExtractionResult {
	return &model.ExtractionResult{
		Category:         types.CategoryRecommendation,
		Confidence:       FallbackConfidence,
		NeedsFollowUp:    true,
		FollowUpQuestion: fallbackFollowUp,
		ReplyText:        fallbackReply,
		Fallback:         true,
		Recommendation:   &model.RecommendationDetail{},
	}
}
