package decision

import (
	"fmt"

	"github.com/stoa-lab/salescredit/pkg/domain/model/config"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// Outcome is the result of rule evaluation for one claim. Rule is a
// human-readable record of which rule fired, stored into the claim's
// audit trail so the automated decision stays explainable.
type Outcome struct {
	Status types.ClaimStatus
	Rule   string
}

// Engine evaluates the auto-approval rule. Evaluation is synchronous
// and non-blocking; all thresholds come from read-only configuration.
type Engine struct {
	cfg *config.CreditConfig
}

// NewEngine creates a decision engine over the given configuration
func NewEngine(cfg *config.CreditConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate decides between immediate approval and queuing for review.
// A claim auto-approves when confidence meets the threshold (inclusive)
// and the amount does not exceed the ceiling.
func (e *Engine) Evaluate(confidence types.Confidence, amount types.Amount) Outcome {
	if confidence >= e.cfg.AutoApproveThreshold && amount <= e.cfg.AutoApproveCeiling {
		return Outcome{
			Status: types.ClaimStatusApproved,
			Rule: fmt.Sprintf("auto-approve: confidence %.2f >= %.2f and amount %s <= %s",
				confidence.Float(), e.cfg.AutoApproveThreshold.Float(), amount, e.cfg.AutoApproveCeiling),
		}
	}

	if confidence < e.cfg.AutoApproveThreshold {
		return Outcome{
			Status: types.ClaimStatusPending,
			Rule: fmt.Sprintf("queue for review: confidence %.2f < %.2f",
				confidence.Float(), e.cfg.AutoApproveThreshold.Float()),
		}
	}

	return Outcome{
		Status: types.ClaimStatusPending,
		Rule: fmt.Sprintf("queue for review: amount %s > ceiling %s",
			amount, e.cfg.AutoApproveCeiling),
	}
}
