package interfaces

import (
	"context"

	"github.com/stoa-lab/salescredit/pkg/domain/model"
)

// Extractor turns raw claim text plus bounded conversation history into
// a structured extraction result. Implementations never return an
// error: on provider failure or timeout they return the deterministic
// fallback result with the Fallback marker set, so the pipeline always
// completes a decision.
type Extractor interface {
	Extract(ctx context.Context, text string, turns []model.ConversationTurn) *model.ExtractionResult
}
