package interfaces

import (
	"context"

	"github.com/stoa-lab/salescredit/pkg/domain/model"
)

// Notifier is the fire-and-forget event sink for claim decisions. The
// pipeline never awaits or depends on delivery.
type Notifier interface {
	NotifyClaimDecided(ctx context.Context, claim *model.Claim) error
}
