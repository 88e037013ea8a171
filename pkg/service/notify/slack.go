package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// SlackNotifier posts claim decisions to a Slack incoming webhook. The
// pipeline dispatches notifications fire-and-forget; a delivery failure
// is logged and never affects the claim.
type SlackNotifier struct {
	webhookURL string
}

var _ interfaces.Notifier = &SlackNotifier{}

// NewSlack creates a webhook-backed notifier
func NewSlack(webhookURL string) (*SlackNotifier, error) {
	if webhookURL == "" {
		return nil, goerr.New("slack webhook URL is required")
	}
	return &SlackNotifier{webhookURL: webhookURL}, nil
}

// NotifyClaimDecided posts one message describing the claim decision
func (n *SlackNotifier) NotifyClaimDecided(ctx context.Context, claim *model.Claim) error {
	msg := &slack.WebhookMessage{
		Text: formatDecision(claim),
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post claim notification",
			goerr.V("claimID", claim.ID),
			goerr.V("status", claim.Status))
	}

	return nil
}

func formatDecision(claim *model.Claim) string {
	switch claim.Status {
	case types.ClaimStatusApproved:
		amount := claim.ComputedAmount
		if claim.ApprovedAmount != nil {
			amount = *claim.ApprovedAmount
		}
		return fmt.Sprintf(":white_check_mark: Claim %s approved: %s %s credit for member %s",
			claim.ID, amount, claim.Category, claim.MemberID)
	case types.ClaimStatusRejected:
		return fmt.Sprintf(":x: Claim %s rejected for member %s", claim.ID, claim.MemberID)
	default:
		return fmt.Sprintf(":hourglass: Claim %s queued for review (member %s, %s)",
			claim.ID, claim.MemberID, claim.ComputedAmount)
	}
}
