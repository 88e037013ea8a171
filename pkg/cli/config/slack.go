package config

import (
	"github.com/stoa-lab/salescredit/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the Slack decision notifier
type Slack struct {
	webhookURL string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for claim decision notifications",
			Category:    "Notification",
			Sources:     cli.EnvVars("SALESCREDIT_SLACK_WEBHOOK_URL"),
			Destination: &s.webhookURL,
		},
	}
}

// IsConfigured returns true when a webhook URL is set
func (s *Slack) IsConfigured() bool {
	return s.webhookURL != ""
}

// Configure creates the webhook notifier, or nil when not configured
func (s *Slack) Configure() (*notify.SlackNotifier, error) {
	if s.webhookURL == "" {
		return nil, nil
	}
	return notify.NewSlack(s.webhookURL)
}
