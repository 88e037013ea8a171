package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/stoa-lab/salescredit/pkg/cli/config"
	domainConfig "github.com/stoa-lab/salescredit/pkg/domain/model/config"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// loadCredit parses the flag set with the given TOML file and runs
// Configure, the same path the serve command takes
func loadCredit(t *testing.T, toml string) (*domainConfig.CreditConfig, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "credit.toml")
	gt.NoError(t, os.WriteFile(path, []byte(toml), 0o600)).Required()

	var creditCfg config.Credit
	var cfg *domainConfig.CreditConfig
	var cfgErr error
	cmd := &cli.Command{
		Name:  "test",
		Flags: creditCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, cfgErr = creditCfg.Configure()
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), []string{"test", "--credit-config", path})).Required()
	return cfg, cfgErr
}

func TestCreditConfigure(t *testing.T) {
	t.Run("defaults apply without a file", func(t *testing.T) {
		var creditCfg config.Credit
		cfg, err := creditCfg.Configure()
		gt.NoError(t, err).Required()

		gt.Value(t, cfg.Cap).Equal(types.Amount(7500))
		gt.Value(t, cfg.AutoApproveThreshold).Equal(types.Confidence(0.80))
		gt.Value(t, cfg.Rates[types.CategoryConsultation].Rate).Equal(0.12)
	})

	t.Run("file overrides merge over defaults", func(t *testing.T) {
		cfg, err := loadCredit(t, `
cap_cents = 10000
auto_approve_threshold = 0.9
dedup_window = "5m"
entry_expiry_days = 30

[rates.consultation]
rate = 0.15
`)
		gt.NoError(t, err).Required()

		gt.Value(t, cfg.Cap).Equal(types.Amount(10000))
		gt.Value(t, cfg.AutoApproveThreshold).Equal(types.Confidence(0.9))
		gt.Value(t, cfg.DedupWindow).Equal(5 * time.Minute)
		gt.Value(t, cfg.EntryExpiry).Equal(30 * 24 * time.Hour)
		gt.Value(t, cfg.Rates[types.CategoryConsultation].Rate).Equal(0.15)
		// Untouched fields keep their defaults
		gt.Value(t, cfg.Rates[types.CategoryConsultation].DefaultBase).Equal(types.Amount(600))
		gt.Value(t, cfg.Rates[types.CategoryAssistance].Rate).Equal(0.07)
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		_, err := loadCredit(t, `
[rates.assistance]
rate = 1.5
`)
		gt.Value(t, err).NotNil()
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		_, err := loadCredit(t, `
[rates.telepathy]
rate = 0.5
`)
		gt.Value(t, err).NotNil()
	})
}
