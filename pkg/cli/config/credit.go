package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/stoa-lab/salescredit/pkg/domain/model/config"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Credit holds the CLI flag for the credit rate table file
type Credit struct {
	path string
}

// Flags returns CLI flags for credit configuration
func (c *Credit) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "credit-config",
			Usage:       "Path to credit rate table TOML file (built-in defaults when omitted)",
			Category:    "Credit",
			Sources:     cli.EnvVars("SALESCREDIT_CREDIT_CONFIG"),
			Destination: &c.path,
		},
	}
}

// creditFile is the TOML shape of the credit rate table. Every field is
// optional; omitted fields keep the built-in default.
type creditFile struct {
	Rates map[string]categoryRateFile `toml:"rates"`

	PremiumTierMultiplier    *float64 `toml:"premium_tier_multiplier"`
	TopTierMultiplier        *float64 `toml:"top_tier_multiplier"`
	FirstTimeMultiplier      *float64 `toml:"first_time_multiplier"`
	HighValueMultiplier      *float64 `toml:"high_value_multiplier"`
	RepeatCustomerMultiplier *float64 `toml:"repeat_customer_multiplier"`

	HighValueThresholdCents *int64 `toml:"high_value_threshold_cents"`
	CapCents                *int64 `toml:"cap_cents"`

	AutoApproveThreshold    *float64 `toml:"auto_approve_threshold"`
	AutoApproveCeilingCents *int64   `toml:"auto_approve_ceiling_cents"`

	MinTextLength   *int   `toml:"min_text_length"`
	DedupWindow     string `toml:"dedup_window"`
	EntryExpiryDays *int   `toml:"entry_expiry_days"`
}

type categoryRateFile struct {
	Rate             *float64 `toml:"rate"`
	DefaultBaseCents *int64   `toml:"default_base_cents"`
}

// Configure loads the credit configuration. Without a path it returns
// the built-in defaults.
func (c *Credit) Configure() (*domainConfig.CreditConfig, error) {
	cfg := domainConfig.Default()
	if c.path == "" {
		return cfg, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read credit config file", goerr.V("path", c.path))
	}

	var file creditFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML credit config", goerr.V("path", c.path))
	}

	for name, rate := range file.Rates {
		cat, err := types.ParseCategory(name)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid category in credit config", goerr.V("path", c.path))
		}
		entry := cfg.Rates[cat]
		if rate.Rate != nil {
			entry.Rate = *rate.Rate
		}
		if rate.DefaultBaseCents != nil {
			entry.DefaultBase = types.Amount(*rate.DefaultBaseCents)
		}
		cfg.Rates[cat] = entry
	}

	if file.PremiumTierMultiplier != nil {
		cfg.PremiumTierMultiplier = *file.PremiumTierMultiplier
	}
	if file.TopTierMultiplier != nil {
		cfg.TopTierMultiplier = *file.TopTierMultiplier
	}
	if file.FirstTimeMultiplier != nil {
		cfg.FirstTimeMultiplier = *file.FirstTimeMultiplier
	}
	if file.HighValueMultiplier != nil {
		cfg.HighValueMultiplier = *file.HighValueMultiplier
	}
	if file.RepeatCustomerMultiplier != nil {
		cfg.RepeatCustomerMultiplier = *file.RepeatCustomerMultiplier
	}
	if file.HighValueThresholdCents != nil {
		cfg.HighValueThreshold = types.Amount(*file.HighValueThresholdCents)
	}
	if file.CapCents != nil {
		cfg.Cap = types.Amount(*file.CapCents)
	}
	if file.AutoApproveThreshold != nil {
		cfg.AutoApproveThreshold = types.Confidence(*file.AutoApproveThreshold)
	}
	if file.AutoApproveCeilingCents != nil {
		cfg.AutoApproveCeiling = types.Amount(*file.AutoApproveCeilingCents)
	}
	if file.MinTextLength != nil {
		cfg.MinTextLength = *file.MinTextLength
	}
	if file.DedupWindow != "" {
		window, err := time.ParseDuration(file.DedupWindow)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid dedup window", goerr.V("path", c.path))
		}
		cfg.DedupWindow = window
	}
	if file.EntryExpiryDays != nil {
		cfg.EntryExpiry = time.Duration(*file.EntryExpiryDays) * 24 * time.Hour
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "credit config validation failed", goerr.V("path", c.path))
	}

	return cfg, nil
}
