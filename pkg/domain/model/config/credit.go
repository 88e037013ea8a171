package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// CategoryRate holds the credit parameters for one assistance category
type CategoryRate struct {
	// Rate is the share of the sale value credited, e.g. 0.12 for 12%
	Rate float64
	// DefaultBase is used instead of Rate when no sale value is known
	DefaultBase types.Amount
}

// CreditConfig is the read-only rate table and decision thresholds.
// It is loaded once per process; nothing mutates it afterwards.
type CreditConfig struct {
	Rates map[types.Category]CategoryRate

	// Multiplicative modifiers
	PremiumTierMultiplier    float64
	TopTierMultiplier        float64
	FirstTimeMultiplier      float64
	HighValueMultiplier      float64
	RepeatCustomerMultiplier float64

	// HighValueThreshold is the sale value above which the high-value
	// modifier applies
	HighValueThreshold types.Amount

	// Cap is the maximum credit per claim, applied after confidence
	// scaling
	Cap types.Amount

	// Auto-approval bounds
	AutoApproveThreshold types.Confidence
	AutoApproveCeiling   types.Amount

	// Submission guards
	MinTextLength int
	DedupWindow   time.Duration

	// EntryExpiry is how long an earned ledger entry stays redeemable
	EntryExpiry time.Duration
}

// Default returns the built-in credit configuration
func Default() *CreditConfig {
	return &CreditConfig{
		Rates: map[types.Category]CategoryRate{
			types.CategoryRecommendation: {Rate: 0.03, DefaultBase: 150},
			types.CategoryAssistance:     {Rate: 0.07, DefaultBase: 350},
			types.CategoryConsultation:   {Rate: 0.12, DefaultBase: 600},
			types.CategoryProblemSolving: {Rate: 0.18, DefaultBase: 900},
		},
		PremiumTierMultiplier:    1.2,
		TopTierMultiplier:        1.5,
		FirstTimeMultiplier:      1.3,
		HighValueMultiplier:      1.4,
		RepeatCustomerMultiplier: 1.1,
		HighValueThreshold:       20000,
		Cap:                      7500,
		AutoApproveThreshold:     0.80,
		AutoApproveCeiling:       2000,
		MinTextLength:            10,
		DedupWindow:              2 * time.Minute,
		EntryExpiry:              365 * 24 * time.Hour,
	}
}

// Validate checks the configuration is internally consistent
func (c *CreditConfig) Validate() error {
	for _, cat := range types.AllCategories() {
		rate, ok := c.Rates[cat]
		if !ok {
			return goerr.New("missing rate for category", goerr.V("category", cat))
		}
		if rate.Rate <= 0 || rate.Rate >= 1 {
			return goerr.New("category rate must be in (0, 1)",
				goerr.V("category", cat), goerr.V("rate", rate.Rate))
		}
		if rate.DefaultBase <= 0 {
			return goerr.New("category default base must be positive",
				goerr.V("category", cat), goerr.V("base", rate.DefaultBase))
		}
	}
	for name, m := range map[string]float64{
		"premium_tier":    c.PremiumTierMultiplier,
		"top_tier":        c.TopTierMultiplier,
		"first_time":      c.FirstTimeMultiplier,
		"high_value":      c.HighValueMultiplier,
		"repeat_customer": c.RepeatCustomerMultiplier,
	} {
		if m < 1 {
			return goerr.New("modifier multiplier must be >= 1", goerr.V("modifier", name), goerr.V("value", m))
		}
	}
	if c.Cap <= 0 {
		return goerr.New("credit cap must be positive", goerr.V("cap", c.Cap))
	}
	if !c.AutoApproveThreshold.InRange() {
		return goerr.New("auto-approve threshold must be in [0, 1]",
			goerr.V("threshold", c.AutoApproveThreshold))
	}
	if c.AutoApproveCeiling <= 0 {
		return goerr.New("auto-approve ceiling must be positive", goerr.V("ceiling", c.AutoApproveCeiling))
	}
	if c.MinTextLength <= 0 {
		return goerr.New("minimum text length must be positive", goerr.V("min", c.MinTextLength))
	}
	if c.DedupWindow <= 0 {
		return goerr.New("dedup window must be positive", goerr.V("window", c.DedupWindow))
	}
	if c.EntryExpiry <= 0 {
		return goerr.New("entry expiry must be positive", goerr.V("expiry", c.EntryExpiry))
	}
	return nil
}
