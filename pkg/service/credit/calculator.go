package credit

import (
	"math"

	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/model/config"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// Calculator computes credit amounts from the rate table and modifiers.
// It is a pure function of its inputs: no I/O, no clock, no randomness,
// so recomputing from a stored claim always reproduces the same amount.
type Calculator struct {
	cfg *config.CreditConfig
}

// NewCalculator creates a calculator over the given configuration
func NewCalculator(cfg *config.CreditConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate returns the credit amount for one claim.
//
// base is saleValue x category rate, or the category's default base when
// no sale value is known. Modifiers compose multiplicatively, confidence
// scales the result, and rounding to cents happens exactly once after
// all multipliers are applied. Intermediate rounding would introduce
// compounding error. The cap is applied last.
func (c *Calculator) Calculate(category types.Category, saleValue types.Amount, mods model.Modifiers, confidence types.Confidence) types.Amount {
	rate, ok := c.cfg.Rates[category]
	if !ok {
		return 0
	}

	var baseCents float64
	if saleValue > 0 {
		baseCents = float64(saleValue.Cents()) * rate.Rate
	} else {
		baseCents = float64(rate.DefaultBase.Cents())
	}

	raw := baseCents * c.multiplier(saleValue, mods) * confidence.Clamp().Float()

	rounded := types.Amount(math.Round(raw))
	if rounded > c.cfg.Cap {
		return c.cfg.Cap
	}
	return rounded
}

func (c *Calculator) multiplier(saleValue types.Amount, mods model.Modifiers) float64 {
	m := 1.0

	switch mods.Tier.Normalize() {
	case types.TierPremium:
		m *= c.cfg.PremiumTierMultiplier
	case types.TierTop:
		m *= c.cfg.TopTierMultiplier
	}
	if mods.FirstTimeCustomer {
		m *= c.cfg.FirstTimeMultiplier
	}
	if saleValue > c.cfg.HighValueThreshold {
		m *= c.cfg.HighValueMultiplier
	}
	if mods.RepeatCustomer {
		m *= c.cfg.RepeatCustomerMultiplier
	}

	return m
}
