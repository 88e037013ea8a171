package types

import "fmt"

// MemberTier represents the membership level used as a credit modifier
type MemberTier string

const (
	TierStandard MemberTier = "standard"
	TierPremium  MemberTier = "premium"
	TierTop      MemberTier = "top"
)

// IsValid checks if the member tier is valid
func (t MemberTier) IsValid() bool {
	switch t {
	case TierStandard, TierPremium, TierTop:
		return true
	default:
		return false
	}
}

// Normalize returns the tier, treating empty as TierStandard
func (t MemberTier) Normalize() MemberTier {
	if t == "" {
		return TierStandard
	}
	return t
}

// String returns the string representation of the member tier
func (t MemberTier) String() string {
	return string(t)
}

// ParseMemberTier parses a string into a MemberTier
func ParseMemberTier(s string) (MemberTier, error) {
	t := MemberTier(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid member tier: %s", s)
	}
	return t, nil
}
