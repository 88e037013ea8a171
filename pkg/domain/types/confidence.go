package types

// Confidence is a 0.0-1.0 score describing how reliable extracted claim
// details are. It scales the awarded amount and gates auto-approval.
type Confidence float64

// Clamp forces the confidence into [0, 1]. Out-of-range values from the
// extraction provider or a client are never stored as-is.
func (c Confidence) Clamp() Confidence {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// InRange reports whether the confidence is already within [0, 1]
func (c Confidence) InRange() bool {
	return c >= 0 && c <= 1
}

// Float returns the confidence as a float64
func (c Confidence) Float() float64 {
	return float64(c)
}
