package types

import "fmt"

// ClaimStatus represents the status of a claim
type ClaimStatus string

const (
	ClaimStatusReceived    ClaimStatus = "RECEIVED"
	ClaimStatusPending     ClaimStatus = "PENDING"
	ClaimStatusUnderReview ClaimStatus = "UNDER_REVIEW"
	ClaimStatusApproved    ClaimStatus = "APPROVED"
	ClaimStatusRejected    ClaimStatus = "REJECTED"
)

// AllClaimStatuses returns all valid claim statuses
func AllClaimStatuses() []ClaimStatus {
	return []ClaimStatus{
		ClaimStatusReceived,
		ClaimStatusPending,
		ClaimStatusUnderReview,
		ClaimStatusApproved,
		ClaimStatusRejected,
	}
}

// IsValid checks if the claim status is valid
func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusReceived,
		ClaimStatusPending,
		ClaimStatusUnderReview,
		ClaimStatusApproved,
		ClaimStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status can never be left again
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

// CanTransitionTo reports whether the transition from s to next is
// allowed by the claim state machine. Terminal statuses have no outgoing
// transitions.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	switch s {
	case ClaimStatusReceived:
		return next == ClaimStatusPending || next == ClaimStatusApproved
	case ClaimStatusPending:
		return next == ClaimStatusUnderReview || next == ClaimStatusApproved || next == ClaimStatusRejected
	case ClaimStatusUnderReview:
		return next == ClaimStatusApproved || next == ClaimStatusRejected
	default:
		return false
	}
}

// String returns the string representation of the claim status
func (s ClaimStatus) String() string {
	return string(s)
}

// ParseClaimStatus parses a string into a ClaimStatus
func ParseClaimStatus(s string) (ClaimStatus, error) {
	status := ClaimStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid claim status: %s", s)
	}
	return status, nil
}
