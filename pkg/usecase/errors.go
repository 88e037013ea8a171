package usecase

import "errors"

// Sentinel errors for the use case layer. The HTTP controller maps
// these onto response status codes; everything else surfaces as a
// generic failure.
var (
	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Access control errors
	ErrPermissionDenied = errors.New("permission denied")

	// Not found errors
	ErrClaimNotFound = errors.New("claim not found")
	ErrEntryNotFound = errors.New("ledger entry not found")

	// Conflict errors
	ErrDuplicateClaim  = errors.New("duplicate claim submission")
	ErrAlreadyReviewed = errors.New("claim already reviewed")
	ErrAlreadyRedeemed = errors.New("ledger entry already redeemed")
)

// Context keys for error values
const (
	ClaimIDKey  = "claim_id"
	EntryIDKey  = "entry_id"
	MemberIDKey = "member_id"
)
