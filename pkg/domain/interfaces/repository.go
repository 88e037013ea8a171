package interfaces

import "errors"

// Repository defines the interface for data persistence
type Repository interface {
	Claim() ClaimRepository
	Ledger() LedgerRepository
	Close() error
}

// Sentinel errors shared by all repository backends. Use cases map
// these onto caller-facing error kinds.
var (
	ErrNotFound = errors.New("record not found")
	// ErrStatusConflict is returned by Transition when the claim is not
	// in any of the expected statuses.
	ErrStatusConflict = errors.New("claim status conflict")
	// ErrAlreadyRedeemed is returned by Redeem when the compare-and-set
	// on the redeemed flag fails.
	ErrAlreadyRedeemed = errors.New("ledger entry already redeemed")
)
