package types

import "github.com/google/uuid"

// ClaimID represents the unique identifier for a claim
type ClaimID string

// NewClaimID generates a new time-ordered claim ID
func NewClaimID() ClaimID {
	return ClaimID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the claim ID
func (id ClaimID) String() string {
	return string(id)
}

// EntryID represents the unique identifier for a ledger entry
type EntryID string

// NewEntryID generates a new time-ordered ledger entry ID
func NewEntryID() EntryID {
	return EntryID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the entry ID
func (id EntryID) String() string {
	return string(id)
}

// MemberID represents the identifier of a member as issued by the
// identity provider
type MemberID string

// String returns the string representation of the member ID
func (id MemberID) String() string {
	return string(id)
}

// ConversationID identifies a multi-turn conversation. Turns within one
// conversation are processed in arrival order.
type ConversationID string

// String returns the string representation of the conversation ID
func (id ConversationID) String() string {
	return string(id)
}
