package types

import "fmt"

// EntryType represents the kind of a ledger entry
type EntryType string

const (
	EntryTypeEarned     EntryType = "earned"
	EntryTypeBonus      EntryType = "bonus"
	EntryTypeAdjustment EntryType = "adjustment"
	EntryTypeRedemption EntryType = "redemption"
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeEarned, EntryTypeBonus, EntryTypeAdjustment, EntryTypeRedemption:
		return true
	default:
		return false
	}
}

// String returns the string representation of the entry type
func (t EntryType) String() string {
	return string(t)
}

// ParseEntryType parses a string into an EntryType
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid ledger entry type: %s", s)
	}
	return t, nil
}
