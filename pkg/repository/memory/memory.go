package memory

import (
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
)

// Memory is the in-memory repository backend used for development and
// tests. It honors the same conditional-update contract as the
// Firestore backend.
type Memory struct {
	claim  *claimRepository
	ledger *ledgerRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		claim:  newClaimRepository(),
		ledger: newLedgerRepository(),
	}
}

func (m *Memory) Claim() interfaces.ClaimRepository {
	return m.claim
}

func (m *Memory) Ledger() interfaces.LedgerRepository {
	return m.ledger
}

func (m *Memory) Close() error {
	return nil
}
