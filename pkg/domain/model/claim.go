package model

import (
	"time"

	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

// Claim represents one member assertion of sales assistance. Claims are
// an append-mostly audit trail: they are never deleted, and once a claim
// reaches a terminal status the record is immutable.
type Claim struct {
	ID             types.ClaimID
	MemberID       types.MemberID
	Channel        types.Channel
	RawText        string
	ConversationID types.ConversationID
	Turns          []ConversationTurn
	Fingerprint    string

	Category           types.Category
	Confidence         types.Confidence
	ExtractionFallback bool

	SaleValue      types.Amount // 0 when no POS correlation is known
	Modifiers      Modifiers
	ComputedAmount types.Amount
	ApprovedAmount *types.Amount

	Status      types.ClaimStatus
	ReviewerID  types.MemberID
	ReviewNotes string
	Audit       []AuditEntry

	SubmittedAt time.Time
	DecidedAt   time.Time
	ReviewedAt  time.Time
}

// Modifiers are the multiplicative credit modifiers attached to a claim.
// They are captured at submission so the computed amount stays
// reproducible from the stored claim alone.
type Modifiers struct {
	Tier              types.MemberTier
	FirstTimeCustomer bool
	RepeatCustomer    bool
}

// AuditEntry records one automated or manual decision on a claim,
// including which rule fired. This is what makes an automated financial
// decision explainable in a later dispute.
type AuditEntry struct {
	At    time.Time
	Actor types.MemberID // empty for automated decisions
	Event string
	Rule  string
	Note  string
}

// AddAudit appends an audit entry to the claim
func (c *Claim) AddAudit(at time.Time, actor types.MemberID, event, rule, note string) {
	c.Audit = append(c.Audit, AuditEntry{
		At:    at,
		Actor: actor,
		Event: event,
		Rule:  rule,
		Note:  note,
	})
}

// ClaimSummary is the boundary representation of a claim returned to
// clients
type ClaimSummary struct {
	ID             types.ClaimID     `json:"id"`
	Category       types.Category    `json:"category,omitempty"`
	Status         types.ClaimStatus `json:"status"`
	Confidence     float64           `json:"confidence"`
	ClaimedAmount  string            `json:"claimedAmount"`
	ApprovedAmount string            `json:"approvedAmount,omitempty"`
	SubmittedAt    time.Time         `json:"submittedAt"`
}

// Summary converts the claim to its boundary representation
func (c *Claim) Summary() *ClaimSummary {
	s := &ClaimSummary{
		ID:            c.ID,
		Category:      c.Category,
		Status:        c.Status,
		Confidence:    c.Confidence.Float(),
		ClaimedAmount: c.ComputedAmount.String(),
		SubmittedAt:   c.SubmittedAt,
	}
	if c.ApprovedAmount != nil {
		s.ApprovedAmount = c.ApprovedAmount.String()
	}
	return s
}
