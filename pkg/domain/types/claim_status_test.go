package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
)

func TestClaimStatusTransitions(t *testing.T) {
	t.Run("received decides into pending or approved", func(t *testing.T) {
		gt.Bool(t, types.ClaimStatusReceived.CanTransitionTo(types.ClaimStatusPending)).True()
		gt.Bool(t, types.ClaimStatusReceived.CanTransitionTo(types.ClaimStatusApproved)).True()
		gt.Bool(t, types.ClaimStatusReceived.CanTransitionTo(types.ClaimStatusRejected)).False()
		gt.Bool(t, types.ClaimStatusReceived.CanTransitionTo(types.ClaimStatusUnderReview)).False()
	})

	t.Run("pending claims can be picked up or decided", func(t *testing.T) {
		gt.Bool(t, types.ClaimStatusPending.CanTransitionTo(types.ClaimStatusUnderReview)).True()
		gt.Bool(t, types.ClaimStatusPending.CanTransitionTo(types.ClaimStatusApproved)).True()
		gt.Bool(t, types.ClaimStatusPending.CanTransitionTo(types.ClaimStatusRejected)).True()
		gt.Bool(t, types.ClaimStatusPending.CanTransitionTo(types.ClaimStatusReceived)).False()
	})

	t.Run("terminal statuses have no outgoing transitions", func(t *testing.T) {
		for _, terminal := range []types.ClaimStatus{types.ClaimStatusApproved, types.ClaimStatusRejected} {
			gt.Bool(t, terminal.IsTerminal()).True()
			for _, next := range types.AllClaimStatuses() {
				gt.Bool(t, terminal.CanTransitionTo(next)).False()
			}
		}
	})
}

func TestAmountString(t *testing.T) {
	gt.Value(t, types.Amount(800).String()).Equal("$8.00")
	gt.Value(t, types.Amount(5).String()).Equal("$0.05")
	gt.Value(t, types.Amount(0).String()).Equal("$0.00")
	gt.Value(t, types.Amount(-250).String()).Equal("-$2.50")
	gt.Value(t, types.Amount(123456).String()).Equal("$1234.56")
}

func TestConfidenceClamp(t *testing.T) {
	gt.Value(t, types.Confidence(-0.5).Clamp()).Equal(types.Confidence(0))
	gt.Value(t, types.Confidence(1.5).Clamp()).Equal(types.Confidence(1))
	gt.Value(t, types.Confidence(0.42).Clamp()).Equal(types.Confidence(0.42))
	gt.Bool(t, types.Confidence(0.42).InRange()).True()
	gt.Bool(t, types.Confidence(1.01).InRange()).False()
}
