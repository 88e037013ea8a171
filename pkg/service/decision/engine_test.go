package decision_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/stoa-lab/salescredit/pkg/domain/model/config"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/service/decision"
)

func TestEvaluate(t *testing.T) {
	engine := decision.NewEngine(config.Default())

	t.Run("auto-approves at exact threshold and ceiling", func(t *testing.T) {
		outcome := engine.Evaluate(0.80, 2000)
		gt.Value(t, outcome.Status).Equal(types.ClaimStatusApproved)
		gt.Bool(t, strings.HasPrefix(outcome.Rule, "auto-approve")).True()
	})

	t.Run("queues just below confidence threshold", func(t *testing.T) {
		outcome := engine.Evaluate(0.79, 500)
		gt.Value(t, outcome.Status).Equal(types.ClaimStatusPending)
		gt.Bool(t, strings.Contains(outcome.Rule, "confidence")).True()
	})

	t.Run("queues just above amount ceiling", func(t *testing.T) {
		outcome := engine.Evaluate(0.99, 2001)
		gt.Value(t, outcome.Status).Equal(types.ClaimStatusPending)
		gt.Bool(t, strings.Contains(outcome.Rule, "ceiling")).True()
	})

	t.Run("queues when both conditions fail", func(t *testing.T) {
		outcome := engine.Evaluate(0.10, 9999)
		gt.Value(t, outcome.Status).Equal(types.ClaimStatusPending)
	})

	t.Run("rule is always recorded", func(t *testing.T) {
		gt.Value(t, engine.Evaluate(0.9, 100).Rule).NotEqual("")
		gt.Value(t, engine.Evaluate(0.1, 100).Rule).NotEqual("")
	})
}
