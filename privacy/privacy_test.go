package privacy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/digraph"
	"github.com/syssam/digraph/graph"
	"github.com/syssam/digraph/privacy"
	"github.com/syssam/digraph/storage"
)

// edgeMutation returns a mutation of an OrderDiGraphEdge.
func edgeMutation(t testing.TB, op digraph.Op, next int64, attr any) *storage.Mutation {
	t.Helper()
	ts, err := graph.Synthesize(graph.NewType("Order"), graph.NewType("Event"))
	require.NoError(t, err)
	return storage.NewMutation(op, ts.Edge, nil, storage.Row{"next_state_id": next, "attr_id": attr})
}

func TestDecisionErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		msg    string
	}{
		{name: "Allowf", err: privacy.Allowf("admin %s", "bob"), target: privacy.Allow, msg: "admin bob: digraph/privacy: allow rule"},
		{name: "Denyf", err: privacy.Denyf("edge %d", 3), target: privacy.Deny, msg: "edge 3: digraph/privacy: deny rule"},
		{name: "Skipf", err: privacy.Skipf("no viewer"), target: privacy.Skip, msg: "no viewer: digraph/privacy: skip rule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.target)
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestAlwaysRules(t *testing.T) {
	ctx := context.Background()
	m := edgeMutation(t, digraph.OpCreate, 2, nil)
	assert.ErrorIs(t, privacy.AlwaysAllowRule().EvalMutation(ctx, m), privacy.Allow)
	assert.ErrorIs(t, privacy.AlwaysDenyRule().EvalMutation(ctx, m), privacy.Deny)

	rule := privacy.ContextMutationRule(func(ctx context.Context) error {
		if ctx.Value(ctxKey{}) != nil {
			return privacy.Allow
		}
		return nil
	})
	assert.NoError(t, rule.EvalMutation(ctx, m))
	assert.ErrorIs(t, rule.EvalMutation(context.WithValue(ctx, ctxKey{}, true), m), privacy.Allow)
}

type ctxKey struct{}

func TestMutationOperationRules(t *testing.T) {
	ctx := context.Background()
	create := edgeMutation(t, digraph.OpCreate, 2, nil)
	del := edgeMutation(t, digraph.OpDelete, 2, nil)

	deny := privacy.DenyMutationOperationRule(digraph.OpDelete)
	assert.ErrorIs(t, deny.EvalMutation(ctx, create), privacy.Skip)
	err := deny.EvalMutation(ctx, del)
	assert.ErrorIs(t, err, privacy.Deny)
	assert.Contains(t, err.Error(), "operation OpDelete is not allowed")

	allow := privacy.AllowMutationOperationRule(digraph.OpCreate | digraph.OpUpdate)
	assert.ErrorIs(t, allow.EvalMutation(ctx, create), privacy.Allow)
	assert.ErrorIs(t, allow.EvalMutation(ctx, del), privacy.Skip)

	onType := privacy.OnType(privacy.AlwaysDenyRule(), "OrderDiGraphEdge")
	assert.ErrorIs(t, onType.EvalMutation(ctx, create), privacy.Deny)
	onType = privacy.OnType(privacy.AlwaysDenyRule(), "InvoiceDiGraphEdge")
	assert.ErrorIs(t, onType.EvalMutation(ctx, create), privacy.Skip)
}

func TestMutationPolicy(t *testing.T) {
	ctx := context.Background()
	m := edgeMutation(t, digraph.OpCreate, 2, nil)

	t.Run("Empty", func(t *testing.T) {
		assert.NoError(t, privacy.MutationPolicy{}.EvalMutation(ctx, m))
	})

	t.Run("AllowStops", func(t *testing.T) {
		policy := privacy.MutationPolicy{
			privacy.AlwaysAllowRule(),
			privacy.AlwaysDenyRule(),
		}
		assert.NoError(t, policy.EvalMutation(ctx, m))
	})

	t.Run("SkipContinues", func(t *testing.T) {
		var calls int
		count := privacy.MutationRuleFunc(func(context.Context, digraph.Mutation) error {
			calls++
			return privacy.Skip
		})
		policy := privacy.MutationPolicy{count, count, privacy.AlwaysDenyRule()}
		assert.ErrorIs(t, policy.EvalMutation(ctx, m), privacy.Deny)
		assert.Equal(t, 2, calls)
	})

	t.Run("CustomError", func(t *testing.T) {
		custom := errors.New("custom")
		policy := privacy.MutationPolicy{
			privacy.MutationRuleFunc(func(context.Context, digraph.Mutation) error { return custom }),
		}
		assert.ErrorIs(t, policy.EvalMutation(ctx, m), custom)
	})

	t.Run("Context", func(t *testing.T) {
		policy := privacy.MutationPolicy{privacy.AlwaysDenyRule()}
		assert.NoError(t, policy.EvalMutation(privacy.DecisionContext(ctx, privacy.Allow), m))
		assert.ErrorIs(t, policy.EvalMutation(privacy.DecisionContext(ctx, privacy.Skip), m), privacy.Deny)
	})
}

func TestPolicies(t *testing.T) {
	ctx := context.Background()
	m := edgeMutation(t, digraph.OpCreate, 2, nil)
	policies := privacy.Policies{
		privacy.MutationPolicy{privacy.DenyMutationOperationRule(digraph.OpDelete)},
		digraph.PolicyFunc(func(context.Context, digraph.Mutation) error { return privacy.Allow }),
		privacy.MutationPolicy{privacy.AlwaysDenyRule()},
	}
	assert.NoError(t, policies.EvalMutation(ctx, m))
	assert.ErrorIs(t, policies.EvalMutation(ctx, edgeMutation(t, digraph.OpDelete, 2, nil)), privacy.Deny)
	assert.ErrorIs(t, policies.EvalMutation(privacy.DecisionContext(ctx, privacy.Deny), m), privacy.Deny)
}

func TestDecisionContext(t *testing.T) {
	ctx := context.Background()
	_, ok := privacy.DecisionFromContext(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, privacy.DecisionContext(ctx, nil))
	assert.Equal(t, ctx, privacy.DecisionContext(ctx, privacy.Skip))

	decision, ok := privacy.DecisionFromContext(privacy.DecisionContext(ctx, privacy.Allow))
	assert.True(t, ok)
	assert.NoError(t, decision)

	decision, ok = privacy.DecisionFromContext(privacy.DecisionContext(ctx, privacy.Denyf("read only")))
	assert.True(t, ok)
	assert.ErrorIs(t, decision, privacy.Deny)
}

func BenchmarkPrivacy(b *testing.B) {
	ctx := context.Background()
	m := edgeMutation(b, digraph.OpCreate, 2, int64(3))
	policy := privacy.MutationPolicy{
		privacy.DenyMutationOperationRule(digraph.OpDelete),
		privacy.RequireAttr(),
		privacy.AlwaysAllowRule(),
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = policy.EvalMutation(ctx, m)
	}
}
