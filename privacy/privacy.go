package privacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/digraph"
)

// Policy decision sentinel errors.
//
// These errors are used as return values from policy rules to indicate
// how the policy evaluation should proceed. Use errors.Is() to check
// for these values:
//
//	if errors.Is(err, privacy.Allow) { ... }
//	if errors.Is(err, privacy.Deny) { ... }
//	if errors.Is(err, privacy.Skip) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("digraph/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("digraph/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("digraph/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() MutationRule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() MutationRule {
	return fixedDecision{Deny}
}

// ContextMutationRule creates a mutation rule from a context evaluation function.
// Returning nil is equivalent to returning Skip.
func ContextMutationRule(eval func(context.Context) error) MutationRule {
	return contextDecision{eval}
}

type (
	// MutationRule defines the interface deciding whether a
	// mutation is allowed.
	MutationRule interface {
		EvalMutation(context.Context, digraph.Mutation) error
	}

	// MutationPolicy combines multiple mutation rules into a single
	// digraph.Policy. Rules are evaluated in order until one of them
	// returns a decision other than Skip.
	MutationPolicy []MutationRule
)

// MutationRuleFunc type is an adapter which allows the use of
// ordinary functions as mutation rules.
type MutationRuleFunc func(context.Context, digraph.Mutation) error

// EvalMutation returns f(ctx, m).
func (f MutationRuleFunc) EvalMutation(ctx context.Context, m digraph.Mutation) error {
	return f(ctx, m)
}

// OnMutationOperation evaluates the given rule only on a given mutation operation.
func OnMutationOperation(rule MutationRule, op digraph.Op) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m digraph.Mutation) error {
		if m.Op().Is(op) {
			return rule.EvalMutation(ctx, m)
		}
		return Skip
	})
}

// OnType evaluates the given rule only on mutations of the named record type.
func OnType(rule MutationRule, typ string) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m digraph.Mutation) error {
		if m.Type() == typ {
			return rule.EvalMutation(ctx, m)
		}
		return Skip
	})
}

// DenyMutationOperationRule returns a rule denying specified mutation operation.
func DenyMutationOperationRule(op digraph.Op) MutationRule {
	rule := MutationRuleFunc(func(_ context.Context, m digraph.Mutation) error {
		return Denyf("digraph/privacy: operation %s is not allowed", m.Op())
	})
	return OnMutationOperation(rule, op)
}

// AllowMutationOperationRule returns a rule allowing specified mutation operation.
func AllowMutationOperationRule(op digraph.Op) MutationRule {
	rule := MutationRuleFunc(func(context.Context, digraph.Mutation) error {
		return Allow
	})
	return OnMutationOperation(rule, op)
}

// EvalMutation evaluates a mutation against a mutation policy. A decision
// attached to the context with DecisionContext takes precedence. Allow and
// an exhausted policy both return nil.
func (policies MutationPolicy) EvalMutation(ctx context.Context, m digraph.Mutation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, policy := range policies {
		switch decision := policy.EvalMutation(ctx, m); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// Policies combines multiple policies into a single policy.
type Policies []digraph.Policy

// EvalMutation evaluates the policies in order. If the Allow error is returned
// from one of the policies, it stops the evaluation with a nil error.
func (policies Policies) EvalMutation(ctx context.Context, m digraph.Mutation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, policy := range policies {
		switch decision := policy.EvalMutation(ctx, m); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attach to it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalMutation(context.Context, digraph.Mutation) error {
	return f.decision
}

type contextDecision struct {
	eval func(context.Context) error
}

func (c contextDecision) EvalMutation(ctx context.Context, _ digraph.Mutation) error {
	return c.eval(ctx)
}

var (
	_ digraph.Policy = MutationPolicy(nil)
	_ digraph.Policy = Policies(nil)
)
