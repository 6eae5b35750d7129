// Package privacy provides rule implementations for the mutation policies
// of digraph graphs.
//
// A policy is evaluated before an edge is added to or removed from a graph
// node. Rules return one of three decisions:
//
//   - Allow: Grants the mutation and stops evaluation
//   - Deny: Rejects the mutation and stops evaluation
//   - Skip: Continues to the next rule
//
// A policy whose rules all skip allows the mutation, so policies that must
// fail closed end with AlwaysDenyRule.
//
//	orders, err := digraph.Register(reg, orderModel, eventModel,
//	    digraph.WithPolicy(privacy.MutationPolicy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("admin"),
//	        privacy.DenyMutationOperationRule(digraph.OpDelete),
//	        privacy.RequireAttr(),
//	    }),
//	)
//
// The viewer is stored in the context:
//
//	ctx = privacy.WithViewer(ctx, &privacy.SimpleViewer{
//	    UserID: "user-123",
//	    Roles:  []string{"admin"},
//	})
//
// Denied mutations fail with a *digraph.PrivacyError wrapping the decision:
//
//	if errors.Is(err, privacy.Deny) { ... }
package privacy
