package privacy

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/digraph"
)

// Viewer represents the authenticated user making a request.
// This interface should be implemented by application-specific user types.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant identifier for multi-tenancy.
	// Returns empty string if not applicable.
	GetTenantID() string
}

// viewerCtxKey is the context key for storing the viewer.
type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context.
// Returns nil if no viewer is present.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
// Use this for testing or simple use cases.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string {
	return v.UserID
}

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string {
	return v.Roles
}

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string {
	return v.TenantID
}

// DenyIfNoViewer returns a rule that denies access if no viewer is present in the context.
// This is typically used as the first rule in a policy to require authentication.
//
// Example:
//
//	privacy.MutationPolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.AlwaysDenyRule(),
//	}
func DenyIfNoViewer() MutationRule {
	return ContextMutationRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("digraph/privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule that allows access if the viewer has the specified role.
// Skips if the viewer doesn't have the role (allows next rule to evaluate).
//
// Example:
//
//	privacy.MutationPolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.AlwaysDenyRule(),
//	}
func HasRole(role string) MutationRule {
	return ContextMutationRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		if slices.Contains(viewer.GetRoles(), role) {
			return Allow
		}
		return Skip
	})
}

// HasAnyRole returns a rule that allows access if the viewer has any of the specified roles.
// Skips if the viewer doesn't have any of the roles (allows next rule to evaluate).
//
// Example:
//
//	privacy.MutationPolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasAnyRole("admin", "moderator"),
//	    privacy.AlwaysDenyRule(),
//	}
func HasAnyRole(roles ...string) MutationRule {
	return ContextMutationRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		viewerRoles := viewer.GetRoles()
		for _, role := range roles {
			if slices.Contains(viewerRoles, role) {
				return Allow
			}
		}
		return Skip
	})
}

// IsOwner returns a mutation rule that allows access if the viewer owns the record.
// The rule checks if the mutation's field value matches the viewer's ID, for
// example the next state of an edge pointing at the viewer's own record.
//
// Example:
//
//	privacy.MutationPolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.IsOwner("next_state"),
//	    privacy.AlwaysDenyRule(),
//	}
func IsOwner(field string) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m digraph.Mutation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		// Check if the field value matches the viewer's ID
		value, ok := m.Field(field)
		if !ok {
			return Skip
		}
		// Handle different ID types
		var fieldID string
		switch v := value.(type) {
		case string:
			fieldID = v
		case int64:
			fieldID = fmt.Sprintf("%d", v)
		case int:
			fieldID = fmt.Sprintf("%d", v)
		default:
			fieldID = fmt.Sprintf("%v", v)
		}
		if fieldID == viewer.GetID() {
			return Allow
		}
		return Skip
	})
}

// TenantRule returns a mutation rule that allows access if the viewer's tenant
// matches the entity's tenant. Used for multi-tenant isolation.
//
// Example:
//
//	privacy.MutationPolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.TenantRule("tenant_id"),
//	    privacy.AlwaysDenyRule(),
//	}
func TenantRule(field string) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m digraph.Mutation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		viewerTenant := viewer.GetTenantID()
		if viewerTenant == "" {
			return Skip
		}
		// Check if the field value matches the viewer's tenant
		value, ok := m.Field(field)
		if !ok {
			return Skip
		}
		// Handle different tenant ID types
		var fieldTenant string
		switch v := value.(type) {
		case string:
			fieldTenant = v
		default:
			fieldTenant = fmt.Sprintf("%v", v)
		}
		if fieldTenant == viewerTenant {
			return Allow
		}
		return Denyf("digraph/privacy: tenant mismatch")
	})
}

// RequireAttr returns a rule denying the creation of edges without an
// attribute. Other mutations are skipped.
//
//	digraph.WithPolicy(privacy.MutationPolicy{
//	    privacy.RequireAttr(),
//	})
func RequireAttr() MutationRule {
	rule := MutationRuleFunc(func(_ context.Context, m digraph.Mutation) error {
		if v, ok := m.Field("attr"); !ok || v == nil {
			return Denyf("digraph/privacy: %s requires an attribute", m.Type())
		}
		return Skip
	})
	return OnMutationOperation(rule, digraph.OpCreate)
}
