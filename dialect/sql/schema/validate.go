package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/digraph/graph"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	for _, group := range []struct {
		title string
		errs  []*ValidationError
	}{{"Errors", r.Errors}, {"Warnings", r.Warnings}} {
		if len(group.errs) == 0 {
			continue
		}
		sb.WriteString(group.title + ":\n")
		for _, e := range group.errs {
			sb.WriteString("  - " + e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && len(r.Warnings) == 0 {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateTypes validates the tables of a set of record types before they
// are migrated. References to types outside of the set are reported as
// warnings, since foreign keys are only created between known tables.
func ValidateTypes(types []*graph.Type) *ValidationResult {
	result := &ValidationResult{}
	names := make(map[string]bool, len(types))
	tables := make(map[string]string, len(types))
	for _, t := range types {
		names[t.Name] = true
		if other, ok := tables[t.Table]; ok {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Table,
				Message: fmt.Sprintf("table is used by both %s and %s", other, t.Name),
			})
		}
		tables[t.Table] = t.Name
		if err := t.Validate(); err != nil {
			result.Errors = append(result.Errors, &ValidationError{Table: t.Table, Message: err.Error()})
		}
	}
	for _, t := range types {
		for _, f := range t.Fields {
			if f.IsRef() && !names[f.Ref] {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Table,
					Column:  f.Column(),
					Message: fmt.Sprintf("references unknown type %q", f.Ref),
				})
			}
		}
		for _, e := range t.Edges {
			if !names[e.Type] || !names[e.Through] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Table,
					Message: fmt.Sprintf("edge %q requires types %q and %q", e.Name, e.Type, e.Through),
				})
			}
		}
	}
	return result
}
