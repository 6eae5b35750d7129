// Package sqlschema provides SQL-specific annotations for synthesized
// graph record types.
//
//	field.Ref("source", "Order").
//	    Optional().
//	    Annotations(sqlschema.OnDelete(sqlschema.SetNull))
//
// # Cascade Actions
//
//	sqlschema.Cascade    - Delete related rows
//	sqlschema.SetNull    - Set foreign key to NULL
//	sqlschema.Restrict   - Prevent delete if related rows exist
//	sqlschema.NoAction   - No action (database default)
package sqlschema

import "github.com/syssam/digraph/schema"

// AnnotationName is the name used for SQL annotations.
const AnnotationName = "sql"

// CascadeAction defines cascade behavior for foreign key constraints.
type CascadeAction string

// Foreign key actions.
const (
	Cascade  CascadeAction = "CASCADE"
	SetNull  CascadeAction = "SET NULL"
	Restrict CascadeAction = "RESTRICT"
	NoAction CascadeAction = "NO ACTION"
)

// Annotation holds SQL-specific settings for types and fields.
type Annotation struct {
	// Table overrides the database table name of a type.
	Table string

	// OnDelete sets the ON DELETE action of a reference field.
	OnDelete CascadeAction
}

// Name implements schema.Annotation.
func (Annotation) Name() string {
	return AnnotationName
}

// Merge implements the schema.Merger interface.
func (a Annotation) Merge(other schema.Annotation) schema.Annotation {
	var ant Annotation
	switch other := other.(type) {
	case Annotation:
		ant = other
	case *Annotation:
		if other != nil {
			ant = *other
		}
	default:
		return a
	}
	if ant.Table != "" {
		a.Table = ant.Table
	}
	if ant.OnDelete != "" {
		a.OnDelete = ant.OnDelete
	}
	return a
}

var (
	_ schema.Annotation = (*Annotation)(nil)
	_ schema.Merger     = (*Annotation)(nil)
)

// Table sets the database table name for a type.
func Table(name string) Annotation {
	return Annotation{Table: name}
}

// OnDelete sets the ON DELETE action of a reference.
func OnDelete(action CascadeAction) Annotation {
	return Annotation{OnDelete: action}
}

// From returns the merged SQL annotation of the given annotations.
func From(ants []schema.Annotation) Annotation {
	var a Annotation
	for _, ant := range ants {
		a = a.Merge(ant).(Annotation)
	}
	return a
}
