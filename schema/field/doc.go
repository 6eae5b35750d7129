// Package field provides fluent builders for the fields of synthesized
// graph record types.
//
// Field names follow database conventions (snake_case). Reference fields
// store the primary key of another record type and default their column
// name to the field name with an "_id" suffix:
//
//	field.ID()                          // id BIGINT PRIMARY KEY
//	field.Ref("next_state", "Order")    // next_state_id BIGINT NOT NULL
//	field.Ref("attr", "Event").
//	    Optional()                      // attr_id BIGINT NULL
//
// # Field Options
//
//	field.Ref("source", "Order").
//	    Optional().          // nullable column
//	    Unique().            // one-to-one
//	    Immutable().         // cannot be updated
//	    StorageKey("src").   // custom column name
//	    Comment("origin")    // column comment
//
// Foreign key actions are storage annotations, see dialect/sqlschema.
package field
