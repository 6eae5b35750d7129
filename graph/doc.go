// Package graph provides the record type representation used to persist
// directed graph overlays.
//
// A registered source type gets three synthesized record types. Edges
// point at a next state and may carry an attribute, nodes wrap one source
// record, and links store the many-to-many association between nodes and
// their outgoing edges.
//
// # Type Representation
//
//	type Type struct {
//	    Name    string               // Type name (e.g., "OrderDiGraphEdge")
//	    Table   string               // Storage table (e.g., "order_di_graph_edges")
//	    Fields  []*field.Descriptor  // Columns, the primary key excluded
//	    Edges   []*edge.Descriptor   // Association edges
//	    Indexes []*Index             // Indexes
//	}
//
// # Synthesized Types
//
// For a source type Order whose edges carry Event attributes:
//
//	ts, err := graph.Synthesize(graph.NewType("Order"), graph.NewType("Event"))
//
//	ts.Edge // OrderDiGraphEdge { next_state -> Order CASCADE, attr -> Event SET NULL }
//	ts.Node // OrderDiGraph     { source -> Order SET NULL, unique; edges m2m }
//	ts.Link // OrderDiGraphLink { node -> OrderDiGraph, edge -> OrderDiGraphEdge }
//
// # Naming Conventions
//
// Tables are the snake_case plural of the type name:
//
//	Snake("OrderDiGraph")     // "order_di_graph"
//	Table("OrderDiGraphEdge") // "order_di_graph_edges"
//
// Reference fields are stored in a column named after the field with an
// "_id" suffix, so the next state of an edge lives in next_state_id.
package graph
