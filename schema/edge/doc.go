// Package edge provides the builder for the association edges of
// synthesized graph record types.
//
// A graph node owns its outgoing edges through a many-to-many association.
// The association is stored in a join type with one row per (node, edge):
//
//	edge.To("edges", "OrderDiGraphEdge").
//	    Through("OrderDiGraphLink").
//	    Comment("outgoing transitions")
package edge
