// Package schema provides the building blocks used to describe the
// persisted record types that back a state graph.
//
// Its subpackages hold the builders:
//
//   - [field]: scalar and reference fields
//   - [edge]: many-to-many edges materialized through a join type
//
// Record types are not written by hand. The graph package synthesizes them
// for every registered source type:
//
//	order := graph.NewType("Order")
//	event := graph.NewType("Event")
//	edges := graph.EdgeType(order, event) // OrderDiGraphEdge
//	nodes := graph.NodeType(order, edges) // OrderDiGraph
//
// Storage specific settings, such as foreign key actions, are attached to
// fields as annotations:
//
//	field.Ref("attr", "Event").
//	    Optional().
//	    Annotations(sqlschema.OnDelete(sqlschema.SetNull))
package schema
