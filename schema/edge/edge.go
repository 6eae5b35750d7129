package edge

import (
	"errors"
	"fmt"

	"github.com/syssam/digraph/schema"
)

// A Descriptor for edge configuration. Graph records only use
// many-to-many edges, materialized through a join type.
type Descriptor struct {
	Name        string              // edge name.
	Type        string              // target type name.
	Through     string              // join type name.
	Comment     string              // edge comments.
	Annotations []schema.Annotation // edge annotations.
	Err         error
}

// Edge is implemented by all edge builders.
type Edge interface {
	Descriptor() *Descriptor
}

// To defines a many-to-many association edge to the type named target.
//
//	edge.To("edges", "OrderDiGraphEdge").Through("OrderDiGraphLink")
func To(name, target string) *assocBuilder {
	b := &assocBuilder{desc: &Descriptor{Name: name, Type: target}}
	if name == "" || target == "" {
		b.desc.Err = errors.New("edge: name and target type are required")
	}
	return b
}

// assocBuilder is the builder for assoc edges.
type assocBuilder struct {
	desc *Descriptor
}

// Through sets the join type that stores the association.
func (b *assocBuilder) Through(typ string) *assocBuilder {
	if typ == "" {
		b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("edge: empty join type for edge %q", b.desc.Name))
	}
	b.desc.Through = typ
	return b
}

// Comment used to put annotations on the schema.
func (b *assocBuilder) Comment(c string) *assocBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the edge object.
func (b *assocBuilder) Annotations(annotations ...schema.Annotation) *assocBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the Edge interface by returning its descriptor.
func (b *assocBuilder) Descriptor() *Descriptor {
	return b.desc
}
