package field

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/syssam/digraph/schema"
)

var validName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Field is implemented by all field builders.
type Field interface {
	Descriptor() *Descriptor
}

// A Descriptor for field configuration.
type Descriptor struct {
	Name        string              // field name.
	StorageKey  string              // column name, defaults to Name for scalars and Name+"_id" for references.
	Ref         string              // referenced type name, empty for scalar fields.
	Optional    bool                // nullable column.
	Unique      bool                // unique constraint.
	Immutable   bool                // field cannot be updated.
	Comment     string              // column comment.
	Annotations []schema.Annotation // storage annotations.
	Err         error
}

// Column returns the storage column of the field.
func (d *Descriptor) Column() string {
	switch {
	case d.StorageKey != "":
		return d.StorageKey
	case d.Ref != "":
		return d.Name + "_id"
	default:
		return d.Name
	}
}

// IsRef reports if the field references another type.
func (d *Descriptor) IsRef() bool { return d.Ref != "" }

// Annotation returns the merged annotation with the given name, or nil.
func (d *Descriptor) Annotation(name string) schema.Annotation {
	return schema.Merge(d.Annotations)[name]
}

func (d *Descriptor) checkName() {
	if !validName.MatchString(d.Name) {
		d.Err = errors.Join(d.Err, fmt.Errorf("field: invalid name %q", d.Name))
	}
}

var (
	_ Field = (*int64Builder)(nil)
	_ Field = (*refBuilder)(nil)
)

// Int64 returns a new Field with type int64.
func Int64(name string) *int64Builder {
	b := &int64Builder{&Descriptor{Name: name}}
	b.desc.checkName()
	return b
}

// ID returns the int64 primary key field.
func ID() *int64Builder {
	return Int64("id").Immutable()
}

// int64Builder is the builder for int64 fields.
type int64Builder struct {
	desc *Descriptor
}

// Optional indicates that this field is nullable.
func (b *int64Builder) Optional() *int64Builder {
	b.desc.Optional = true
	return b
}

// Unique makes the field unique within all records of the type.
func (b *int64Builder) Unique() *int64Builder {
	b.desc.Unique = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *int64Builder) Immutable() *int64Builder {
	b.desc.Immutable = true
	return b
}

// StorageKey sets the storage key of the field.
func (b *int64Builder) StorageKey(key string) *int64Builder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *int64Builder) Comment(c string) *int64Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the Field interface by returning its descriptor.
func (b *int64Builder) Descriptor() *Descriptor {
	return b.desc
}

// Ref returns a new reference field pointing at the record type named target.
// The column holds the target's primary key.
//
//	field.Ref("next_state", "Order")
func Ref(name, target string) *refBuilder {
	b := &refBuilder{&Descriptor{Name: name, Ref: target}}
	b.desc.checkName()
	if target == "" {
		b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("field: missing target type for reference %q", name))
	}
	return b
}

// refBuilder is the builder for reference fields.
type refBuilder struct {
	desc *Descriptor
}

// Optional indicates that the reference may be NULL.
func (b *refBuilder) Optional() *refBuilder {
	b.desc.Optional = true
	return b
}

// Unique makes the reference unique, turning the relation into one-to-one.
func (b *refBuilder) Unique() *refBuilder {
	b.desc.Unique = true
	return b
}

// Immutable indicates that this reference cannot be changed after creation.
func (b *refBuilder) Immutable() *refBuilder {
	b.desc.Immutable = true
	return b
}

// StorageKey sets the column name of the reference.
func (b *refBuilder) StorageKey(key string) *refBuilder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *refBuilder) Comment(c string) *refBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the field object to be used by
// the storage layer.
//
//	field.Ref("attr", "Event").
//		Annotations(sqlschema.OnDelete(sqlschema.SetNull))
func (b *refBuilder) Annotations(annotations ...schema.Annotation) *refBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the Field interface by returning its descriptor.
func (b *refBuilder) Descriptor() *Descriptor {
	return b.desc
}
