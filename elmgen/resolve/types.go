// Package resolve applies attribute policy to raw IR declarations.
//
// A resolved Type has every skipped member removed, every field and variant
// carrying its Elm identifier plus separate encode and decode JSON names, sums
// carrying their wire representation, and transparent single-field records
// collapsed into newtypes. Generators consume only resolved types.
package resolve

import "github.com/broady/elmgen/elmgen/ir"

// Type is a resolved declaration.
type Type struct {
	// Name is the Elm type name.
	Name string

	// Ident is the Go identity of the declaration.
	Ident ir.GoIdentifier

	// Shape is the resolved structure.
	Shape Shape

	// Recursive is set when the type reaches itself through references.
	// Schema sets it; see MarkRecursive.
	Recursive bool

	Documentation ir.Documentation
	Source        ir.Source
}

// Shape is one of *Unit, *Newtype, *Tuple, *Product or *Sum.
type Shape interface {
	shape()
}

type shapeBase struct{}

func (shapeBase) shape() {}

// Unit has no payload.
type Unit struct{ shapeBase }

// Newtype wraps a single value.
type Newtype struct {
	shapeBase
	Element ir.TypeDescriptor
}

// Tuple is a positional sequence of two or more values.
type Tuple struct {
	shapeBase
	Elements []ir.TypeDescriptor
}

// Product is a record.
type Product struct {
	shapeBase
	Fields []Field
}

// Sum is a tagged union with at least one variant.
type Sum struct {
	shapeBase
	Representation ir.Representation

	// Variants in declaration order.
	Variants []Variant
}

// Other returns the fallback variant, or nil.
func (s *Sum) Other() *Variant {
	for i := range s.Variants {
		if s.Variants[i].Other {
			return &s.Variants[i]
		}
	}
	return nil
}

// Normal returns the variants that are not the fallback, in declaration order.
func (s *Sum) Normal() []Variant {
	var out []Variant
	for _, v := range s.Variants {
		if !v.Other {
			out = append(out, v)
		}
	}
	return out
}

// UnitOnly reports whether every variant is a unit variant.
func (s *Sum) UnitOnly() bool {
	for _, v := range s.Variants {
		if v.Kind != ir.VariantUnit {
			return false
		}
	}
	return true
}

// Field is a resolved record or struct-variant field.
type Field struct {
	// Ident is the Go field name.
	Ident string

	// ElmName is the Elm record field name; JSON renames do not affect it.
	ElmName string

	// EncodeName is the JSON member written by encoders.
	EncodeName string

	// DecodeName is the JSON member read by decoders.
	DecodeName string

	// Aliases are additional members accepted by decoders.
	Aliases []string

	// Optional fields may be absent from the JSON object.
	Optional bool

	// StringEncoded fields carry their scalar inside a JSON string.
	StringEncoded bool

	Type          ir.TypeDescriptor
	Documentation ir.Documentation
}

// Variant is a resolved sum variant.
type Variant struct {
	// Ident is the Go name of the variant.
	Ident string

	// ElmName is the Elm constructor name.
	ElmName string

	// EncodeName is the tag written by encoders.
	EncodeName string

	// DecodeName is the tag matched by decoders.
	DecodeName string

	// Aliases are additional tags matched by decoders.
	Aliases []string

	Kind ir.VariantKind

	// Elements is the payload of newtype and tuple variants.
	Elements []ir.TypeDescriptor

	// Fields is the payload of struct variants.
	Fields []Field

	// Other marks the decode fallback for unrecognized tags.
	Other bool

	Documentation ir.Documentation
}
