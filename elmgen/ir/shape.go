package ir

// ShapeKind identifies the structure of a declared type.
type ShapeKind int

const (
	ShapeUnit    ShapeKind = iota // No payload
	ShapeNewtype                  // A single wrapped value
	ShapeTuple                    // Fixed-length positional sequence
	ShapeProduct                  // Record with named fields
	ShapeSum                      // Tagged union of variants
	ShapeUnion                    // Host union type; never generated
)

// String returns the string representation of the shape kind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeUnit:
		return "Unit"
	case ShapeNewtype:
		return "Newtype"
	case ShapeTuple:
		return "Tuple"
	case ShapeProduct:
		return "Product"
	case ShapeSum:
		return "Sum"
	case ShapeUnion:
		return "Union"
	default:
		return "Unknown"
	}
}

// Shape describes the structure of one user-defined type.
type Shape interface {
	// Kind returns the shape kind for type switching.
	Kind() ShapeKind

	// Ensure only types in this package can implement Shape.
	sealedShape()
}

type shapeBase struct{}

func (shapeBase) sealedShape() {}

// UnitShape is a type without payload, encoded as JSON null.
type UnitShape struct{ shapeBase }

// Kind returns ShapeUnit.
func (*UnitShape) Kind() ShapeKind { return ShapeUnit }

// NewtypeShape wraps a single value and is encoded exactly as that value.
type NewtypeShape struct {
	shapeBase

	// Element is the wrapped type.
	Element TypeDescriptor
}

// Kind returns ShapeNewtype.
func (*NewtypeShape) Kind() ShapeKind { return ShapeNewtype }

// TupleShape is a positional sequence encoded as a JSON array. Arity must be at least 2.
type TupleShape struct {
	shapeBase

	// Elements are the slot types, in order.
	Elements []TypeDescriptor
}

// Kind returns ShapeTuple.
func (*TupleShape) Kind() ShapeKind { return ShapeTuple }

// ProductShape is a record with named fields, encoded as a JSON object.
type ProductShape struct {
	shapeBase

	// Fields contains all fields, including skipped ones.
	Fields []Field
}

// Kind returns ShapeProduct.
func (*ProductShape) Kind() ShapeKind { return ShapeProduct }

// SumShape is a tagged union. The wire representation is selected by the
// container attributes of the enclosing TypeDecl.
type SumShape struct {
	shapeBase

	// Variants in declaration order, including skipped ones.
	Variants []Variant
}

// Kind returns ShapeSum.
func (*SumShape) Kind() ShapeKind { return ShapeSum }

// UnionShape records a host union type (for example a Go constraint union).
// Providers emit it so the resolver can report it; no generator accepts it.
type UnionShape struct {
	shapeBase

	// Members are the union terms.
	Members []TypeDescriptor
}

// Kind returns ShapeUnion.
func (*UnionShape) Kind() ShapeKind { return ShapeUnion }

// TypeDecl is one user-defined type to generate.
type TypeDecl struct {
	// Name is the type identifier.
	Name GoIdentifier

	// Shape is the type's structure.
	Shape Shape

	// Attrs are the container-level attributes.
	Attrs ContainerAttrs

	// Documentation for this type.
	Documentation Documentation

	// Source location in Go code.
	Source Source
}

// Field represents a single named field of a product or struct variant.
type Field struct {
	// Name is the Go field name.
	Name string

	// Type is the field's type descriptor.
	Type TypeDescriptor

	// Attrs are the field-level attributes.
	Attrs FieldAttrs

	// Optional is set when encoding/json may leave the member out,
	// from the omitempty or omitzero tag options.
	Optional bool

	// StringEncoded is set by the string tag option: the value travels as
	// a JSON string. Valid only on booleans, numbers and strings.
	StringEncoded bool

	// Documentation for this field.
	Documentation Documentation
}

// VariantKind identifies the payload of a sum variant.
type VariantKind int

const (
	VariantUnit    VariantKind = iota // No payload
	VariantNewtype                    // One positional value
	VariantTuple                      // Two or more positional values
	VariantStruct                     // Named fields
)

// String returns the string representation of the variant kind.
func (k VariantKind) String() string {
	switch k {
	case VariantUnit:
		return "Unit"
	case VariantNewtype:
		return "Newtype"
	case VariantTuple:
		return "Tuple"
	case VariantStruct:
		return "Struct"
	default:
		return "Unknown"
	}
}

// Variant is one alternative of a SumShape.
type Variant struct {
	// Name is the variant identifier (the Go type name of the implementing type).
	Name string

	// Kind selects which payload field is meaningful.
	Kind VariantKind

	// Elements holds the payload of newtype (exactly one) and tuple (two or more) variants.
	Elements []TypeDescriptor

	// Fields holds the payload of struct variants.
	Fields []Field

	// Attrs are the variant-level attributes.
	Attrs VariantAttrs

	// Documentation for this variant.
	Documentation Documentation

	// Source location of the variant's declaration.
	Source Source
}
