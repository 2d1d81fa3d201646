package ir

// ArrayDescriptor represents an ordered collection (slice or fixed-length array).
// Both map to an Elm List; Length is kept for diagnostics.
type ArrayDescriptor struct {
	exprBase

	// Element is the array element type.
	Element TypeDescriptor

	// Length is 0 for slices ([]T), or >0 for fixed-length arrays ([N]T).
	Length int
}

// Kind returns KindArray.
func (d *ArrayDescriptor) Kind() DescriptorKind { return KindArray }

// Slice returns an ArrayDescriptor for a slice type.
func Slice(element TypeDescriptor) *ArrayDescriptor {
	return &ArrayDescriptor{Element: element, Length: 0}
}

// Array returns an ArrayDescriptor for a fixed-length array.
func Array(element TypeDescriptor, length int) *ArrayDescriptor {
	return &ArrayDescriptor{Element: element, Length: length}
}

// MapDescriptor represents a key-value mapping.
// JSON object keys are always strings, so only string and integer keys are
// accepted by the registry.
type MapDescriptor struct {
	exprBase

	// Key is the map key type.
	Key TypeDescriptor

	// Value is the map value type.
	Value TypeDescriptor
}

// Kind returns KindMap.
func (d *MapDescriptor) Kind() DescriptorKind { return KindMap }

// Map returns a MapDescriptor for a map type.
func Map(key, value TypeDescriptor) *MapDescriptor {
	return &MapDescriptor{Key: key, Value: value}
}

// OptionDescriptor represents a value that may be JSON null.
type OptionDescriptor struct {
	exprBase

	// Element is the present value's type.
	Element TypeDescriptor
}

// Kind returns KindOption.
func (d *OptionDescriptor) Kind() DescriptorKind { return KindOption }

// Option returns an OptionDescriptor wrapping element.
func Option(element TypeDescriptor) *OptionDescriptor {
	return &OptionDescriptor{Element: element}
}

// PtrDescriptor represents a Go pointer type (*T).
// Pointers are transparent: the registry maps *T exactly as T.
// Providers produce OptionDescriptor instead when a pointer field is optional.
type PtrDescriptor struct {
	exprBase

	// Element is the pointed-to type.
	Element TypeDescriptor
}

// Kind returns KindPtr.
func (d *PtrDescriptor) Kind() DescriptorKind { return KindPtr }

// Ptr returns a PtrDescriptor for a pointer type.
func Ptr(element TypeDescriptor) *PtrDescriptor {
	return &PtrDescriptor{Element: element}
}

// TupleDescriptor represents an anonymous positional value encoded as a JSON array.
// Elm only has 2- and 3-tuples.
type TupleDescriptor struct {
	exprBase

	// Elements are the slot types, in order.
	Elements []TypeDescriptor
}

// Kind returns KindTuple.
func (d *TupleDescriptor) Kind() DescriptorKind { return KindTuple }

// TupleOf returns a TupleDescriptor for the given slot types.
func TupleOf(elements ...TypeDescriptor) *TupleDescriptor {
	return &TupleDescriptor{Elements: elements}
}

// ResultDescriptor represents an Ok/Err value encoded as {"Ok": v} or {"Err": e}.
type ResultDescriptor struct {
	exprBase

	// Ok is the success payload type.
	Ok TypeDescriptor

	// Err is the failure payload type.
	Err TypeDescriptor
}

// Kind returns KindResult.
func (d *ResultDescriptor) Kind() DescriptorKind { return KindResult }

// Result returns a ResultDescriptor.
func Result(ok, err TypeDescriptor) *ResultDescriptor {
	return &ResultDescriptor{Ok: ok, Err: err}
}

// UnitDescriptor represents the unit value, encoded as JSON null.
type UnitDescriptor struct {
	exprBase
}

// Kind returns KindUnit.
func (d *UnitDescriptor) Kind() DescriptorKind { return KindUnit }

// Unit returns a UnitDescriptor.
func Unit() *UnitDescriptor {
	return &UnitDescriptor{}
}

// ReferenceDescriptor represents a reference to a named type declared in the schema.
type ReferenceDescriptor struct {
	exprBase

	// Target is the referenced type's identifier.
	Target GoIdentifier
}

// Kind returns KindReference.
func (d *ReferenceDescriptor) Kind() DescriptorKind { return KindReference }

// Ref returns a ReferenceDescriptor for a named type.
func Ref(name string, pkg string) *ReferenceDescriptor {
	return &ReferenceDescriptor{Target: GoIdentifier{Name: name, Package: pkg}}
}

// Walk calls fn for td and every descriptor nested within it, depth first.
func Walk(td TypeDescriptor, fn func(TypeDescriptor)) {
	if td == nil {
		return
	}
	fn(td)
	switch d := td.(type) {
	case *ArrayDescriptor:
		Walk(d.Element, fn)
	case *MapDescriptor:
		Walk(d.Key, fn)
		Walk(d.Value, fn)
	case *OptionDescriptor:
		Walk(d.Element, fn)
	case *PtrDescriptor:
		Walk(d.Element, fn)
	case *TupleDescriptor:
		for _, e := range d.Elements {
			Walk(e, fn)
		}
	case *ResultDescriptor:
		Walk(d.Ok, fn)
		Walk(d.Err, fn)
	}
}
