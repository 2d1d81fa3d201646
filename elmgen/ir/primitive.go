package ir

// PrimitiveKind identifies a built-in scalar. Every kind maps to exactly one
// Elm type in the registry.
type PrimitiveKind int

const (
	PrimitiveBool PrimitiveKind = iota
	PrimitiveInt
	PrimitiveUint
	PrimitiveFloat
	PrimitiveString
	PrimitiveBytes    // base64 string on the wire
	PrimitiveTime     // RFC 3339 string on the wire
	PrimitiveDuration // integer nanoseconds on the wire
	PrimitiveAny      // arbitrary JSON: any, json.RawMessage, custom marshalers
)

var primitiveNames = [...]string{
	PrimitiveBool:     "Bool",
	PrimitiveInt:      "Int",
	PrimitiveUint:     "Uint",
	PrimitiveFloat:    "Float",
	PrimitiveString:   "String",
	PrimitiveBytes:    "Bytes",
	PrimitiveTime:     "Time",
	PrimitiveDuration: "Duration",
	PrimitiveAny:      "Any",
}

func (k PrimitiveKind) String() string {
	if k < 0 || int(k) >= len(primitiveNames) {
		return "Unknown"
	}
	return primitiveNames[k]
}

func parsePrimitiveKind(s string) (PrimitiveKind, bool) {
	for k, name := range primitiveNames {
		if name == s {
			return PrimitiveKind(k), true
		}
	}
	return 0, false
}

// PrimitiveDescriptor is a built-in scalar type.
type PrimitiveDescriptor struct {
	exprBase
	PrimitiveKind PrimitiveKind

	// BitSize is the width of Int, Uint and Float kinds, 0 for Go's int and
	// uint. Elm has one Int and one Float, so it only feeds diagnostics.
	BitSize int
}

// Kind returns KindPrimitive.
func (d *PrimitiveDescriptor) Kind() DescriptorKind { return KindPrimitive }

// IsInteger reports whether the primitive is a signed or unsigned integer.
func (d *PrimitiveDescriptor) IsInteger() bool {
	return d.PrimitiveKind == PrimitiveInt || d.PrimitiveKind == PrimitiveUint
}

func primitive(k PrimitiveKind, bits int) *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: k, BitSize: bits}
}

func Bool() *PrimitiveDescriptor   { return primitive(PrimitiveBool, 0) }
func String() *PrimitiveDescriptor { return primitive(PrimitiveString, 0) }

// Int, Uint and Float take the Go bit size; 0 means platform int/uint.
func Int(bitSize int) *PrimitiveDescriptor   { return primitive(PrimitiveInt, bitSize) }
func Uint(bitSize int) *PrimitiveDescriptor  { return primitive(PrimitiveUint, bitSize) }
func Float(bitSize int) *PrimitiveDescriptor { return primitive(PrimitiveFloat, bitSize) }

func Bytes() *PrimitiveDescriptor    { return primitive(PrimitiveBytes, 0) }
func Time() *PrimitiveDescriptor     { return primitive(PrimitiveTime, 0) }
func Duration() *PrimitiveDescriptor { return primitive(PrimitiveDuration, 0) }
func Any() *PrimitiveDescriptor      { return primitive(PrimitiveAny, 0) }
