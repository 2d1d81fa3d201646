package ir

// DescriptorKind identifies the category of a type expression.
type DescriptorKind int

const (
	KindPrimitive DescriptorKind = iota // Built-in scalar type
	KindArray                           // Ordered collection ([]T or [N]T)
	KindMap                             // Key-value mapping (map[K]V)
	KindOption                          // Value that may be null
	KindPtr                             // Pointer wrapper (*T), transparent to the schema
	KindTuple                           // Anonymous fixed-length positional value
	KindResult                          // Ok/Err union with an externally tagged encoding
	KindUnit                            // The unit value, encoded as null
	KindReference                       // Reference to a TypeDecl
)

// String returns the string representation of the descriptor kind.
func (k DescriptorKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindOption:
		return "Option"
	case KindPtr:
		return "Ptr"
	case KindTuple:
		return "Tuple"
	case KindResult:
		return "Result"
	case KindUnit:
		return "Unit"
	case KindReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// TypeDescriptor is the base interface for all type expressions.
// Field types, newtype payloads and tuple slots are TypeDescriptors.
type TypeDescriptor interface {
	// Kind returns the descriptor kind for type switching.
	Kind() DescriptorKind

	// Ensure only types in this package can implement TypeDescriptor.
	sealed()
}

// exprBase seals expression descriptors.
type exprBase struct{}

func (exprBase) sealed() {}
