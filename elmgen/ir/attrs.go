package ir

import "github.com/broady/elmgen/elmgen/naming"

// RenameAll is a rename-all policy that may differ per direction.
// Serialize and Deserialize take precedence over Both.
type RenameAll struct {
	Both        naming.Rule
	Serialize   naming.Rule
	Deserialize naming.Rule
}

// IsZero returns true if no rule is set.
func (r RenameAll) IsZero() bool {
	return r.Both == naming.RuleNone && r.Serialize == naming.RuleNone && r.Deserialize == naming.RuleNone
}

// ContainerAttrs are the attributes attached to a TypeDecl.
type ContainerAttrs struct {
	// RenameAll applies to product field names and to sum variant names.
	RenameAll RenameAll

	// RenameAllFields applies to the fields of every struct variant of a sum.
	RenameAllFields RenameAll

	// Tag is the JSON member naming the variant (internal and adjacent tagging).
	Tag string

	// Content is the JSON member holding the payload (adjacent tagging).
	Content string

	// Untagged selects the untagged representation.
	Untagged bool

	// Transparent collapses a single-field product into a newtype of that field.
	Transparent bool
}

// FieldAttrs are the attributes attached to a Field.
type FieldAttrs struct {
	// Rename sets both JSON names.
	Rename string

	// RenameSerialize overrides the name used when encoding.
	RenameSerialize string

	// RenameDeserialize overrides the name used when decoding.
	RenameDeserialize string

	// Skip removes the field from every generator.
	Skip bool

	// Aliases are additional names accepted when decoding.
	Aliases []string
}

// VariantAttrs are the attributes attached to a Variant.
type VariantAttrs struct {
	// Rename sets both JSON names.
	Rename string

	// RenameSerialize overrides the name used when encoding.
	RenameSerialize string

	// RenameDeserialize overrides the name used when decoding.
	RenameDeserialize string

	// RenameAll applies to the variant's own fields and overrides the
	// container's RenameAllFields.
	RenameAll RenameAll

	// Skip removes the variant from every generator.
	Skip bool

	// Other marks the unit variant used when decoding an unknown tag.
	Other bool

	// Aliases are additional tags accepted when decoding.
	Aliases []string
}
