package ir

import (
	"encoding"
	"fmt"
)

var _ interface {
	fmt.Stringer
	encoding.TextMarshaler
	encoding.TextUnmarshaler
} = (*RepresentationKind)(nil)

// RepresentationKind is an enumeration of the supported sum type tagging conventions.
type RepresentationKind int

const (
	// RepExternal represents a unit variant as a bare string and any other
	// variant as a single-key object keyed by the variant name.
	//
	//   "Unit"
	//   {"Circle": {"radius": 10}}
	RepExternal RepresentationKind = iota

	// RepInternal represents the variant as an object with a tag member;
	// struct variant fields sit next to the tag.
	//
	//   {"type": "Circle", "radius": 10}
	RepInternal

	// RepAdjacent represents the variant as an object with separate tag and
	// content members.
	//
	//   {"type": "Circle", "content": {"radius": 10}}
	RepAdjacent

	// RepUntagged represents the variant by its payload alone.
	//
	//   {"radius": 10}
	RepUntagged
)

// String implements the [fmt.Stringer] interface.
func (r RepresentationKind) String() string {
	switch r {
	case RepExternal:
		return "external"
	case RepInternal:
		return "internal"
	case RepAdjacent:
		return "adjacent"
	case RepUntagged:
		return "untagged"
	}
	return ""
}

// MarshalText implements the [encoding.TextMarshaler] interface.
func (r RepresentationKind) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (r *RepresentationKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "external":
		*r = RepExternal
	case "internal":
		*r = RepInternal
	case "adjacent":
		*r = RepAdjacent
	case "untagged":
		*r = RepUntagged
	default:
		return fmt.Errorf("unknown representation %q", text)
	}
	return nil
}

// Representation is the resolved wire format of a sum type.
type Representation struct {
	Kind RepresentationKind

	// Tag is the JSON member naming the variant. Used by RepInternal and RepAdjacent.
	Tag string

	// Content is the JSON member holding the payload. Used by RepAdjacent.
	Content string
}

// String returns a compact description, e.g. "adjacent(tag=t, content=c)".
func (r Representation) String() string {
	switch r.Kind {
	case RepInternal:
		return fmt.Sprintf("internal(tag=%s)", r.Tag)
	case RepAdjacent:
		return fmt.Sprintf("adjacent(tag=%s, content=%s)", r.Tag, r.Content)
	}
	return r.Kind.String()
}

// External returns the externally tagged representation.
func External() Representation { return Representation{Kind: RepExternal} }

// Internal returns the internally tagged representation.
func Internal(tag string) Representation { return Representation{Kind: RepInternal, Tag: tag} }

// Adjacent returns the adjacently tagged representation.
func Adjacent(tag, content string) Representation {
	return Representation{Kind: RepAdjacent, Tag: tag, Content: content}
}

// Untagged returns the untagged representation.
func Untagged() Representation { return Representation{Kind: RepUntagged} }

// Representation derives the tagging convention from the container attributes.
// Conflicting combinations (untagged with a tag, content without a tag) are
// reported as errors.
func (a ContainerAttrs) Representation() (Representation, error) {
	switch {
	case a.Untagged && (a.Tag != "" || a.Content != ""):
		return Representation{}, fmt.Errorf("untagged cannot be combined with tag or content")
	case a.Untagged:
		return Untagged(), nil
	case a.Content != "" && a.Tag == "":
		return Representation{}, fmt.Errorf("content %q requires a tag", a.Content)
	case a.Tag != "" && a.Content != "":
		return Adjacent(a.Tag, a.Content), nil
	case a.Tag != "":
		return Internal(a.Tag), nil
	}
	return External(), nil
}
