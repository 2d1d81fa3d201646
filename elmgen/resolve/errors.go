package resolve

import (
	"fmt"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
)

// Error codes reported by Resolve.
const (
	CodeEmptySum            = "empty_sum"
	CodeIncompatibleTagging = "incompatible_tagging"
	CodeConflictingTagging  = "conflicting_tagging"
	CodeUnionType           = "union_type"
	CodeInvalidOther        = "invalid_other"
	CodeInvalidShape        = "invalid_shape"
	CodeDuplicateName       = "duplicate_name"
)

// Error is a resolution failure for one type declaration.
type Error struct {
	// Code is a machine-readable identifier, one of the Code constants.
	Code string

	// Type is the declaration that failed to resolve.
	Type ir.GoIdentifier

	// Member is the offending field or variant, if any.
	Member string

	// Source is the location of the offending declaration, if known.
	Source ir.Source

	// Message is a human-readable description.
	Message string
}

func (e *Error) Error() string {
	var b strings.Builder
	if !e.Source.IsZero() {
		fmt.Fprintf(&b, "%s:%d: ", e.Source.File, e.Source.Line)
	}
	b.WriteString(e.Type.Name)
	if e.Member != "" {
		b.WriteString(".")
		b.WriteString(e.Member)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func newError(decl *ir.TypeDecl, code, member string, src ir.Source, format string, args ...any) *Error {
	if src.IsZero() {
		src = decl.Source
	}
	return &Error{
		Code:    code,
		Type:    decl.Name,
		Member:  member,
		Source:  src,
		Message: fmt.Sprintf(format, args...),
	}
}
