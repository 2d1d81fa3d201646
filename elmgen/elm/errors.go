package elm

import (
	"fmt"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/resolve"
)

// Error codes reported by the generators.
const (
	CodeQueryShape            = "query_shape"
	CodeQueryFieldEnum        = "query_field_enum"
	CodeUnsupportedQueryField = "unsupported_query_field"
	CodeUnsupportedType       = "unsupported_type"
)

// Error is a generation failure for one type.
type Error struct {
	// Code is a machine-readable identifier, one of the Code constants.
	Code string

	// Type is the Go identity of the type being generated.
	Type ir.GoIdentifier

	// Member is the offending field or variant, if any.
	Member string

	// Source is the location of the type declaration, if known.
	Source ir.Source

	// Message is a human-readable description.
	Message string

	// Err is the underlying registry error, if any.
	Err error
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
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(t *resolve.Type, code, member string, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Type:    t.Ident,
		Member:  member,
		Source:  t.Source,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
