package elm

import (
	"slices"
	"strconv"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/naming"
	"github.com/broady/elmgen/elmgen/registry"
	"github.com/broady/elmgen/elmgen/resolve"
)

// quote returns s as an Elm string literal.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u{` + strconv.FormatInt(int64(r), 16) + `}`)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// DecoderName returns the name of the decoder function for t.
func DecoderName(t *resolve.Type) string {
	return naming.FunctionName(t.Name) + "Decoder"
}

// EncoderName returns the name of the encoder function for t.
func EncoderName(t *resolve.Type) string {
	return naming.FunctionName(t.Name) + "Encoder"
}

// QueryName returns the name of the query encoder function for t.
func QueryName(t *resolve.Type) string {
	return "urlEncode" + t.Name
}

// QueryFieldEncoderName returns the name of the query field encoder for t.
func QueryFieldEncoderName(t *resolve.Type) string {
	return "queryFieldEncoder" + t.Name
}

// constructorName is the local helper that builds a struct variant from its fields.
func constructorName(v resolve.Variant) string {
	return "construct" + v.ElmName
}

// slotNames returns t0, t1, ... for positional payloads.
func slotNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "t" + strconv.Itoa(i)
	}
	return names
}

// lookup wraps registry failures in an *Error naming the member.
func lookup(t *resolve.Type, reg registry.Lookup, member string, td ir.TypeDescriptor) (registry.Entry, error) {
	e, err := reg.Lookup(td)
	if err != nil {
		return registry.Entry{}, newError(t, CodeUnsupportedType, member, err, "no Elm mapping")
	}
	return e, nil
}

// fieldLookup returns the mapping of a field's value. String-encoded fields
// use the string forms. An optional field whose type has no empty value
// becomes a Maybe, Nothing when the member is absent.
func fieldLookup(t *resolve.Type, reg registry.Lookup, member string, f resolve.Field) (registry.Entry, error) {
	if !f.StringEncoded {
		e, err := lookup(t, reg, member, f.Type)
		if err != nil {
			return registry.Entry{}, err
		}
		return optional(f, e), nil
	}
	e, err := reg.StringEncoded(f.Type)
	if err != nil {
		return registry.Entry{}, newError(t, CodeUnsupportedType, member, err, "no string-encoded Elm mapping")
	}
	return optional(f, e), nil
}

func optional(f resolve.Field, e registry.Entry) registry.Entry {
	if !f.Optional {
		return e
	}
	if e.Zero == "" {
		e = registry.Maybe(e)
	}
	e.Definitions = append(slices.Clip(e.Definitions), registry.OptionalField)
	return e
}

// memberName qualifies a field with its variant, if any.
func memberName(variant string, f resolve.Field) string {
	if variant == "" {
		return f.Ident
	}
	return variant + "." + f.Ident
}

func fieldNames(fields []resolve.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.ElmName
	}
	return names
}

// recordVar binds the payload of a struct variant in case patterns. Fields
// are read through it so their names never shadow other bindings.
const recordVar = "record"

// recordPattern returns the pattern binding a struct variant's payload.
func recordPattern(fields []resolve.Field) string {
	if len(fields) == 0 {
		return "_"
	}
	return recordVar
}

// decodeNames returns the tags a variant is decoded from.
func decodeNames(v resolve.Variant) []string {
	return append([]string{v.DecodeName}, v.Aliases...)
}

// docComment renders documentation as an Elm doc comment, or "" when empty.
func docComment(doc ir.Documentation) string {
	body := strings.TrimSpace(doc.Body)
	if body == "" {
		return ""
	}
	body = strings.ReplaceAll(body, "-}", "- }")
	return "{-| " + body + "\n-}\n"
}
