package elm

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/registry"
	"github.com/broady/elmgen/elmgen/resolve"
)

// Query emits urlEncode{T}, mapping a record (or a sum of record and unit
// variants) to a list of query parameters keyed by encode names.
// Optional fields are left out when Nothing.
func Query(t *resolve.Type, reg registry.Lookup) (string, error) {
	name := QueryName(t)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s : %s -> List Url.Builder.QueryParameter\n", name, t.Name)

	switch s := t.Shape.(type) {
	case *resolve.Product:
		params, err := queryParams(t, reg, "", s.Fields, "struct.")
		if err != nil {
			return "", err
		}
		arg := productPattern(t)
		if len(s.Fields) == 0 {
			arg = "_"
		}
		fmt.Fprintf(&buf, "%s %s =\n    %s\n", name, arg, params)
	case *resolve.Sum:
		for _, v := range s.Variants {
			if v.Kind != ir.VariantUnit && v.Kind != ir.VariantStruct {
				return "", newError(t, CodeQueryShape, v.Ident, nil,
					"query encoders support only record and unit variants, %s is a %s variant", v.Ident, v.Kind)
			}
		}
		fmt.Fprintf(&buf, "%s enum =\n    case enum of\n", name)
		for _, v := range s.Variants {
			if v.Kind == ir.VariantUnit {
				fmt.Fprintf(&buf, "        %s ->\n            []\n", v.ElmName)
				continue
			}
			params, err := queryParams(t, reg, v.Ident, v.Fields, recordVar+".")
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&buf, "        %s %s ->\n            %s\n", v.ElmName, recordPattern(v.Fields), params)
		}
	default:
		return "", newError(t, CodeQueryShape, "", nil, "query encoders support only records and sums of records, %s is a %s", t.Name, shapeName(t.Shape))
	}
	return buf.String(), nil
}

// queryParams renders the parameter list for a set of fields.
func queryParams(t *resolve.Type, reg registry.Lookup, variant string, fields []resolve.Field, prefix string) (string, error) {
	var (
		items    []string
		optional bool
	)
	entries := make([]registry.QueryEntry, len(fields))
	for i, f := range fields {
		member := memberName(variant, f)
		td := f.Type
		if f.Optional {
			// Matches the Maybe the record declares for it.
			if e, err := reg.Lookup(td); err == nil && e.Zero == "" {
				td = ir.Option(td)
			}
		}
		e, err := reg.QueryField(td)
		if err != nil {
			return "", newError(t, CodeUnsupportedQueryField, member, err, "field cannot be a query parameter")
		}
		entries[i] = e
		optional = optional || e.Optional
	}
	for i, f := range fields {
		e := entries[i]
		value := prefix + f.ElmName
		switch {
		case !optional:
			items = append(items, fmt.Sprintf("%s %s (%s %s)", e.Builder, quote(f.EncodeName), e.Encoder, value))
		case e.Optional:
			items = append(items, fmt.Sprintf("Maybe.map (%s %s << %s) %s", e.Builder, quote(f.EncodeName), e.Encoder, value))
		default:
			items = append(items, fmt.Sprintf("Just (%s %s (%s %s))", e.Builder, quote(f.EncodeName), e.Encoder, value))
		}
	}
	if optional {
		return "List.filterMap identity " + inlineList(items), nil
	}
	return inlineList(items), nil
}

// QueryFieldEncoder emits queryFieldEncoder{T}, mapping each variant of a
// unit-only sum to its encode name.
func QueryFieldEncoder(t *resolve.Type) (string, error) {
	s, ok := t.Shape.(*resolve.Sum)
	if !ok {
		return "", newError(t, CodeQueryFieldEnum, "", nil, "query field encoders need a sum of unit variants, %s is a %s", t.Name, shapeName(t.Shape))
	}
	for _, v := range s.Variants {
		if v.Kind != ir.VariantUnit {
			return "", newError(t, CodeQueryFieldEnum, v.Ident, nil, "query field encoders need unit variants, %s is a %s variant", v.Ident, v.Kind)
		}
	}

	name := QueryFieldEncoderName(t)
	var branches []string
	for _, v := range s.Variants {
		branches = append(branches, fmt.Sprintf("%s -> %s", v.ElmName, quote(v.EncodeName)))
	}
	return fmt.Sprintf("%s : %s -> String\n%s var =\n    case var of\n        %s\n",
		name, t.Name, name, strings.Join(branches, "\n        ")), nil
}

func shapeName(s resolve.Shape) string {
	switch s.(type) {
	case *resolve.Unit:
		return "unit"
	case *resolve.Newtype:
		return "newtype"
	case *resolve.Tuple:
		return "tuple"
	case *resolve.Product:
		return "record"
	case *resolve.Sum:
		return "sum"
	}
	return "unknown shape"
}
