package elm

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/registry"
	"github.com/broady/elmgen/elmgen/resolve"
)

// Encoder emits the JSON encoder for t, named {type}Encoder.
// Sums encode with one exhaustive case split over the variants.
func Encoder(t *resolve.Type, reg registry.Lookup) (string, error) {
	name := EncoderName(t)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s : %s -> Json.Encode.Value\n", name, t.Name)

	switch s := t.Shape.(type) {
	case *resolve.Unit:
		fmt.Fprintf(&buf, "%s _ =\n    Json.Encode.null\n", name)
	case *resolve.Newtype:
		e, err := lookup(t, reg, "", s.Element)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "%s (%s inner) =\n    (%s) inner\n", name, t.Name, e.Encoder)
	case *resolve.Tuple:
		slots := slotNames(len(s.Elements))
		items, err := positionalEncoders(t, reg, "", s.Elements, slots)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "%s (%s %s) =\n    Json.Encode.list identity\n", name, t.Name, strings.Join(slots, " "))
		writeList(&buf, items)
	case *resolve.Product:
		if len(s.Fields) == 0 {
			fmt.Fprintf(&buf, "%s _ =\n    Json.Encode.object []\n", name)
			break
		}
		pairs, err := fieldEncoders(t, reg, "", s.Fields, "struct.")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "%s %s =\n    Json.Encode.object\n", name, productPattern(t))
		writeList(&buf, pairs)
	case *resolve.Sum:
		fmt.Fprintf(&buf, "%s enum =\n    case enum of\n", name)
		for _, v := range s.Variants {
			pattern, body, err := variantEncoder(t, reg, s.Representation, v)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&buf, "        %s ->\n            %s\n", pattern, body)
		}
	default:
		return "", fmt.Errorf("unsupported shape %T", t.Shape)
	}
	return buf.String(), nil
}

// writeList writes a multi-line Elm list literal indented under an expression.
func writeList(buf *bytes.Buffer, items []string) {
	for i, item := range items {
		if i == 0 {
			buf.WriteString("        [ ")
		} else {
			buf.WriteString("        , ")
		}
		buf.WriteString(item)
		buf.WriteString("\n")
	}
	buf.WriteString("        ]\n")
}

// inlineList renders a single-line Elm list literal.
func inlineList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	return "[ " + strings.Join(items, ", ") + " ]"
}

func positionalEncoders(t *resolve.Type, reg registry.Lookup, member string, elems []ir.TypeDescriptor, slots []string) ([]string, error) {
	var items []string
	for i, td := range elems {
		e, err := lookup(t, reg, member, td)
		if err != nil {
			return nil, err
		}
		items = append(items, fmt.Sprintf("(%s) %s", e.Encoder, slots[i]))
	}
	return items, nil
}

// fieldEncoders returns one ( "name", value ) pair per field using its encode name.
// Field values are read as prefix + field name.
func fieldEncoders(t *resolve.Type, reg registry.Lookup, variant string, fields []resolve.Field, prefix string) ([]string, error) {
	var pairs []string
	for _, f := range fields {
		e, err := fieldLookup(t, reg, memberName(variant, f), f)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, fmt.Sprintf("( %s, (%s) %s%s )", quote(f.EncodeName), e.Encoder, prefix, f.ElmName))
	}
	return pairs, nil
}

// productPattern binds a record argument; a recursive record is unwrapped
// from its single-constructor custom type.
func productPattern(t *resolve.Type) string {
	if t.Recursive {
		return "(" + t.Name + " struct)"
	}
	return "struct"
}

func tagPair(tag, name string) string {
	return fmt.Sprintf("( %s, Json.Encode.string %s )", quote(tag), quote(name))
}

// variantEncoder returns the case pattern and the encoding expression for v.
func variantEncoder(t *resolve.Type, reg registry.Lookup, rep ir.Representation, v resolve.Variant) (pattern, body string, err error) {
	var payload string // the encoded payload, "" for unit variants
	var fieldPairs []string
	switch v.Kind {
	case ir.VariantUnit:
		pattern = v.ElmName
	case ir.VariantNewtype:
		pattern = v.ElmName + " inner"
		e, err := lookup(t, reg, v.Ident, v.Elements[0])
		if err != nil {
			return "", "", err
		}
		payload = fmt.Sprintf("(%s) inner", e.Encoder)
	case ir.VariantTuple:
		slots := slotNames(len(v.Elements))
		pattern = v.ElmName + " " + strings.Join(slots, " ")
		items, err := positionalEncoders(t, reg, v.Ident, v.Elements, slots)
		if err != nil {
			return "", "", err
		}
		payload = "Json.Encode.list identity " + inlineList(items)
	case ir.VariantStruct:
		pattern = v.ElmName + " " + recordPattern(v.Fields)
		fieldPairs, err = fieldEncoders(t, reg, v.Ident, v.Fields, recordVar+".")
		if err != nil {
			return "", "", err
		}
		payload = "Json.Encode.object " + inlineList(fieldPairs)
	default:
		return "", "", fmt.Errorf("unsupported variant kind %s", v.Kind)
	}

	switch rep.Kind {
	case ir.RepExternal:
		if v.Kind == ir.VariantUnit {
			return pattern, "Json.Encode.string " + quote(v.EncodeName), nil
		}
		return pattern, fmt.Sprintf("Json.Encode.object [ ( %s, %s ) ]", quote(v.EncodeName), payload), nil
	case ir.RepInternal:
		pairs := append([]string{tagPair(rep.Tag, v.EncodeName)}, fieldPairs...)
		return pattern, "Json.Encode.object " + inlineList(pairs), nil
	case ir.RepAdjacent:
		pairs := []string{tagPair(rep.Tag, v.EncodeName)}
		if payload != "" {
			pairs = append(pairs, fmt.Sprintf("( %s, %s )", quote(rep.Content), payload))
		}
		return pattern, "Json.Encode.object " + inlineList(pairs), nil
	case ir.RepUntagged:
		if v.Kind == ir.VariantUnit {
			return pattern, "Json.Encode.null", nil
		}
		return pattern, payload, nil
	}
	return "", "", fmt.Errorf("unsupported representation %s", rep)
}
