package elm

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/registry"
	"github.com/broady/elmgen/elmgen/resolve"
)

const unexpectedVariant = `Json.Decode.fail <| "Unexpected variant " ++ unexpected`

// Decoder emits the JSON decoder for t, named {type}Decoder.
func Decoder(t *resolve.Type, reg registry.Lookup) (string, error) {
	name := DecoderName(t)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s : Json.Decode.Decoder %s\n%s =\n", name, t.Name, name)

	switch s := t.Shape.(type) {
	case *resolve.Unit:
		fmt.Fprintf(&buf, "    Json.Decode.null %s\n", t.Name)
	case *resolve.Newtype:
		e, err := lookup(t, reg, "", s.Element)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "    Json.Decode.map %s (%s)\n", t.Name, e.Decoder)
	case *resolve.Tuple:
		steps, err := indexSteps(t, reg, "", s.Elements)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "    Json.Decode.succeed %s\n", t.Name)
		for _, step := range steps {
			fmt.Fprintf(&buf, "        %s\n", step)
		}
	case *resolve.Product:
		if len(s.Fields) == 0 {
			buf.WriteString("    Json.Decode.succeed {}\n")
			break
		}
		steps, err := fieldSteps(t, reg, "", s.Fields)
		if err != nil {
			return "", err
		}
		head := t.Name
		if t.Recursive {
			// A recursive record is a custom type wrapping the record.
			head = "construct" + t.Name
			buf.WriteString("    let\n")
			writeConstructor(&buf, head, t.Name, s.Fields)
			buf.WriteString("    in\n")
		}
		fmt.Fprintf(&buf, "    Json.Decode.succeed %s\n", head)
		for _, step := range steps {
			fmt.Fprintf(&buf, "        %s\n", step)
		}
	case *resolve.Sum:
		if err := sumDecoder(&buf, t, reg, s); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported shape %T", t.Shape)
	}
	return buf.String(), nil
}

// indexSteps returns one pipeline step per positional slot.
func indexSteps(t *resolve.Type, reg registry.Lookup, member string, elems []ir.TypeDescriptor) ([]string, error) {
	var steps []string
	for i, td := range elems {
		e, err := lookup(t, reg, member, td)
		if err != nil {
			return nil, err
		}
		steps = append(steps, fmt.Sprintf(`|> Json.Decode.andThen (\x -> Json.Decode.index %d (%s) |> Json.Decode.map x)`, i, e.Decoder))
	}
	return steps, nil
}

// fieldSteps returns one pipeline step per field, reading its decode name.
func fieldSteps(t *resolve.Type, reg registry.Lookup, variant string, fields []resolve.Field) ([]string, error) {
	var steps []string
	for _, f := range fields {
		e, err := fieldLookup(t, reg, memberName(variant, f), f)
		if err != nil {
			return nil, err
		}
		steps = append(steps, fmt.Sprintf(`|> Json.Decode.andThen (\x -> Json.Decode.map x (%s))`, fieldDecoder(f, e)))
	}
	return steps, nil
}

// fieldDecoder reads a field by its decode name, falling back to its aliases.
// An optional field absent under every name decodes as the empty value.
func fieldDecoder(f resolve.Field, e registry.Entry) string {
	names := append([]string{f.DecodeName}, f.Aliases...)
	if f.Optional {
		out := "Json.Decode.succeed " + e.Zero
		for _, name := range slices.Backward(names) {
			out = fmt.Sprintf("optionalField %s (%s) (%s)", quote(name), e.Decoder, out)
		}
		return out
	}
	if len(names) == 1 {
		return fmt.Sprintf("Json.Decode.field %s (%s)", quote(f.DecodeName), e.Decoder)
	}
	var alts []string
	for _, name := range names {
		alts = append(alts, fmt.Sprintf("Json.Decode.field %s (%s)", quote(name), e.Decoder))
	}
	return "Json.Decode.oneOf [ " + strings.Join(alts, ", ") + " ]"
}

// pipeline joins a head expression and its steps on one line.
func pipeline(head string, steps []string) string {
	if len(steps) == 0 {
		return head
	}
	return head + " " + strings.Join(steps, " ")
}

func sumDecoder(buf *bytes.Buffer, t *resolve.Type, reg registry.Lookup, s *resolve.Sum) error {
	writeConstructors(buf, s)

	switch s.Representation.Kind {
	case ir.RepExternal:
		var items []string
		for _, v := range s.Normal() {
			vitems, err := externalVariantDecoders(t, reg, v)
			if err != nil {
				return err
			}
			items = append(items, vitems...)
		}
		if other := s.Other(); other != nil {
			items = append(items, "Json.Decode.succeed "+other.ElmName)
		}
		writeOneOf(buf, items)
	case ir.RepInternal, ir.RepAdjacent:
		var branches []string
		for _, v := range s.Normal() {
			body, err := taggedVariantDecoder(t, reg, s.Representation, v)
			if err != nil {
				return err
			}
			for _, name := range decodeNames(v) {
				branches = append(branches, fmt.Sprintf("%s ->\n                        %s", quote(name), body))
			}
		}
		if other := s.Other(); other != nil {
			branches = append(branches, "_ ->\n                        Json.Decode.succeed "+other.ElmName)
		} else {
			branches = append(branches, "unexpected ->\n                        "+unexpectedVariant)
		}
		fmt.Fprintf(buf, "    Json.Decode.field %s Json.Decode.string\n", quote(s.Representation.Tag))
		buf.WriteString("        |> Json.Decode.andThen\n")
		buf.WriteString("            (\\tag ->\n")
		buf.WriteString("                case tag of\n")
		for _, b := range branches {
			fmt.Fprintf(buf, "                    %s\n", b)
		}
		buf.WriteString("            )\n")
	case ir.RepUntagged:
		var items []string
		for _, v := range s.Normal() {
			item, err := untaggedVariantDecoder(t, reg, v)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		if other := s.Other(); other != nil {
			items = append(items, "Json.Decode.succeed "+other.ElmName)
		}
		writeOneOf(buf, items)
	default:
		return fmt.Errorf("unsupported representation %s", s.Representation)
	}
	return nil
}

// writeConstructors emits a let block with one constructor helper per struct variant.
func writeConstructors(buf *bytes.Buffer, s *resolve.Sum) {
	var helpers []resolve.Variant
	for _, v := range s.Variants {
		if v.Kind == ir.VariantStruct {
			helpers = append(helpers, v)
		}
	}
	if len(helpers) == 0 {
		return
	}
	buf.WriteString("    let\n")
	for _, v := range helpers {
		writeConstructor(buf, constructorName(v), v.ElmName, v.Fields)
	}
	buf.WriteString("    in\n")
}

// writeConstructor emits a let-bound function taking the fields in order
// and applying ctor to the record they form.
func writeConstructor(buf *bytes.Buffer, name, ctor string, fields []resolve.Field) {
	names := fieldNames(fields)
	var assigns []string
	for _, n := range names {
		assigns = append(assigns, n+" = "+n)
	}
	fmt.Fprintf(buf, "        %s", name)
	for _, n := range names {
		buf.WriteString(" " + n)
	}
	buf.WriteString(" =\n")
	if len(assigns) == 0 {
		fmt.Fprintf(buf, "            %s {}\n", ctor)
	} else {
		fmt.Fprintf(buf, "            %s { %s }\n", ctor, strings.Join(assigns, ", "))
	}
}

func writeOneOf(buf *bytes.Buffer, items []string) {
	buf.WriteString("    Json.Decode.oneOf\n")
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

// externalVariantDecoders returns the oneOf alternatives of an externally
// tagged variant: one string match for a unit variant, otherwise one
// single-key object per decode name.
func externalVariantDecoders(t *resolve.Type, reg registry.Lookup, v resolve.Variant) ([]string, error) {
	var body string
	switch v.Kind {
	case ir.VariantUnit:
		var b strings.Builder
		b.WriteString("Json.Decode.string\n" +
			"            |> Json.Decode.andThen\n" +
			"                (\\x ->\n" +
			"                    case x of\n")
		for _, name := range decodeNames(v) {
			b.WriteString("                        " + quote(name) + " ->\n" +
				"                            Json.Decode.succeed " + v.ElmName + "\n")
		}
		b.WriteString("                        unexpected ->\n" +
			"                            " + unexpectedVariant + "\n" +
			"                )")
		return []string{b.String()}, nil
	case ir.VariantNewtype:
		e, err := lookup(t, reg, v.Ident, v.Elements[0])
		if err != nil {
			return nil, err
		}
		var items []string
		for _, name := range decodeNames(v) {
			items = append(items, fmt.Sprintf("Json.Decode.map %s (Json.Decode.field %s (%s))", v.ElmName, quote(name), e.Decoder))
		}
		return items, nil
	case ir.VariantTuple:
		steps, err := indexSteps(t, reg, v.Ident, v.Elements)
		if err != nil {
			return nil, err
		}
		body = pipeline("Json.Decode.succeed "+v.ElmName, steps)
	case ir.VariantStruct:
		steps, err := fieldSteps(t, reg, v.Ident, v.Fields)
		if err != nil {
			return nil, err
		}
		body = pipeline("Json.Decode.succeed "+constructorName(v), steps)
	default:
		return nil, fmt.Errorf("unsupported variant kind %s", v.Kind)
	}
	var items []string
	for _, name := range decodeNames(v) {
		items = append(items, fmt.Sprintf("Json.Decode.field %s (%s)", quote(name), body))
	}
	return items, nil
}

func taggedVariantDecoder(t *resolve.Type, reg registry.Lookup, rep ir.Representation, v resolve.Variant) (string, error) {
	switch v.Kind {
	case ir.VariantUnit:
		return "Json.Decode.succeed " + v.ElmName, nil
	case ir.VariantNewtype:
		e, err := lookup(t, reg, v.Ident, v.Elements[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Json.Decode.map %s (Json.Decode.field %s (%s))", v.ElmName, quote(rep.Content), e.Decoder), nil
	case ir.VariantTuple:
		steps, err := indexSteps(t, reg, v.Ident, v.Elements)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Json.Decode.field %s (%s)", quote(rep.Content), pipeline("Json.Decode.succeed "+v.ElmName, steps)), nil
	case ir.VariantStruct:
		steps, err := fieldSteps(t, reg, v.Ident, v.Fields)
		if err != nil {
			return "", err
		}
		body := pipeline("Json.Decode.succeed "+constructorName(v), steps)
		if rep.Kind == ir.RepInternal {
			return body, nil
		}
		return fmt.Sprintf("Json.Decode.field %s (%s)", quote(rep.Content), body), nil
	}
	return "", fmt.Errorf("unsupported variant kind %s", v.Kind)
}

func untaggedVariantDecoder(t *resolve.Type, reg registry.Lookup, v resolve.Variant) (string, error) {
	switch v.Kind {
	case ir.VariantUnit:
		return "Json.Decode.null " + v.ElmName, nil
	case ir.VariantNewtype:
		e, err := lookup(t, reg, v.Ident, v.Elements[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Json.Decode.map %s (%s)", v.ElmName, e.Decoder), nil
	case ir.VariantTuple:
		steps, err := indexSteps(t, reg, v.Ident, v.Elements)
		if err != nil {
			return "", err
		}
		return pipeline("Json.Decode.succeed "+v.ElmName, steps), nil
	case ir.VariantStruct:
		steps, err := fieldSteps(t, reg, v.Ident, v.Fields)
		if err != nil {
			return "", err
		}
		return pipeline("Json.Decode.succeed "+constructorName(v), steps), nil
	}
	return "", fmt.Errorf("unsupported variant kind %s", v.Kind)
}
