// Package elm generates Elm source text from resolved types: type
// declarations, JSON decoders and encoders, and query-string encoders.
//
// Every generator is a pure function of a resolved type and a registry.
// Output is deterministic and uses four-space indentation.
package elm

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/registry"
	"github.com/broady/elmgen/elmgen/resolve"
)

// Declaration emits the Elm type declaration for t.
// Sum declarations do not depend on the representation.
func Declaration(t *resolve.Type, reg registry.Lookup) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(docComment(t.Documentation))

	switch s := t.Shape.(type) {
	case *resolve.Unit:
		fmt.Fprintf(&buf, "type %s\n    = %s\n", t.Name, t.Name)
	case *resolve.Newtype:
		args, err := declArgs(t, reg, "", []ir.TypeDescriptor{s.Element})
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "type %s\n    = %s%s\n", t.Name, t.Name, args)
	case *resolve.Tuple:
		args, err := declArgs(t, reg, "", s.Elements)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "type %s\n    = %s%s\n", t.Name, t.Name, args)
	case *resolve.Product:
		// Elm rejects recursive type aliases, so a recursive record is
		// wrapped in a custom type of the same name.
		indent := "    "
		if t.Recursive {
			fmt.Fprintf(&buf, "type %s\n    = %s\n", t.Name, t.Name)
			indent = "        "
		} else {
			fmt.Fprintf(&buf, "type alias %s =\n", t.Name)
		}
		if len(s.Fields) == 0 {
			buf.WriteString(indent + "{}\n")
			break
		}
		for i, f := range s.Fields {
			e, err := fieldLookup(t, reg, f.Ident, f)
			if err != nil {
				return "", err
			}
			if i == 0 {
				buf.WriteString(indent + "{ ")
			} else {
				buf.WriteString(indent + ", ")
			}
			fmt.Fprintf(&buf, "%s : %s\n", f.ElmName, e.Type)
		}
		buf.WriteString(indent + "}\n")
	case *resolve.Sum:
		fmt.Fprintf(&buf, "type %s\n", t.Name)
		for i, v := range s.Variants {
			if i == 0 {
				buf.WriteString("    = ")
			} else {
				buf.WriteString("    | ")
			}
			line, err := variantDeclaration(t, reg, v)
			if err != nil {
				return "", err
			}
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	default:
		return "", fmt.Errorf("unsupported shape %T", t.Shape)
	}
	return buf.String(), nil
}

func variantDeclaration(t *resolve.Type, reg registry.Lookup, v resolve.Variant) (string, error) {
	switch v.Kind {
	case ir.VariantUnit:
		return v.ElmName, nil
	case ir.VariantNewtype, ir.VariantTuple:
		args, err := declArgs(t, reg, v.Ident, v.Elements)
		if err != nil {
			return "", err
		}
		return v.ElmName + args, nil
	case ir.VariantStruct:
		var fields []string
		for _, f := range v.Fields {
			e, err := fieldLookup(t, reg, memberName(v.Ident, f), f)
			if err != nil {
				return "", err
			}
			fields = append(fields, f.ElmName+" : "+e.Type)
		}
		if len(fields) == 0 {
			return v.ElmName + " {}", nil
		}
		return v.ElmName + " { " + strings.Join(fields, ", ") + " }", nil
	}
	return "", fmt.Errorf("unsupported variant kind %s", v.Kind)
}

// declArgs renders constructor arguments as " (A) (B)".
func declArgs(t *resolve.Type, reg registry.Lookup, member string, elems []ir.TypeDescriptor) (string, error) {
	var b strings.Builder
	for _, td := range elems {
		e, err := lookup(t, reg, member, td)
		if err != nil {
			return "", err
		}
		b.WriteString(" (")
		b.WriteString(e.Type)
		b.WriteString(")")
	}
	return b.String(), nil
}
