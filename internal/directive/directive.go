// Package directive parses elmgen directives from Go doc comments.
//
// Directives are line comments in the doc comment of a type declaration:
//
//	//elm:rename_all camelCase
//	//elm:rename_all serialize=snake_case deserialize=camelCase
//	//elm:tag kind
//	//elm:alias circle round
//	//elm:sum
//
// Container directives (rename_all, rename_all_fields, tag, content,
// untagged, transparent, tuple, sum) shape the type's own declaration.
// Variant directives (rename, alias, skip, other, newtype) apply when the
// type implements a sum interface. rename_all and tuple apply in both roles.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"reflect"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/naming"
)

const prefix = "//elm:"

// Attrs are the directives attached to one type declaration.
type Attrs struct {
	// Container holds the attributes of the type's own declaration.
	Container ir.ContainerAttrs

	// Variant holds the attributes used when the type is a sum variant.
	Variant ir.VariantAttrs

	// Sum marks an interface whose implementers are the variants of a sum.
	Sum bool

	// Tuple makes struct fields positional.
	Tuple bool

	// Newtype emits a single-field struct variant as a newtype variant.
	Newtype bool
}

// IsZero reports whether no directive was found.
func (a Attrs) IsZero() bool {
	return reflect.ValueOf(a).IsZero()
}

// Error is a malformed or unknown directive.
type Error struct {
	Pos     token.Position
	Text    string
	Message string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Text, e.Message)
	}
	return e.Text + ": " + e.Message
}

// Parse reads every //elm: line of a doc comment. A nil group yields zero Attrs.
func Parse(fset *token.FileSet, cg *ast.CommentGroup) (Attrs, error) {
	var attrs Attrs
	if cg == nil {
		return attrs, nil
	}
	for _, c := range cg.List {
		if !strings.HasPrefix(c.Text, prefix) {
			continue
		}
		if err := attrs.apply(c.Text); err != nil {
			var pos token.Position
			if fset != nil {
				pos = fset.Position(c.Pos())
			}
			return Attrs{}, &Error{Pos: pos, Text: c.Text, Message: err.Error()}
		}
	}
	return attrs, nil
}

// ParseLines is Parse for raw comment lines, as found in reflection registrations.
func ParseLines(lines ...string) (Attrs, error) {
	var attrs Attrs
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			return Attrs{}, &Error{Text: line, Message: "not an " + prefix + " directive"}
		}
		if err := attrs.apply(line); err != nil {
			return Attrs{}, &Error{Text: line, Message: err.Error()}
		}
	}
	return attrs, nil
}

func (a *Attrs) apply(line string) error {
	fields := strings.Fields(strings.TrimPrefix(line, prefix))
	if len(fields) == 0 {
		return fmt.Errorf("empty directive")
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "rename_all":
		r, err := renameAll(args)
		if err != nil {
			return err
		}
		a.Container.RenameAll = r
		a.Variant.RenameAll = r
	case "rename_all_fields":
		r, err := renameAll(args)
		if err != nil {
			return err
		}
		a.Container.RenameAllFields = r
	case "rename":
		both, ser, de, err := directional(args)
		if err != nil {
			return err
		}
		a.Variant.Rename, a.Variant.RenameSerialize, a.Variant.RenameDeserialize = both, ser, de
	case "alias":
		if len(args) == 0 {
			return fmt.Errorf("missing argument")
		}
		a.Variant.Aliases = append(a.Variant.Aliases, args...)
	case "tag":
		v, err := single(args)
		if err != nil {
			return err
		}
		a.Container.Tag = v
	case "content":
		v, err := single(args)
		if err != nil {
			return err
		}
		a.Container.Content = v
	case "untagged", "transparent", "tuple", "sum", "skip", "other", "newtype":
		if len(args) != 0 {
			return fmt.Errorf("%s takes no arguments", name)
		}
		a.flag(name)
	default:
		return fmt.Errorf("unknown directive %q", name)
	}
	return nil
}

func (a *Attrs) flag(name string) {
	switch name {
	case "untagged":
		a.Container.Untagged = true
	case "transparent":
		a.Container.Transparent = true
	case "tuple":
		a.Tuple = true
	case "sum":
		a.Sum = true
	case "skip":
		a.Variant.Skip = true
	case "other":
		a.Variant.Other = true
	case "newtype":
		a.Newtype = true
	}
}

func single(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one argument, got %d", len(args))
	}
	return args[0], nil
}

// directional parses "x" or any of "serialize=x" and "deserialize=y".
func directional(args []string) (both, ser, de string, err error) {
	if len(args) == 0 {
		return "", "", "", fmt.Errorf("missing argument")
	}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		switch {
		case !ok && len(args) == 1:
			both = arg
		case ok && key == "serialize" && value != "":
			ser = value
		case ok && key == "deserialize" && value != "":
			de = value
		default:
			return "", "", "", fmt.Errorf("invalid argument %q, want NAME or serialize=NAME deserialize=NAME", arg)
		}
	}
	return both, ser, de, nil
}

func renameAll(args []string) (ir.RenameAll, error) {
	both, ser, de, err := directional(args)
	if err != nil {
		return ir.RenameAll{}, err
	}
	var r ir.RenameAll
	for _, p := range []struct {
		dst *naming.Rule
		src string
	}{{&r.Both, both}, {&r.Serialize, ser}, {&r.Deserialize, de}} {
		if *p.dst, err = naming.ParseRule(p.src); err != nil {
			return ir.RenameAll{}, err
		}
	}
	return r, nil
}
