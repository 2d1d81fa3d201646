package provider

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
)

// fieldAttrs reads the elm and json struct tags of a field.
//
//	elm:"name,serialize=x,deserialize=y,alias=a,alias=b"
//	elm:"-"
//
// The json name and "-" apply unless the elm tag overrides them.
func fieldAttrs(tag reflect.StructTag) (ir.FieldAttrs, error) {
	var attrs ir.FieldAttrs

	if js, ok := tag.Lookup("json"); ok {
		name, _, _ := strings.Cut(js, ",")
		switch name {
		case "-":
			if js == "-" {
				attrs.Skip = true
			} else {
				attrs.Rename = "-"
			}
		case "":
		default:
			attrs.Rename = name
		}
	}

	et, ok := tag.Lookup("elm")
	if !ok {
		return attrs, nil
	}
	if et == "-" {
		attrs.Skip = true
		return attrs, nil
	}
	for i, item := range strings.Split(et, ",") {
		item = strings.TrimSpace(item)
		key, value, hasValue := strings.Cut(item, "=")
		switch {
		case item == "":
		case i == 0 && !hasValue && item != "skip":
			attrs.Rename = item
			attrs.Skip = false
		case item == "skip":
			attrs.Skip = true
		case key == "rename" && value != "":
			attrs.Rename = value
			attrs.Skip = false
		case key == "serialize" && value != "":
			attrs.RenameSerialize = value
		case key == "deserialize" && value != "":
			attrs.RenameDeserialize = value
		case key == "alias" && value != "":
			attrs.Aliases = append(attrs.Aliases, value)
		default:
			return ir.FieldAttrs{}, fmt.Errorf("invalid elm tag item %q", item)
		}
	}
	return attrs, nil
}

// jsonOptions reads the encoding/json tag options that change a field's
// wire form: omitempty and omitzero let the member be left out, and string
// quotes a scalar value.
func jsonOptions(tag reflect.StructTag) (optional, stringEncoded bool) {
	js, ok := tag.Lookup("json")
	if !ok {
		return false, false
	}
	_, opts, _ := strings.Cut(js, ",")
	for opt := range strings.SplitSeq(opts, ",") {
		switch strings.TrimSpace(opt) {
		case "omitempty", "omitzero":
			optional = true
		case "string":
			stringEncoded = true
		}
	}
	return optional, stringEncoded
}

// embedded reports whether an anonymous field's members are promoted into
// the enclosing record, as encoding/json does for untagged embedded structs.
func embedded(tag reflect.StructTag) bool {
	if et, ok := tag.Lookup("elm"); ok && et != "" {
		return false
	}
	js := tag.Get("json")
	name, _, _ := strings.Cut(js, ",")
	return name == ""
}

func documentation(text string) ir.Documentation {
	body := strings.TrimSpace(text)
	if body == "" {
		return ir.Documentation{}
	}
	return ir.Documentation{Summary: ir.Summary(body), Body: body}
}
