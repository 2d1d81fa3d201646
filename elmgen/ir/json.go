package ir

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/broady/elmgen/elmgen/naming"
)

// JSON serialization support for IR types.
// Descriptors and shapes carry a "kind" member for type discrimination.

type schemaJSON struct {
	Package  *packageJSON   `json:"package,omitempty"`
	Types    []typeDeclJSON `json:"types"`
	Warnings []Warning      `json:"warnings,omitempty"`
}

type packageJSON struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
	Dir  string `json:"dir,omitempty"`
}

type typeDeclJSON struct {
	Name    string              `json:"name"`
	Package string              `json:"package,omitempty"`
	Shape   *shapeJSON          `json:"shape"`
	Attrs   *containerAttrsJSON `json:"attrs,omitempty"`
	Doc     string              `json:"doc,omitempty"`
}

type shapeJSON struct {
	Kind     string            `json:"kind"`
	Element  *descriptorJSON   `json:"element,omitempty"`
	Elements []*descriptorJSON `json:"elements,omitempty"`
	Fields   []fieldJSON       `json:"fields,omitempty"`
	Variants []variantJSON     `json:"variants,omitempty"`
	Members  []*descriptorJSON `json:"members,omitempty"`
}

type renameAllJSON struct {
	Both        naming.Rule `json:"both,omitempty"`
	Serialize   naming.Rule `json:"serialize,omitempty"`
	Deserialize naming.Rule `json:"deserialize,omitempty"`
}

type containerAttrsJSON struct {
	RenameAll       *renameAllJSON `json:"renameAll,omitempty"`
	RenameAllFields *renameAllJSON `json:"renameAllFields,omitempty"`
	Tag             string         `json:"tag,omitempty"`
	Content         string         `json:"content,omitempty"`
	Untagged        bool           `json:"untagged,omitempty"`
	Transparent     bool           `json:"transparent,omitempty"`
}

type fieldJSON struct {
	Name              string          `json:"name"`
	Type              *descriptorJSON `json:"type"`
	Rename            string          `json:"rename,omitempty"`
	RenameSerialize   string          `json:"renameSerialize,omitempty"`
	RenameDeserialize string          `json:"renameDeserialize,omitempty"`
	Skip              bool            `json:"skip,omitempty"`
	Aliases           []string        `json:"aliases,omitempty"`
	Optional          bool            `json:"optional,omitempty"`
	StringEncoded     bool            `json:"stringEncoded,omitempty"`
	Doc               string          `json:"doc,omitempty"`
}

type variantJSON struct {
	Name              string            `json:"name"`
	Kind              string            `json:"kind"`
	Elements          []*descriptorJSON `json:"elements,omitempty"`
	Fields            []fieldJSON       `json:"fields,omitempty"`
	Rename            string            `json:"rename,omitempty"`
	RenameSerialize   string            `json:"renameSerialize,omitempty"`
	RenameDeserialize string            `json:"renameDeserialize,omitempty"`
	RenameAll         *renameAllJSON    `json:"renameAll,omitempty"`
	Skip              bool              `json:"skip,omitempty"`
	Other             bool              `json:"other,omitempty"`
	Aliases           []string          `json:"aliases,omitempty"`
	Doc               string            `json:"doc,omitempty"`
}

type descriptorJSON struct {
	Kind          string            `json:"kind"`
	PrimitiveKind string            `json:"primitiveKind,omitempty"`
	BitSize       int               `json:"bitSize,omitempty"`
	Element       *descriptorJSON   `json:"element,omitempty"`
	Length        int               `json:"length,omitempty"`
	Key           *descriptorJSON   `json:"key,omitempty"`
	Value         *descriptorJSON   `json:"value,omitempty"`
	Elements      []*descriptorJSON `json:"elements,omitempty"`
	Ok            *descriptorJSON   `json:"ok,omitempty"`
	Err           *descriptorJSON   `json:"err,omitempty"`
	Name          string            `json:"name,omitempty"`
	Package       string            `json:"package,omitempty"`
}

// MarshalJSON implements json.Marshaler for Schema.
func (s *Schema) MarshalJSON() ([]byte, error) {
	out := schemaJSON{Types: []typeDeclJSON{}, Warnings: s.Warnings}
	if !s.Package.IsZero() {
		out.Package = &packageJSON{Path: s.Package.Path, Name: s.Package.Name, Dir: s.Package.Dir}
	}
	for _, t := range s.Types {
		shape, err := encodeShape(t.Shape)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", t.Name, err)
		}
		out.Types = append(out.Types, typeDeclJSON{
			Name:    t.Name.Name,
			Package: t.Name.Package,
			Shape:   shape,
			Attrs:   encodeContainerAttrs(t.Attrs),
			Doc:     t.Documentation.Body,
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for Schema.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var in schemaJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Schema{Warnings: in.Warnings}
	if in.Package != nil {
		s.Package = PackageInfo{Path: in.Package.Path, Name: in.Package.Name, Dir: in.Package.Dir}
	}
	for i, t := range in.Types {
		if t.Name == "" {
			return fmt.Errorf("types[%d]: missing name", i)
		}
		shape, err := decodeShape(t.Shape)
		if err != nil {
			return fmt.Errorf("type %s: %w", t.Name, err)
		}
		s.AddType(&TypeDecl{
			Name:          GoIdentifier{Name: t.Name, Package: t.Package},
			Shape:         shape,
			Attrs:         decodeContainerAttrs(t.Attrs),
			Documentation: documentationOf(t.Doc),
		})
	}
	return nil
}

// DecodeSchema reads a JSON schema document, as written by EncodeSchema.
func DecodeSchema(r io.Reader) (*Schema, error) {
	var s Schema
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return &s, nil
}

// EncodeSchema writes s as an indented JSON document.
func EncodeSchema(w io.Writer, s *Schema) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func encodeShape(s Shape) (*shapeJSON, error) {
	var err error
	switch s := s.(type) {
	case *UnitShape:
		return &shapeJSON{Kind: "unit"}, nil
	case *NewtypeShape:
		out := &shapeJSON{Kind: "newtype"}
		out.Element, err = encodeDescriptor(s.Element)
		return out, err
	case *TupleShape:
		out := &shapeJSON{Kind: "tuple"}
		out.Elements, err = encodeDescriptors(s.Elements)
		return out, err
	case *ProductShape:
		out := &shapeJSON{Kind: "product"}
		out.Fields, err = encodeFields(s.Fields)
		return out, err
	case *SumShape:
		out := &shapeJSON{Kind: "sum"}
		for _, v := range s.Variants {
			vj := variantJSON{
				Name:              v.Name,
				Kind:              v.Kind.String(),
				Rename:            v.Attrs.Rename,
				RenameSerialize:   v.Attrs.RenameSerialize,
				RenameDeserialize: v.Attrs.RenameDeserialize,
				RenameAll:         encodeRenameAll(v.Attrs.RenameAll),
				Skip:              v.Attrs.Skip,
				Other:             v.Attrs.Other,
				Aliases:           v.Attrs.Aliases,
				Doc:               v.Documentation.Body,
			}
			if vj.Elements, err = encodeDescriptors(v.Elements); err != nil {
				return nil, fmt.Errorf("variant %s: %w", v.Name, err)
			}
			if vj.Fields, err = encodeFields(v.Fields); err != nil {
				return nil, fmt.Errorf("variant %s: %w", v.Name, err)
			}
			out.Variants = append(out.Variants, vj)
		}
		return out, nil
	case *UnionShape:
		out := &shapeJSON{Kind: "union"}
		out.Members, err = encodeDescriptors(s.Members)
		return out, err
	case nil:
		return nil, fmt.Errorf("missing shape")
	}
	return nil, fmt.Errorf("unsupported shape %T", s)
}

func decodeShape(s *shapeJSON) (Shape, error) {
	if s == nil {
		return nil, fmt.Errorf("missing shape")
	}
	switch s.Kind {
	case "unit":
		return &UnitShape{}, nil
	case "newtype":
		elem, err := decodeDescriptor(s.Element)
		if err != nil {
			return nil, err
		}
		return &NewtypeShape{Element: elem}, nil
	case "tuple":
		elems, err := decodeDescriptors(s.Elements)
		if err != nil {
			return nil, err
		}
		return &TupleShape{Elements: elems}, nil
	case "product":
		fields, err := decodeFields(s.Fields)
		if err != nil {
			return nil, err
		}
		return &ProductShape{Fields: fields}, nil
	case "sum":
		sum := &SumShape{}
		for _, vj := range s.Variants {
			kind, ok := parseVariantKind(vj.Kind)
			if !ok {
				return nil, fmt.Errorf("variant %s: unknown kind %q", vj.Name, vj.Kind)
			}
			elems, err := decodeDescriptors(vj.Elements)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", vj.Name, err)
			}
			fields, err := decodeFields(vj.Fields)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", vj.Name, err)
			}
			sum.Variants = append(sum.Variants, Variant{
				Name:     vj.Name,
				Kind:     kind,
				Elements: elems,
				Fields:   fields,
				Attrs: VariantAttrs{
					Rename:            vj.Rename,
					RenameSerialize:   vj.RenameSerialize,
					RenameDeserialize: vj.RenameDeserialize,
					RenameAll:         decodeRenameAll(vj.RenameAll),
					Skip:              vj.Skip,
					Other:             vj.Other,
					Aliases:           vj.Aliases,
				},
				Documentation: documentationOf(vj.Doc),
			})
		}
		return sum, nil
	case "union":
		members, err := decodeDescriptors(s.Members)
		if err != nil {
			return nil, err
		}
		return &UnionShape{Members: members}, nil
	}
	return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
}

func parseVariantKind(s string) (VariantKind, bool) {
	for k := VariantUnit; k <= VariantStruct; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

func encodeFields(fields []Field) ([]fieldJSON, error) {
	var out []fieldJSON
	for _, f := range fields {
		td, err := encodeDescriptor(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out = append(out, fieldJSON{
			Name:              f.Name,
			Type:              td,
			Rename:            f.Attrs.Rename,
			RenameSerialize:   f.Attrs.RenameSerialize,
			RenameDeserialize: f.Attrs.RenameDeserialize,
			Skip:              f.Attrs.Skip,
			Aliases:           f.Attrs.Aliases,
			Optional:          f.Optional,
			StringEncoded:     f.StringEncoded,
			Doc:               f.Documentation.Body,
		})
	}
	return out, nil
}

func decodeFields(fields []fieldJSON) ([]Field, error) {
	var out []Field
	for _, f := range fields {
		td, err := decodeDescriptor(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out = append(out, Field{
			Name: f.Name,
			Type: td,
			Attrs: FieldAttrs{
				Rename:            f.Rename,
				RenameSerialize:   f.RenameSerialize,
				RenameDeserialize: f.RenameDeserialize,
				Skip:              f.Skip,
				Aliases:           f.Aliases,
			},
			Optional:      f.Optional,
			StringEncoded: f.StringEncoded,
			Documentation: documentationOf(f.Doc),
		})
	}
	return out, nil
}

func encodeRenameAll(r RenameAll) *renameAllJSON {
	if r.IsZero() {
		return nil
	}
	return &renameAllJSON{Both: r.Both, Serialize: r.Serialize, Deserialize: r.Deserialize}
}

func decodeRenameAll(r *renameAllJSON) RenameAll {
	if r == nil {
		return RenameAll{}
	}
	return RenameAll{Both: r.Both, Serialize: r.Serialize, Deserialize: r.Deserialize}
}

func encodeContainerAttrs(a ContainerAttrs) *containerAttrsJSON {
	if a == (ContainerAttrs{}) {
		return nil
	}
	return &containerAttrsJSON{
		RenameAll:       encodeRenameAll(a.RenameAll),
		RenameAllFields: encodeRenameAll(a.RenameAllFields),
		Tag:             a.Tag,
		Content:         a.Content,
		Untagged:        a.Untagged,
		Transparent:     a.Transparent,
	}
}

func decodeContainerAttrs(a *containerAttrsJSON) ContainerAttrs {
	if a == nil {
		return ContainerAttrs{}
	}
	return ContainerAttrs{
		RenameAll:       decodeRenameAll(a.RenameAll),
		RenameAllFields: decodeRenameAll(a.RenameAllFields),
		Tag:             a.Tag,
		Content:         a.Content,
		Untagged:        a.Untagged,
		Transparent:     a.Transparent,
	}
}

func encodeDescriptors(tds []TypeDescriptor) ([]*descriptorJSON, error) {
	var out []*descriptorJSON
	for _, td := range tds {
		d, err := encodeDescriptor(td)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeDescriptors(ds []*descriptorJSON) ([]TypeDescriptor, error) {
	var out []TypeDescriptor
	for _, d := range ds {
		td, err := decodeDescriptor(d)
		if err != nil {
			return nil, err
		}
		out = append(out, td)
	}
	return out, nil
}

func encodeDescriptor(td TypeDescriptor) (*descriptorJSON, error) {
	var err error
	switch d := td.(type) {
	case *PrimitiveDescriptor:
		return &descriptorJSON{Kind: "primitive", PrimitiveKind: d.PrimitiveKind.String(), BitSize: d.BitSize}, nil
	case *ArrayDescriptor:
		out := &descriptorJSON{Kind: "array", Length: d.Length}
		out.Element, err = encodeDescriptor(d.Element)
		return out, err
	case *MapDescriptor:
		out := &descriptorJSON{Kind: "map"}
		if out.Key, err = encodeDescriptor(d.Key); err != nil {
			return nil, err
		}
		out.Value, err = encodeDescriptor(d.Value)
		return out, err
	case *OptionDescriptor:
		out := &descriptorJSON{Kind: "option"}
		out.Element, err = encodeDescriptor(d.Element)
		return out, err
	case *PtrDescriptor:
		out := &descriptorJSON{Kind: "ptr"}
		out.Element, err = encodeDescriptor(d.Element)
		return out, err
	case *TupleDescriptor:
		out := &descriptorJSON{Kind: "tuple"}
		out.Elements, err = encodeDescriptors(d.Elements)
		return out, err
	case *ResultDescriptor:
		out := &descriptorJSON{Kind: "result"}
		if out.Ok, err = encodeDescriptor(d.Ok); err != nil {
			return nil, err
		}
		out.Err, err = encodeDescriptor(d.Err)
		return out, err
	case *UnitDescriptor:
		return &descriptorJSON{Kind: "unit"}, nil
	case *ReferenceDescriptor:
		return &descriptorJSON{Kind: "reference", Name: d.Target.Name, Package: d.Target.Package}, nil
	case nil:
		return nil, fmt.Errorf("missing type descriptor")
	}
	return nil, fmt.Errorf("unsupported type descriptor %T", td)
}

func decodeDescriptor(d *descriptorJSON) (TypeDescriptor, error) {
	if d == nil {
		return nil, fmt.Errorf("missing type descriptor")
	}
	switch d.Kind {
	case "primitive":
		kind, ok := parsePrimitiveKind(d.PrimitiveKind)
		if !ok {
			return nil, fmt.Errorf("unknown primitive kind %q", d.PrimitiveKind)
		}
		return &PrimitiveDescriptor{PrimitiveKind: kind, BitSize: d.BitSize}, nil
	case "array":
		elem, err := decodeDescriptor(d.Element)
		if err != nil {
			return nil, err
		}
		return Array(elem, d.Length), nil
	case "map":
		key, err := decodeDescriptor(d.Key)
		if err != nil {
			return nil, err
		}
		value, err := decodeDescriptor(d.Value)
		if err != nil {
			return nil, err
		}
		return Map(key, value), nil
	case "option":
		elem, err := decodeDescriptor(d.Element)
		if err != nil {
			return nil, err
		}
		return Option(elem), nil
	case "ptr":
		elem, err := decodeDescriptor(d.Element)
		if err != nil {
			return nil, err
		}
		return Ptr(elem), nil
	case "tuple":
		elems, err := decodeDescriptors(d.Elements)
		if err != nil {
			return nil, err
		}
		return TupleOf(elems...), nil
	case "result":
		ok, err := decodeDescriptor(d.Ok)
		if err != nil {
			return nil, err
		}
		e, err := decodeDescriptor(d.Err)
		if err != nil {
			return nil, err
		}
		return Result(ok, e), nil
	case "unit":
		return Unit(), nil
	case "reference":
		if d.Name == "" {
			return nil, fmt.Errorf("reference without a name")
		}
		return Ref(d.Name, d.Package), nil
	}
	return nil, fmt.Errorf("unknown type descriptor kind %q", d.Kind)
}

func documentationOf(body string) Documentation {
	if body == "" {
		return Documentation{}
	}
	return Documentation{Summary: Summary(body), Body: body}
}
