package resolve

import (
	"errors"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/naming"
)

// Schema resolves every declaration of s. Types that resolve are returned in
// schema order; failures are joined into the returned error.
func Schema(s *ir.Schema) ([]*Type, error) {
	var (
		types []*Type
		errs  []error
	)
	for _, decl := range s.Types {
		t, err := Resolve(decl)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		types = append(types, t)
	}
	MarkRecursive(types...)
	return types, errors.Join(errs...)
}

// Resolve applies attribute policy to a single declaration.
func Resolve(decl *ir.TypeDecl) (*Type, error) {
	t := &Type{
		Name:          naming.TypeName(decl.Name.Name),
		Ident:         decl.Name,
		Documentation: decl.Documentation,
		Source:        decl.Source,
	}

	if decl.Attrs.Transparent {
		shape, err := resolveTransparent(decl)
		if err != nil {
			return nil, err
		}
		t.Shape = shape
		return t, nil
	}

	switch s := decl.Shape.(type) {
	case *ir.UnitShape:
		t.Shape = &Unit{}
	case *ir.NewtypeShape:
		t.Shape = &Newtype{Element: s.Element}
	case *ir.TupleShape:
		if len(s.Elements) < 2 {
			return nil, newError(decl, CodeInvalidShape, "", ir.Source{}, "tuple needs at least 2 elements, has %d", len(s.Elements))
		}
		t.Shape = &Tuple{Elements: s.Elements}
	case *ir.ProductShape:
		fields, err := resolveFields(decl, "", s.Fields, decl.Attrs.RenameAll)
		if err != nil {
			return nil, err
		}
		t.Shape = &Product{Fields: fields}
	case *ir.SumShape:
		sum, err := resolveSum(decl, s)
		if err != nil {
			return nil, err
		}
		t.Shape = sum
	case *ir.UnionShape:
		return nil, newError(decl, CodeUnionType, "", ir.Source{}, "union types have no Elm representation")
	default:
		return nil, newError(decl, CodeInvalidShape, "", ir.Source{}, "unsupported shape %T", decl.Shape)
	}
	return t, nil
}

// resolveTransparent collapses a single-field record into a newtype.
func resolveTransparent(decl *ir.TypeDecl) (Shape, error) {
	switch s := decl.Shape.(type) {
	case *ir.NewtypeShape:
		return &Newtype{Element: s.Element}, nil
	case *ir.ProductShape:
		var kept []ir.Field
		for _, f := range s.Fields {
			if !f.Attrs.Skip {
				kept = append(kept, f)
			}
		}
		if len(kept) != 1 {
			return nil, newError(decl, CodeInvalidShape, "", ir.Source{}, "transparent record must have exactly 1 field, has %d", len(kept))
		}
		return &Newtype{Element: kept[0].Type}, nil
	}
	return nil, newError(decl, CodeInvalidShape, "", ir.Source{}, "transparent applies only to single-field records")
}

func resolveSum(decl *ir.TypeDecl, s *ir.SumShape) (*Sum, error) {
	rep, err := decl.Attrs.Representation()
	if err != nil {
		return nil, newError(decl, CodeConflictingTagging, "", ir.Source{}, "%v", err)
	}

	sum := &Sum{Representation: rep}
	var other *ir.Variant
	for i := range s.Variants {
		v := &s.Variants[i]
		if v.Attrs.Skip {
			continue
		}

		if v.Attrs.Other {
			if other != nil {
				return nil, newError(decl, CodeInvalidOther, v.Name, v.Source, "only one other variant is allowed, already have %s", other.Name)
			}
			if v.Kind != ir.VariantUnit {
				return nil, newError(decl, CodeInvalidOther, v.Name, v.Source, "other variant must be a unit variant, is %s", v.Kind)
			}
			other = v
		}

		switch v.Kind {
		case ir.VariantNewtype:
			if len(v.Elements) != 1 {
				return nil, newError(decl, CodeInvalidShape, v.Name, v.Source, "newtype variant needs exactly 1 element, has %d", len(v.Elements))
			}
		case ir.VariantTuple:
			if len(v.Elements) < 2 {
				return nil, newError(decl, CodeInvalidShape, v.Name, v.Source, "tuple variant needs at least 2 elements, has %d", len(v.Elements))
			}
		}
		if rep.Kind == ir.RepInternal && (v.Kind == ir.VariantNewtype || v.Kind == ir.VariantTuple) {
			return nil, newError(decl, CodeIncompatibleTagging, v.Name, v.Source,
				"%s variant is not supported by internal tagging (tag %q)", v.Kind, rep.Tag)
		}

		enc, dec := memberNames(v.Name, v.Attrs.Rename, v.Attrs.RenameSerialize, v.Attrs.RenameDeserialize, decl.Attrs.RenameAll)
		rv := Variant{
			Ident:         v.Name,
			ElmName:       naming.TypeName(v.Name),
			EncodeName:    enc,
			DecodeName:    dec,
			Aliases:       v.Attrs.Aliases,
			Kind:          v.Kind,
			Elements:      v.Elements,
			Other:         v.Attrs.Other,
			Documentation: v.Documentation,
		}
		if v.Kind == ir.VariantStruct {
			rv.Fields, err = resolveFields(decl, v.Name, v.Fields, v.Attrs.RenameAll, decl.Attrs.RenameAllFields)
			if err != nil {
				return nil, err
			}
		}
		sum.Variants = append(sum.Variants, rv)
	}

	if len(sum.Variants) == 0 {
		return nil, newError(decl, CodeEmptySum, "", ir.Source{}, "sum type has no variants")
	}

	elmNames := make(map[string]string)
	encNames := make(map[string]string)
	decNames := make(map[string]string)
	for _, v := range sum.Variants {
		if prev, ok := elmNames[v.ElmName]; ok {
			return nil, newError(decl, CodeDuplicateName, v.Ident, ir.Source{}, "variants %s and %s both map to Elm constructor %s", prev, v.Ident, v.ElmName)
		}
		elmNames[v.ElmName] = v.Ident
		if rep.Kind == ir.RepUntagged {
			continue
		}
		if prev, ok := encNames[v.EncodeName]; ok {
			return nil, newError(decl, CodeDuplicateName, v.Ident, ir.Source{}, "variants %s and %s are both encoded as %q", prev, v.Ident, v.EncodeName)
		}
		encNames[v.EncodeName] = v.Ident
		for _, name := range append([]string{v.DecodeName}, v.Aliases...) {
			if prev, ok := decNames[name]; ok {
				return nil, newError(decl, CodeDuplicateName, v.Ident, ir.Source{}, "variants %s and %s are both decoded from %q", prev, v.Ident, name)
			}
			decNames[name] = v.Ident
		}
	}
	return sum, nil
}

// resolveFields drops skipped fields and names the rest. The rename-all
// policies are consulted in order; the first one with a rule for a direction wins.
func resolveFields(decl *ir.TypeDecl, variant string, fields []ir.Field, policies ...ir.RenameAll) ([]Field, error) {
	var out []Field
	seen := make(map[string]string)
	for _, f := range fields {
		if f.Attrs.Skip {
			continue
		}
		enc, dec := memberNames(f.Name, f.Attrs.Rename, f.Attrs.RenameSerialize, f.Attrs.RenameDeserialize, policies...)
		rf := Field{
			Ident:         f.Name,
			ElmName:       naming.FieldName(f.Name),
			EncodeName:    enc,
			DecodeName:    dec,
			Aliases:       f.Attrs.Aliases,
			Optional:      f.Optional,
			StringEncoded: f.StringEncoded,
			Type:          f.Type,
			Documentation: f.Documentation,
		}
		if prev, ok := seen[rf.ElmName]; ok {
			member := f.Name
			if variant != "" {
				member = variant + "." + f.Name
			}
			return nil, newError(decl, CodeDuplicateName, member, ir.Source{}, "fields %s and %s both map to Elm field %s", prev, f.Name, rf.ElmName)
		}
		seen[rf.ElmName] = f.Name
		out = append(out, rf)
	}
	return out, nil
}

// memberNames computes the encode and decode JSON names of a field or variant.
//
// Per direction, highest first: directional rename, plain rename, then each
// policy's directional rule followed by its plain rule, then ident.
func memberNames(ident, rename, serialize, deserialize string, policies ...ir.RenameAll) (enc, dec string) {
	enc = pickName(ident, serialize, rename, policies, func(r ir.RenameAll) naming.Rule { return r.Serialize })
	dec = pickName(ident, deserialize, rename, policies, func(r ir.RenameAll) naming.Rule { return r.Deserialize })
	return enc, dec
}

func pickName(ident, directional, plain string, policies []ir.RenameAll, dir func(ir.RenameAll) naming.Rule) string {
	if directional != "" {
		return directional
	}
	if plain != "" {
		return plain
	}
	for _, p := range policies {
		if r := dir(p); r != naming.RuleNone {
			return r.Apply(ident)
		}
		if p.Both != naming.RuleNone {
			return p.Both.Apply(ident)
		}
	}
	return ident
}
