// Package provider builds an ir.Schema from Go code: by analyzing source
// with golang.org/x/tools/go/packages, by runtime reflection, or by reading
// a JSON IR document.
package provider

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"

	"golang.org/x/tools/go/packages"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/internal/directive"
)

// Warning codes added to the schema by the providers.
const (
	WarnCustomMarshaler = "CUSTOM_MARSHALER"
	WarnInterfaceType   = "INTERFACE_TYPE"
)

// SourceProvider extracts types by analyzing Go source code.
// Doc comments supply documentation and //elm: directives; struct tags
// supply field attributes.
type SourceProvider struct{}

// SourceInputOptions configures source-based extraction.
type SourceInputOptions struct {
	// Packages are the package patterns to load, e.g. "./api".
	Packages []string

	// RootTypes are the type names to extract. Types they reference are
	// extracted too. If empty, every exported type that is not a sum
	// variant is a root.
	RootTypes []string

	// Dir is the directory packages are resolved from. Empty means the
	// current directory.
	Dir string
}

// BuildSchema loads the packages and returns the schema of the root types
// and everything reachable from them, in discovery order.
func (p *SourceProvider) BuildSchema(ctx context.Context, opts SourceInputOptions) (*ir.Schema, error) {
	if len(opts.Packages) == 0 {
		return nil, errors.New("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, errors.New("no packages found")
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors[0])
		}
	}

	b := &sourceBuilder{
		pkgs:      pkgs,
		fset:      pkgs[0].Fset,
		schema:    &ir.Schema{},
		decls:     make(map[*types.TypeName]*typeDecl),
		fieldDocs: make(map[token.Pos]*ast.CommentGroup),
		variants:  make(map[*types.TypeName][]*types.TypeName),
		variantOf: make(map[*types.TypeName]bool),
		queued:    make(map[*types.TypeName]bool),
	}
	b.schema.Package = packageInfo(pkgs[0])

	if err := b.index(); err != nil {
		return nil, err
	}
	if err := b.findVariants(); err != nil {
		return nil, err
	}

	if len(opts.RootTypes) > 0 {
		for _, name := range opts.RootTypes {
			tn := b.lookup(name)
			if tn == nil {
				return nil, fmt.Errorf("type %s not found in %v", name, opts.Packages)
			}
			b.enqueue(tn)
		}
	} else {
		for _, tn := range b.ordered {
			if tn.Exported() && !b.variantOf[tn] {
				b.enqueue(tn)
			}
		}
	}

	var errs []error
	for len(b.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tn := b.queue[0]
		b.queue = b.queue[1:]
		if err := b.extract(tn); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return b.schema, nil
}

func packageInfo(pkg *packages.Package) ir.PackageInfo {
	info := ir.PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
	if len(pkg.GoFiles) > 0 {
		info.Dir = filepath.Dir(pkg.GoFiles[0])
	}
	return info
}

type sourceBuilder struct {
	pkgs      []*packages.Package
	fset      *token.FileSet
	schema    *ir.Schema
	decls     map[*types.TypeName]*typeDecl
	ordered   []*types.TypeName // declarations in source order
	fieldDocs map[token.Pos]*ast.CommentGroup
	variants  map[*types.TypeName][]*types.TypeName // sum interface -> implementers
	variantOf map[*types.TypeName]bool
	queued    map[*types.TypeName]bool
	queue     []*types.TypeName
}

// typeDecl is the syntax attached to one type declaration.
type typeDecl struct {
	doc   ir.Documentation
	attrs directive.Attrs
}

// index records the doc comment and directives of every type declared in
// the loaded packages, and the doc comments of struct fields.
func (b *sourceBuilder) index() error {
	for _, pkg := range b.pkgs {
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				gd, ok := decl.(*ast.GenDecl)
				if !ok || gd.Tok != token.TYPE {
					continue
				}
				for _, spec := range gd.Specs {
					ts := spec.(*ast.TypeSpec)
					tn, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
					if !ok || tn.IsAlias() {
						continue
					}
					doc := ts.Doc
					if doc == nil && !gd.Lparen.IsValid() {
						doc = gd.Doc
					}
					attrs, err := directive.Parse(b.fset, doc)
					if err != nil {
						return err
					}
					b.decls[tn] = &typeDecl{doc: documentation(doc.Text()), attrs: attrs}
					b.ordered = append(b.ordered, tn)
				}
			}
			ast.Inspect(file, func(n ast.Node) bool {
				st, ok := n.(*ast.StructType)
				if !ok {
					return true
				}
				for _, f := range st.Fields.List {
					doc := f.Doc
					if doc == nil {
						doc = f.Comment
					}
					if doc == nil {
						continue
					}
					for _, name := range f.Names {
						b.fieldDocs[name.Pos()] = doc
					}
				}
				return true
			})
		}
	}
	return nil
}

// findVariants resolves every //elm:sum interface to the types of its
// package that implement it, in source order.
func (b *sourceBuilder) findVariants() error {
	for _, sum := range b.ordered {
		if !b.decls[sum].attrs.Sum {
			continue
		}
		iface, ok := sum.Type().Underlying().(*types.Interface)
		if !ok {
			return fmt.Errorf("%s: //elm:sum applies to interfaces, %s is %s", b.position(sum.Pos()), sum.Name(), sum.Type().Underlying())
		}
		if iface.NumMethods() == 0 {
			return fmt.Errorf("%s: sum interface %s must declare a method", b.position(sum.Pos()), sum.Name())
		}
		for _, tn := range b.ordered {
			if tn.Pkg() != sum.Pkg() || tn == sum || types.IsInterface(tn.Type()) {
				continue
			}
			if named, ok := tn.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
				continue
			}
			if types.Implements(tn.Type(), iface) || types.Implements(types.NewPointer(tn.Type()), iface) {
				b.variants[sum] = append(b.variants[sum], tn)
				b.variantOf[tn] = true
			}
		}
	}
	return nil
}

func (b *sourceBuilder) lookup(name string) *types.TypeName {
	for _, pkg := range b.pkgs {
		if tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName); ok {
			return tn
		}
	}
	return nil
}

func (b *sourceBuilder) enqueue(tn *types.TypeName) {
	if b.queued[tn] {
		return
	}
	b.queued[tn] = true
	b.queue = append(b.queue, tn)
}

func (b *sourceBuilder) position(pos token.Pos) token.Position {
	return b.fset.Position(pos)
}

func (b *sourceBuilder) source(pos token.Pos) ir.Source {
	if !pos.IsValid() {
		return ir.Source{}
	}
	p := b.position(pos)
	return ir.Source{File: p.Filename, Line: p.Line, Column: p.Column}
}

func identOf(tn *types.TypeName) ir.GoIdentifier {
	id := ir.GoIdentifier{Name: tn.Name()}
	if tn.Pkg() != nil {
		id.Package = tn.Pkg().Path()
	}
	return id
}

// extract adds the declaration of tn to the schema.
func (b *sourceBuilder) extract(tn *types.TypeName) error {
	named, ok := types.Unalias(tn.Type()).(*types.Named)
	if !ok {
		return fmt.Errorf("%s: %s is not a named type", b.position(tn.Pos()), tn.Name())
	}
	if named.TypeParams().Len() > 0 {
		return fmt.Errorf("%s: generic type %s is not supported", b.position(tn.Pos()), tn.Name())
	}

	decl := &ir.TypeDecl{Name: identOf(tn), Source: b.source(tn.Pos())}
	var attrs directive.Attrs
	if d := b.decls[tn]; d != nil {
		attrs = d.attrs
		decl.Documentation = d.doc
	}
	decl.Attrs = attrs.Container

	shape, err := b.shape(tn, named, attrs)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", b.position(tn.Pos()), tn.Name(), err)
	}
	decl.Shape = shape
	b.schema.AddType(decl)
	return nil
}

func (b *sourceBuilder) shape(tn *types.TypeName, named *types.Named, attrs directive.Attrs) (ir.Shape, error) {
	if hasCustomMarshaler(named) {
		b.warn(WarnCustomMarshaler, tn, "type %s implements a custom marshaler, mapped to Json.Encode.Value", tn.Name())
		return &ir.NewtypeShape{Element: ir.Any()}, nil
	}

	switch u := named.Underlying().(type) {
	case *types.Struct:
		if attrs.Tuple {
			elems, err := b.elements(u)
			if err != nil {
				return nil, err
			}
			return &ir.TupleShape{Elements: elems}, nil
		}
		if u.NumFields() == 0 {
			return &ir.UnitShape{}, nil
		}
		fields, err := b.fields(u)
		if err != nil {
			return nil, err
		}
		return &ir.ProductShape{Fields: fields}, nil
	case *types.Interface:
		if !attrs.Sum {
			b.warn(WarnInterfaceType, tn, "interface type %s mapped to Json.Encode.Value", tn.Name())
			return &ir.NewtypeShape{Element: ir.Any()}, nil
		}
		var variants []ir.Variant
		for _, vt := range b.variants[tn] {
			v, err := b.variant(vt)
			if err != nil {
				return nil, err
			}
			variants = append(variants, v)
		}
		return &ir.SumShape{Variants: variants}, nil
	default:
		elem, err := b.convert(u)
		if err != nil {
			return nil, err
		}
		return &ir.NewtypeShape{Element: elem}, nil
	}
}

// variant builds the sum variant declared by vt.
func (b *sourceBuilder) variant(vt *types.TypeName) (ir.Variant, error) {
	v := ir.Variant{Name: vt.Name(), Source: b.source(vt.Pos())}
	var attrs directive.Attrs
	if d := b.decls[vt]; d != nil {
		attrs = d.attrs
		v.Documentation = d.doc
	}
	v.Attrs = attrs.Variant

	st, ok := vt.Type().Underlying().(*types.Struct)
	if !ok {
		elem, err := b.convert(vt.Type().Underlying())
		if err != nil {
			return ir.Variant{}, fmt.Errorf("variant %s: %w", vt.Name(), err)
		}
		v.Kind = ir.VariantNewtype
		v.Elements = []ir.TypeDescriptor{elem}
		return v, nil
	}

	switch {
	case attrs.Tuple:
		elems, err := b.elements(st)
		if err != nil {
			return ir.Variant{}, fmt.Errorf("variant %s: %w", vt.Name(), err)
		}
		v.Kind = ir.VariantTuple
		if len(elems) == 1 {
			v.Kind = ir.VariantNewtype
		}
		v.Elements = elems
	case attrs.Newtype:
		fields, err := b.fields(st)
		if err != nil {
			return ir.Variant{}, fmt.Errorf("variant %s: %w", vt.Name(), err)
		}
		if len(fields) != 1 {
			return ir.Variant{}, fmt.Errorf("variant %s: //elm:newtype needs exactly one field, has %d", vt.Name(), len(fields))
		}
		v.Kind = ir.VariantNewtype
		v.Elements = []ir.TypeDescriptor{fields[0].Type}
	default:
		fields, err := b.fields(st)
		if err != nil {
			return ir.Variant{}, fmt.Errorf("variant %s: %w", vt.Name(), err)
		}
		if len(fields) == 0 {
			v.Kind = ir.VariantUnit
			break
		}
		v.Kind = ir.VariantStruct
		v.Fields = fields
	}
	return v, nil
}

// fields converts the JSON-visible fields of a struct, promoting the
// fields of untagged embedded structs.
func (b *sourceBuilder) fields(st *types.Struct) ([]ir.Field, error) {
	var fields []ir.Field
	for i := range st.NumFields() {
		f := st.Field(i)
		tag := reflect.StructTag(st.Tag(i))
		attrs, err := fieldAttrs(tag)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name(), err)
		}
		if attrs.Skip {
			continue
		}
		if f.Embedded() && embedded(tag) {
			t := f.Type()
			if ptr, ok := t.(*types.Pointer); ok {
				t = ptr.Elem()
			}
			if inner, ok := t.Underlying().(*types.Struct); ok {
				promoted, err := b.fields(inner)
				if err != nil {
					return nil, err
				}
				fields = append(fields, promoted...)
				continue
			}
		}
		if !f.Exported() {
			continue
		}
		t, err := b.convert(f.Type())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name(), err)
		}
		field := ir.Field{Name: f.Name(), Type: t, Attrs: attrs}
		optional, quoted := jsonOptions(tag)
		field.Optional = optional
		field.StringEncoded = quoted && quotableType(f.Type())
		if doc := b.fieldDocs[f.Pos()]; doc != nil {
			field.Documentation = documentation(doc.Text())
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// quotableType reports whether encoding/json honors the string option on a
// field of type t: booleans, integers, floats and strings, or unnamed
// pointers to them.
func quotableType(t types.Type) bool {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return false
	}
	info := basic.Info()
	return info&types.IsComplex == 0 && info&(types.IsBoolean|types.IsInteger|types.IsFloat|types.IsString) != 0
}

// elements converts the fields of a //elm:tuple struct to positional types.
func (b *sourceBuilder) elements(st *types.Struct) ([]ir.TypeDescriptor, error) {
	fields, err := b.fields(st)
	if err != nil {
		return nil, err
	}
	elems := make([]ir.TypeDescriptor, len(fields))
	for i, f := range fields {
		elems[i] = f.Type
	}
	return elems, nil
}

// convert maps a Go type to a type expression. Named types become
// references and are queued for extraction.
func (b *sourceBuilder) convert(t types.Type) (ir.TypeDescriptor, error) {
	switch t := t.(type) {
	case *types.Alias:
		return b.convert(types.Unalias(t))
	case *types.Basic:
		return basicType(t)
	case *types.Pointer:
		elem, err := b.convert(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Option(elem), nil
	case *types.Slice:
		if basic, ok := t.Elem().(*types.Basic); ok && basic.Kind() == types.Byte {
			return ir.Bytes(), nil
		}
		elem, err := b.convert(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Slice(elem), nil
	case *types.Array:
		elem, err := b.convert(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, int(t.Len())), nil
	case *types.Map:
		key, err := b.convert(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := b.convert(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Map(key, value), nil
	case *types.Named:
		return b.named(t)
	case *types.Interface:
		if !t.Empty() {
			b.schema.AddWarning(ir.Warning{
				Code:    WarnInterfaceType,
				Message: fmt.Sprintf("interface type %s mapped to Json.Encode.Value", t),
			})
		}
		return ir.Any(), nil
	case *types.Struct:
		return nil, errors.New("anonymous structs are not supported, declare a named type")
	case *types.TypeParam:
		return nil, fmt.Errorf("type parameter %s is not supported", t)
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}

func (b *sourceBuilder) named(t *types.Named) (ir.TypeDescriptor, error) {
	obj := t.Obj()
	if obj.Pkg() == nil {
		// error is the only predeclared named type
		return nil, fmt.Errorf("unsupported type %s", obj.Name())
	}
	switch obj.Pkg().Path() + "." + obj.Name() {
	case "time.Time":
		return ir.Time(), nil
	case "time.Duration":
		return ir.Duration(), nil
	case "encoding/json.RawMessage":
		return ir.Any(), nil
	}
	if t.TypeArgs().Len() > 0 {
		return nil, fmt.Errorf("instantiated generic type %s is not supported", t)
	}
	if hasCustomMarshaler(t) && b.decls[obj] == nil {
		b.warn(WarnCustomMarshaler, obj, "type %s implements a custom marshaler, mapped to Json.Encode.Value", obj.Name())
		return ir.Any(), nil
	}
	b.enqueue(obj)
	return ir.Ref(obj.Name(), obj.Pkg().Path()), nil
}

func (b *sourceBuilder) warn(code string, tn *types.TypeName, format string, args ...any) {
	src := b.source(tn.Pos())
	w := ir.Warning{Code: code, Message: fmt.Sprintf(format, args...), TypeName: tn.Name()}
	if !src.IsZero() {
		w.Source = &src
	}
	b.schema.AddWarning(w)
}

// hasCustomMarshaler reports whether t declares MarshalJSON or MarshalText.
func hasCustomMarshaler(t *types.Named) bool {
	for i := range t.NumMethods() {
		m := t.Method(i)
		if m.Name() != "MarshalJSON" && m.Name() != "MarshalText" {
			continue
		}
		sig := m.Type().(*types.Signature)
		if sig.Params().Len() == 0 && sig.Results().Len() == 2 {
			return true
		}
	}
	return false
}

func basicType(t *types.Basic) (ir.TypeDescriptor, error) {
	switch t.Kind() {
	case types.Bool:
		return ir.Bool(), nil
	case types.String:
		return ir.String(), nil
	case types.Int:
		return ir.Int(0), nil
	case types.Int8:
		return ir.Int(8), nil
	case types.Int16:
		return ir.Int(16), nil
	case types.Int32:
		return ir.Int(32), nil
	case types.Int64:
		return ir.Int(64), nil
	case types.Uint, types.Uintptr:
		return ir.Uint(0), nil
	case types.Uint8:
		return ir.Uint(8), nil
	case types.Uint16:
		return ir.Uint(16), nil
	case types.Uint32:
		return ir.Uint(32), nil
	case types.Uint64:
		return ir.Uint(64), nil
	case types.Float32:
		return ir.Float(32), nil
	case types.Float64:
		return ir.Float(64), nil
	}
	return nil, fmt.Errorf("unsupported basic type %s", t)
}
