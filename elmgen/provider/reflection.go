package provider

import (
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"reflect"
	"time"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/internal/directive"
)

// ReflectionProvider extracts types using runtime reflection.
// Reflection sees neither doc comments nor the implementers of an
// interface, so directives and sums are registered explicitly.
type ReflectionProvider struct{}

// ReflectionInputOptions configures reflection-based extraction.
type ReflectionInputOptions struct {
	// RootTypes are the types to extract. Types they reference are extracted too.
	RootTypes []reflect.Type

	// Sums declares the variants of sum interfaces.
	Sums []Sum

	// Directives attaches //elm: directive lines to types, as if they were
	// written in the type's doc comment.
	Directives map[reflect.Type][]string
}

// Sum declares an interface as a sum type with the given variants, in order.
type Sum struct {
	Interface reflect.Type
	Variants  []reflect.Type
}

// SumOf declares the sum interface I with the types of the given values as
// its variants.
func SumOf[I any](variants ...any) Sum {
	s := Sum{Interface: reflect.TypeFor[I]()}
	for _, v := range variants {
		s.Variants = append(s.Variants, reflect.TypeOf(v))
	}
	return s
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	timeType          = reflect.TypeFor[time.Time]()
	durationType      = reflect.TypeFor[time.Duration]()
	rawMessageType    = reflect.TypeFor[json.RawMessage]()
)

// BuildSchema extracts the root types and everything reachable from them.
func (p *ReflectionProvider) BuildSchema(ctx context.Context, opts ReflectionInputOptions) (*ir.Schema, error) {
	if len(opts.RootTypes) == 0 {
		return nil, errors.New("no root types provided")
	}

	b := &reflectionBuilder{
		schema:    &ir.Schema{},
		attrs:     make(map[reflect.Type]directive.Attrs),
		sums:      make(map[reflect.Type][]reflect.Type),
		variantOf: make(map[reflect.Type]bool),
		queued:    make(map[reflect.Type]bool),
	}
	for t, lines := range opts.Directives {
		attrs, err := directive.ParseLines(lines...)
		if err != nil {
			return nil, fmt.Errorf("directives of %s: %w", t, err)
		}
		b.attrs[t] = attrs
	}
	for _, s := range opts.Sums {
		if s.Interface == nil || s.Interface.Kind() != reflect.Interface {
			return nil, fmt.Errorf("sum %v is not an interface type", s.Interface)
		}
		for _, v := range s.Variants {
			if !v.Implements(s.Interface) && !reflect.PointerTo(v).Implements(s.Interface) {
				return nil, fmt.Errorf("variant %s does not implement %s", v, s.Interface)
			}
			b.variantOf[v] = true
		}
		b.sums[s.Interface] = s.Variants
	}

	for _, t := range opts.RootTypes {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Name() == "" || t.PkgPath() == "" {
			return nil, fmt.Errorf("root type %s is not a named type", t)
		}
		if b.schema.Package.IsZero() {
			b.schema.Package = ir.PackageInfo{Path: t.PkgPath(), Name: path.Base(t.PkgPath())}
		}
		b.enqueue(t)
	}

	for len(b.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := b.queue[0]
		b.queue = b.queue[1:]
		if err := b.extract(t); err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
	}
	return b.schema, nil
}

type reflectionBuilder struct {
	schema    *ir.Schema
	attrs     map[reflect.Type]directive.Attrs
	sums      map[reflect.Type][]reflect.Type
	variantOf map[reflect.Type]bool
	queued    map[reflect.Type]bool
	queue     []reflect.Type
}

func (b *reflectionBuilder) enqueue(t reflect.Type) {
	if b.queued[t] {
		return
	}
	b.queued[t] = true
	b.queue = append(b.queue, t)
}

func (b *reflectionBuilder) extract(t reflect.Type) error {
	attrs := b.attrs[t]
	decl := &ir.TypeDecl{
		Name:  ir.GoIdentifier{Name: t.Name(), Package: t.PkgPath()},
		Attrs: attrs.Container,
	}

	switch {
	case customMarshaler(t):
		b.warn(WarnCustomMarshaler, t, "type %s implements a custom marshaler, mapped to Json.Encode.Value", t.Name())
		decl.Shape = &ir.NewtypeShape{Element: ir.Any()}
	case t.Kind() == reflect.Struct:
		shape, err := b.structShape(t, attrs)
		if err != nil {
			return err
		}
		decl.Shape = shape
	case t.Kind() == reflect.Interface:
		variants, ok := b.sums[t]
		if !ok {
			b.warn(WarnInterfaceType, t, "interface type %s mapped to Json.Encode.Value", t.Name())
			decl.Shape = &ir.NewtypeShape{Element: ir.Any()}
			break
		}
		sum := &ir.SumShape{}
		for _, vt := range variants {
			v, err := b.variant(vt)
			if err != nil {
				return err
			}
			sum.Variants = append(sum.Variants, v)
		}
		decl.Shape = sum
	default:
		elem, err := b.underlying(t)
		if err != nil {
			return err
		}
		decl.Shape = &ir.NewtypeShape{Element: elem}
	}

	b.schema.AddType(decl)
	return nil
}

func (b *reflectionBuilder) structShape(t reflect.Type, attrs directive.Attrs) (ir.Shape, error) {
	if attrs.Tuple {
		elems, err := b.elements(t)
		if err != nil {
			return nil, err
		}
		return &ir.TupleShape{Elements: elems}, nil
	}
	if t.NumField() == 0 {
		return &ir.UnitShape{}, nil
	}
	fields, err := b.fields(t)
	if err != nil {
		return nil, err
	}
	return &ir.ProductShape{Fields: fields}, nil
}

func (b *reflectionBuilder) variant(vt reflect.Type) (ir.Variant, error) {
	for vt.Kind() == reflect.Pointer {
		vt = vt.Elem()
	}
	attrs := b.attrs[vt]
	v := ir.Variant{Name: vt.Name(), Attrs: attrs.Variant}

	if vt.Kind() != reflect.Struct {
		elem, err := b.underlying(vt)
		if err != nil {
			return ir.Variant{}, fmt.Errorf("variant %s: %w", vt.Name(), err)
		}
		v.Kind = ir.VariantNewtype
		v.Elements = []ir.TypeDescriptor{elem}
		return v, nil
	}

	fields, err := b.fields(vt)
	if err != nil {
		return ir.Variant{}, fmt.Errorf("variant %s: %w", vt.Name(), err)
	}
	switch {
	case attrs.Tuple:
		v.Kind = ir.VariantTuple
		if len(fields) == 1 {
			v.Kind = ir.VariantNewtype
		}
		for _, f := range fields {
			v.Elements = append(v.Elements, f.Type)
		}
	case attrs.Newtype:
		if len(fields) != 1 {
			return ir.Variant{}, fmt.Errorf("variant %s: //elm:newtype needs exactly one field, has %d", vt.Name(), len(fields))
		}
		v.Kind = ir.VariantNewtype
		v.Elements = []ir.TypeDescriptor{fields[0].Type}
	case len(fields) == 0:
		v.Kind = ir.VariantUnit
	default:
		v.Kind = ir.VariantStruct
		v.Fields = fields
	}
	return v, nil
}

func (b *reflectionBuilder) fields(t reflect.Type) ([]ir.Field, error) {
	var fields []ir.Field
	for i := range t.NumField() {
		sf := t.Field(i)
		attrs, err := fieldAttrs(sf.Tag)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		if attrs.Skip {
			continue
		}
		if sf.Anonymous && embedded(sf.Tag) {
			et := sf.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				promoted, err := b.fields(et)
				if err != nil {
					return nil, err
				}
				fields = append(fields, promoted...)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		td, err := b.convert(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		optional, quoted := jsonOptions(sf.Tag)
		fields = append(fields, ir.Field{
			Name:          sf.Name,
			Type:          td,
			Attrs:         attrs,
			Optional:      optional,
			StringEncoded: quoted && quotableKind(sf.Type),
		})
	}
	return fields, nil
}

// quotableKind is quotableType for reflected types.
func quotableKind(t reflect.Type) bool {
	if t.Name() == "" && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (b *reflectionBuilder) elements(t reflect.Type) ([]ir.TypeDescriptor, error) {
	fields, err := b.fields(t)
	if err != nil {
		return nil, err
	}
	elems := make([]ir.TypeDescriptor, len(fields))
	for i, f := range fields {
		elems[i] = f.Type
	}
	return elems, nil
}

// convert maps a Go type to a type expression, queueing named types.
func (b *reflectionBuilder) convert(t reflect.Type) (ir.TypeDescriptor, error) {
	switch t {
	case timeType:
		return ir.Time(), nil
	case durationType:
		return ir.Duration(), nil
	case rawMessageType:
		return ir.Any(), nil
	}
	if t.Name() != "" && t.PkgPath() != "" {
		if customMarshaler(t) && b.attrs[t].IsZero() {
			b.warn(WarnCustomMarshaler, t, "type %s implements a custom marshaler, mapped to Json.Encode.Value", t.Name())
			return ir.Any(), nil
		}
		b.enqueue(t)
		return ir.Ref(t.Name(), t.PkgPath()), nil
	}
	return b.underlying(t)
}

// underlying maps the structure of t, ignoring its name.
func (b *reflectionBuilder) underlying(t reflect.Type) (ir.TypeDescriptor, error) {
	switch t.Kind() {
	case reflect.Bool:
		return ir.Bool(), nil
	case reflect.String:
		return ir.String(), nil
	case reflect.Int:
		return ir.Int(0), nil
	case reflect.Int8:
		return ir.Int(8), nil
	case reflect.Int16:
		return ir.Int(16), nil
	case reflect.Int32:
		return ir.Int(32), nil
	case reflect.Int64:
		return ir.Int(64), nil
	case reflect.Uint, reflect.Uintptr:
		return ir.Uint(0), nil
	case reflect.Uint8:
		return ir.Uint(8), nil
	case reflect.Uint16:
		return ir.Uint(16), nil
	case reflect.Uint32:
		return ir.Uint(32), nil
	case reflect.Uint64:
		return ir.Uint(64), nil
	case reflect.Float32:
		return ir.Float(32), nil
	case reflect.Float64:
		return ir.Float(64), nil
	case reflect.Pointer:
		elem, err := b.convert(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Option(elem), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ir.Bytes(), nil
		}
		elem, err := b.convert(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Slice(elem), nil
	case reflect.Array:
		elem, err := b.convert(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, t.Len()), nil
	case reflect.Map:
		key, err := b.convert(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := b.convert(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Map(key, value), nil
	case reflect.Interface:
		if t.NumMethod() > 0 {
			b.warn(WarnInterfaceType, t, "interface type %s mapped to Json.Encode.Value", t)
		}
		return ir.Any(), nil
	case reflect.Struct:
		return nil, errors.New("anonymous structs are not supported, declare a named type")
	}
	return nil, fmt.Errorf("unsupported type %s (kind %s)", t, t.Kind())
}

func (b *reflectionBuilder) warn(code string, t reflect.Type, format string, args ...any) {
	b.schema.AddWarning(ir.Warning{Code: code, Message: fmt.Sprintf(format, args...), TypeName: t.Name()})
}

// customMarshaler reports whether t or *t implements json.Marshaler or encoding.TextMarshaler.
func customMarshaler(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return false
	}
	pt := reflect.PointerTo(t)
	return t.Implements(jsonMarshalerType) || pt.Implements(jsonMarshalerType) ||
		t.Implements(textMarshalerType) || pt.Implements(textMarshalerType)
}
