// Package registry maps IR type expressions to Elm type names, decoders and
// encoders. Generators receive it as the Lookup interface.
package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/naming"
	"github.com/broady/elmgen/elmgen/resolve"
)

// ErrUnsupported is wrapped by every error for a type expression with no Elm mapping.
var ErrUnsupported = errors.New("unsupported type")

// Lookup resolves type expressions for the generators.
type Lookup interface {
	// Lookup returns the declaration type, decoder and encoder for t.
	Lookup(t ir.TypeDescriptor) (Entry, error)

	// StringEncoded returns the mapping of a field tagged json:",string",
	// whose scalar value travels inside a JSON string.
	StringEncoded(t ir.TypeDescriptor) (Entry, error)

	// QueryField returns the Url.Builder function and value encoder for a
	// query parameter of type t.
	QueryField(t ir.TypeDescriptor) (QueryEntry, error)
}

// Entry is the Elm mapping of one type expression.
type Entry struct {
	// Type is the Elm type, e.g. "List (Int)".
	Type string

	// Decoder is an Elm expression of type Json.Decode.Decoder Type.
	Decoder string

	// Encoder is an Elm expression of type Type -> Json.Encode.Value.
	Encoder string

	// Zero is the Elm value standing in for a field encoding/json omitted
	// as empty, e.g. "[]" or "0". It is empty when the type has none.
	Zero string

	// Definitions are top-level helpers the expressions refer to.
	// They are returned every time; callers deduplicate by Name.
	Definitions []Definition
}

// Definition is a named top-level Elm definition.
type Definition struct {
	Name string
	Body string
}

// QueryEntry is the query-string mapping of one type expression.
type QueryEntry struct {
	// Builder is the Url.Builder function, e.g. "Url.Builder.int".
	Builder string

	// Encoder converts the field value into the Builder's argument.
	Encoder string

	// Optional is set for Maybe values; the parameter is left out when Nothing.
	Optional bool
}

// Registry is the default Lookup. References resolve against the types it
// was built with; Override replaces the mapping of individual named types.
type Registry struct {
	types     map[ir.GoIdentifier]*resolve.Type
	overrides map[ir.GoIdentifier]Entry
}

var _ Lookup = (*Registry)(nil)

// New returns a registry whose references resolve against types.
func New(types ...*resolve.Type) *Registry {
	r := &Registry{
		types:     make(map[ir.GoIdentifier]*resolve.Type),
		overrides: make(map[ir.GoIdentifier]Entry),
	}
	for _, t := range types {
		r.types[t.Ident] = t
	}
	return r
}

// Override maps references to id to a fixed entry, e.g. a hand-written Elm type.
func (r *Registry) Override(id ir.GoIdentifier, e Entry) *Registry {
	r.overrides[id] = e
	return r
}

// Lookup implements Lookup.
func (r *Registry) Lookup(t ir.TypeDescriptor) (Entry, error) {
	e, err := r.lookup(t)
	if err != nil {
		return Entry{}, err
	}
	e.Zero = r.zero(t, nil)
	return e, nil
}

func (r *Registry) lookup(t ir.TypeDescriptor) (Entry, error) {
	switch d := t.(type) {
	case *ir.PrimitiveDescriptor:
		return primitive(d)
	case *ir.PtrDescriptor:
		return r.lookup(d.Element)
	case *ir.OptionDescriptor:
		inner, err := r.lookup(d.Element)
		if err != nil {
			return Entry{}, err
		}
		return Maybe(inner), nil
	case *ir.ArrayDescriptor:
		inner, err := r.lookup(d.Element)
		if err != nil {
			return Entry{}, err
		}
		decoder := "Json.Decode.list (" + inner.Decoder + ")"
		if d.Length == 0 {
			// A nil slice encodes as null.
			decoder = "Json.Decode.oneOf [ " + decoder + ", Json.Decode.null [] ]"
		}
		return Entry{
			Type:        "List (" + inner.Type + ")",
			Decoder:     decoder,
			Encoder:     "Json.Encode.list (" + inner.Encoder + ")",
			Definitions: inner.Definitions,
		}, nil
	case *ir.MapDescriptor:
		if !r.stringKey(d.Key) {
			return Entry{}, fmt.Errorf("%w: map key must be a string or integer, got %s", ErrUnsupported, describe(d.Key))
		}
		inner, err := r.lookup(d.Value)
		if err != nil {
			return Entry{}, err
		}
		return Entry{
			Type:        "Dict String (" + inner.Type + ")",
			Decoder:     "Json.Decode.oneOf [ Json.Decode.dict (" + inner.Decoder + "), Json.Decode.null Dict.empty ]",
			Encoder:     "Json.Encode.dict identity (" + inner.Encoder + ")",
			Definitions: inner.Definitions,
		}, nil
	case *ir.TupleDescriptor:
		return r.tuple(d)
	case *ir.ResultDescriptor:
		ok, err := r.lookup(d.Ok)
		if err != nil {
			return Entry{}, err
		}
		e, err := r.lookup(d.Err)
		if err != nil {
			return Entry{}, err
		}
		defs := append([]Definition{resultDecoder, resultEncoder}, e.Definitions...)
		return Entry{
			Type:        "Result (" + e.Type + ") (" + ok.Type + ")",
			Decoder:     "resultDecoder (" + e.Decoder + ") (" + ok.Decoder + ")",
			Encoder:     "resultEncoder (" + e.Encoder + ") (" + ok.Encoder + ")",
			Definitions: append(defs, ok.Definitions...),
		}, nil
	case *ir.UnitDescriptor:
		return Entry{
			Type:    "()",
			Decoder: "Json.Decode.null ()",
			Encoder: `(\_ -> Json.Encode.null)`,
		}, nil
	case *ir.ReferenceDescriptor:
		if e, ok := r.overrides[d.Target]; ok {
			return e, nil
		}
		name := naming.TypeName(d.Target.Name)
		rt, known := r.types[d.Target]
		if known {
			name = rt.Name
		}
		prefix := naming.FunctionName(name)
		e := Entry{
			Type:    name,
			Decoder: prefix + "Decoder",
			Encoder: prefix + "Encoder",
		}
		if known && rt.Recursive {
			// Decoders are values; a cycle between them must be broken lazily.
			e.Decoder = `Json.Decode.lazy (\_ -> ` + e.Decoder + ")"
		}
		return e, nil
	case nil:
		return Entry{}, fmt.Errorf("%w: missing type", ErrUnsupported)
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrUnsupported, describe(t))
}

// Maybe wraps an entry for a value that may be JSON null.
func Maybe(inner Entry) Entry {
	return Entry{
		Type:        "Maybe (" + inner.Type + ")",
		Decoder:     "Json.Decode.nullable (" + inner.Decoder + ")",
		Encoder:     "Maybe.withDefault Json.Encode.null << Maybe.map (" + inner.Encoder + ")",
		Zero:        "Nothing",
		Definitions: inner.Definitions,
	}
}

// zero returns the Elm value of the JSON form encoding/json omits under
// omitempty, or "" when the type has no such value.
func (r *Registry) zero(t ir.TypeDescriptor, seen map[ir.GoIdentifier]bool) string {
	switch d := t.(type) {
	case *ir.PrimitiveDescriptor:
		switch d.PrimitiveKind {
		case ir.PrimitiveBool:
			return "False"
		case ir.PrimitiveInt, ir.PrimitiveUint, ir.PrimitiveFloat, ir.PrimitiveDuration:
			return "0"
		case ir.PrimitiveString, ir.PrimitiveBytes, ir.PrimitiveTime:
			return `""`
		case ir.PrimitiveAny:
			return "Json.Encode.null"
		}
	case *ir.PtrDescriptor:
		return r.zero(d.Element, seen)
	case *ir.OptionDescriptor:
		return "Nothing"
	case *ir.ArrayDescriptor:
		if d.Length == 0 {
			return "[]"
		}
	case *ir.MapDescriptor:
		return "Dict.empty"
	case *ir.UnitDescriptor:
		return "()"
	case *ir.ReferenceDescriptor:
		if e, ok := r.overrides[d.Target]; ok {
			return e.Zero
		}
		rt, ok := r.types[d.Target]
		if !ok || seen[d.Target] {
			return ""
		}
		nt, ok := rt.Shape.(*resolve.Newtype)
		if !ok {
			return ""
		}
		if seen == nil {
			seen = make(map[ir.GoIdentifier]bool)
		}
		seen[d.Target] = true
		if inner := r.zero(nt.Element, seen); inner != "" {
			return "(" + rt.Name + " " + inner + ")"
		}
	}
	return ""
}

// StringEncoded implements Lookup. Only booleans, numbers and strings, or
// nullable ones, can be string-encoded.
func (r *Registry) StringEncoded(t ir.TypeDescriptor) (Entry, error) {
	switch d := t.(type) {
	case *ir.PtrDescriptor:
		return r.StringEncoded(d.Element)
	case *ir.OptionDescriptor:
		inner, err := r.StringEncoded(d.Element)
		if err != nil {
			return Entry{}, err
		}
		return Maybe(inner), nil
	case *ir.PrimitiveDescriptor:
		switch d.PrimitiveKind {
		case ir.PrimitiveInt, ir.PrimitiveUint, ir.PrimitiveDuration:
			return Entry{
				Type:        "Int",
				Decoder:     stringEncodedInt.Name,
				Encoder:     "Json.Encode.string << String.fromInt",
				Zero:        "0",
				Definitions: []Definition{stringEncodedInt},
			}, nil
		case ir.PrimitiveFloat:
			return Entry{
				Type:        "Float",
				Decoder:     stringEncodedFloat.Name,
				Encoder:     "Json.Encode.string << String.fromFloat",
				Zero:        "0",
				Definitions: []Definition{stringEncodedFloat},
			}, nil
		case ir.PrimitiveBool:
			return Entry{
				Type:        "Bool",
				Decoder:     stringEncodedBool.Name,
				Encoder:     `Json.Encode.string << (\flag -> if flag then "true" else "false")`,
				Zero:        "False",
				Definitions: []Definition{stringEncodedBool},
			}, nil
		case ir.PrimitiveString:
			return Entry{
				Type:        "String",
				Decoder:     stringEncodedString.Name,
				Encoder:     "Json.Encode.string << Json.Encode.encode 0 << Json.Encode.string",
				Zero:        `""`,
				Definitions: []Definition{stringEncodedString},
			}, nil
		}
	case nil:
		return Entry{}, fmt.Errorf("%w: missing type", ErrUnsupported)
	}
	return Entry{}, fmt.Errorf("%w: %s cannot be string-encoded", ErrUnsupported, describe(t))
}

func primitive(d *ir.PrimitiveDescriptor) (Entry, error) {
	switch d.PrimitiveKind {
	case ir.PrimitiveBool:
		return Entry{Type: "Bool", Decoder: "Json.Decode.bool", Encoder: "Json.Encode.bool"}, nil
	case ir.PrimitiveInt, ir.PrimitiveUint, ir.PrimitiveDuration:
		return Entry{Type: "Int", Decoder: "Json.Decode.int", Encoder: "Json.Encode.int"}, nil
	case ir.PrimitiveFloat:
		return Entry{Type: "Float", Decoder: "Json.Decode.float", Encoder: "Json.Encode.float"}, nil
	case ir.PrimitiveString, ir.PrimitiveBytes, ir.PrimitiveTime:
		return Entry{Type: "String", Decoder: "Json.Decode.string", Encoder: "Json.Encode.string"}, nil
	case ir.PrimitiveAny:
		return Entry{Type: "Json.Encode.Value", Decoder: "Json.Decode.value", Encoder: "identity"}, nil
	}
	return Entry{}, fmt.Errorf("%w: primitive %s", ErrUnsupported, d.PrimitiveKind)
}

var tupleVars = []string{"a", "b", "c"}

func (r *Registry) tuple(d *ir.TupleDescriptor) (Entry, error) {
	n := len(d.Elements)
	if n < 2 || n > 3 {
		return Entry{}, fmt.Errorf("%w: %d-tuple, Elm tuples have 2 or 3 elements", ErrUnsupported, n)
	}
	var (
		types, decoders, encoders []string
		defs                      []Definition
	)
	// Encoder lambdas nest when tuples do, and Elm rejects shadowed names,
	// so each nesting level binds its own variables.
	vars := make([]string, n)
	depth := tupleDepth(d)
	for i := range vars {
		vars[i] = tupleVars[i]
		if depth > 1 {
			vars[i] += strconv.Itoa(depth)
		}
	}
	for i, elem := range d.Elements {
		e, err := r.lookup(elem)
		if err != nil {
			return Entry{}, err
		}
		types = append(types, e.Type)
		decoders = append(decoders, fmt.Sprintf("(Json.Decode.index %d (%s))", i, e.Decoder))
		encoders = append(encoders, fmt.Sprintf("(%s) %s", e.Encoder, vars[i]))
		defs = append(defs, e.Definitions...)
	}
	pattern := "( " + strings.Join(vars, ", ") + " )"
	return Entry{
		Type:        "( " + strings.Join(types, ", ") + " )",
		Decoder:     fmt.Sprintf(`Json.Decode.map%d (\%s -> %s) %s`, n, strings.Join(vars, " "), pattern, strings.Join(decoders, " ")),
		Encoder:     fmt.Sprintf(`\%s -> Json.Encode.list identity [ %s ]`, pattern, strings.Join(encoders, ", ")),
		Definitions: defs,
	}, nil
}

// tupleDepth returns how many tuples deep t nests, 0 for none.
func tupleDepth(t ir.TypeDescriptor) int {
	switch d := t.(type) {
	case *ir.TupleDescriptor:
		depth := 0
		for _, e := range d.Elements {
			depth = max(depth, tupleDepth(e))
		}
		return depth + 1
	case *ir.PtrDescriptor:
		return tupleDepth(d.Element)
	case *ir.OptionDescriptor:
		return tupleDepth(d.Element)
	case *ir.ArrayDescriptor:
		return tupleDepth(d.Element)
	case *ir.MapDescriptor:
		return tupleDepth(d.Value)
	case *ir.ResultDescriptor:
		return max(tupleDepth(d.Ok), tupleDepth(d.Err))
	}
	return 0
}

// stringKey reports whether JSON object keys of type t decode as Elm strings.
func (r *Registry) stringKey(t ir.TypeDescriptor) bool {
	switch d := t.(type) {
	case *ir.PrimitiveDescriptor:
		return d.PrimitiveKind == ir.PrimitiveString || d.IsInteger()
	case *ir.ReferenceDescriptor:
		if rt, ok := r.types[d.Target]; ok {
			if nt, ok := rt.Shape.(*resolve.Newtype); ok {
				return r.stringKey(nt.Element)
			}
		}
	}
	return false
}

// QueryField implements Lookup.
func (r *Registry) QueryField(t ir.TypeDescriptor) (QueryEntry, error) {
	switch d := t.(type) {
	case *ir.PrimitiveDescriptor:
		switch {
		case d.PrimitiveKind == ir.PrimitiveString, d.PrimitiveKind == ir.PrimitiveTime, d.PrimitiveKind == ir.PrimitiveBytes:
			return QueryEntry{Builder: "Url.Builder.string", Encoder: "identity"}, nil
		case d.IsInteger():
			return QueryEntry{Builder: "Url.Builder.int", Encoder: "identity"}, nil
		}
	case *ir.PtrDescriptor:
		return r.QueryField(d.Element)
	case *ir.OptionDescriptor:
		inner, err := r.QueryField(d.Element)
		if err != nil || inner.Optional {
			break
		}
		inner.Optional = true
		return inner, nil
	case *ir.ReferenceDescriptor:
		if rt, ok := r.types[d.Target]; ok {
			if sum, ok := rt.Shape.(*resolve.Sum); ok && sum.UnitOnly() {
				return QueryEntry{Builder: "Url.Builder.string", Encoder: "queryFieldEncoder" + rt.Name}, nil
			}
		}
	}
	return QueryEntry{}, fmt.Errorf("%w: %s cannot be a query parameter", ErrUnsupported, describe(t))
}

func describe(t ir.TypeDescriptor) string {
	switch d := t.(type) {
	case *ir.PrimitiveDescriptor:
		return d.PrimitiveKind.String()
	case *ir.ReferenceDescriptor:
		return d.Target.Name
	case nil:
		return "<nil>"
	}
	return t.Kind().String()
}

var resultDecoder = Definition{
	Name: "resultDecoder",
	Body: `resultDecoder : Json.Decode.Decoder e -> Json.Decode.Decoder t -> Json.Decode.Decoder (Result e t)
resultDecoder errDecoder okDecoder =
    Json.Decode.oneOf
        [ Json.Decode.map Ok (Json.Decode.field "Ok" okDecoder)
        , Json.Decode.map Err (Json.Decode.field "Err" errDecoder)
        ]
`,
}

var resultEncoder = Definition{
	Name: "resultEncoder",
	Body: `resultEncoder : (e -> Json.Encode.Value) -> (t -> Json.Encode.Value) -> (Result e t -> Json.Encode.Value)
resultEncoder errEncoder okEncoder enum =
    case enum of
        Ok inner ->
            Json.Encode.object [ ( "Ok", okEncoder inner ) ]
        Err inner ->
            Json.Encode.object [ ( "Err", errEncoder inner ) ]
`,
}

// OptionalField decodes a field encoding/json may leave out, running the
// fallback decoder when the key is absent. A present key must still decode.
var OptionalField = Definition{
	Name: "optionalField",
	Body: `optionalField : String -> Json.Decode.Decoder a -> Json.Decode.Decoder a -> Json.Decode.Decoder a
optionalField name decoder fallback =
    Json.Decode.maybe (Json.Decode.field name Json.Decode.value)
        |> Json.Decode.andThen
            (\present ->
                case present of
                    Just _ ->
                        Json.Decode.field name decoder

                    Nothing ->
                        fallback
            )
`,
}

var stringEncodedInt = Definition{
	Name: "stringEncodedInt",
	Body: `stringEncodedInt : Json.Decode.Decoder Int
stringEncodedInt =
    Json.Decode.string
        |> Json.Decode.andThen
            (\s ->
                case String.toInt s of
                    Just n ->
                        Json.Decode.succeed n

                    Nothing ->
                        Json.Decode.fail ("Expected an integer in a string, got " ++ s)
            )
`,
}

var stringEncodedFloat = Definition{
	Name: "stringEncodedFloat",
	Body: `stringEncodedFloat : Json.Decode.Decoder Float
stringEncodedFloat =
    Json.Decode.string
        |> Json.Decode.andThen
            (\s ->
                case String.toFloat s of
                    Just n ->
                        Json.Decode.succeed n

                    Nothing ->
                        Json.Decode.fail ("Expected a number in a string, got " ++ s)
            )
`,
}

var stringEncodedBool = Definition{
	Name: "stringEncodedBool",
	Body: `stringEncodedBool : Json.Decode.Decoder Bool
stringEncodedBool =
    Json.Decode.string
        |> Json.Decode.andThen
            (\s ->
                case s of
                    "true" ->
                        Json.Decode.succeed True

                    "false" ->
                        Json.Decode.succeed False

                    _ ->
                        Json.Decode.fail ("Expected a boolean in a string, got " ++ s)
            )
`,
}

var stringEncodedString = Definition{
	Name: "stringEncodedString",
	Body: `stringEncodedString : Json.Decode.Decoder String
stringEncodedString =
    Json.Decode.string
        |> Json.Decode.andThen
            (\s ->
                case Json.Decode.decodeString Json.Decode.string s of
                    Ok inner ->
                        Json.Decode.succeed inner

                    Err _ ->
                        Json.Decode.fail ("Expected a quoted string in a string, got " ++ s)
            )
`,
}
