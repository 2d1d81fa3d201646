package elm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/elmgen/elmgen/ir"
)

func TestDecoder_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		shape ir.Shape
		want  string
	}{
		{
			name:  "unit",
			shape: &ir.UnitShape{},
			want: lines(
				"pingDecoder : Json.Decode.Decoder Ping",
				"pingDecoder =",
				"    Json.Decode.null Ping",
			),
		},
		{
			name:  "newtype",
			shape: &ir.NewtypeShape{Element: ir.Option(ir.Int(0))},
			want: lines(
				"pingDecoder : Json.Decode.Decoder Ping",
				"pingDecoder =",
				"    Json.Decode.map Ping (Json.Decode.nullable (Json.Decode.int))",
			),
		},
		{
			name:  "tuple",
			shape: &ir.TupleShape{Elements: []ir.TypeDescriptor{ir.Int(32), ir.String()}},
			want: lines(
				"pingDecoder : Json.Decode.Decoder Ping",
				"pingDecoder =",
				"    Json.Decode.succeed Ping",
				`        |> Json.Decode.andThen (\x -> Json.Decode.index 0 (Json.Decode.int) |> Json.Decode.map x)`,
				`        |> Json.Decode.andThen (\x -> Json.Decode.index 1 (Json.Decode.string) |> Json.Decode.map x)`,
			),
		},
		{
			name:  "empty record",
			shape: &ir.ProductShape{},
			want: lines(
				"pingDecoder : Json.Decode.Decoder Ping",
				"pingDecoder =",
				"    Json.Decode.succeed {}",
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := mustResolve(t, "Ping", tt.shape, ir.ContainerAttrs{})
			got, err := Decoder(rt, newRegistry(rt))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoder_Record(t *testing.T) {
	rt := sampleRecord(t)
	got, err := Decoder(rt, newRegistry(rt))
	require.NoError(t, err)
	assert.Equal(t, lines(
		"recordDecoder : Json.Decode.Decoder Record",
		"recordDecoder =",
		"    Json.Decode.succeed Record",
		`        |> Json.Decode.andThen (\x -> Json.Decode.map x (Json.Decode.field "id" (Json.Decode.int)))`,
		`        |> Json.Decode.andThen (\x -> Json.Decode.map x (Json.Decode.oneOf [ Json.Decode.field "name" (Json.Decode.string), Json.Decode.field "title" (Json.Decode.string) ]))`,
		`        |> Json.Decode.andThen (\x -> Json.Decode.map x (Json.Decode.field "tags" (Json.Decode.oneOf [ Json.Decode.list (Json.Decode.string), Json.Decode.null [] ])))`,
	), got)
}

func TestDecoder_External(t *testing.T) {
	rt := mustResolve(t, "Sum", &ir.SumShape{Variants: sampleVariants()}, ir.ContainerAttrs{})
	got, err := Decoder(rt, newRegistry(rt))
	require.NoError(t, err)
	assert.Equal(t, lines(
		"sumDecoder : Json.Decode.Decoder Sum",
		"sumDecoder =",
		"    let",
		"        constructNamed1 a =",
		"            Named1 { a = a }",
		"    in",
		"    Json.Decode.oneOf",
		"        [ Json.Decode.string",
		"            |> Json.Decode.andThen",
		`                (\x ->`,
		"                    case x of",
		`                        "Unit1" ->`,
		"                            Json.Decode.succeed Unit1",
		"                        unexpected ->",
		`                            Json.Decode.fail <| "Unexpected variant " ++ unexpected`,
		"                )",
		`        , Json.Decode.map Newtype1 (Json.Decode.field "Newtype1" (Json.Decode.int))`,
		`        , Json.Decode.field "Tuple1" (Json.Decode.succeed Tuple1 |> Json.Decode.andThen (\x -> Json.Decode.index 0 (Json.Decode.int) |> Json.Decode.map x) |> Json.Decode.andThen (\x -> Json.Decode.index 1 (Json.Decode.int) |> Json.Decode.map x))`,
		`        , Json.Decode.field "Named1" (Json.Decode.succeed constructNamed1 |> Json.Decode.andThen (\x -> Json.Decode.map x (Json.Decode.field "a" (Json.Decode.int))))`,
		"        ]",
	), got)
}

func TestDecoder_Internal(t *testing.T) {
	variants := sampleVariants()
	rt := mustResolve(t, "Sum", &ir.SumShape{Variants: []ir.Variant{variants[0], variants[3]}}, ir.ContainerAttrs{Tag: "t"})
	got, err := Decoder(rt, newRegistry(rt))
	require.NoError(t, err)
	assert.Equal(t, lines(
		"sumDecoder : Json.Decode.Decoder Sum",
		"sumDecoder =",
		"    let",
		"        constructNamed1 a =",
		"            Named1 { a = a }",
		"    in",
		`    Json.Decode.field "t" Json.Decode.string`,
		"        |> Json.Decode.andThen",
		`            (\tag ->`,
		"                case tag of",
		`                    "Unit1" ->`,
		"                        Json.Decode.succeed Unit1",
		`                    "Named1" ->`,
		`                        Json.Decode.succeed constructNamed1 |> Json.Decode.andThen (\x -> Json.Decode.map x (Json.Decode.field "a" (Json.Decode.int)))`,
		"                    unexpected ->",
		`                        Json.Decode.fail <| "Unexpected variant " ++ unexpected`,
		"            )",
	), got)
}

func TestDecoder_Adjacent(t *testing.T) {
	rt := mustResolve(t, "Sum", &ir.SumShape{Variants: sampleVariants()}, ir.ContainerAttrs{Tag: "t", Content: "c"})
	got, err := Decoder(rt, newRegistry(rt))
	require.NoError(t, err)

	assert.Contains(t, got, `    Json.Decode.field "t" Json.Decode.string`)
	assert.Contains(t, got, lines(
		`                    "Unit1" ->`,
		"                        Json.Decode.succeed Unit1",
		`                    "Newtype1" ->`,
		`                        Json.Decode.map Newtype1 (Json.Decode.field "c" (Json.Decode.int))`,
		`                    "Tuple1" ->`,
		`                        Json.Decode.field "c" (Json.Decode.succeed Tuple1 |> Json.Decode.andThen (\x -> Json.Decode.index 0 (Json.Decode.int) |> Json.Decode.map x) |> Json.Decode.andThen (\x -> Json.Decode.index 1 (Json.Decode.int) |> Json.Decode.map x))`,
		`                    "Named1" ->`,
		`                        Json.Decode.field "c" (Json.Decode.succeed constructNamed1 |> Json.Decode.andThen (\x -> Json.Decode.map x (Json.Decode.field "a" (Json.Decode.int))))`,
	))
}

func TestDecoder_Untagged(t *testing.T) {
	rt := mustResolve(t, "Sum", &ir.SumShape{Variants: sampleVariants()}, ir.ContainerAttrs{Untagged: true})
	got, err := Decoder(rt, newRegistry(rt))
	require.NoError(t, err)

	assert.Contains(t, got, lines(
		"    Json.Decode.oneOf",
		"        [ Json.Decode.null Unit1",
		"        , Json.Decode.map Newtype1 (Json.Decode.int)",
		`        , Json.Decode.succeed Tuple1 |> Json.Decode.andThen (\x -> Json.Decode.index 0 (Json.Decode.int) |> Json.Decode.map x) |> Json.Decode.andThen (\x -> Json.Decode.index 1 (Json.Decode.int) |> Json.Decode.map x)`,
		`        , Json.Decode.succeed constructNamed1 |> Json.Decode.andThen (\x -> Json.Decode.map x (Json.Decode.field "a" (Json.Decode.int)))`,
		"        ]",
	))
}

func TestDecoder_OtherVariant(t *testing.T) {
	variants := []ir.Variant{
		{Name: "Unknown", Attrs: ir.VariantAttrs{Other: true}},
		{Name: "Known"},
	}

	t.Run("internal", func(t *testing.T) {
		rt := mustResolve(t, "Kind", &ir.SumShape{Variants: variants}, ir.ContainerAttrs{Tag: "type"})
		got, err := Decoder(rt, newRegistry(rt))
		require.NoError(t, err)
		assert.Contains(t, got, lines(
			`                    "Known" ->`,
			"                        Json.Decode.succeed Known",
			"                    _ ->",
			"                        Json.Decode.succeed Unknown",
			"            )",
		))
		assert.NotContains(t, got, "Unexpected variant")
	})

	t.Run("external", func(t *testing.T) {
		rt := mustResolve(t, "Kind", &ir.SumShape{Variants: variants}, ir.ContainerAttrs{})
		got, err := Decoder(rt, newRegistry(rt))
		require.NoError(t, err)
		assert.Contains(t, got, lines(
			"        , Json.Decode.succeed Unknown",
			"        ]",
		))
	})
}

func TestDecoder_EmptyStructVariant(t *testing.T) {
	rt := mustResolve(t, "Sum", &ir.SumShape{Variants: []ir.Variant{
		{Name: "Empty", Kind: ir.VariantStruct},
	}}, ir.ContainerAttrs{Tag: "t"})
	got, err := Decoder(rt, newRegistry(rt))
	require.NoError(t, err)
	assert.Contains(t, got, lines(
		"    let",
		"        constructEmpty =",
		"            Empty {}",
		"    in",
	))
	assert.Contains(t, got, "                        Json.Decode.succeed constructEmpty\n")
}

func TestDecoder_EscapesNames(t *testing.T) {
	rt := mustResolve(t, "Quoted", &ir.ProductShape{Fields: []ir.Field{
		{Name: "Value", Type: ir.String(), Attrs: ir.FieldAttrs{Rename: `say "hi"`}},
	}}, ir.ContainerAttrs{})
	got, err := Decoder(rt, newRegistry(rt))
	require.NoError(t, err)
	assert.Contains(t, got, `Json.Decode.field "say \"hi\"" (Json.Decode.string)`)
}

func TestDecoder_OptionalFields(t *testing.T) {
	rt := mustResolve(t, "Filter", &ir.ProductShape{Fields: []ir.Field{
		{Name: "Limit", Type: ir.Int(0), Attrs: ir.FieldAttrs{Rename: "limit"}, Optional: true},
		{Name: "Tags", Type: ir.Slice(ir.String()), Attrs: ir.FieldAttrs{Rename: "tags"}, Optional: true},
		{Name: "Range", Type: ir.TupleOf(ir.Int(0), ir.Int(0)), Attrs: ir.FieldAttrs{Rename: "range"}, Optional: true},
		{Name: "Query", Type: ir.String(), Attrs: ir.FieldAttrs{Rename: "q", Aliases: []string{"query"}}, Optional: true},
	}}, ir.ContainerAttrs{})
	reg := newRegistry(rt)

	decl, err := Declaration(rt, reg)
	require.NoError(t, err)
	assert.Equal(t, lines(
		"type alias Filter =",
		"    { limit : Int",
		"    , tags : List (String)",
		"    , range : Maybe (( Int, Int ))",
		"    , query : String",
		"    }",
	), decl)

	dec, err := Decoder(rt, reg)
	require.NoError(t, err)
	assert.Equal(t, lines(
		"filterDecoder : Json.Decode.Decoder Filter",
		"filterDecoder =",
		"    Json.Decode.succeed Filter",
		`        |> Json.Decode.andThen (\x -> Json.Decode.map x (optionalField "limit" (Json.Decode.int) (Json.Decode.succeed 0)))`,
		`        |> Json.Decode.andThen (\x -> Json.Decode.map x (optionalField "tags" (Json.Decode.oneOf [ Json.Decode.list (Json.Decode.string), Json.Decode.null [] ]) (Json.Decode.succeed [])))`,
		`        |> Json.Decode.andThen (\x -> Json.Decode.map x (optionalField "range" (Json.Decode.nullable (Json.Decode.map2 (\a b -> ( a, b )) (Json.Decode.index 0 (Json.Decode.int)) (Json.Decode.index 1 (Json.Decode.int)))) (Json.Decode.succeed Nothing)))`,
		`        |> Json.Decode.andThen (\x -> Json.Decode.map x (optionalField "q" (Json.Decode.string) (optionalField "query" (Json.Decode.string) (Json.Decode.succeed ""))))`,
	), dec)

	enc, err := Encoder(rt, reg)
	require.NoError(t, err)
	assert.Contains(t, enc, `, ( "range", (Maybe.withDefault Json.Encode.null << Maybe.map (\( a, b ) -> Json.Encode.list identity [ (Json.Encode.int) a, (Json.Encode.int) b ])) struct.range )`)

	m := NewModule("Api", reg)
	require.NoError(t, m.Add(rt))
	assert.Equal(t, 1, strings.Count(m.String(), "optionalField : String"))
}

func TestDecoder_StringEncodedFields(t *testing.T) {
	rt := mustResolve(t, "Account", &ir.ProductShape{Fields: []ir.Field{
		{Name: "ID", Type: ir.Int(64), Attrs: ir.FieldAttrs{Rename: "id"}, StringEncoded: true},
		{Name: "Rate", Type: ir.Option(ir.Float(64)), Attrs: ir.FieldAttrs{Rename: "rate"}, StringEncoded: true},
		{Name: "Active", Type: ir.Bool(), Attrs: ir.FieldAttrs{Rename: "active"}, StringEncoded: true, Optional: true},
	}}, ir.ContainerAttrs{})
	reg := newRegistry(rt)

	dec, err := Decoder(rt, reg)
	require.NoError(t, err)
	assert.Contains(t, dec, `Json.Decode.field "id" (stringEncodedInt)`)
	assert.Contains(t, dec, `Json.Decode.field "rate" (Json.Decode.nullable (stringEncodedFloat))`)
	assert.Contains(t, dec, `optionalField "active" (stringEncodedBool) (Json.Decode.succeed False)`)

	enc, err := Encoder(rt, reg)
	require.NoError(t, err)
	assert.Contains(t, enc, `( "id", (Json.Encode.string << String.fromInt) struct.id )`)

	m := NewModule("Api", reg)
	require.NoError(t, m.Add(rt))
	out := m.String()
	for _, def := range []string{"stringEncodedInt :", "stringEncodedFloat :", "stringEncodedBool :", "optionalField :"} {
		assert.Contains(t, out, "\n"+def)
	}
}

func TestDecoder_StringEncodedUnsupported(t *testing.T) {
	rt := mustResolve(t, "Account", &ir.ProductShape{Fields: []ir.Field{
		{Name: "Tags", Type: ir.Slice(ir.String()), StringEncoded: true},
	}}, ir.ContainerAttrs{})
	_, err := Decoder(rt, newRegistry(rt))
	var eerr *Error
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, CodeUnsupportedType, eerr.Code)
	assert.Equal(t, "Tags", eerr.Member)
}

func TestDecoder_VariantAliases(t *testing.T) {
	variants := []ir.Variant{
		{Name: "Active", Attrs: ir.VariantAttrs{Aliases: []string{"enabled"}}},
		{Name: "Limited", Kind: ir.VariantNewtype, Elements: []ir.TypeDescriptor{ir.Int(0)}, Attrs: ir.VariantAttrs{Aliases: []string{"capped"}}},
	}

	t.Run("external", func(t *testing.T) {
		rt := mustResolve(t, "Status", &ir.SumShape{Variants: variants}, ir.ContainerAttrs{})
		got, err := Decoder(rt, newRegistry(rt))
		require.NoError(t, err)
		assert.Contains(t, got, lines(
			`                        "Active" ->`,
			"                            Json.Decode.succeed Active",
			`                        "enabled" ->`,
			"                            Json.Decode.succeed Active",
		))
		assert.Contains(t, got, lines(
			`        , Json.Decode.map Limited (Json.Decode.field "Limited" (Json.Decode.int))`,
			`        , Json.Decode.map Limited (Json.Decode.field "capped" (Json.Decode.int))`,
		))
	})

	t.Run("adjacent", func(t *testing.T) {
		rt := mustResolve(t, "Status", &ir.SumShape{Variants: variants}, ir.ContainerAttrs{Tag: "t", Content: "c"})
		got, err := Decoder(rt, newRegistry(rt))
		require.NoError(t, err)
		assert.Contains(t, got, lines(
			`                    "Limited" ->`,
			`                        Json.Decode.map Limited (Json.Decode.field "c" (Json.Decode.int))`,
			`                    "capped" ->`,
			`                        Json.Decode.map Limited (Json.Decode.field "c" (Json.Decode.int))`,
		))

		enc, err := Encoder(rt, newRegistry(rt))
		require.NoError(t, err)
		assert.NotContains(t, enc, "capped")
	})
}
