package elm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/elmgen/elmgen/ir"
)

func TestDeclaration(t *testing.T) {
	tests := []struct {
		name  string
		shape ir.Shape
		attrs ir.ContainerAttrs
		want  string
	}{
		{
			name:  "unit",
			shape: &ir.UnitShape{},
			want: lines(
				"type Ping",
				"    = Ping",
			),
		},
		{
			name:  "newtype",
			shape: &ir.NewtypeShape{Element: ir.Slice(ir.String())},
			want: lines(
				"type Ping",
				"    = Ping (List (String))",
			),
		},
		{
			name:  "tuple",
			shape: &ir.TupleShape{Elements: []ir.TypeDescriptor{ir.Int(32), ir.Option(ir.Bool())}},
			want: lines(
				"type Ping",
				"    = Ping (Int) (Maybe (Bool))",
			),
		},
		{
			name:  "empty record",
			shape: &ir.ProductShape{},
			want: lines(
				"type alias Ping =",
				"    {}",
			),
		},
		{
			name:  "sum",
			shape: &ir.SumShape{Variants: sampleVariants()},
			want: lines(
				"type Ping",
				"    = Unit1",
				"    | Newtype1 (Int)",
				"    | Tuple1 (Int) (Int)",
				"    | Named1 { a : Int }",
			),
		},
		{
			name:  "sum representation does not matter",
			shape: &ir.SumShape{Variants: sampleVariants()[:1]},
			attrs: ir.ContainerAttrs{Tag: "t", Content: "c"},
			want: lines(
				"type Ping",
				"    = Unit1",
			),
		},
		{
			name: "empty struct variant",
			shape: &ir.SumShape{Variants: []ir.Variant{
				{Name: "Nothing1", Kind: ir.VariantStruct},
			}},
			want: lines(
				"type Ping",
				"    = Nothing1 {}",
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := mustResolve(t, "Ping", tt.shape, tt.attrs)
			got, err := Declaration(rt, newRegistry(rt))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeclaration_Record(t *testing.T) {
	rt := sampleRecord(t)
	got, err := Declaration(rt, newRegistry(rt))
	require.NoError(t, err)
	assert.Equal(t, lines(
		"type alias Record =",
		"    { id : Int",
		"    , name : String",
		"    , tags : List (String)",
		"    }",
	), got)
}

func TestDeclaration_Documentation(t *testing.T) {
	rt := mustResolve(t, "Ping", &ir.UnitShape{}, ir.ContainerAttrs{})
	rt.Documentation = ir.Documentation{Body: "Ping checks liveness.\n\nIt carries no data.\n"}

	got, err := Declaration(rt, newRegistry(rt))
	require.NoError(t, err)
	assert.Equal(t, lines(
		"{-| Ping checks liveness.",
		"",
		"It carries no data.",
		"-}",
		"type Ping",
		"    = Ping",
	), got)
}

func TestDeclaration_References(t *testing.T) {
	user := mustResolve(t, "user_info", &ir.UnitShape{}, ir.ContainerAttrs{})
	rt := mustResolve(t, "Team", &ir.ProductShape{Fields: []ir.Field{
		{Name: "Members", Type: ir.Map(ir.String(), ir.Ref("user_info", testPkg))},
		{Name: "Lead", Type: ir.Ptr(ir.Ref("user_info", testPkg))},
	}}, ir.ContainerAttrs{})

	got, err := Declaration(rt, newRegistry(user, rt))
	require.NoError(t, err)
	assert.Equal(t, lines(
		"type alias Team =",
		"    { members : Dict String (UserInfo)",
		"    , lead : UserInfo",
		"    }",
	), got)
}

func TestDeclaration_UnsupportedType(t *testing.T) {
	rt := mustResolve(t, "Scores", &ir.ProductShape{Fields: []ir.Field{
		{Name: "ByWeight", Type: ir.Map(ir.Float(64), ir.Int(0))},
	}}, ir.ContainerAttrs{})

	_, err := Declaration(rt, newRegistry(rt))
	require.Error(t, err)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, CodeUnsupportedType, gerr.Code)
	assert.Equal(t, "ByWeight", gerr.Member)
	assert.Equal(t, "Scores", gerr.Type.Name)
}
