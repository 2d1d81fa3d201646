package provider

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/elmgen/elmgen/ir"
)

const providerPkg = "github.com/broady/elmgen/elmgen/provider"

type Account struct {
	ID       int64             `json:"id"`
	Nickname *string           `json:"nickname"`
	Labels   map[string]string `json:"labels"`
	Joined   time.Time         `json:"joined"`
	Timeout  time.Duration     `json:"timeout"`
	Raw      json.RawMessage   `json:"raw"`
	Role     Role              `json:"role"`
	Grid     [2]float32        `json:"grid"`
	Blob     []byte            `json:"blob"`
	Friends  []*Account        `json:"friends"`
	Any      any               `json:"any"`
	Ignored  string            `elm:"-"`
	hidden   bool
	Stamp
}

type Stamp struct {
	Version uint16 `elm:"version,alias=rev"`
}

type Role string

type Event interface{ isEvent() }

type Opened struct {
	At time.Time `json:"at"`
}

type Closed struct{}

type Moved struct {
	X int
	Y int
}

type Reason string

func (Opened) isEvent() {}
func (Closed) isEvent() {}
func (Moved) isEvent() {}
func (Reason) isEvent() {}

type Token struct{}

func (Token) MarshalText() ([]byte, error) { return []byte("token"), nil }

type WithToken struct {
	Token Token `json:"token"`
}

type Unrelated struct{}

type Quota struct {
	Limit   uint32   `json:"limit,string,omitempty"`
	Ratio   *float64 `json:"ratio,string"`
	Note    string   `json:",omitzero"`
	Weights []int    `json:"weights,string"`
	Plain   bool     `json:"plain"`
}

func TestReflectionProvider_Product(t *testing.T) {
	p := &ReflectionProvider{}
	schema, err := p.BuildSchema(context.Background(), ReflectionInputOptions{
		RootTypes:  []reflect.Type{reflect.TypeFor[*Account]()},
		Directives: map[reflect.Type][]string{reflect.TypeFor[Account](): {"//elm:rename_all camelCase"}},
	})
	require.NoError(t, err)
	assert.Equal(t, providerPkg, schema.Package.Path)
	assert.Equal(t, "provider", schema.Package.Name)

	account := schema.FindTypeByName("Account")
	require.NotNil(t, account)
	assert.Equal(t, providerPkg, account.Name.Package)
	assert.False(t, account.Attrs.RenameAll.IsZero())

	product, ok := account.Shape.(*ir.ProductShape)
	require.True(t, ok, "Account shape is %T", account.Shape)

	var names []string
	for _, f := range product.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"ID", "Nickname", "Labels", "Joined", "Timeout", "Raw", "Role", "Grid", "Blob", "Friends", "Any", "Version"}, names)

	want := map[string]ir.TypeDescriptor{
		"ID":       ir.Int(64),
		"Nickname": ir.Option(ir.String()),
		"Labels":   ir.Map(ir.String(), ir.String()),
		"Joined":   ir.Time(),
		"Timeout":  ir.Duration(),
		"Raw":      ir.Any(),
		"Role":     ir.Ref("Role", providerPkg),
		"Grid":     ir.Array(ir.Float(32), 2),
		"Blob":     ir.Bytes(),
		"Friends":  ir.Slice(ir.Option(ir.Ref("Account", providerPkg))),
		"Any":      ir.Any(),
		"Version":  ir.Uint(16),
	}
	for name, td := range want {
		f := fieldNamed(product.Fields, name)
		require.NotNil(t, f, name)
		assert.Equal(t, td, f.Type, name)
	}
	version := fieldNamed(product.Fields, "Version")
	assert.Equal(t, "version", version.Attrs.Rename)
	assert.Equal(t, []string{"rev"}, version.Attrs.Aliases)

	role := schema.FindTypeByName("Role")
	require.NotNil(t, role)
	assert.Equal(t, &ir.NewtypeShape{Element: ir.String()}, role.Shape)
	assert.Len(t, schema.Types, 2, "recursive references are extracted once")
	assert.Empty(t, schema.Warnings)
}

func TestReflectionProvider_Sum(t *testing.T) {
	p := &ReflectionProvider{}
	schema, err := p.BuildSchema(context.Background(), ReflectionInputOptions{
		RootTypes: []reflect.Type{reflect.TypeFor[Event]()},
		Sums:      []Sum{SumOf[Event](Opened{}, Closed{}, Moved{}, Reason(""))},
		Directives: map[reflect.Type][]string{
			reflect.TypeFor[Event](): {"//elm:tag type", "//elm:content data"},
			reflect.TypeFor[Moved](): {"//elm:tuple", "//elm:rename moved"},
		},
	})
	require.NoError(t, err)

	event := schema.FindTypeByName("Event")
	require.NotNil(t, event)
	assert.Equal(t, "type", event.Attrs.Tag)
	assert.Equal(t, "data", event.Attrs.Content)

	sum, ok := event.Shape.(*ir.SumShape)
	require.True(t, ok, "Event shape is %T", event.Shape)
	require.Len(t, sum.Variants, 4)

	assert.Equal(t, "Opened", sum.Variants[0].Name)
	assert.Equal(t, ir.VariantStruct, sum.Variants[0].Kind)
	assert.Equal(t, ir.VariantUnit, sum.Variants[1].Kind)
	assert.Equal(t, ir.VariantTuple, sum.Variants[2].Kind)
	assert.Equal(t, []ir.TypeDescriptor{ir.Int(0), ir.Int(0)}, sum.Variants[2].Elements)
	assert.Equal(t, "moved", sum.Variants[2].Attrs.Rename)
	assert.Equal(t, ir.VariantNewtype, sum.Variants[3].Kind)
	assert.Equal(t, []ir.TypeDescriptor{ir.String()}, sum.Variants[3].Elements)
	assert.Len(t, schema.Types, 1)
}

func TestReflectionProvider_Warnings(t *testing.T) {
	p := &ReflectionProvider{}
	schema, err := p.BuildSchema(context.Background(), ReflectionInputOptions{
		RootTypes: []reflect.Type{reflect.TypeFor[WithToken](), reflect.TypeFor[Event]()},
	})
	require.NoError(t, err)

	product := schema.FindTypeByName("WithToken").Shape.(*ir.ProductShape)
	assert.Equal(t, ir.Any(), product.Fields[0].Type)

	event := schema.FindTypeByName("Event")
	require.NotNil(t, event)
	assert.Equal(t, &ir.NewtypeShape{Element: ir.Any()}, event.Shape, "unregistered interfaces are opaque")

	require.Len(t, schema.Warnings, 2)
	assert.Equal(t, WarnCustomMarshaler, schema.Warnings[0].Code)
	assert.Equal(t, WarnInterfaceType, schema.Warnings[1].Code)
}

func TestReflectionProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    ReflectionInputOptions
		wantErr string
	}{
		{"no roots", ReflectionInputOptions{}, "no root types provided"},
		{"unnamed root", ReflectionInputOptions{RootTypes: []reflect.Type{reflect.TypeFor[[]int]()}}, "is not a named type"},
		{"builtin root", ReflectionInputOptions{RootTypes: []reflect.Type{reflect.TypeFor[string]()}}, "is not a named type"},
		{
			"bad directive",
			ReflectionInputOptions{
				RootTypes:  []reflect.Type{reflect.TypeFor[Role]()},
				Directives: map[reflect.Type][]string{reflect.TypeFor[Role](): {"//elm:bogus"}},
			},
			`unknown directive "bogus"`,
		},
		{
			"variant does not implement",
			ReflectionInputOptions{
				RootTypes: []reflect.Type{reflect.TypeFor[Event]()},
				Sums:      []Sum{SumOf[Event](Unrelated{})},
			},
			"does not implement",
		},
		{
			"sum of non-interface",
			ReflectionInputOptions{
				RootTypes: []reflect.Type{reflect.TypeFor[Role]()},
				Sums:      []Sum{SumOf[Role]()},
			},
			"is not an interface type",
		},
		{
			"anonymous root",
			ReflectionInputOptions{RootTypes: []reflect.Type{reflect.TypeFor[struct{ C chan int }]()}},
			"is not a named type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&ReflectionProvider{}).BuildSchema(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type Pipe struct {
	C chan int
}

func TestReflectionProvider_UnsupportedKind(t *testing.T) {
	_, err := (&ReflectionProvider{}).BuildSchema(context.Background(), ReflectionInputOptions{
		RootTypes: []reflect.Type{reflect.TypeFor[Pipe]()},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field C")
	assert.Contains(t, err.Error(), "unsupported type chan int")
}

func TestReflectionProvider_JSONOptions(t *testing.T) {
	schema, err := (&ReflectionProvider{}).BuildSchema(context.Background(), ReflectionInputOptions{
		RootTypes: []reflect.Type{reflect.TypeFor[Quota]()},
	})
	require.NoError(t, err)
	quota := schema.FindTypeByName("Quota")
	require.NotNil(t, quota)
	product := quota.Shape.(*ir.ProductShape)

	tests := []struct {
		field                   string
		optional, stringEncoded bool
	}{
		{"Limit", true, true},
		{"Ratio", false, true},
		{"Note", true, false},
		{"Weights", false, false},
		{"Plain", false, false},
	}
	for _, tt := range tests {
		f := fieldNamed(product.Fields, tt.field)
		require.NotNil(t, f, tt.field)
		assert.Equal(t, tt.optional, f.Optional, tt.field)
		assert.Equal(t, tt.stringEncoded, f.StringEncoded, tt.field)
	}
	assert.Empty(t, schema.Validate())
}
