package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/naming"
)

const testdataPkg = "github.com/broady/elmgen/elmgen/provider/testdata"

func buildSource(t *testing.T, roots ...string) *ir.Schema {
	t.Helper()
	p := &SourceProvider{}
	schema, err := p.BuildSchema(context.Background(), SourceInputOptions{
		Packages:  []string{testdataPkg},
		RootTypes: roots,
	})
	require.NoError(t, err)
	return schema
}

func fieldNamed(fields []ir.Field, name string) *ir.Field {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

func TestSourceProvider_Product(t *testing.T) {
	schema := buildSource(t, "User")
	assert.Equal(t, testdataPkg, schema.Package.Path)
	assert.Equal(t, "testdata", schema.Package.Name)

	user := schema.FindTypeByName("User")
	require.NotNil(t, user)
	assert.Equal(t, "User is a registered account.", user.Documentation.Summary)
	assert.Contains(t, user.Documentation.Body, "signup flow")
	assert.NotContains(t, user.Documentation.Body, "elm:")
	assert.Equal(t, naming.RuleSnake, user.Attrs.RenameAllFields.Both)
	assert.NotZero(t, user.Source.Line)

	product, ok := user.Shape.(*ir.ProductShape)
	require.True(t, ok, "User shape is %T", user.Shape)

	var names []string
	for _, f := range product.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"ID", "Name", "Email", "CreatedAt", "Tags", "Scores", "Status", "Avatar", "Extra", "UpdatedBy"}, names)

	types := map[string]ir.TypeDescriptor{
		"ID":        ir.String(),
		"Email":     ir.Option(ir.String()),
		"CreatedAt": ir.Time(),
		"Tags":      ir.Slice(ir.String()),
		"Scores":    ir.Map(ir.String(), ir.Float(64)),
		"Status":    ir.Ref("Status", testdataPkg),
		"Avatar":    ir.Bytes(),
		"Extra":     ir.Any(),
	}
	for name, want := range types {
		f := fieldNamed(product.Fields, name)
		require.NotNil(t, f, name)
		assert.Equal(t, want, f.Type, name)
	}

	id := fieldNamed(product.Fields, "ID")
	assert.Equal(t, "ID is the stable identifier.", id.Documentation.Summary)

	name := fieldNamed(product.Fields, "Name")
	assert.Equal(t, "name", name.Attrs.Rename)
	assert.Equal(t, []string{"title"}, name.Attrs.Aliases)

	assert.Equal(t, "updated_by", fieldNamed(product.Fields, "UpdatedBy").Attrs.Rename)

	status := schema.FindTypeByName("Status")
	require.NotNil(t, status, "referenced types are extracted")
	assert.Equal(t, &ir.NewtypeShape{Element: ir.String()}, status.Shape)
	assert.Nil(t, schema.FindTypeByName("Audit"), "promoted structs are not extracted")
	assert.Empty(t, schema.Validate())
}

func TestSourceProvider_TupleAndUnit(t *testing.T) {
	schema := buildSource(t, "Point", "Empty")

	point := schema.FindTypeByName("Point")
	require.NotNil(t, point)
	assert.Equal(t, &ir.TupleShape{Elements: []ir.TypeDescriptor{ir.Int(32), ir.Int(32)}}, point.Shape)

	empty := schema.FindTypeByName("Empty")
	require.NotNil(t, empty)
	assert.Equal(t, ir.ShapeUnit, empty.Shape.Kind())
}

func TestSourceProvider_Sum(t *testing.T) {
	schema := buildSource(t, "Shape")

	shape := schema.FindTypeByName("Shape")
	require.NotNil(t, shape)
	assert.Equal(t, "kind", shape.Attrs.Tag)

	sum, ok := shape.Shape.(*ir.SumShape)
	require.True(t, ok, "Shape shape is %T", shape.Shape)
	require.Len(t, sum.Variants, 5)

	circle := sum.Variants[0]
	assert.Equal(t, "Circle", circle.Name)
	assert.Equal(t, ir.VariantStruct, circle.Kind)
	assert.Equal(t, "Circle is round.", circle.Documentation.Summary)
	require.Len(t, circle.Fields, 1)
	assert.Equal(t, "radius", circle.Fields[0].Attrs.Rename)
	assert.Equal(t, []string{"round"}, circle.Attrs.Aliases)
	assert.Equal(t, "Circle is round.", circle.Documentation.Body)

	segment := sum.Variants[1]
	assert.Equal(t, ir.VariantTuple, segment.Kind)
	point := ir.Ref("Point", testdataPkg)
	assert.Equal(t, []ir.TypeDescriptor{point, point}, segment.Elements)

	origin := sum.Variants[2]
	assert.Equal(t, ir.VariantUnit, origin.Kind, "pointer receivers still implement the sum")
	assert.Equal(t, "origin", origin.Attrs.Rename)

	labeled := sum.Variants[3]
	assert.Equal(t, ir.VariantNewtype, labeled.Kind)
	assert.Equal(t, []ir.TypeDescriptor{ir.String()}, labeled.Elements)

	unknown := sum.Variants[4]
	assert.True(t, unknown.Attrs.Other)

	assert.NotNil(t, schema.FindTypeByName("Point"), "variant payload types are extracted")
	assert.Nil(t, schema.FindTypeByName("Circle"), "variants are not standalone declarations")
}

func TestSourceProvider_JSONOptions(t *testing.T) {
	schema := buildSource(t, "Listing")
	listing := schema.FindTypeByName("Listing")
	require.NotNil(t, listing)
	product := listing.Shape.(*ir.ProductShape)

	type flags struct{ optional, stringEncoded bool }
	want := map[string]flags{
		"Cursor": {optional: true},
		"Items":  {optional: true},
		"Total":  {stringEncoded: true},
		"Limit":  {optional: true, stringEncoded: true},
		"Sizes":  {},
		"Count":  {stringEncoded: true},
		"Next":   {optional: true},
	}
	for name, w := range want {
		f := fieldNamed(product.Fields, name)
		require.NotNil(t, f, name)
		assert.Equal(t, w, flags{f.Optional, f.StringEncoded}, name)
	}
	assert.Equal(t, ir.Option(ir.Int(0)), fieldNamed(product.Fields, "Limit").Type)
	assert.Empty(t, schema.Validate())
}

func TestSourceProvider_Warnings(t *testing.T) {
	schema := buildSource(t, "Vault", "Handler")

	vault := schema.FindTypeByName("Vault")
	require.NotNil(t, vault)
	product := vault.Shape.(*ir.ProductShape)
	assert.Equal(t, ir.Ref("Secret", testdataPkg), fieldNamed(product.Fields, "Secret").Type)
	secret := schema.FindTypeByName("Secret")
	require.NotNil(t, secret)
	assert.Equal(t, &ir.NewtypeShape{Element: ir.Any()}, secret.Shape, "local marshalers become opaque declarations")
	assert.Equal(t, ir.Duration(), fieldNamed(product.Fields, "Since").Type)

	handler := schema.FindTypeByName("Handler")
	require.NotNil(t, handler)
	assert.Equal(t, &ir.NewtypeShape{Element: ir.Any()}, handler.Shape)

	codes := map[string]string{}
	for _, w := range schema.Warnings {
		codes[w.Code] = w.TypeName
	}
	assert.Equal(t, map[string]string{
		WarnCustomMarshaler: "Secret",
		WarnInterfaceType:   "Handler",
	}, codes)
}

func TestSourceProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    SourceInputOptions
		wantErr string
	}{
		{"no packages", SourceInputOptions{}, "no packages specified"},
		{"missing root", SourceInputOptions{Packages: []string{testdataPkg}, RootTypes: []string{"Nope"}}, "type Nope not found"},
		{"generic instantiation", SourceInputOptions{Packages: []string{testdataPkg}, RootTypes: []string{"Paged"}}, "instantiated generic type"},
		{"generic root", SourceInputOptions{Packages: []string{testdataPkg}, RootTypes: []string{"Page"}}, "generic type Page is not supported"},
		{"anonymous struct", SourceInputOptions{Packages: []string{testdataPkg}, RootTypes: []string{"Loose"}}, "anonymous structs are not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&SourceProvider{}).BuildSchema(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSourceProvider_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&SourceProvider{}).BuildSchema(ctx, SourceInputOptions{Packages: []string{testdataPkg}, RootTypes: []string{"User"}})
	require.Error(t, err)
}
