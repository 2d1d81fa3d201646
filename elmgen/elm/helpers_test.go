package elm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/registry"
	"github.com/broady/elmgen/elmgen/resolve"
)

const testPkg = "example.com/api"

func mustResolve(t *testing.T, name string, shape ir.Shape, attrs ir.ContainerAttrs) *resolve.Type {
	t.Helper()
	rt, err := resolve.Resolve(&ir.TypeDecl{
		Name:  ir.GoIdentifier{Name: name, Package: testPkg},
		Shape: shape,
		Attrs: attrs,
	})
	require.NoError(t, err)
	return rt
}

// lines joins its arguments into newline-terminated Elm source.
func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

// sampleVariants has one variant of every kind, each carrying ints.
func sampleVariants() []ir.Variant {
	return []ir.Variant{
		{Name: "Unit1"},
		{Name: "Newtype1", Kind: ir.VariantNewtype, Elements: []ir.TypeDescriptor{ir.Int(32)}},
		{Name: "Tuple1", Kind: ir.VariantTuple, Elements: []ir.TypeDescriptor{ir.Int(32), ir.Int(32)}},
		{Name: "Named1", Kind: ir.VariantStruct, Fields: []ir.Field{{Name: "A", Type: ir.Int(32), Attrs: ir.FieldAttrs{Rename: "a"}}}},
	}
}

func sampleRecord(t *testing.T) *resolve.Type {
	return mustResolve(t, "Record", &ir.ProductShape{Fields: []ir.Field{
		{Name: "ID", Type: ir.Int(64), Attrs: ir.FieldAttrs{Rename: "id"}},
		{Name: "Name", Type: ir.String(), Attrs: ir.FieldAttrs{Rename: "name", Aliases: []string{"title"}}},
		{Name: "Tags", Type: ir.Slice(ir.String()), Attrs: ir.FieldAttrs{Rename: "tags"}},
	}}, ir.ContainerAttrs{})
}

func newRegistry(types ...*resolve.Type) *registry.Registry {
	return registry.New(types...)
}

// resolvedPair holds two types whose generated output should match.
type resolvedPair struct {
	a, b *resolve.Type
}
