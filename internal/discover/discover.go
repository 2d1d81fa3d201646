// Package discover finds generator export functions by signature.
//
// An export is a package-level func() *elmgen.Generator. The signature is
// the only marker.
package discover

import (
	"fmt"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

const (
	generatorPkg  = "github.com/broady/elmgen/elmgen"
	generatorType = "Generator"
)

// Export is a discovered export function.
type Export struct {
	Name string
	Pos  token.Position
}

// Result contains discovered exports and package info.
type Result struct {
	Exports     []Export
	PackagePath string
	PackageName string
	ModuleDir   string
	Dir         string
}

// Find scans the package matching pattern for export functions. Pattern
// follows go command semantics; dir is the working directory ("" for the
// current one).
func Find(pattern, dir string) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedModule,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}
	switch {
	case len(pkgs) == 0:
		return nil, fmt.Errorf("no packages found matching %q", pattern)
	case len(pkgs) > 1:
		return nil, fmt.Errorf("multiple packages found matching %q; specify a single package", pattern)
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkg.Errors[0])
	}
	res := &Result{PackagePath: pkg.PkgPath, PackageName: pkg.Name}
	if pkg.Module != nil {
		res.ModuleDir = pkg.Module.Dir
	}
	if len(pkg.GoFiles) > 0 {
		res.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok {
			continue
		}
		if sig := fn.Type().(*types.Signature); IsExport(sig) {
			res.Exports = append(res.Exports, Export{Name: fn.Name(), Pos: pkg.Fset.Position(fn.Pos())})
		}
	}
	return res, nil
}

// IsExport reports whether sig is func() *elmgen.Generator.
func IsExport(sig *types.Signature) bool {
	if sig.Recv() != nil || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}
	ptr, ok := sig.Results().At(0).Type().(*types.Pointer)
	if !ok {
		return false
	}
	named, ok := ptr.Elem().(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}
	return named.Obj().Pkg().Path() == generatorPkg && named.Obj().Name() == generatorType
}

// Select picks the export named name, or the only export when name is empty.
func Select(exports []Export, name string) (*Export, error) {
	if name != "" {
		for i := range exports {
			if exports[i].Name == name {
				return &exports[i], nil
			}
		}
		return nil, fmt.Errorf("export %q not found", name)
	}

	switch len(exports) {
	case 0:
		return nil, fmt.Errorf("no export found\n\nAdd a function that returns *elmgen.Generator:\n\n    func Types() *elmgen.Generator {\n        return elmgen.FromTypes(User{}).Module(\"Api.Types\")\n    }")
	case 1:
		return &exports[0], nil
	}
	var b strings.Builder
	b.WriteString("multiple exports found:\n")
	for _, e := range exports {
		fmt.Fprintf(&b, "  - %s() at %s:%d\n", e.Name, filepath.Base(e.Pos.Filename), e.Pos.Line)
	}
	b.WriteString("\nSpecify which one: elmgen run --export <name> <package>")
	return nil, fmt.Errorf("%s", b.String())
}
