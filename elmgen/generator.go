// Package elmgen generates Elm types, JSON decoders, JSON encoders and
// query-string encoders from Go types.
//
// Example:
//
//	res, err := elmgen.FromPackages("./api").
//	    Module("Api.Types").
//	    WithQuery("SearchParams").
//	    ToDir("./frontend/src").
//	    Generate(ctx)
package elmgen

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/rs/zerolog"

	"github.com/broady/elmgen/elmgen/elm"
	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/provider"
	"github.com/broady/elmgen/elmgen/registry"
	"github.com/broady/elmgen/elmgen/resolve"
	"github.com/broady/elmgen/elmgen/sink"
)

// Generator provides a fluent API for code generation.
// Create with FromTypes, FromPackages, FromSchema or FromConfig and
// configure with method chaining.
type Generator struct {
	cfg    Config
	values []any
	schema *ir.Schema

	sums       []provider.Sum
	directives map[reflect.Type][]string
	overrides  map[ir.GoIdentifier]registry.Entry

	sink   sink.Sink
	logger zerolog.Logger
}

// FromTypes creates a Generator for the types of the given values.
//
//	elmgen.FromTypes(User{}, SearchParams{}).Module("Api").ToDir("./src")
//
// By default the types' packages are analyzed from source, so doc comments
// and //elm: directives apply. Use .Provider("reflection") to skip source
// analysis; sums must then be declared with WithSums.
func FromTypes(values ...any) *Generator {
	return &Generator{values: values, logger: zerolog.Nop()}
}

// FromPackages creates a Generator for the exported types of Go packages.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Packages: patterns}, logger: zerolog.Nop()}
}

// FromSchema creates a Generator for an already built schema.
func FromSchema(s *ir.Schema) *Generator {
	return &Generator{cfg: Config{Provider: ProviderJSON}, schema: s, logger: zerolog.Nop()}
}

// FromConfig creates a Generator from a loaded config.
func FromConfig(cfg Config) *Generator {
	return &Generator{cfg: cfg, logger: zerolog.Nop()}
}

// Module sets the dotted Elm module name.
func (g *Generator) Module(name string) *Generator {
	g.cfg.Module = name
	return g
}

// Provider sets the type extraction strategy: "source", "reflection" or "json".
func (g *Generator) Provider(p string) *Generator {
	g.cfg.Provider = p
	return g
}

// Packages adds Go packages to analyze.
func (g *Generator) Packages(patterns ...string) *Generator {
	g.cfg.Packages = append(g.cfg.Packages, patterns...)
	return g
}

// Types restricts generation to the named root types.
func (g *Generator) Types(names ...string) *Generator {
	g.cfg.Types = append(g.cfg.Types, names...)
	return g
}

// WithQuery emits urlEncode functions for the named record types.
func (g *Generator) WithQuery(names ...string) *Generator {
	g.cfg.Query = append(g.cfg.Query, names...)
	return g
}

// WithQueryFields emits queryFieldEncoder functions for the named unit-only sums.
func (g *Generator) WithQueryFields(names ...string) *Generator {
	g.cfg.QueryFields = append(g.cfg.QueryFields, names...)
	return g
}

// WithSums declares sum interfaces for the reflection provider.
func (g *Generator) WithSums(sums ...provider.Sum) *Generator {
	g.sums = append(g.sums, sums...)
	return g
}

// WithDirectives attaches //elm: directive lines to a type for the
// reflection provider.
func (g *Generator) WithDirectives(t reflect.Type, lines ...string) *Generator {
	if g.directives == nil {
		g.directives = make(map[reflect.Type][]string)
	}
	g.directives[t] = append(g.directives[t], lines...)
	return g
}

// Override maps references to a Go type to a hand-written Elm type.
func (g *Generator) Override(id ir.GoIdentifier, e registry.Entry) *Generator {
	if g.overrides == nil {
		g.overrides = make(map[ir.GoIdentifier]registry.Entry)
	}
	g.overrides[id] = e
	return g
}

// Header sets the comment placed below the module line.
func (g *Generator) Header(text string) *Generator {
	g.cfg.Header = text
	return g
}

// WithLogger sets the logger for progress and warnings. Default: no logging.
func (g *Generator) WithLogger(l zerolog.Logger) *Generator {
	g.logger = l
	return g
}

// ToDir writes the module under dir.
func (g *Generator) ToDir(dir string) *Generator {
	g.cfg.OutDir = dir
	return g
}

// ToSink writes the module to s instead of the filesystem.
func (g *Generator) ToSink(s sink.Sink) *Generator {
	g.sink = s
	return g
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return *applyConfigDefaults(&g.cfg)
}

// Result describes one generated module.
type Result struct {
	// Module is the Elm module name.
	Module string

	// Path is the module file path relative to the output directory.
	Path string

	// Content is the module text.
	Content []byte

	// Types is the number of type declarations in the module.
	Types int

	// Warnings are the non-fatal issues reported while building the schema.
	Warnings []ir.Warning
}

// Generate renders the module and writes it. Nothing is written if any
// type fails.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	res, err := g.Render(ctx)
	if err != nil {
		return nil, err
	}
	out := g.sink
	if out == nil {
		out = sink.NewFilesystemSink(g.Config().OutDir)
	}
	if err := out.WriteFile(ctx, res.Path, res.Content); err != nil {
		return nil, fmt.Errorf("writing %s: %w", res.Path, err)
	}
	g.logger.Info().Str("module", res.Module).Str("path", res.Path).Int("types", res.Types).Msg("wrote module")
	return res, nil
}

// Render builds the module in memory without writing it.
func (g *Generator) Render(ctx context.Context) (*Result, error) {
	cfg := applyConfigDefaults(&g.cfg)
	if err := cfg.check(); err != nil {
		return nil, err
	}
	path, err := sink.ModulePath(cfg.Module)
	if err != nil {
		return nil, err
	}

	schema, err := g.buildSchema(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}
	for _, w := range schema.Warnings {
		ev := g.logger.Warn().Str("code", w.Code)
		if w.TypeName != "" {
			ev = ev.Str("type", w.TypeName)
		}
		if w.Source != nil {
			ev = ev.Str("source", fmt.Sprintf("%s:%d", w.Source.File, w.Source.Line))
		}
		ev.Msg(w.Message)
	}

	types, err := resolve.Schema(schema)
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}

	reg := registry.New(types...)
	for id, e := range g.overrides {
		reg.Override(id, e)
	}

	mod := elm.NewModule(cfg.Module, reg).Header(cfg.Header)
	for _, t := range types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := mod.Add(t); err != nil {
			errs = append(errs, err)
			continue
		}
		g.logger.Debug().Str("type", t.Name).Str("go", t.Ident.Package+"."+t.Ident.Name).Msg("generated type")
	}

	query, fields, err := queryTypes(types, cfg.Query, cfg.QueryFields)
	if err != nil {
		errs = append(errs, err)
	}
	for _, t := range query {
		if err := mod.AddQuery(t); err != nil {
			errs = append(errs, err)
		}
	}
	for _, t := range fields {
		if err := mod.AddQueryFieldEncoder(t); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Result{
		Module:   cfg.Module,
		Path:     path,
		Content:  mod.Bytes(),
		Types:    len(types),
		Warnings: schema.Warnings,
	}, nil
}

// Schema runs the provider and returns the extracted IR without resolving
// or rendering it.
func (g *Generator) Schema(ctx context.Context) (*ir.Schema, error) {
	cfg := applyConfigDefaults(&g.cfg)
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return g.buildSchema(ctx, cfg)
}

func (g *Generator) buildSchema(ctx context.Context, cfg *Config) (*ir.Schema, error) {
	switch cfg.Provider {
	case ProviderSource:
		pkgs := slices.Clone(cfg.Packages)
		roots := slices.Clone(cfg.Types)
		for _, v := range g.values {
			t := baseType(reflect.TypeOf(v))
			if t == nil || t.PkgPath() == "" {
				return nil, fmt.Errorf("%T is not a named type", v)
			}
			if !slices.Contains(pkgs, t.PkgPath()) {
				pkgs = append(pkgs, t.PkgPath())
			}
			roots = append(roots, t.Name())
		}
		if len(pkgs) == 0 {
			return nil, errors.New("packages is required when using source provider")
		}
		p := &provider.SourceProvider{}
		return p.BuildSchema(ctx, provider.SourceInputOptions{Packages: pkgs, RootTypes: roots})
	case ProviderReflection:
		if len(cfg.Types) > 0 {
			return nil, errors.New("the reflection provider takes Go values (FromTypes), not type names")
		}
		roots := make([]reflect.Type, 0, len(g.values))
		for _, v := range g.values {
			roots = append(roots, reflect.TypeOf(v))
		}
		p := &provider.ReflectionProvider{}
		return p.BuildSchema(ctx, provider.ReflectionInputOptions{
			RootTypes:  roots,
			Sums:       g.sums,
			Directives: g.directives,
		})
	case ProviderJSON:
		if g.schema != nil {
			if errs := g.schema.Validate(); len(errs) > 0 {
				return nil, errors.Join(errs...)
			}
			return g.schema, nil
		}
		if cfg.Input == "" {
			return nil, errors.New("input is required when using json provider")
		}
		p := &provider.JSONProvider{}
		return p.BuildSchema(ctx, provider.JSONInputOptions{Path: cfg.Input})
	}
	return nil, fmt.Errorf("unknown provider: %q (expected \"source\", \"reflection\" or \"json\")", cfg.Provider)
}

func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// queryTypes finds the types named for query encoding. Unit-only sums used
// as parameters of query records are added to the field encoders.
func queryTypes(types []*resolve.Type, query, queryFields []string) (records, fields []*resolve.Type, err error) {
	byIdent := make(map[ir.GoIdentifier]*resolve.Type, len(types))
	for _, t := range types {
		byIdent[t.Ident] = t
	}
	find := func(name string) *resolve.Type {
		for _, t := range types {
			if t.Ident.Name == name || t.Name == name {
				return t
			}
		}
		return nil
	}

	var errs []error
	seen := make(map[*resolve.Type]bool)
	addField := func(t *resolve.Type) {
		if !seen[t] {
			seen[t] = true
			fields = append(fields, t)
		}
	}

	for _, name := range query {
		t := find(name)
		if t == nil {
			errs = append(errs, fmt.Errorf("query type %s not found", name))
			continue
		}
		records = append(records, t)
		for _, td := range queryFieldTypes(t.Shape) {
			ref, ok := unwrap(td).(*ir.ReferenceDescriptor)
			if !ok {
				continue
			}
			if rt := byIdent[ref.Target]; rt != nil {
				if sum, ok := rt.Shape.(*resolve.Sum); ok && sum.UnitOnly() {
					addField(rt)
				}
			}
		}
	}
	for _, name := range queryFields {
		t := find(name)
		if t == nil {
			errs = append(errs, fmt.Errorf("query field type %s not found", name))
			continue
		}
		addField(t)
	}
	return records, fields, errors.Join(errs...)
}

func queryFieldTypes(s resolve.Shape) []ir.TypeDescriptor {
	var out []ir.TypeDescriptor
	switch s := s.(type) {
	case *resolve.Product:
		for _, f := range s.Fields {
			out = append(out, f.Type)
		}
	case *resolve.Sum:
		for _, v := range s.Variants {
			for _, f := range v.Fields {
				out = append(out, f.Type)
			}
		}
	}
	return out
}

func unwrap(td ir.TypeDescriptor) ir.TypeDescriptor {
	for {
		switch d := td.(type) {
		case *ir.OptionDescriptor:
			td = d.Element
		case *ir.PtrDescriptor:
			td = d.Element
		default:
			return td
		}
	}
}
