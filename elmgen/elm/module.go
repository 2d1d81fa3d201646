package elm

import (
	"bytes"
	"strings"

	"github.com/broady/elmgen/elmgen/ir"
	"github.com/broady/elmgen/elmgen/registry"
	"github.com/broady/elmgen/elmgen/resolve"
)

// Module collects the artifacts of many types into one Elm module.
// Registry definitions are emitted once, after all type blocks, in the order
// they were first needed.
type Module struct {
	name   string
	header string
	reg    registry.Lookup

	blocks  []string
	defs    []registry.Definition
	defSeen map[string]bool
	query   bool
}

// NewModule returns an empty module with the given dotted Elm module name.
func NewModule(name string, reg registry.Lookup) *Module {
	return &Module{name: name, reg: reg, defSeen: make(map[string]bool)}
}

// Header sets a comment emitted after the module line, one "-- " line per line of text.
func (m *Module) Header(text string) *Module {
	m.header = text
	return m
}

// Add generates the declaration, decoder and encoder of t.
// On error the module is left unchanged.
func (m *Module) Add(t *resolve.Type) error {
	decl, err := Declaration(t, m.reg)
	if err != nil {
		return err
	}
	dec, err := Decoder(t, m.reg)
	if err != nil {
		return err
	}
	enc, err := Encoder(t, m.reg)
	if err != nil {
		return err
	}
	defs, err := m.definitions(t)
	if err != nil {
		return err
	}
	m.blocks = append(m.blocks, decl, dec, enc)
	m.addDefinitions(defs)
	return nil
}

// AddQuery generates the query encoder of t.
func (m *Module) AddQuery(t *resolve.Type) error {
	q, err := Query(t, m.reg)
	if err != nil {
		return err
	}
	m.blocks = append(m.blocks, q)
	m.query = true
	return nil
}

// AddQueryFieldEncoder generates the query field encoder of t.
func (m *Module) AddQueryFieldEncoder(t *resolve.Type) error {
	q, err := QueryFieldEncoder(t)
	if err != nil {
		return err
	}
	m.blocks = append(m.blocks, q)
	m.query = true
	return nil
}

// definitions collects the registry definitions needed by the descriptors of t.
func (m *Module) definitions(t *resolve.Type) ([]registry.Definition, error) {
	var defs []registry.Definition
	collect := func(e registry.Entry, err error) error {
		if err != nil {
			return err
		}
		defs = append(defs, e.Definitions...)
		return nil
	}

	var err error
	forEachMember(t.Shape,
		func(member string, td ir.TypeDescriptor) {
			if err == nil {
				err = collect(lookup(t, m.reg, member, td))
			}
		},
		func(member string, f resolve.Field) {
			if err == nil {
				err = collect(fieldLookup(t, m.reg, member, f))
			}
		})
	return defs, err
}

func (m *Module) addDefinitions(defs []registry.Definition) {
	for _, d := range defs {
		if m.defSeen[d.Name] {
			continue
		}
		m.defSeen[d.Name] = true
		m.defs = append(m.defs, d)
	}
}

// forEachMember calls elem for every positional type expression of a shape
// and field for every record field.
func forEachMember(s resolve.Shape, elem func(member string, td ir.TypeDescriptor), field func(member string, f resolve.Field)) {
	switch s := s.(type) {
	case *resolve.Newtype:
		elem("", s.Element)
	case *resolve.Tuple:
		for _, td := range s.Elements {
			elem("", td)
		}
	case *resolve.Product:
		for _, f := range s.Fields {
			field(f.Ident, f)
		}
	case *resolve.Sum:
		for _, v := range s.Variants {
			for _, td := range v.Elements {
				elem(v.Ident, td)
			}
			for _, f := range v.Fields {
				field(memberName(v.Ident, f), f)
			}
		}
	}
}

// Bytes renders the module source.
func (m *Module) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("module " + m.name + " exposing (..)\n")
	if m.header != "" {
		buf.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(m.header, "\n"), "\n") {
			buf.WriteString(strings.TrimRight("-- "+line, " ") + "\n")
		}
	}
	buf.WriteString("\nimport Dict exposing (Dict)\nimport Json.Decode\nimport Json.Encode\n")
	if m.query {
		buf.WriteString("import Url.Builder\n")
	}
	for _, b := range m.blocks {
		buf.WriteString("\n")
		buf.WriteString(strings.TrimRight(b, "\n") + "\n")
	}
	for _, d := range m.defs {
		buf.WriteString("\n")
		buf.WriteString(strings.TrimRight(d.Body, "\n") + "\n")
	}
	return buf.Bytes()
}

// String renders the module source.
func (m *Module) String() string {
	return string(m.Bytes())
}
