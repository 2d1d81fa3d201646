// Package ir defines the Intermediate Representation consumed by the Elm generators.
// Providers build an ir.Schema from Go source, runtime reflection, or a JSON document;
// the resolver turns each TypeDecl into a fully named shape.
package ir

import "strings"

// GoIdentifier names a Go type by package path and name. Package is empty
// for schemas loaded from JSON without package info.
type GoIdentifier struct {
	Name    string
	Package string
}

func (id GoIdentifier) IsZero() bool { return id == GoIdentifier{} }

// String returns "pkg.Name", or just Name when the package is unknown.
func (id GoIdentifier) String() string {
	if id.Package == "" {
		return id.Name
	}
	return id.Package + "." + id.Name
}

// Documentation is a doc comment with //elm: directive lines removed.
// Summary is its first non-empty line.
type Documentation struct {
	Summary string
	Body    string
}

func (d Documentation) IsZero() bool { return d.Body == "" && d.Summary == "" }

// Summary returns the first non-empty line of a documentation body.
func Summary(body string) string {
	for line := range strings.Lines(body) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Source is a position in Go source. Column is 1-based; 0 means unknown.
type Source struct {
	File   string
	Line   int
	Column int
}

func (s Source) IsZero() bool { return s == Source{} }

// Warning is a non-fatal schema-building issue, such as a type whose JSON
// form is decided by a custom marshaler.
type Warning struct {
	Code     string
	Message  string
	Source   *Source
	TypeName string
}

// PackageInfo describes the Go package a schema was extracted from.
type PackageInfo struct {
	Path string
	Name string
	Dir  string
}

func (p PackageInfo) IsZero() bool { return p == PackageInfo{} }
