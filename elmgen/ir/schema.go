package ir

import "fmt"

// Schema represents a complete set of types to generate.
type Schema struct {
	// Package is the source Go package information.
	Package PackageInfo

	// Types contains the declarations to generate, in provider order.
	// Generators must not rely on the ordering for correctness; references
	// may point forward or be recursive.
	Types []*TypeDecl

	// Warnings contains non-fatal issues encountered during schema building.
	Warnings []Warning
}

// AddType adds a declaration to the schema.
func (s *Schema) AddType(t *TypeDecl) {
	s.Types = append(s.Types, t)
}

// AddWarning adds a warning to the schema.
func (s *Schema) AddWarning(w Warning) {
	s.Warnings = append(s.Warnings, w)
}

// FindType looks up a declaration by name. Returns nil if not found.
func (s *Schema) FindType(name GoIdentifier) *TypeDecl {
	for _, t := range s.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// FindTypeByName looks up a declaration by its bare Go name, ignoring the
// package. Returns nil if not found or if the name is ambiguous.
func (s *Schema) FindTypeByName(name string) *TypeDecl {
	var found *TypeDecl
	for _, t := range s.Types {
		if t.Name.Name == name {
			if found != nil {
				return nil
			}
			found = t
		}
	}
	return found
}

// Validate checks the schema for structural issues.
// Returns all validation errors found (not just the first).
func (s *Schema) Validate() []error {
	var errs []*ValidationError

	typeNames := make(map[GoIdentifier]bool)
	for _, t := range s.Types {
		if t.Name.IsZero() {
			errs = append(errs, &ValidationError{
				Code:    "missing_name",
				Message: "type declaration without a name",
			})
			continue
		}
		if typeNames[t.Name] {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_type",
				Message: "duplicate type name: " + t.Name.Name + " (package: " + t.Name.Package + ")",
			})
		}
		typeNames[t.Name] = true
	}

	for _, t := range s.Types {
		if t.Shape == nil {
			errs = append(errs, &ValidationError{
				Code:    "missing_shape",
				Message: "type " + t.Name.Name + " has no shape",
			})
			continue
		}
		errs = append(errs, validateShape(t, typeNames)...)
	}

	var result []error
	for _, e := range errs {
		result = append(result, e)
	}
	return result
}

func validateShape(t *TypeDecl, typeNames map[GoIdentifier]bool) []*ValidationError {
	var errs []*ValidationError
	refs := func(td TypeDescriptor, context string) {
		errs = append(errs, validateTypeReferences(td, typeNames, context)...)
	}

	switch s := t.Shape.(type) {
	case *NewtypeShape:
		refs(s.Element, "type "+t.Name.Name)
	case *TupleShape:
		if len(s.Elements) < 2 {
			errs = append(errs, arityError(t.Name.Name, "tuple", len(s.Elements)))
		}
		for _, e := range s.Elements {
			refs(e, "type "+t.Name.Name)
		}
	case *ProductShape:
		for _, f := range s.Fields {
			refs(f.Type, "field "+t.Name.Name+"."+f.Name)
			errs = append(errs, validateField(f, "field "+t.Name.Name+"."+f.Name)...)
		}
	case *SumShape:
		others := 0
		for _, v := range s.Variants {
			context := "variant " + t.Name.Name + "." + v.Name
			switch v.Kind {
			case VariantNewtype:
				if len(v.Elements) != 1 {
					errs = append(errs, arityError(t.Name.Name+"."+v.Name, "newtype variant", len(v.Elements)))
				}
			case VariantTuple:
				if len(v.Elements) < 2 {
					errs = append(errs, arityError(t.Name.Name+"."+v.Name, "tuple variant", len(v.Elements)))
				}
			}
			for _, e := range v.Elements {
				refs(e, context)
			}
			for _, f := range v.Fields {
				refs(f.Type, context+"."+f.Name)
				errs = append(errs, validateField(f, context+"."+f.Name)...)
			}
			if v.Attrs.Other {
				others++
			}
		}
		if others > 1 {
			errs = append(errs, &ValidationError{
				Code:    "multiple_other",
				Message: fmt.Sprintf("sum %s declares %d other variants", t.Name.Name, others),
			})
		}
	case *UnionShape:
		for _, m := range s.Members {
			refs(m, "union "+t.Name.Name)
		}
	}
	return errs
}

// validateField checks that the string option is only set on booleans,
// numbers, strings, pointers to those, or named types, as encoding/json allows.
func validateField(f Field, context string) []*ValidationError {
	if !f.StringEncoded || stringEncodable(f.Type) {
		return nil
	}
	return []*ValidationError{{
		Code:    "invalid_string_encoding",
		Message: context + " is string-encoded but is not a boolean, number or string",
	}}
}

func stringEncodable(td TypeDescriptor) bool {
	switch d := td.(type) {
	case *PrimitiveDescriptor:
		switch d.PrimitiveKind {
		case PrimitiveBool, PrimitiveInt, PrimitiveUint, PrimitiveFloat, PrimitiveString, PrimitiveDuration:
			return true
		}
	case *PtrDescriptor:
		return stringEncodable(d.Element)
	case *OptionDescriptor:
		return stringEncodable(d.Element)
	case *ReferenceDescriptor:
		// A named scalar is allowed; its underlying kind is unknown here.
		return true
	}
	return false
}

func arityError(name, what string, n int) *ValidationError {
	return &ValidationError{
		Code:    "invalid_arity",
		Message: fmt.Sprintf("%s %s has %d elements", what, name, n),
	}
}

// validateTypeReferences walks a TypeDescriptor and checks that all
// ReferenceDescriptors point to types that exist in typeNames.
func validateTypeReferences(td TypeDescriptor, typeNames map[GoIdentifier]bool, context string) []*ValidationError {
	var errs []*ValidationError
	Walk(td, func(d TypeDescriptor) {
		switch d := d.(type) {
		case *ReferenceDescriptor:
			if !typeNames[d.Target] {
				errs = append(errs, &ValidationError{
					Code:    "missing_type_reference",
					Message: context + " references unknown type: " + d.Target.Name,
				})
			}
		case *TupleDescriptor:
			if len(d.Elements) < 2 || len(d.Elements) > 3 {
				errs = append(errs, &ValidationError{
					Code:    "invalid_arity",
					Message: fmt.Sprintf("%s uses a %d-tuple; only 2- and 3-tuples are supported", context, len(d.Elements)),
				})
			}
		}
	})
	return errs
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
