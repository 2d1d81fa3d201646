// Package naming converts Go identifiers into Elm identifiers and applies
// rename-all policies to JSON member names.
//
// Identifiers are split into words at underscores, hyphens, spaces, and case
// boundaries. An uppercase run followed by a lowercase letter ends one letter
// early, so "HTTPServer" splits into "HTTP" and "Server" and "UserID" splits
// into "User" and "ID". Go initialisms are not preserved: "UserID" becomes
// "UserId" in Elm.
package naming

import (
	"unicode"

	"github.com/ettle/strcase"
)

var caser = strcase.NewCaser(false, nil,
	strcase.NewSplitFn([]rune{'_', '-', ' '}, strcase.SplitCase, strcase.SplitAcronym))

// Pascal converts an identifier to PascalCase ("user_id" -> "UserId").
func Pascal(s string) string { return caser.ToPascal(s) }

// LowerCamel converts an identifier to lowerCamelCase ("UserID" -> "userId").
func LowerCamel(s string) string { return caser.ToCamel(s) }

// Snake converts an identifier to snake_case.
func Snake(s string) string { return caser.ToSnake(s) }

// ScreamingSnake converts an identifier to SCREAMING_SNAKE_CASE.
func ScreamingSnake(s string) string { return caser.ToSNAKE(s) }

// Kebab converts an identifier to kebab-case.
func Kebab(s string) string { return caser.ToKebab(s) }

// ScreamingKebab converts an identifier to SCREAMING-KEBAB-CASE.
func ScreamingKebab(s string) string { return caser.ToKEBAB(s) }

// Elm reserved words. Field and function names that collide get a trailing underscore.
var reservedWords = map[string]bool{
	"alias":    true,
	"as":       true,
	"case":     true,
	"command":  true,
	"effect":   true,
	"else":     true,
	"exposing": true,
	"if":       true,
	"import":   true,
	"in":       true,
	"infix":    true,
	"let":      true,
	"module":   true,
	"of":       true,
	"port":     true,
	"then":     true,
	"type":     true,
	"where":    true,
}

// TypeName returns the Elm type or constructor name for a Go identifier.
func TypeName(ident string) string {
	name := Pascal(ident)
	if name == "" {
		return "T"
	}
	if unicode.IsDigit([]rune(name)[0]) {
		return "T" + name
	}
	return name
}

// FieldName returns the Elm record field name for a Go identifier.
func FieldName(ident string) string {
	name := LowerCamel(ident)
	if name == "" {
		return "field"
	}
	if unicode.IsDigit([]rune(name)[0]) {
		name = "f" + name
	}
	return escapeReservedWord(name)
}

// FunctionName returns the lowerCamelCase form of an Elm type name, used as
// the prefix of decoder and encoder names.
func FunctionName(typeName string) string {
	return escapeReservedWord(LowerCamel(typeName))
}

func escapeReservedWord(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}
