package main

import "github.com/broady/elmgen/elmgen"

type User struct {
	Name string `json:"name"`
}

func Types() *elmgen.Generator {
	return elmgen.FromTypes(User{}).Provider(elmgen.ProviderReflection).Module("Api.Types")
}

func withArgs(module string) *elmgen.Generator {
	return elmgen.FromTypes(User{}).Module(module)
}

type builder struct{}

func (builder) Types() *elmgen.Generator { return nil }

func value() elmgen.Generator { return elmgen.Generator{} }

func main() {}
