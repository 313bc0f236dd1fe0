// Package languages wires the built-in language backends into a
// generator.Registry.
package languages

import (
	"github.com/mcncl/shapegen/internal/generator"
	"github.com/mcncl/shapegen/internal/generator/golang"
	"github.com/mcncl/shapegen/internal/generator/python"
)

// NewRegistry returns a registry with Go and Python registered.
func NewRegistry() *generator.Registry {
	r := generator.NewRegistry()
	r.Register(golang.Language, golang.New, "golang")
	r.Register(python.Language, python.New, "py")
	return r
}
