package generator

import (
	"github.com/mcncl/shapegen/internal/analyzer"
	"github.com/mcncl/shapegen/internal/models"
	"github.com/mcncl/shapegen/internal/schema"
)

// Analyze infers the Schemas of a parsed JSON value and flattens them into
// a registry. It returns the registry and the name of the root Schema.
func Analyze(value models.JSONValue, rootName string, opts ...schema.Option) (*schema.Registry, string) {
	root := schema.Normalize(analyzer.Analyze(value), rootName, opts...)
	return schema.Flatten(root), root.Name
}
