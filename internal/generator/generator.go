// Package generator turns a flattened schema registry into source code for
// a target language. Language backends live in subpackages and implement
// Generator; this package owns the ordering, import consolidation and the
// Result every backend reports through.
package generator

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mcncl/shapegen/internal/errors"
	"github.com/mcncl/shapegen/internal/models"
	"github.com/mcncl/shapegen/internal/schema"
)

// TargetType is one Field mapped to a target language type.
type TargetType struct {
	Decl    string   // type expression, e.g. "*int64" or "list[str]"
	Imports []string // import paths (Go) or "module.name" entries (Python)
	Nilable bool     // the type can already represent absence
	Hints   []string // lossy or fallback decisions worth a warning
}

// Declaration is one Schema rendered by a backend.
type Declaration struct {
	Name    string
	Code    string
	Imports []string
	Hints   []string
}

// Generator is implemented by every language backend.
type Generator interface {
	// Language returns the canonical language name, e.g. "go".
	Language() string
	// FileExtension returns the extension of generated files, including the dot.
	FileExtension() string
	// MapField maps a single field of the named schema.
	MapField(schemaName string, f *schema.Field) (TargetType, error)
	// GenerateSchema renders one Schema as a declaration.
	GenerateSchema(s *schema.Schema) (Declaration, error)
	// RenderFile assembles the file header, the consolidated imports and
	// the declarations in the given order.
	RenderFile(imports []string, decls []Declaration) (string, error)
	// Generate renders every Schema in reg and returns the code and the
	// hints collected while mapping. Naming state starts fresh on every call.
	Generate(reg *schema.Registry, root string) (string, []string, error)
}

// Order returns schema names with every dependency before its dependents
// and root last. Cycles are broken at the schema currently being visited.
func Order(reg *schema.Registry, root string) []string {
	visited := make(map[string]bool, reg.Len())
	visiting := make(map[string]bool)
	ordered := make([]string, 0, reg.Len())

	var visit func(name string)
	visit = func(name string) {
		if visited[name] || visiting[name] {
			return
		}
		s, ok := reg.Get(name)
		if !ok {
			return
		}
		visiting[name] = true
		for _, dep := range s.Dependencies() {
			visit(dep.Name)
		}
		delete(visiting, name)
		visited[name] = true
		ordered = append(ordered, name)
	}

	for _, name := range reg.Names() {
		visit(name)
	}

	for i, name := range ordered {
		if name == root {
			ordered = append(append(ordered[:i:i], ordered[i+1:]...), root)
			break
		}
	}
	return ordered
}

// Emit renders every Schema of reg through backend in dependency order and
// prepends the union of the imports they need. The returned hints keep
// first-seen order without duplicates.
func Emit(reg *schema.Registry, root string, backend Generator) (string, []string, error) {
	order := Order(reg, root)
	decls := make([]Declaration, 0, len(order))
	importSet := make(map[string]struct{})
	var hints []string
	seen := make(map[string]bool)

	for _, name := range order {
		s, _ := reg.Get(name)
		decl, err := backend.GenerateSchema(s)
		if err != nil {
			return "", hints, err
		}
		decls = append(decls, decl)
		for _, imp := range decl.Imports {
			importSet[imp] = struct{}{}
		}
		for _, h := range decl.Hints {
			if !seen[h] {
				seen[h] = true
				hints = append(hints, h)
			}
		}
	}

	imports := make([]string, 0, len(importSet))
	for imp := range importSet {
		imports = append(imports, imp)
	}
	sort.Strings(imports)

	code, err := backend.RenderFile(imports, decls)
	if err != nil {
		return "", hints, err
	}
	return code, hints, nil
}

// Metadata describes a generation run independently of the language.
type Metadata struct {
	Language      string
	FileExtension string
	SchemaCount   int
	RootSchema    string
	HasConflicts  bool
	HasUnknowns   bool
}

// Result is the outcome of one generation run. Code is empty and Err set
// when Success is false.
type Result struct {
	Success  bool
	Code     string
	Warnings []string
	Metadata Metadata
	Err      error
}

// Run validates reg and generates code for it with gen. It never panics;
// every failure is reported through the returned Result.
func Run(gen Generator, reg *schema.Registry, root string) (res *Result) {
	res = &Result{
		Metadata: Metadata{
			Language:      gen.Language(),
			FileExtension: gen.FileExtension(),
			SchemaCount:   reg.Len(),
			RootSchema:    root,
		},
	}

	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Code = ""
			res.Err = errors.NewGenerateError(fmt.Sprintf("%s generation failed", gen.Language()), fmt.Errorf("%v", r))
		}
	}()

	res.Warnings = Validate(reg)
	for _, s := range reg.Schemas() {
		if s.ConflictCount() > 0 {
			res.Metadata.HasConflicts = true
		}
		if s.UnknownCount() > 0 {
			res.Metadata.HasUnknowns = true
		}
	}

	slog.Debug("generating code", "language", gen.Language(), "schemas", reg.Len(), "root", root)
	code, hints, err := gen.Generate(reg, root)
	res.Warnings = append(res.Warnings, hints...)
	if err != nil {
		res.Err = err
		slog.Debug("generation failed", "language", gen.Language(), "error", err)
		return res
	}

	res.Success = true
	res.Code = code
	return res
}

// Validate reports the recoverable conditions found in reg: conflicting
// and unknown field kinds, empty schemas and schema name collisions.
func Validate(reg *schema.Registry) []string {
	var warnings []string
	for _, s := range reg.Schemas() {
		if len(s.Fields) == 0 {
			warnings = append(warnings, fmt.Sprintf("Schema %s has no fields", s.Name))
		}
		for _, f := range s.Fields {
			switch f.Kind {
			case models.KindConflict:
				warnings = append(warnings, fmt.Sprintf("Type conflict in %s.%s: [%s]",
					s.Name, f.Name, strings.Join(models.KindNames(f.ConflictKinds), ", ")))
			case models.KindUnknown:
				warnings = append(warnings, fmt.Sprintf("Unknown type in %s.%s", s.Name, f.Name))
			}
		}
	}
	for _, c := range reg.Collisions() {
		warnings = append(warnings, fmt.Sprintf(
			"Schema name collision: two different objects are both named %s; only the last one is generated", c.Name))
	}
	return warnings
}
