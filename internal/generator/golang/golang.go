// Package golang generates Go struct declarations.
package golang

import (
	"bytes"
	"fmt"
	"go/token"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mcncl/shapegen/internal/config"
	"github.com/mcncl/shapegen/internal/errors"
	"github.com/mcncl/shapegen/internal/formatter"
	"github.com/mcncl/shapegen/internal/generator"
	"github.com/mcncl/shapegen/internal/models"
	"github.com/mcncl/shapegen/internal/naming"
	"github.com/mcncl/shapegen/internal/schema"
)

// Language is the canonical name of this backend.
const Language = "go"

// exportedPrefix replaces the "_" in front of field names that start with a digit.
const exportedPrefix = "Field"

// Generator renders Schemas as Go structs. A Generator must not be shared
// by concurrent runs.
type Generator struct {
	cfg         *config.Config
	primitives  map[models.Kind]primitive
	unknownType string
	typeCase    naming.Case
	fieldCase   naming.Case

	types     *naming.Sanitizer // run scoped
	fields    *naming.Sanitizer // schema scoped
	formatter *formatter.Formatter
}

// New returns a Go generator for cfg.
func New(cfg *config.Config) (generator.Generator, error) {
	return NewGenerator(cfg)
}

// NewGenerator returns a Go generator for cfg. It fails with a
// *errors.ConfigError when the package name or a type override is invalid.
func NewGenerator(cfg *config.Config) (*Generator, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if !token.IsIdentifier(cfg.Package) {
		return nil, &errors.ConfigError{Key: "package", Value: cfg.Package, Reason: "not a valid Go package name"}
	}
	prims, err := buildPrimitives(cfg)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:         cfg,
		primitives:  prims,
		unknownType: DefaultUnknownType,
		typeCase:    naming.Pascal,
		fieldCase:   naming.Pascal,
		types:       naming.Go().WithSuffix(cfg.Naming.ReservedSuffix),
		fields:      naming.Go().WithSuffix(cfg.Naming.ReservedSuffix),
		formatter:   formatter.NewFormatter(),
	}
	if cfg.Types.UnknownType != "" {
		g.unknownType = cfg.Types.UnknownType
	}
	if c, ok := naming.ParseCase(cfg.Naming.TypeCase); ok {
		g.typeCase = c
	}
	if c, ok := naming.ParseCase(cfg.Naming.FieldCase); ok {
		g.fieldCase = c
	}
	return g, nil
}

// Language returns "go".
func (g *Generator) Language() string { return Language }

// FileExtension returns ".go".
func (g *Generator) FileExtension() string { return ".go" }

// Generate renders every Schema of reg, dependencies first and root last.
func (g *Generator) Generate(reg *schema.Registry, root string) (string, []string, error) {
	g.types.Reset()
	code, hints, err := generator.Emit(reg, root, g)
	if err != nil {
		return "", hints, err
	}
	if !g.cfg.Format {
		return code, hints, nil
	}

	formatted, err := g.formatter.Format(code)
	if err != nil {
		return "", hints, errors.NewFormatError("failed to format generated Go code", err)
	}
	return formatted, hints, nil
}

func (g *Generator) typeName(schemaName string) string {
	name, _ := g.types.Sanitize(schemaName, g.typeCase)
	return name
}

// GenerateSchema renders s as a struct declaration.
func (g *Generator) GenerateSchema(s *schema.Schema) (generator.Declaration, error) {
	g.fields.Reset()
	decl := generator.Declaration{Name: g.typeName(s.Name)}

	type line struct {
		comments []string
		name     string
		typ      string
		tag      string
	}
	lines := make([]line, 0, len(s.Fields))

	for _, f := range s.Fields {
		t, err := g.MapField(s.Name, f)
		if err != nil {
			return decl, err
		}
		decl.Imports = append(decl.Imports, t.Imports...)
		decl.Hints = append(decl.Hints, t.Hints...)

		name, hint := g.fieldName(s.Name, f.Name)
		if hint != "" {
			decl.Hints = append(decl.Hints, hint)
		}

		l := line{name: name, typ: t.Decl, tag: g.structTag(f)}
		if g.cfg.Comments {
			if f.Description != "" {
				l.comments = append(l.comments, f.Description)
			}
			if tm, ok := g.cfg.FindTypeMapping(f.Name); ok && tm.Comment != "" {
				l.comments = append(l.comments, tm.Comment)
			}
		}
		lines = append(lines, l)
	}

	// Align names and types the way gofmt would for a block without comments.
	nameWidth, typeWidth := 0, 0
	for _, l := range lines {
		nameWidth = max(nameWidth, len(l.name))
		typeWidth = max(typeWidth, len(l.typ))
	}

	var buf bytes.Buffer
	if g.cfg.Comments && s.Description != "" {
		fmt.Fprintf(&buf, "// %s: %s\n", decl.Name, s.Description)
	}
	fmt.Fprintf(&buf, "type %s struct {\n", decl.Name)
	for _, l := range lines {
		for _, c := range l.comments {
			fmt.Fprintf(&buf, "\t// %s\n", c)
		}
		if l.tag == "" {
			fmt.Fprintf(&buf, "\t%-*s %s\n", nameWidth, l.name, l.typ)
			continue
		}
		fmt.Fprintf(&buf, "\t%-*s %-*s %s\n", nameWidth, l.name, typeWidth, l.typ, l.tag)
	}
	buf.WriteString("}\n")

	decl.Code = buf.String()
	slog.Debug("generated struct", "name", decl.Name, "fields", len(lines))
	return decl, nil
}

// fieldName returns the Go identifier for a JSON key, and a hint when the
// name had to change to avoid a reserved word or a duplicate.
func (g *Generator) fieldName(schemaName, key string) (string, string) {
	if mapped, ok := g.cfg.FieldMapping(key); ok {
		g.fields.Reserve(mapped)
		return mapped, ""
	}
	name, resolved := g.fields.Sanitize(key, g.fieldCase)
	// A leading digit gets a "_" prefix, which would leave the field
	// unexported and invisible to encoding/json.
	if g.fieldCase == naming.Pascal && strings.HasPrefix(name, "_") {
		exported, _ := g.fields.Sanitize(exportedPrefix+strings.TrimLeft(name, "_"), g.fieldCase)
		return exported, fmt.Sprintf("Field %s.%s renamed to %s so encoding/json can set it", schemaName, key, exported)
	}
	if resolved {
		return name, fmt.Sprintf("Field %s.%s renamed to %s to avoid a naming conflict", schemaName, key, name)
	}
	return name, ""
}

func (g *Generator) structTag(f *schema.Field) string {
	var parts []string
	if g.cfg.JSONTags.Enabled {
		switch {
		case g.cfg.ShouldSkipField(f.Name):
			parts = append(parts, `json:"-"`)
		case f.Optional && g.cfg.JSONTags.Omitempty:
			parts = append(parts, "json:"+strconv.Quote(f.Name+",omitempty"))
		default:
			parts = append(parts, "json:"+strconv.Quote(f.Name))
		}
	}
	if rule, ok := g.cfg.FindValidationRule(f.Name); ok {
		parts = append(parts, "validate:"+strconv.Quote(rule.Tag))
	}
	if len(parts) == 0 {
		return ""
	}

	tag := strings.Join(parts, " ")
	if strings.ContainsRune(tag, '`') {
		return strconv.Quote(tag)
	}
	return "`" + tag + "`"
}

// RenderFile writes the package clause, the imports grouped into standard
// library and third-party blocks, and the declarations.
func (g *Generator) RenderFile(imports []string, decls []generator.Declaration) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "package %s\n", g.cfg.Package)

	if len(imports) > 0 {
		var std, thirdParty []string
		for _, imp := range imports {
			// Standard library paths have no dot in their first element.
			if first, _, _ := strings.Cut(imp, "/"); strings.Contains(first, ".") {
				thirdParty = append(thirdParty, imp)
			} else {
				std = append(std, imp)
			}
		}

		buf.WriteString("\nimport (\n")
		for _, imp := range std {
			fmt.Fprintf(&buf, "\t%q\n", imp)
		}
		if len(std) > 0 && len(thirdParty) > 0 {
			buf.WriteString("\n")
		}
		for _, imp := range thirdParty {
			fmt.Fprintf(&buf, "\t%q\n", imp)
		}
		buf.WriteString(")\n")
	}

	for _, d := range decls {
		buf.WriteString("\n")
		buf.WriteString(d.Code)
	}
	return buf.String(), nil
}
