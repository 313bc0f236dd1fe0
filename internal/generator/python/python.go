// Package python generates Python dataclasses, Pydantic models or
// TypedDicts.
package python

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/shapegen/internal/config"
	"github.com/mcncl/shapegen/internal/generator"
	"github.com/mcncl/shapegen/internal/models"
	"github.com/mcncl/shapegen/internal/naming"
	"github.com/mcncl/shapegen/internal/schema"
)

// Language is the canonical name of this backend.
const Language = "python"

// Generator renders Schemas as Python classes. A Generator must not be
// shared by concurrent runs.
type Generator struct {
	cfg        *config.Config
	opts       Options
	primitives map[models.Kind]primitive
	typeCase   naming.Case
	fieldCase  naming.Case

	types  *naming.Sanitizer // run scoped
	fields *naming.Sanitizer // schema scoped
}

// New returns a Python generator for cfg.
func New(cfg *config.Config) (generator.Generator, error) {
	return NewGenerator(cfg)
}

// NewGenerator returns a Python generator for cfg. It fails with a
// *errors.ConfigError when an extension or override is invalid.
func NewGenerator(cfg *config.Config) (*Generator, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	opts, err := ParseOptions(cfg)
	if err != nil {
		return nil, err
	}
	prims, err := buildPrimitives(cfg)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:        cfg,
		opts:       opts,
		primitives: prims,
		typeCase:   naming.Pascal,
		fieldCase:  naming.Snake,
		types:      naming.Python().WithSuffix(cfg.Naming.ReservedSuffix),
		fields:     naming.Python().WithSuffix(cfg.Naming.ReservedSuffix),
	}
	if c, ok := naming.ParseCase(cfg.Naming.TypeCase); ok {
		g.typeCase = c
	}
	if c, ok := naming.ParseCase(cfg.Naming.FieldCase); ok {
		g.fieldCase = c
	}
	return g, nil
}

// Language returns "python".
func (g *Generator) Language() string { return Language }

// FileExtension returns ".py".
func (g *Generator) FileExtension() string { return ".py" }

// Options returns the resolved Python options.
func (g *Generator) Options() Options { return g.opts }

// Generate renders every Schema of reg, dependencies first and root last.
func (g *Generator) Generate(reg *schema.Registry, root string) (string, []string, error) {
	g.types.Reset()
	code, hints, err := generator.Emit(reg, root, g)
	if err != nil {
		return "", hints, err
	}
	if g.opts.Style == StyleTypedDict {
		hints = append(hints, "TypedDict classes are type hints only, no runtime validation")
	}
	return code, hints, nil
}

func (g *Generator) className(schemaName string) string {
	name, _ := g.types.Sanitize(schemaName, g.typeCase)
	return name
}

type attribute struct {
	name     string
	key      string
	decl     string
	optional bool
	comment  string
}

// GenerateSchema renders s as one class in the configured style.
func (g *Generator) GenerateSchema(s *schema.Schema) (generator.Declaration, error) {
	g.fields.Reset()
	decl := generator.Declaration{Name: g.className(s.Name)}

	attrs := make([]attribute, 0, len(s.Fields))
	for _, f := range s.Fields {
		t, err := g.MapField(s.Name, f)
		if err != nil {
			return decl, err
		}
		decl.Imports = append(decl.Imports, t.Imports...)
		decl.Hints = append(decl.Hints, t.Hints...)

		name, hint := g.attributeName(s.Name, f.Name)
		if hint != "" {
			decl.Hints = append(decl.Hints, hint)
		}
		a := attribute{name: name, key: f.Name, decl: t.Decl, optional: f.Optional}
		if g.cfg.Comments {
			a.comment = f.Description
		}
		attrs = append(attrs, a)
	}

	var buf bytes.Buffer
	switch g.opts.Style {
	case StylePydantic:
		decl.Imports = append(decl.Imports, g.writePydantic(&buf, decl.Name, s, attrs)...)
	case StyleTypedDict:
		decl.Imports = append(decl.Imports, g.writeTypedDict(&buf, decl.Name, s, attrs)...)
	default:
		decl.Imports = append(decl.Imports, g.writeDataclass(&buf, decl.Name, s, attrs)...)
	}
	decl.Code = buf.String()

	slog.Debug("generated class", "name", decl.Name, "style", g.opts.Style, "fields", len(attrs))
	return decl, nil
}

func (g *Generator) attributeName(schemaName, key string) (string, string) {
	if mapped, ok := g.cfg.FieldMapping(key); ok {
		g.fields.Reserve(mapped)
		return mapped, ""
	}
	name, resolved := g.fields.Sanitize(key, g.fieldCase)
	if resolved {
		return name, fmt.Sprintf("Field %s.%s renamed to %s to avoid a naming conflict", schemaName, key, name)
	}
	return name, ""
}

func (g *Generator) writeDocstring(buf *bytes.Buffer, s *schema.Schema) {
	if g.cfg.Comments && s.Description != "" {
		fmt.Fprintf(buf, "    \"\"\"%s\"\"\"\n", s.Description)
		if len(s.Fields) > 0 {
			buf.WriteString("\n")
		}
	}
}

func writeComment(buf *bytes.Buffer, a attribute) {
	if a.comment != "" {
		fmt.Fprintf(buf, "    # %s\n", a.comment)
	}
}

func (g *Generator) writeBody(buf *bytes.Buffer, s *schema.Schema, n int, line func(i int)) {
	g.writeDocstring(buf, s)
	if n == 0 {
		if !g.cfg.Comments || s.Description == "" {
			buf.WriteString("    pass\n")
		}
		return
	}
	for i := 0; i < n; i++ {
		line(i)
	}
}

// writeDataclass puts required attributes first because dataclass fields
// with defaults cannot precede fields without.
func (g *Generator) writeDataclass(buf *bytes.Buffer, name string, s *schema.Schema, attrs []attribute) []string {
	ordered := make([]attribute, len(attrs))
	copy(ordered, attrs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !ordered[i].optional && ordered[j].optional
	})

	var args []string
	if g.opts.Frozen {
		args = append(args, "frozen=True")
	}
	if g.opts.Slots {
		args = append(args, "slots=True")
	}
	if g.opts.KwOnly {
		args = append(args, "kw_only=True")
	}
	if len(args) > 0 {
		fmt.Fprintf(buf, "@dataclass(%s)\n", strings.Join(args, ", "))
	} else {
		buf.WriteString("@dataclass\n")
	}
	fmt.Fprintf(buf, "class %s:\n", name)

	g.writeBody(buf, s, len(ordered), func(i int) {
		a := ordered[i]
		writeComment(buf, a)
		if a.optional {
			fmt.Fprintf(buf, "    %s: %s = None\n", a.name, a.decl)
			return
		}
		fmt.Fprintf(buf, "    %s: %s\n", a.name, a.decl)
	})
	return []string{importDataclass}
}

func (g *Generator) writePydantic(buf *bytes.Buffer, name string, s *schema.Schema, attrs []attribute) []string {
	imports := []string{importBaseModel}
	aliased := false
	for _, a := range attrs {
		if a.name != a.key {
			aliased = true
		}
	}

	fmt.Fprintf(buf, "class %s(BaseModel):\n", name)
	var cfgArgs []string
	if aliased {
		cfgArgs = append(cfgArgs, "populate_by_name=True")
	}
	if g.opts.ExtraForbid {
		cfgArgs = append(cfgArgs, `extra="forbid"`)
	}
	if len(cfgArgs) > 0 {
		g.writeDocstring(buf, s)
		fmt.Fprintf(buf, "    model_config = ConfigDict(%s)\n", strings.Join(cfgArgs, ", "))
		if len(attrs) > 0 {
			buf.WriteString("\n")
		}
		imports = append(imports, importConfigDict)
		for _, a := range attrs {
			imports = append(imports, g.writePydanticField(buf, a)...)
		}
		return imports
	}

	g.writeBody(buf, s, len(attrs), func(i int) {
		imports = append(imports, g.writePydanticField(buf, attrs[i])...)
	})
	return imports
}

func (g *Generator) writePydanticField(buf *bytes.Buffer, a attribute) []string {
	writeComment(buf, a)
	if a.name == a.key {
		if a.optional {
			fmt.Fprintf(buf, "    %s: %s = None\n", a.name, a.decl)
		} else {
			fmt.Fprintf(buf, "    %s: %s\n", a.name, a.decl)
		}
		return nil
	}

	args := []string{"alias=" + strconv.Quote(a.key)}
	if a.optional {
		args = append([]string{"default=None"}, args...)
	}
	fmt.Fprintf(buf, "    %s: %s = Field(%s)\n", a.name, a.decl, strings.Join(args, ", "))
	return []string{importField}
}

func (g *Generator) writeTypedDict(buf *bytes.Buffer, name string, s *schema.Schema, attrs []attribute) []string {
	if g.opts.Total {
		fmt.Fprintf(buf, "class %s(TypedDict):\n", name)
	} else {
		fmt.Fprintf(buf, "class %s(TypedDict, total=False):\n", name)
	}
	g.writeBody(buf, s, len(attrs), func(i int) {
		a := attrs[i]
		writeComment(buf, a)
		fmt.Fprintf(buf, "    %s: %s\n", a.name, a.decl)
	})
	return []string{importTypedDict}
}

// RenderFile writes the imports as "from module import a, b" lines,
// standard library modules before third-party ones, followed by the
// classes separated by two blank lines.
func (g *Generator) RenderFile(imports []string, decls []generator.Declaration) (string, error) {
	modules := make(map[string][]string)
	for _, imp := range imports {
		i := strings.LastIndex(imp, ".")
		if i < 0 {
			continue
		}
		module, name := imp[:i], imp[i+1:]
		modules[module] = append(modules[module], name)
	}

	var std, thirdParty []string
	for module := range modules {
		if module == "pydantic" {
			thirdParty = append(thirdParty, module)
		} else {
			std = append(std, module)
		}
	}
	sort.Strings(std)
	sort.Strings(thirdParty)

	var buf bytes.Buffer
	buf.WriteString("from __future__ import annotations\n")
	writeGroup := func(group []string) {
		if len(group) == 0 {
			return
		}
		buf.WriteString("\n")
		for _, module := range group {
			names := modules[module]
			sort.Strings(names)
			fmt.Fprintf(&buf, "from %s import %s\n", module, strings.Join(names, ", "))
		}
	}
	writeGroup(std)
	writeGroup(thirdParty)

	for _, d := range decls {
		buf.WriteString("\n\n")
		buf.WriteString(d.Code)
	}
	return buf.String(), nil
}
