package python

import (
	"fmt"
	"strings"

	"github.com/mcncl/shapegen/internal/config"
	"github.com/mcncl/shapegen/internal/errors"
	"github.com/mcncl/shapegen/internal/generator"
	"github.com/mcncl/shapegen/internal/models"
	"github.com/mcncl/shapegen/internal/schema"
)

const anyType = "Any"

// Imports are written as "module.Name" and grouped by RenderFile.
const (
	importAny         = "typing.Any"
	importOptional    = "typing.Optional"
	importNotRequired = "typing.NotRequired"
	importTypedDict   = "typing.TypedDict"
	importDatetime    = "datetime.datetime"
	importDataclass   = "dataclasses.dataclass"
	importBaseModel   = "pydantic.BaseModel"
	importField       = "pydantic.Field"
	importConfigDict  = "pydantic.ConfigDict"
)

type primitive struct {
	decl  string
	imprt string
}

func buildPrimitives(cfg *config.Config) (map[models.Kind]primitive, error) {
	prims := map[models.Kind]primitive{
		models.KindString:    {decl: "str"},
		models.KindInteger:   {decl: "int"},
		models.KindFloat:     {decl: "float"},
		models.KindBoolean:   {decl: "bool"},
		models.KindTimestamp: {decl: "datetime", imprt: importDatetime},
	}
	for name, decl := range cfg.Types.Overrides {
		kind, ok := models.ParseKind(name)
		if !ok {
			return nil, &errors.ConfigError{Key: "types.overrides." + name, Value: decl, Reason: "not a primitive kind"}
		}
		p := primitive{decl: strings.TrimSpace(decl)}
		if p.decl == "datetime" {
			p.imprt = importDatetime
		}
		prims[kind] = p
	}
	return prims, nil
}

// MapField maps f, a field of the schema named schemaName, to a Python
// annotation. Optional fields become nullable, or NotRequired for TypedDict.
func (g *Generator) MapField(schemaName string, f *schema.Field) (generator.TargetType, error) {
	t, err := g.mapKind(schemaName, f.Name, f)
	if err != nil {
		return generator.TargetType{}, err
	}
	if !f.Optional {
		return t, nil
	}

	if g.opts.Style == StyleTypedDict {
		t.Decl = "NotRequired[" + t.Decl + "]"
		t.Imports = append(t.Imports, importNotRequired)
		return t, nil
	}
	if t.Nilable {
		return t, nil
	}
	if g.cfg.Types.PointerStrategy == config.PointerNever {
		if g.cfg.Types.WarnDroppedOptional {
			t.Hints = append(t.Hints, fmt.Sprintf(
				"%s.%s: optionality dropped, %s cannot represent a missing value (pointer_strategy=never)",
				schemaName, f.Name, t.Decl))
		}
		return t, nil
	}
	return g.nullable(t), nil
}

func (g *Generator) nullable(t generator.TargetType) generator.TargetType {
	if g.opts.OptionalStyle == OptionalOptional {
		t.Decl = "Optional[" + t.Decl + "]"
		t.Imports = append(t.Imports, importOptional)
	} else {
		t.Decl += " | None"
	}
	t.Nilable = true
	return t
}

func (g *Generator) mapKind(schemaName, fieldName string, f *schema.Field) (generator.TargetType, error) {
	where := schemaName + "." + fieldName

	switch f.Kind {
	case models.KindString, models.KindInteger, models.KindFloat, models.KindBoolean, models.KindTimestamp:
		p := g.primitives[f.Kind]
		t := generator.TargetType{Decl: p.decl}
		if p.imprt != "" {
			t.Imports = []string{p.imprt}
		}
		return t, nil

	case models.KindObject:
		if f.Schema == nil {
			return unknown(fmt.Sprintf("%s: object without schema, using Any", where)), nil
		}
		return generator.TargetType{Decl: g.className(f.Schema.Name)}, nil

	case models.KindList:
		if f.Elem == nil || f.Elem.Kind == models.KindUnknown {
			t := unknown(fmt.Sprintf("%s: array with unknown element type, using list[Any]", where))
			t.Decl = "list[Any]"
			return t, nil
		}
		elem, err := g.mapKind(schemaName, fieldName, f.Elem)
		if err != nil {
			return generator.TargetType{}, err
		}
		return generator.TargetType{Decl: "list[" + elem.Decl + "]", Imports: elem.Imports, Hints: elem.Hints}, nil

	case models.KindConflict:
		return g.resolveConflict(schemaName, fieldName, f.ConflictKinds)

	case models.KindOther:
		return unknown(fmt.Sprintf("%s: unsupported value type %s, using Any", where, f.TypeName)), nil

	default:
		return unknown(fmt.Sprintf("%s: unknown type, using Any", where)), nil
	}
}

func (g *Generator) resolveConflict(schemaName, fieldName string, kinds []models.Kind) (generator.TargetType, error) {
	names := strings.Join(models.KindNames(kinds), ", ")
	switch g.cfg.Types.ConflictStrategy {
	case config.ConflictStrict:
		return generator.TargetType{}, &errors.ConflictError{Schema: schemaName, Field: fieldName, Kinds: kinds}
	case config.ConflictFirstType:
		if len(kinds) > 0 {
			t, err := g.mapKind(schemaName, fieldName, &schema.Field{Name: fieldName, Kind: kinds[0]})
			if err != nil {
				return t, err
			}
			t.Hints = append(t.Hints, fmt.Sprintf("%s.%s: used first type (%s) from conflict: %s",
				schemaName, fieldName, kinds[0], names))
			return t, nil
		}
	}
	return unknown(fmt.Sprintf("%s.%s: conflicting kinds (%s) resolved with Any", schemaName, fieldName, names)), nil
}

// Any already admits None, so it is never wrapped again.
func unknown(hint string) generator.TargetType {
	return generator.TargetType{Decl: anyType, Imports: []string{importAny}, Nilable: true, Hints: []string{hint}}
}
